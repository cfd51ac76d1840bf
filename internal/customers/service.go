package customers

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// CreateCustomerInput is a new CRM record.
type CreateCustomerInput struct {
	Name  string
	Phone string
	Email string
	Tags  []string
}

// Service exposes CRM management to the HTTP surface and the order rollup
// hook to the orders service.
type Service interface {
	Create(ctx context.Context, sess session.Session, input CreateCustomerInput) (Customer, error)
	Get(ctx context.Context, sess session.Session, id string) (Customer, error)
	List(ctx context.Context, sess session.Session, limit int) ([]Customer, error)
	LookupByPhone(ctx context.Context, sess session.Session, phone string) (Customer, error)
	Update(ctx context.Context, sess session.Session, id string, fields map[string]any) (Customer, error)
	Delete(ctx context.Context, sess session.Session, id string) error

	// RecordVisit bumps the visit count and spend after an order settles.
	RecordVisit(ctx context.Context, sellerID, customerID string, amount decimal.Decimal, at time.Time) error
}

type service struct {
	repo *Repository
}

// NewService builds the customer service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer repo is required")
	}
	return &service{repo: repo}, nil
}

// Create validates and stores a new customer. Phone numbers are unique per
// seller when present.
func (s *service) Create(ctx context.Context, sess session.Session, input CreateCustomerInput) (Customer, error) {
	if !sess.Can(enums.PermissionCustomersWrite) {
		return Customer{}, pkgerrors.New(pkgerrors.CodeForbidden, "customer changes require customer permission")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != "" {
		if _, err := s.repo.FindByPhone(ctx, sess.SellerID, phone); err == nil {
			return Customer{}, pkgerrors.New(pkgerrors.CodeConflict, "a customer with this phone already exists")
		}
	}

	customer := Customer{
		SellerID: sess.SellerID,
		Name:     name,
		Phone:    phone,
		Email:    strings.TrimSpace(input.Email),
		Tags:     input.Tags,
	}
	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return Customer{}, err
	}
	return s.repo.Fetch(ctx, id)
}

// Get returns one customer scoped to the caller's seller.
func (s *service) Get(ctx context.Context, sess session.Session, id string) (Customer, error) {
	return s.fetchOwned(ctx, sess, id)
}

// List returns the seller's customers.
func (s *service) List(ctx context.Context, sess session.Session, limit int) ([]Customer, error) {
	return s.repo.List(ctx, sess.SellerID, limit)
}

// LookupByPhone finds one customer by exact phone number.
func (s *service) LookupByPhone(ctx context.Context, sess session.Session, phone string) (Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	return s.repo.FindByPhone(ctx, sess.SellerID, phone)
}

// Update merges the allowed fields into the customer.
func (s *service) Update(ctx context.Context, sess session.Session, id string, fields map[string]any) (Customer, error) {
	if !sess.Can(enums.PermissionCustomersWrite) {
		return Customer{}, pkgerrors.New(pkgerrors.CodeForbidden, "customer changes require customer permission")
	}
	if _, err := s.fetchOwned(ctx, sess, id); err != nil {
		return Customer{}, err
	}
	allowed := map[string]bool{"name": true, "phone": true, "email": true, "tags": true}
	clean := map[string]any{}
	for key, value := range fields {
		if allowed[key] {
			clean[key] = value
		}
	}
	if len(clean) == 0 {
		return Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields supplied")
	}
	if err := s.repo.Update(ctx, id, clean); err != nil {
		return Customer{}, err
	}
	return s.repo.Fetch(ctx, id)
}

// Delete removes a customer record.
func (s *service) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.Can(enums.PermissionCustomersWrite) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "customer changes require customer permission")
	}
	if _, err := s.fetchOwned(ctx, sess, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RecordVisit bumps spend, visit count, and last-seen. Called by the orders
// service on settlement; the read-modify-write follows the same
// last-write-wins contract as the rest of the store.
func (s *service) RecordVisit(ctx context.Context, sellerID, customerID string, amount decimal.Decimal, at time.Time) error {
	customer, err := s.repo.Fetch(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	total, _ := decimal.NewFromFloat(customer.TotalSpent).Add(amount).Float64()
	return s.repo.Update(ctx, customerID, map[string]any{
		"totalSpent": total,
		"visits":     customer.Visits + 1,
		"lastSeen":   at,
	})
}

func (s *service) fetchOwned(ctx context.Context, sess session.Session, id string) (Customer, error) {
	customer, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if customer.SellerID != sess.SellerID {
		return Customer{}, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}
