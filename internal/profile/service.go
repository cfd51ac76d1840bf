package profile

import (
	"context"
	"strings"

	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// UpdateInput carries the editable profile settings. Nil pointers and nil
// slices leave the stored value untouched.
type UpdateInput struct {
	Name     *string
	Address  *string
	Phone    *string
	GSTIN    *string
	Channels []string
	Charges  []orders.Charge
	Printer  *PrinterSettings
}

// Service exposes seller profile management to the HTTP surface and supplies
// seller-configured charges to order placement.
type Service interface {
	Get(ctx context.Context, sess session.Session) (Seller, error)
	Update(ctx context.Context, sess session.Session, input UpdateInput) (Seller, error)
	UpdateTables(ctx context.Context, sess session.Session, tables []string) (Seller, error)
	OrderCharges(ctx context.Context, sellerID string) ([]orders.Charge, error)
}

type service struct {
	repo *Repository
}

// NewService builds the profile service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	return &service{repo: repo}, nil
}

// Get returns the caller's profile.
func (s *service) Get(ctx context.Context, sess session.Session) (Seller, error) {
	return s.repo.FindBySeller(ctx, sess.SellerID)
}

// Update merges the supplied settings into the profile, creating the profile
// document on first write.
func (s *service) Update(ctx context.Context, sess session.Session, input UpdateInput) (Seller, error) {
	if !sess.Can(enums.PermissionSettingsWrite) {
		return Seller{}, pkgerrors.New(pkgerrors.CodeForbidden, "profile changes require settings permission")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return Seller{}, pkgerrors.New(pkgerrors.CodeValidation, "business name cannot be blank")
	}
	if err := validateCharges(input.Charges); err != nil {
		return Seller{}, err
	}
	if err := validateList("channel", input.Channels); err != nil {
		return Seller{}, err
	}
	if input.Printer != nil && input.Printer.ReceiptWidth < 0 {
		return Seller{}, pkgerrors.New(pkgerrors.CodeValidation, "receipt width cannot be negative")
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		fields["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		fields["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.GSTIN != nil {
		fields["gstin"] = strings.ToUpper(strings.TrimSpace(*input.GSTIN))
	}
	if input.Channels != nil {
		fields["channels"] = input.Channels
	}
	if input.Charges != nil {
		fields["charges"] = input.Charges
	}
	if input.Printer != nil {
		fields["printer"] = *input.Printer
	}
	if len(fields) == 0 {
		return Seller{}, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields supplied")
	}
	return s.apply(ctx, sess, fields)
}

// UpdateTables replaces the outlet's table list.
func (s *service) UpdateTables(ctx context.Context, sess session.Session, tables []string) (Seller, error) {
	if !sess.Can(enums.PermissionSettingsWrite) {
		return Seller{}, pkgerrors.New(pkgerrors.CodeForbidden, "profile changes require settings permission")
	}
	if err := validateList("table", tables); err != nil {
		return Seller{}, err
	}
	if tables == nil {
		tables = []string{}
	}
	return s.apply(ctx, sess, map[string]any{"tables": tables})
}

// OrderCharges returns the seller's configured charges. A seller without a
// profile document gets no charges rather than a failed order.
func (s *service) OrderCharges(ctx context.Context, sellerID string) ([]orders.Charge, error) {
	seller, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		if pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return seller.Charges, nil
}

func (s *service) apply(ctx context.Context, sess session.Session, fields map[string]any) (Seller, error) {
	existing, err := s.repo.FindBySeller(ctx, sess.SellerID)
	switch {
	case err == nil:
		if err := s.repo.Update(ctx, existing.ID, fields); err != nil {
			return Seller{}, err
		}
	case pkgerrors.As(err).Code() == pkgerrors.CodeNotFound:
		seller := Seller{SellerID: sess.SellerID, Tables: []string{}, Charges: []orders.Charge{}, Channels: []string{}}
		id, err := s.repo.Create(ctx, seller)
		if err != nil {
			return Seller{}, err
		}
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return Seller{}, err
		}
	default:
		return Seller{}, err
	}
	return s.repo.FindBySeller(ctx, sess.SellerID)
}

func validateCharges(charges []orders.Charge) error {
	for _, charge := range charges {
		if strings.TrimSpace(charge.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "charge name is required")
		}
		if !charge.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid charge type")
		}
		if charge.Value < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "charge value cannot be negative")
		}
	}
	return nil
}

func validateList(kind string, values []string) error {
	seen := map[string]bool{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, kind+" names cannot be blank")
		}
		if seen[trimmed] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate "+kind+" name")
		}
		seen[trimmed] = true
	}
	return nil
}
