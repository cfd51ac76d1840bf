package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

// BillCounter hands out the monotonic per-seller per-day bill numbers.
type BillCounter interface {
	NextBillNumber(ctx context.Context, sellerID string, day time.Time) (int64, error)
}

// ChargeSource supplies the seller-configured charges applied to new orders.
type ChargeSource interface {
	OrderCharges(ctx context.Context, sellerID string) ([]Charge, error)
}

// CustomerLedger rolls a settled order into the CRM record.
type CustomerLedger interface {
	RecordVisit(ctx context.Context, sellerID, customerID string, amount decimal.Decimal, at time.Time) error
}

// PlaceOrderInput is a new order at placement time.
type PlaceOrderInput struct {
	Items        []Item
	TableID      string
	PriceVariant string
	Customer     *CustomerRef
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo      *Repository
	Feed      *Feed
	Bills     BillCounter
	Charges   ChargeSource
	Customers CustomerLedger
	Logger    *logger.Logger

	// SnapshotLimit is the page size applied to feed queries that do not
	// carry their own limit. Zero leaves them uncapped.
	SnapshotLimit int
}

// Service exposes the order lifecycle to the HTTP surface.
type Service interface {
	Place(ctx context.Context, sess session.Session, input PlaceOrderInput) (Order, error)
	Get(ctx context.Context, sess session.Session, id string) (Order, error)
	List(ctx context.Context, sess session.Session, filter FeedFilter) ([]Order, error)
	Watch(ctx context.Context, sess session.Session, filter FeedFilter, onNext func([]Order), onErr func(error)) (docstore.UnsubscribeFunc, error)
	Grouped(ctx context.Context, sess session.Session, statuses []enums.OrderStatus) (Grouped, error)
	UpdateStatus(ctx context.Context, sess session.Session, id string, labels []enums.OrderStatus) (Order, error)
	ServeItem(ctx context.Context, sess session.Session, id, productID string, served bool) (Order, error)
	AddItem(ctx context.Context, sess session.Session, id, productID string) (Order, error)
	RemoveItem(ctx context.Context, sess session.Session, id, productID string) (Order, bool, error)
	SetDiscount(ctx context.Context, sess session.Session, id string, amount float64) (Order, error)
	Checkout(ctx context.Context, sess session.Session, id string, mode enums.PaymentMode) (Order, error)
	Cancel(ctx context.Context, sess session.Session, id string) (Order, error)
}

type service struct {
	repo          *Repository
	feed          *Feed
	bills         BillCounter
	charges       ChargeSource
	customers     CustomerLedger
	logg          *logger.Logger
	now           func() time.Time
	snapshotLimit int
}

// NewService builds the order service with the required dependencies.
// Charges and Customers are optional collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order feed is required")
	}
	if params.Bills == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bill counter is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:          params.Repo,
		feed:          params.Feed,
		bills:         params.Bills,
		charges:       params.Charges,
		customers:     params.Customers,
		logg:          params.Logger,
		now:           time.Now,
		snapshotLimit: params.SnapshotLimit,
	}, nil
}

// Place creates an order with the initial PLACED+KITCHEN status pair, a
// daily bill number, and the seller's configured charges.
func (s *service) Place(ctx context.Context, sess session.Session, input PlaceOrderInput) (Order, error) {
	if len(input.Items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "an order needs at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == "" || item.Title == "" {
			return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "every item needs a product id and title")
		}
		if item.Quantity <= 0 {
			return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.Price < 0 {
			return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
	}
	if input.TableID != "" && input.PriceVariant != "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "an order routes by table or channel, not both")
	}

	now := s.now().UTC()
	billNo, err := s.bills.NextBillNumber(ctx, sess.SellerID, now)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate bill number")
	}

	var charges []Charge
	if s.charges != nil {
		charges, err = s.charges.OrderCharges(ctx, sess.SellerID)
		if err != nil {
			return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller charges")
		}
	}

	history := []StatusEntry{
		{Label: enums.OrderStatusPlaced, At: now},
		{Label: enums.OrderStatusKitchen, At: now},
	}
	order := Order{
		SellerID:      sess.SellerID,
		Items:         input.Items,
		Status:        history[len(history)-1],
		StatusHistory: history,
		TableID:       input.TableID,
		PriceVariant:  input.PriceVariant,
		Charges:       charges,
		BillNo:        billNo,
		Customer:      input.Customer,
		PlacedAt:      now,
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return Order{}, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id), "order placed")
	return s.repo.Fetch(ctx, id)
}

// Get returns one order scoped to the caller's seller.
func (s *service) Get(ctx context.Context, sess session.Session, id string) (Order, error) {
	return s.fetchOwned(ctx, sess, id)
}

// List runs the feed filter once.
func (s *service) List(ctx context.Context, sess session.Session, filter FeedFilter) ([]Order, error) {
	filter.SellerID = sess.SellerID
	if filter.Limit <= 0 {
		filter.Limit = s.snapshotLimit
	}
	return s.feed.Snapshot(ctx, filter)
}

// Watch opens a live feed scoped to the caller's seller.
func (s *service) Watch(ctx context.Context, sess session.Session, filter FeedFilter, onNext func([]Order), onErr func(error)) (docstore.UnsubscribeFunc, error) {
	filter.SellerID = sess.SellerID
	if filter.Limit <= 0 {
		filter.Limit = s.snapshotLimit
	}
	return s.feed.Subscribe(ctx, filter, onNext, onErr)
}

// Grouped classifies the current active orders into table/channel buckets.
func (s *service) Grouped(ctx context.Context, sess session.Session, statuses []enums.OrderStatus) (Grouped, error) {
	if len(statuses) == 0 {
		statuses = []enums.OrderStatus{enums.OrderStatusPlaced, enums.OrderStatusKitchen}
	}
	list, err := s.feed.Snapshot(ctx, FeedFilter{SellerID: sess.SellerID, Statuses: statuses})
	if err != nil {
		return Grouped{}, err
	}
	return Classify(list), nil
}

// UpdateStatus appends the given labels to the order's status history.
func (s *service) UpdateStatus(ctx context.Context, sess session.Session, id string, labels []enums.OrderStatus) (Order, error) {
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if err := entity.UpdateStatus(ctx, labels...); err != nil {
		return Order{}, err
	}
	return entity.Order(), nil
}

// ServeItem toggles one line's served flag.
func (s *service) ServeItem(ctx context.Context, sess session.Session, id, productID string, served bool) (Order, error) {
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if err := entity.ServeItem(ctx, productID, served); err != nil {
		return Order{}, err
	}
	return entity.Order(), nil
}

// AddItem increments an existing line's quantity by one.
func (s *service) AddItem(ctx context.Context, sess session.Session, id, productID string) (Order, error) {
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if err := entity.AddItem(ctx, productID); err != nil {
		return Order{}, err
	}
	return entity.Order(), nil
}

// RemoveItem decrements a line; removing the last item deletes the order.
// The boolean reports whether the whole order was deleted.
func (s *service) RemoveItem(ctx context.Context, sess session.Session, id, productID string) (Order, bool, error) {
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, false, err
	}
	if err := entity.RemoveItem(ctx, productID); err != nil {
		return Order{}, false, err
	}
	if entity.Deleted() {
		s.logg.Info(s.logg.WithOrderID(ctx, id), "order deleted with last item")
		return Order{}, true, nil
	}
	return entity.Order(), false, nil
}

// SetDiscount validates and persists the discount. The amount must not
// exceed the order's current subtotal.
func (s *service) SetDiscount(ctx context.Context, sess session.Session, id string, amount float64) (Order, error) {
	if !sess.Can(enums.PermissionOrdersDiscount) {
		return Order{}, pkgerrors.New(pkgerrors.CodeForbidden, "discounting requires discount permission")
	}
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if amount < 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	if decimal.NewFromFloat(amount).GreaterThan(entity.Order().SubTotal()) {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot exceed the order subtotal")
	}
	if err := entity.SetDiscount(ctx, amount); err != nil {
		return Order{}, err
	}
	return entity.Order(), nil
}

// Checkout settles the order: records the payment mode, moves the order to
// COMPLETED, and rolls the spend into the customer record when one is
// attached.
func (s *service) Checkout(ctx context.Context, sess session.Session, id string, mode enums.PaymentMode) (Order, error) {
	if !mode.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if entity.Order().IsTerminal() {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"paymentMode": mode}); err != nil {
		return Order{}, err
	}
	if err := entity.UpdateStatus(ctx, enums.OrderStatusCompleted); err != nil {
		return Order{}, err
	}

	order := entity.Order()
	if s.customers != nil && order.Customer != nil && order.Customer.ID != "" {
		if err := s.customers.RecordVisit(ctx, sess.SellerID, order.Customer.ID, order.Total(), s.now().UTC()); err != nil {
			// The order is settled either way; the rollup is best effort.
			s.logg.Error(s.logg.WithOrderID(ctx, id), "record customer visit", err)
		}
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id), "order settled")
	return order, nil
}

// Cancel moves the order to the terminal CANCELLED state.
func (s *service) Cancel(ctx context.Context, sess session.Session, id string) (Order, error) {
	entity, err := s.entity(ctx, sess, id)
	if err != nil {
		return Order{}, err
	}
	if entity.Order().IsTerminal() {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order already reached a terminal state")
	}
	if err := entity.UpdateStatus(ctx, enums.OrderStatusCancelled); err != nil {
		return Order{}, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id), "order cancelled")
	return entity.Order(), nil
}

func (s *service) entity(ctx context.Context, sess session.Session, id string) (*Entity, error) {
	entity, err := NewEntity(ctx, s.repo, sess, id)
	if err != nil {
		return nil, err
	}
	if entity.Order().SellerID != sess.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return entity, nil
}

func (s *service) fetchOwned(ctx context.Context, sess session.Session, id string) (Order, error) {
	order, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.SellerID != sess.SellerID {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
