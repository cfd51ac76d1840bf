package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/syed-hamad/Retail-POS-sub001/api/middleware"
	internalorders "github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

type stubOrderService struct {
	placeFn      func(ctx context.Context, sess session.Session, input internalorders.PlaceOrderInput) (internalorders.Order, error)
	listFn       func(ctx context.Context, sess session.Session, filter internalorders.FeedFilter) ([]internalorders.Order, error)
	removeItemFn func(ctx context.Context, sess session.Session, id, productID string) (internalorders.Order, bool, error)
}

func (s stubOrderService) Place(ctx context.Context, sess session.Session, input internalorders.PlaceOrderInput) (internalorders.Order, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, sess, input)
	}
	return internalorders.Order{}, nil
}

func (s stubOrderService) Get(ctx context.Context, sess session.Session, id string) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) List(ctx context.Context, sess session.Session, filter internalorders.FeedFilter) ([]internalorders.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, sess, filter)
	}
	return nil, nil
}

func (s stubOrderService) Watch(ctx context.Context, sess session.Session, filter internalorders.FeedFilter, onNext func([]internalorders.Order), onErr func(error)) (docstore.UnsubscribeFunc, error) {
	return func() {}, nil
}

func (s stubOrderService) Grouped(ctx context.Context, sess session.Session, statuses []enums.OrderStatus) (internalorders.Grouped, error) {
	return internalorders.Grouped{}, nil
}

func (s stubOrderService) UpdateStatus(ctx context.Context, sess session.Session, id string, labels []enums.OrderStatus) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) ServeItem(ctx context.Context, sess session.Session, id, productID string, served bool) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) AddItem(ctx context.Context, sess session.Session, id, productID string) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) RemoveItem(ctx context.Context, sess session.Session, id, productID string) (internalorders.Order, bool, error) {
	if s.removeItemFn != nil {
		return s.removeItemFn(ctx, sess, id, productID)
	}
	return internalorders.Order{}, false, nil
}

func (s stubOrderService) SetDiscount(ctx context.Context, sess session.Session, id string, amount float64) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) Checkout(ctx context.Context, sess session.Session, id string, mode enums.PaymentMode) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func (s stubOrderService) Cancel(ctx context.Context, sess session.Session, id string) (internalorders.Order, error) {
	return internalorders.Order{}, nil
}

func authedRequest(req *http.Request, sess session.Session) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func cashierSess() session.Session {
	return session.Session{SellerID: "seller-1", UserID: "user-1", Role: enums.StaffRoleCashier}
}

func TestOrdersListDefaultsToActiveStatuses(t *testing.T) {
	var captured internalorders.FeedFilter
	svc := stubOrderService{
		listFn: func(ctx context.Context, sess session.Session, filter internalorders.FeedFilter) ([]internalorders.Order, error) {
			captured = filter
			return []internalorders.Order{{ID: "ord-1", SellerID: sess.SellerID}}, nil
		},
	}

	handler := OrdersList(svc, nil)
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/?table=T1", nil), cashierSess())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.SellerID != "seller-1" || captured.TableID != "T1" {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if len(captured.Statuses) != 2 || captured.Statuses[0] != enums.OrderStatusPlaced || captured.Statuses[1] != enums.OrderStatusKitchen {
		t.Fatalf("unexpected default statuses %v", captured.Statuses)
	}

	var envelope struct {
		Data struct {
			Orders []orderPayload `json:"orders"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].ID != "ord-1" {
		t.Fatalf("unexpected payload %+v", envelope.Data.Orders)
	}
}

func TestOrdersListRequiresSession(t *testing.T) {
	handler := OrdersList(stubOrderService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrdersPlace(t *testing.T) {
	var captured internalorders.PlaceOrderInput
	svc := stubOrderService{
		placeFn: func(ctx context.Context, sess session.Session, input internalorders.PlaceOrderInput) (internalorders.Order, error) {
			captured = input
			return internalorders.Order{ID: "ord-1", SellerID: sess.SellerID, Items: input.Items}, nil
		},
	}

	body := bytes.NewBufferString(`{"items":[{"id":"p-1","title":"Masala Dosa","price":120,"qnt":2}],"tableId":"T4"}`)
	handler := OrdersPlace(svc, nil)
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/", body), cashierSess())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.TableID != "T4" || len(captured.Items) != 1 || captured.Items[0].ProductID != "p-1" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestOrdersPlaceRejectsEmptyItems(t *testing.T) {
	handler := OrdersPlace(stubOrderService{}, nil)
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"items":[]}`)), cashierSess())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrdersUpdateStatusRejectsUnknownLabel(t *testing.T) {
	handler := OrdersUpdateStatus(stubOrderService{}, nil)
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"labels":["SIMMERING"]}`)), cashierSess())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withURLParam(req, "orderId", "ord-1"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrdersRemoveItemReportsDeletion(t *testing.T) {
	svc := stubOrderService{
		removeItemFn: func(ctx context.Context, sess session.Session, id, productID string) (internalorders.Order, bool, error) {
			if id != "ord-1" || productID != "p-1" {
				t.Fatalf("unexpected args %s %s", id, productID)
			}
			return internalorders.Order{}, true, nil
		},
	}

	handler := OrdersRemoveItem(svc, nil)
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"productId":"p-1"}`)), cashierSess())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withURLParam(req, "orderId", "ord-1"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data["deleted"] {
		t.Fatalf("expected deleted flag, got %v", envelope.Data)
	}
}

func TestOrdersCheckoutRejectsUnknownMode(t *testing.T) {
	handler := OrdersCheckout(stubOrderService{}, nil)
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"paymentMode":"barter"}`)), cashierSess())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withURLParam(req, "orderId", "ord-1"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
