package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syed-hamad/Retail-POS-sub001/api/middleware"
	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

const maxFeedLimit = 500

// orderPayload adds the document id and derived fields to the stored shape.
type orderPayload struct {
	ID        string          `json:"id"`
	Staleness enums.Staleness `json:"staleness"`
	orders.Order
}

func orderToPayload(order orders.Order, now time.Time) orderPayload {
	return orderPayload{ID: order.ID, Staleness: order.Staleness(now), Order: order}
}

func ordersToPayload(list []orders.Order, now time.Time) []orderPayload {
	out := make([]orderPayload, 0, len(list))
	for _, order := range list {
		out = append(out, orderToPayload(order, now))
	}
	return out
}

func sessionFromRequest(r *http.Request) (session.Session, bool) {
	return middleware.SessionFromContext(r.Context())
}

func sessionOrFail(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (session.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
	}
	return sess, ok
}

func feedFilterFromQuery(r *http.Request, sess session.Session) (orders.FeedFilter, error) {
	statuses, err := validators.ParseQueryStatuses(r, "status")
	if err != nil {
		return orders.FeedFilter{}, err
	}
	if len(statuses) == 0 {
		statuses = []enums.OrderStatus{enums.OrderStatusPlaced, enums.OrderStatusKitchen}
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxFeedLimit)
	if err != nil {
		return orders.FeedFilter{}, err
	}
	return orders.FeedFilter{
		SellerID: sess.SellerID,
		Statuses: statuses,
		TableID:  validators.SanitizeString(r.URL.Query().Get("table"), 64),
		Channel:  validators.SanitizeString(r.URL.Query().Get("channel"), 64),
		Limit:    limit,
	}, nil
}

// OrdersList serves a one-shot snapshot of the order feed.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		filter, err := feedFilterFromQuery(r, sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), sess, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": ordersToPayload(list, time.Now().UTC())})
	}
}

// OrdersStream pushes live feed snapshots over Server-Sent Events. The
// subscription lives exactly as long as the request context.
func OrdersStream(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		filter, err := feedFilterFromQuery(r, sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		// Snapshots and errors arrive on one goroutine; this handler is the
		// only writer to the response.
		type event struct {
			name string
			data []byte
		}
		events := make(chan event, 8)

		unsubscribe, err := svc.Watch(r.Context(), sess, filter,
			func(snapshot []orders.Order) {
				payload, err := json.Marshal(map[string]any{"orders": ordersToPayload(snapshot, time.Now().UTC())})
				if err != nil {
					return
				}
				select {
				case events <- event{name: "snapshot", data: payload}:
				case <-r.Context().Done():
				}
			},
			func(err error) {
				payload, _ := json.Marshal(map[string]string{"error": pkgerrors.As(err).Message()})
				select {
				case events <- event{name: "error", data: payload}:
				case <-r.Context().Done():
				}
			},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(25 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-events:
				if _, err := w.Write([]byte("event: " + ev.name + "\ndata: ")); err != nil {
					return
				}
				if _, err := w.Write(append(ev.data, '\n', '\n')); err != nil {
					return
				}
				flusher.Flush()
				if ev.name == "error" {
					return
				}
			case <-heartbeat.C:
				if _, err := w.Write([]byte(": ping\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// OrdersGrouped serves the table/channel classification of active orders.
func OrdersGrouped(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		statuses, err := validators.ParseQueryStatuses(r, "status")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		grouped, err := svc.Grouped(r.Context(), sess, statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grouped)
	}
}

type placeOrderRequest struct {
	Items        []orders.Item       `json:"items" validate:"required,min=1"`
	TableID      string              `json:"tableId"`
	PriceVariant string              `json:"priceVariant"`
	Customer     *orders.CustomerRef `json:"customer"`
}

// OrdersPlace creates a new order.
func OrdersPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Place(r.Context(), sess, orders.PlaceOrderInput{
			Items:        body.Items,
			TableID:      validators.SanitizeString(body.TableID, 64),
			PriceVariant: validators.SanitizeString(body.PriceVariant, 64),
			Customer:     body.Customer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderToPayload(order, time.Now().UTC()))
	}
}

// OrdersGet serves one order by id.
func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

type updateStatusRequest struct {
	Labels []string `json:"labels" validate:"required,min=1"`
}

// OrdersUpdateStatus appends status labels to the order's history.
func OrdersUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		labels := make([]enums.OrderStatus, 0, len(body.Labels))
		for _, raw := range body.Labels {
			label, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status label"))
				return
			}
			labels = append(labels, label)
		}
		order, err := svc.UpdateStatus(r.Context(), sess, chi.URLParam(r, "orderId"), labels)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

type serveItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Served    bool   `json:"served"`
}

// OrdersServeItem toggles the served flag on one line.
func OrdersServeItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body serveItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ServeItem(r.Context(), sess, chi.URLParam(r, "orderId"), body.ProductID, body.Served)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

type itemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// OrdersAddItem increments the quantity of an existing line.
func OrdersAddItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AddItem(r.Context(), sess, chi.URLParam(r, "orderId"), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

// OrdersRemoveItem decrements a line; removing the last item deletes the order.
func OrdersRemoveItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, deleted, err := svc.RemoveItem(r.Context(), sess, chi.URLParam(r, "orderId"), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if deleted {
			responses.WriteSuccess(w, map[string]any{"deleted": true})
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

type discountRequest struct {
	Amount float64 `json:"amount" validate:"min=0"`
}

// OrdersSetDiscount applies a flat discount to the order.
func OrdersSetDiscount(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body discountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.SetDiscount(r.Context(), sess, chi.URLParam(r, "orderId"), body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

type checkoutRequest struct {
	PaymentMode string `json:"paymentMode" validate:"required"`
}

// OrdersCheckout settles the order with a payment mode.
func OrdersCheckout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParsePaymentMode(body.PaymentMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
			return
		}
		order, err := svc.Checkout(r.Context(), sess, chi.URLParam(r, "orderId"), mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}

// OrdersCancel terminates the order as CANCELLED.
func OrdersCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Cancel(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToPayload(order, time.Now().UTC()))
	}
}
