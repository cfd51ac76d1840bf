package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/customers"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

const maxCustomerListLimit = 1000

type createCustomerRequest struct {
	Name  string   `json:"name" validate:"required"`
	Phone string   `json:"phone"`
	Email string   `json:"email" validate:"omitempty,email"`
	Tags  []string `json:"tags"`
}

type customerPayload struct {
	ID string `json:"id"`
	customers.Customer
}

func customerToPayload(customer customers.Customer) customerPayload {
	return customerPayload{ID: customer.ID, Customer: customer}
}

// CustomersCreate adds a CRM record.
func CustomersCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body createCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Create(r.Context(), sess, customers.CreateCustomerInput{
			Name:  validators.SanitizeString(body.Name, 200),
			Phone: validators.SanitizeString(body.Phone, 20),
			Email: validators.SanitizeString(body.Email, 200),
			Tags:  body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customerToPayload(customer))
	}
}

// CustomersList serves the seller's CRM records.
func CustomersList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxCustomerListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), sess, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := make([]customerPayload, 0, len(list))
		for _, customer := range list {
			payload = append(payload, customerToPayload(customer))
		}
		responses.WriteSuccess(w, map[string]any{"customers": payload})
	}
}

// CustomersGet serves one CRM record.
func CustomersGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		customer, err := svc.Get(r.Context(), sess, chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customerToPayload(customer))
	}
}

// CustomersLookup resolves a customer by exact phone number.
func CustomersLookup(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		phone := validators.SanitizeString(r.URL.Query().Get("phone"), 20)
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone query parameter is required"))
			return
		}
		customer, err := svc.LookupByPhone(r.Context(), sess, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customerToPayload(customer))
	}
}

// CustomersUpdate merges the supplied fields into the record.
func CustomersUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var fields map[string]any
		if err := validators.DecodeJSONBody(r, &fields); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Update(r.Context(), sess, chi.URLParam(r, "customerId"), fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customerToPayload(customer))
	}
}

// CustomersDelete removes a CRM record.
func CustomersDelete(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), sess, chi.URLParam(r, "customerId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
