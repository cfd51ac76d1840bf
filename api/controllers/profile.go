package controllers

import (
	"net/http"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/internal/profile"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

type updateProfileRequest struct {
	Name     *string                  `json:"name"`
	Address  *string                  `json:"address"`
	Phone    *string                  `json:"phone"`
	GSTIN    *string                  `json:"gstin"`
	Channels []string                 `json:"channels"`
	Charges  []orders.Charge          `json:"charges"`
	Printer  *profile.PrinterSettings `json:"printer"`
}

type sellerPayload struct {
	ID string `json:"id"`
	profile.Seller
}

func sellerToPayload(seller profile.Seller) sellerPayload {
	return sellerPayload{ID: seller.ID, Seller: seller}
}

// ProfileGet serves the seller's business profile.
func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		seller, err := svc.Get(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sellerToPayload(seller))
	}
}

// ProfileUpdate merges the supplied fields into the business profile,
// creating it on first write.
func ProfileUpdate(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		seller, err := svc.Update(r.Context(), sess, profile.UpdateInput{
			Name:     body.Name,
			Address:  body.Address,
			Phone:    body.Phone,
			GSTIN:    body.GSTIN,
			Channels: body.Channels,
			Charges:  body.Charges,
			Printer:  body.Printer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sellerToPayload(seller))
	}
}

type updateTablesRequest struct {
	Tables []string `json:"tables" validate:"required"`
}

// ProfileUpdateTables replaces the seller's dine-in table list.
func ProfileUpdateTables(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body updateTablesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		seller, err := svc.UpdateTables(r.Context(), sess, body.Tables)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sellerToPayload(seller))
	}
}
