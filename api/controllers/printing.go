package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/internal/printing"
	"github.com/syed-hamad/Retail-POS-sub001/internal/profile"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

// printSettings merges the seller's stored printer settings over the
// service-level defaults. A seller without a profile prints with defaults.
func printSettings(r *http.Request, profiles profile.Service, base config.PrintingConfig, logg *logger.Logger) (config.PrintingConfig, printing.Header) {
	sess, ok := sessionFromRequest(r)
	if !ok || profiles == nil {
		return base, printing.Header{}
	}
	seller, err := profiles.Get(r.Context(), sess)
	if err != nil {
		if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound && logg != nil {
			logg.Warn(r.Context(), "load printer settings failed")
		}
		return base, printing.Header{}
	}

	cfg := base
	if seller.Printer.ReceiptWidth > 0 {
		cfg.ReceiptWidth = seller.Printer.ReceiptWidth
	}
	if seller.Printer.CurrencySign != "" {
		cfg.CurrencySign = seller.Printer.CurrencySign
	}
	if seller.Printer.FooterNote != "" {
		cfg.FooterNote = seller.Printer.FooterNote
	}
	header := printing.Header{
		Name:    seller.Name,
		Address: seller.Address,
		Phone:   seller.Phone,
		GSTIN:   seller.GSTIN,
	}
	return cfg, header
}

// OrdersReceipt renders the customer bill for an order.
func OrdersReceipt(svc orders.Service, profiles profile.Service, base config.PrintingConfig, logg *logger.Logger) http.HandlerFunc {
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
		cfg, header := printSettings(r, profiles, base, logg)
		responses.WriteSuccess(w, printing.BuildReceipt(cfg, header, order))
	}
}

// OrdersKOT renders the kitchen ticket for an order.
func OrdersKOT(svc orders.Service, profiles profile.Service, base config.PrintingConfig, logg *logger.Logger) http.HandlerFunc {
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
		cfg, _ := printSettings(r, profiles, base, logg)
		responses.WriteSuccess(w, printing.BuildKOT(cfg, order, time.Now().UTC()))
	}
}
