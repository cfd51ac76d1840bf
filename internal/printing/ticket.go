// Package printing renders orders into line-oriented tickets for thermal
// printers. Builders are pure; device I/O belongs to the print client.
package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

// TicketKind distinguishes the customer bill from the kitchen ticket.
type TicketKind string

const (
	TicketReceipt TicketKind = "receipt"
	TicketKOT     TicketKind = "kot"
)

const defaultWidth = 32

// Header carries the outlet identity printed at the top of a receipt.
type Header struct {
	Name    string
	Address string
	Phone   string
	GSTIN   string
}

// RenderedTicket is a device-independent ticket: fixed-width text lines
// ready for a line printer.
type RenderedTicket struct {
	Kind  TicketKind `json:"kind"`
	Width int        `json:"width"`
	Lines []string   `json:"lines"`
}

// Text joins the ticket lines into one printable block.
func (t RenderedTicket) Text() string {
	return strings.Join(t.Lines, "\n")
}

// BuildReceipt renders the customer bill. The totals block is computed from
// the order itself, so a printed bill always matches what was charged.
func BuildReceipt(cfg config.PrintingConfig, header Header, order orders.Order) RenderedTicket {
	width := ticketWidth(cfg)
	b := newBuilder(width)

	b.center(header.Name)
	b.center(header.Address)
	b.center(header.Phone)
	if header.GSTIN != "" {
		b.center("GSTIN: " + header.GSTIN)
	}
	b.rule()

	b.split(fmt.Sprintf("Bill #%d", order.BillNo), order.PlacedAt.Format("02 Jan 15:04"))
	b.line(routeLine(order))
	if order.Customer != nil && order.Customer.Name != "" {
		b.line("Customer: " + order.Customer.Name)
	}
	b.rule()

	for _, item := range order.Items {
		b.split(fmt.Sprintf("%s x%d", item.Title, item.Quantity), money(cfg, item.SubTotal()))
	}
	b.rule()

	subTotal := order.SubTotal()
	b.split("Subtotal", money(cfg, subTotal))
	if order.Discount > 0 {
		b.split("Discount", "-"+money(cfg, decimal.NewFromFloat(order.Discount)))
	}
	for _, charge := range order.Charges {
		if charge.Inclusive {
			b.split(charge.Name+" (incl.)", money(cfg, chargeValue(charge, subTotal)))
			continue
		}
		b.split(charge.Name, money(cfg, charge.Amount(subTotal)))
	}
	b.split("TOTAL", money(cfg, order.Total()))
	if order.PaymentMode != "" {
		b.split("Paid via", string(order.PaymentMode))
	}
	b.rule()

	b.center(cfg.FooterNote)
	return RenderedTicket{Kind: TicketReceipt, Width: width, Lines: b.lines}
}

// BuildKOT renders the kitchen ticket: quantities and titles only, no money.
// Lines already marked served are skipped so reprints only show pending work.
func BuildKOT(cfg config.PrintingConfig, order orders.Order, at time.Time) RenderedTicket {
	width := ticketWidth(cfg)
	b := newBuilder(width)

	b.center("KOT")
	b.split(fmt.Sprintf("Bill #%d", order.BillNo), at.Format("15:04"))
	b.line(routeLine(order))
	b.rule()

	for _, item := range order.Items {
		if item.Served {
			continue
		}
		b.line(fmt.Sprintf("%d x %s", item.Quantity, item.Title))
	}
	return RenderedTicket{Kind: TicketKOT, Width: width, Lines: b.lines}
}

func routeLine(order orders.Order) string {
	table, channel := order.Route()
	if table != "" {
		return "Table: " + table
	}
	return "Channel: " + channel
}

func chargeValue(charge orders.Charge, subTotal decimal.Decimal) decimal.Decimal {
	if charge.Type == enums.ChargeTypePercentage {
		return subTotal.Mul(decimal.NewFromFloat(charge.Value)).Div(decimal.NewFromInt(100))
	}
	return decimal.NewFromFloat(charge.Value)
}

func money(cfg config.PrintingConfig, amount decimal.Decimal) string {
	sign := cfg.CurrencySign
	if sign == "" {
		sign = "Rs."
	}
	return sign + amount.StringFixed(2)
}

func ticketWidth(cfg config.PrintingConfig) int {
	if cfg.ReceiptWidth > 0 {
		return cfg.ReceiptWidth
	}
	return defaultWidth
}

type builder struct {
	width int
	lines []string
}

func newBuilder(width int) *builder {
	return &builder{width: width}
}

// line appends left-aligned text, truncated to the ticket width.
func (b *builder) line(text string) {
	b.lines = append(b.lines, clip(text, b.width))
}

// center appends centered text; blank input is dropped.
func (b *builder) center(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	text = clip(text, b.width)
	pad := (b.width - runeLen(text)) / 2
	b.lines = append(b.lines, strings.Repeat(" ", pad)+text)
}

// split appends a line with left text and right-aligned value. The left side
// is truncated so the value is never cut.
func (b *builder) split(left, right string) {
	room := b.width - runeLen(right) - 1
	if room < 1 {
		room = 1
	}
	left = clip(left, room)
	gap := b.width - runeLen(left) - runeLen(right)
	if gap < 1 {
		gap = 1
	}
	b.lines = append(b.lines, left+strings.Repeat(" ", gap)+right)
}

func (b *builder) rule() {
	b.lines = append(b.lines, strings.Repeat("-", b.width))
}

func clip(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width])
}

func runeLen(text string) int {
	return len([]rune(text))
}
