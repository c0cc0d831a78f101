package quote_price

import (
	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	quotePrice "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/quote_price"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/ptr"
)

// QuotePriceRequest HTTP request model
type QuotePriceRequest struct {
	TenantID         int64  `json:"tenantId"`
	ProductID        int64  `json:"productId"`
	ScheduleID       *int64 `json:"scheduleId,omitempty"`
	ParticipantCount int    `json:"participantCount"`
	PayingOnline     bool   `json:"payingOnline,omitempty"`
	Location         string `json:"location,omitempty"`
}

// DiscountResponse одна применённая скидка
type DiscountResponse struct {
	Code    string  `json:"code"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// QuoteResponse HTTP response model
type QuoteResponse struct {
	UnitPrice        float64            `json:"unitPrice"`
	ParticipantCount int                `json:"participantCount"`
	Subtotal         float64            `json:"subtotal"`
	Discounts        []DiscountResponse `json:"discounts,omitempty"`
	DiscountAmount   float64            `json:"discountAmount"`
	TaxableAmount    float64            `json:"taxableAmount"`
	TaxAmount        float64            `json:"taxAmount"`
	TaxRateApplied   float64            `json:"taxRateApplied,omitempty"`
	TaxInclusive     bool               `json:"taxInclusive,omitempty"`
	TaxExempt        bool               `json:"taxExempt,omitempty"`
	TaxExemptReason  string             `json:"taxExemptReason,omitempty"`
	TotalAmount      float64            `json:"totalAmount"`
	DepositDue       float64            `json:"depositDue,omitempty"`
	BalanceDue       float64            `json:"balanceDue"`
	PaymentDueDate   *string            `json:"paymentDueDate,omitempty"` // YYYY-MM-DD
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *QuotePriceRequest) ToUseCaseRequest(userID int64) *quotePrice.Request {
	return &quotePrice.Request{
		TenantID:         r.TenantID,
		ProductID:        r.ProductID,
		ScheduleID:       r.ScheduleID,
		MemberID:         userID,
		ParticipantCount: r.ParticipantCount,
		PayingOnline:     r.PayingOnline,
		Location:         r.Location,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *quotePrice.Response) *QuoteResponse {
	b := resp.Pricing
	out := &QuoteResponse{
		UnitPrice:        b.UnitPrice,
		ParticipantCount: b.ParticipantCount,
		Subtotal:         b.Subtotal,
		DiscountAmount:   b.DiscountAmount,
		TaxableAmount:    b.TaxableAmount,
		TaxAmount:        b.TaxAmount,
		TaxRateApplied:   b.Tax.RateApplied,
		TaxInclusive:     b.Tax.Inclusive,
		TaxExempt:        b.Tax.Exempt,
		TaxExemptReason:  b.Tax.Reason,
		TotalAmount:      b.TotalAmount,
		DepositDue:       b.DepositDue,
		BalanceDue:       b.BalanceDue,
	}
	for _, d := range b.Discounts {
		out.Discounts = append(out.Discounts, DiscountResponse{
			Code:    d.Code,
			Percent: d.Percent,
			Amount:  d.Amount,
		})
	}
	if b.PaymentDueDate != nil {
		out.PaymentDueDate = ptr.Ptr(b.PaymentDueDate.Format(domain.DateFormat))
	}
	return out
}
