package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	reserveSpot "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/reserve_spot"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/ptr"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	TenantID         int64   `json:"tenantId"`
	ProductID        int64   `json:"productId"`
	ScheduleID       int64   `json:"scheduleId"`
	ParticipantCount int     `json:"participantCount"`
	PayingOnline     bool    `json:"payingOnline,omitempty"`
	Location         string  `json:"location,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// DiscountResponse одна применённая скидка
type DiscountResponse struct {
	Code    string  `json:"code"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// PricingResponse раскладка цены брони
type PricingResponse struct {
	UnitPrice      float64            `json:"unitPrice"`
	Subtotal       float64            `json:"subtotal"`
	Discounts      []DiscountResponse `json:"discounts,omitempty"`
	DiscountAmount float64            `json:"discountAmount"`
	TaxableAmount  float64            `json:"taxableAmount"`
	TaxAmount      float64            `json:"taxAmount"`
	TaxExempt      bool               `json:"taxExempt,omitempty"`
	TotalAmount    float64            `json:"totalAmount"`
	DepositDue     float64            `json:"depositDue,omitempty"`
	BalanceDue     float64            `json:"balanceDue"`
	PaymentDueDate *string            `json:"paymentDueDate,omitempty"` // YYYY-MM-DD
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64           `json:"id"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	OverbookingUsed bool            `json:"overbookingUsed,omitempty"`
	Pricing         PricingResponse `json:"pricing"`
	SpotsRemaining  int             `json:"spotsRemaining"`
	CreatedAt       string          `json:"createdAt"`
}

// CapacityConflictResponse тело 409 при отказе по вместимости
type CapacityConflictResponse struct {
	Error          string `json:"error"`
	AvailableSpots int    `json:"availableSpots"`
	WaitlistOpen   bool   `json:"waitlistOpen,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *reserveSpot.Request {
	return &reserveSpot.Request{
		TenantID:         r.TenantID,
		ProductID:        r.ProductID,
		ScheduleID:       r.ScheduleID,
		MemberID:         userID,
		ParticipantCount: r.ParticipantCount,
		PayingOnline:     r.PayingOnline,
		Location:         r.Location,
		Notes:            r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSpot.Response) *BookingResponse {
	pricing := PricingResponse{
		UnitPrice:      resp.Pricing.UnitPrice,
		Subtotal:       resp.Pricing.Subtotal,
		DiscountAmount: resp.Pricing.DiscountAmount,
		TaxableAmount:  resp.Pricing.TaxableAmount,
		TaxAmount:      resp.Pricing.TaxAmount,
		TaxExempt:      resp.Pricing.Tax.Exempt,
		TotalAmount:    resp.Pricing.TotalAmount,
		DepositDue:     resp.Pricing.DepositDue,
		BalanceDue:     resp.Pricing.BalanceDue,
	}
	for _, d := range resp.Pricing.Discounts {
		pricing.Discounts = append(pricing.Discounts, DiscountResponse{
			Code:    d.Code,
			Percent: d.Percent,
			Amount:  d.Amount,
		})
	}
	if resp.Pricing.PaymentDueDate != nil {
		pricing.PaymentDueDate = ptr.Ptr(resp.Pricing.PaymentDueDate.Format(domain.DateFormat))
	}

	return &BookingResponse{
		ID:              resp.BookingID,
		Reference:       resp.Reference,
		Status:          string(resp.Status),
		PaymentStatus:   string(resp.PaymentStatus),
		OverbookingUsed: resp.OverbookingUsed,
		Pricing:         pricing,
		SpotsRemaining:  resp.SpotsRemaining,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
