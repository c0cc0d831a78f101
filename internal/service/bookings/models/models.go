package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/refund"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`

	// Погодная отмена: доступна только персоналу тенанта
	WeatherCancellation bool `json:"weatherCancellation,omitempty"`
}

// MarkNoShowRequest запрос на пометку брони как неявки (только персонал)
type MarkNoShowRequest struct {
	UserID int64 `json:"userId"`
}

// GetUserBookingsRequest запрос на получение бронирований участника
type GetUserBookingsRequest struct {
	MemberID int64   `json:"memberId"`
	TenantID *int64  `json:"tenantId,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// RefundPreviewRequest запрос предварительного расчёта возврата
type RefundPreviewRequest struct {
	UserID              int64 `json:"userId"`
	WeatherCancellation bool  `json:"weatherCancellation,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID               int64  `json:"id"`
	Reference        string `json:"reference"`
	TenantID         int64  `json:"tenantId"`
	ScheduleID       int64  `json:"scheduleId"`
	ProductID        int64  `json:"productId"`
	MemberID         int64  `json:"memberId"`
	ParticipantCount int    `json:"participantCount"`
	Status           string `json:"status"`
	PaymentStatus    string `json:"paymentStatus"`
	OverbookingUsed  bool   `json:"overbookingUsed,omitempty"`

	// Снимок цены на момент admission
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	TotalAmount    float64 `json:"totalAmount"`
	AmountPaid     float64 `json:"amountPaid"`
	BalanceDue     float64 `json:"balanceDue"`
	PaymentDueDate *string `json:"paymentDueDate,omitempty"` // YYYY-MM-DD

	CancellationReason *string  `json:"cancellationReason,omitempty"`
	CancelledAt        *string  `json:"cancelledAt,omitempty"` // ISO 8601 format
	RefundAmount       *float64 `json:"refundAmount,omitempty"`
	RefundPercent      *float64 `json:"refundPercent,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancellationResponse результат отмены бронирования
type CancellationResponse struct {
	BookingID      int64   `json:"bookingId"`
	Status         string  `json:"status"`
	PaymentStatus  string  `json:"paymentStatus"`
	RefundAmount   float64 `json:"refundAmount"`
	RefundPercent  float64 `json:"refundPercent"`
	FeeAmount      float64 `json:"feeAmount"`
	WeatherApplied bool    `json:"weatherApplied,omitempty"`
}

// NoShowResponse результат пометки брони как неявки
type NoShowResponse struct {
	BookingID     int64   `json:"bookingId"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	FeePercent    float64 `json:"feePercent"`
	FeeAmount     float64 `json:"feeAmount"`
	RefundAmount  float64 `json:"refundAmount"`
}

// RescheduleOptionResponse альтернатива возврату: перенос за фиксированный процент
type RescheduleOptionResponse struct {
	FeePercent float64 `json:"feePercent"`
	FeeAmount  float64 `json:"feeAmount"`
}

// RefundPreviewResponse предварительный расчёт возврата без изменения брони
type RefundPreviewResponse struct {
	BookingID      int64   `json:"bookingId"`
	AmountPaid     float64 `json:"amountPaid"`
	RefundAmount   float64 `json:"refundAmount"`
	RefundPercent  float64 `json:"refundPercent"`
	FeeAmount      float64 `json:"feeAmount"`
	WeatherApplied bool    `json:"weatherApplied,omitempty"`

	// Порог применённой ступени лестницы в часах; nil, если ступень не применялась
	TierHoursBefore *int `json:"tierHoursBefore,omitempty"`

	Reschedule *RescheduleOptionResponse `json:"reschedule,omitempty"`
}

// Методы конвертации

// ToDomainBookingStatus конвертирует строковый статус в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCheckedIn,
		domain.StatusInProgress, domain.StatusCompleted, domain.StatusNoShow, domain.StatusCancelled:
		return domain.BookingStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetUserBookingsRequest) ToDomainFilter() (domain.UserBookingsFilter, error) {
	filter := domain.UserBookingsFilter{
		MemberID: r.MemberID,
		TenantID: r.TenantID,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:               b.ID,
		Reference:        b.Reference,
		TenantID:         b.TenantID,
		ScheduleID:       b.ScheduleID,
		ProductID:        b.ProductID,
		MemberID:         b.MemberID,
		ParticipantCount: b.ParticipantCount,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		OverbookingUsed:  b.OverbookingUsed,
		Subtotal:         b.Subtotal,
		DiscountAmount:   b.DiscountAmount,
		TaxAmount:        b.TaxAmount,
		TotalAmount:      b.TotalAmount,
		AmountPaid:       b.AmountPaid,
		BalanceDue:       b.BalanceDue,
		RefundAmount:     b.RefundAmount,
		RefundPercent:    b.RefundPercent,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}

	if b.PaymentDueDate != nil {
		due := b.PaymentDueDate.Format(domain.DateFormat)
		resp.PaymentDueDate = &due
	}
	if b.CancellationReason != nil {
		resp.CancellationReason = b.CancellationReason
	}
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromRefundResult конвертирует расчёт возврата в preview DTO
func FromRefundResult(bookingID int64, amountPaid float64, res refund.Result, reschedule *refund.RescheduleOption) *RefundPreviewResponse {
	resp := &RefundPreviewResponse{
		BookingID:      bookingID,
		AmountPaid:     amountPaid,
		RefundAmount:   res.RefundAmount,
		RefundPercent:  res.RefundPercent,
		FeeAmount:      res.FeeAmount,
		WeatherApplied: res.WeatherApplied,
	}
	if res.TierApplied != nil {
		hours := res.TierApplied.HoursBefore
		resp.TierHoursBefore = &hours
	}
	if reschedule != nil {
		resp.Reschedule = &RescheduleOptionResponse{
			FeePercent: reschedule.FeePercent,
			FeeAmount:  reschedule.FeeAmount,
		}
	}
	return resp
}
