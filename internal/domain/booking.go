package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusNoShow     BookingStatus = "no_show"
	StatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentDepositPaid   PaymentStatus = "deposit_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentPartialRefund PaymentStatus = "partially_refunded"
)

// Booking represents one reservation against a schedule
type Booking struct {
	ID               int64
	Reference        string // Публичный UUID-код брони (для ссылок наружу вместо int64 ID)
	TenantID         int64
	ScheduleID       int64
	ProductID        int64
	MemberID         int64
	ParticipantCount int
	Status           BookingStatus
	PaymentStatus    PaymentStatus
	OverbookingUsed  bool

	// Снимок цены на момент admission - после создания брони не пересчитывается
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64
	AmountPaid     float64
	BalanceDue     float64
	PaymentDueDate *time.Time

	// Снимок результата отмены / no-show
	CancellationReason *string
	CancelledAt        *time.Time
	RefundAmount       *float64
	RefundPercent      *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountsTowardCapacity returns true if the booking occupies schedule capacity.
// Отменённые и no-show брони места не занимают.
func (b *Booking) CountsTowardCapacity() bool {
	return b.Status != StatusCancelled && b.Status != StatusNoShow
}

// IsTerminal returns true if the booking is in a terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusNoShow || b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return statusIn(b.Status, CancellableStatuses)
}

// CanBeMarkedNoShow returns true if the booking can be marked as a no-show
func (b *Booking) CanBeMarkedNoShow() bool {
	return statusIn(b.Status, NoShowEligibleStatuses)
}

func statusIn(status BookingStatus, allowed []BookingStatus) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// RefundableAmount возвращает максимальную сумму, доступную к возврату.
// Возврат никогда не может превышать фактически оплаченную сумму.
func (b *Booking) RefundableAmount() float64 {
	if b.AmountPaid < 0 {
		return 0
	}
	return b.AmountPaid
}

// UserBookingsFilter фильтр для получения бронирований участника
type UserBookingsFilter struct {
	MemberID int64
	TenantID *int64
	Status   *BookingStatus
}
