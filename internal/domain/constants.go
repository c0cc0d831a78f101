package domain

import "github.com/m04kA/SMC-ActivityBookingService/pkg/types"

// Default tenant configuration values
const (
	DefaultBookingCutoffHours    = 24
	DefaultMaxAdvanceBookingDays = 90
	DefaultHighValueThreshold    = 500.0
	DefaultNoShowFeePercent      = 100.0
	DefaultWeatherRefundPercent  = 100.0
)

// DefaultSameDayCutoffTime после этого времени бронирование на текущий день закрыто
const DefaultSameDayCutoffTime = types.TimeString("18:00")

// Business validation constants
const (
	MinParticipantsPerBooking = 1
	MaxParticipantsPerBooking = 50

	// Неблокирующее предупреждение "бронь близко к началу активности"
	ShortNoticeWarningHours = 48

	// Аккаунт моложе суток - бронь уходит на ручное подтверждение
	NewAccountReviewAgeHours = 24

	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы броней, не занимающих вместимость расписания.
// Используется при авторитетном пересчёте занятых мест в admission.
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}

// CancellableStatuses статусы, из которых бронь разрешено отменить.
// Дублируется в предикате UPDATE при отмене: переход проверяется
// повторно на стороне БД, чтобы гонка двух отмен не прошла дважды.
var CancellableStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// NoShowEligibleStatuses статусы, из которых бронь можно пометить неявкой
var NoShowEligibleStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
}

// ActiveStatuses статусы броней, занимающих вместимость
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusInProgress,
	StatusCompleted,
}
