package domain

import "github.com/m04kA/SMC-ActivityBookingService/pkg/types"

// Tenant represents an activity operator and its booking configuration.
// Настройки передаются в ядро явным параметром - никакого "текущего тенанта"
// в глобальном состоянии, чтобы ядро оставалось чистым и тестируемым.
type Tenant struct {
	ID   int64
	Name string

	// Правила тайминга бронирования
	BookingCutoffHours    int              // Минимум часов до начала активности
	MaxAdvanceBookingDays int              // Максимум дней вперёд
	SameDayCutoffTime     types.TimeString // После этого времени бронь на сегодня закрыта

	// Налоги (fallback, если нет подходящей записи TaxRate)
	TaxRate          float64
	PricesIncludeTax bool

	// Скидки
	OnlinePaymentDiscountPercent float64
	EarlyBirdDiscountPercent     float64
	EarlyBirdDays                int // Скидка действует при брони не позже чем за N дней

	// Депозит
	DepositPercent       float64 // 0 = депозиты не используются, оплата сразу полная
	DepositDueDaysBefore int     // Остаток должен быть оплачен за N дней до активности

	// Overbooking
	AllowOverbooking        bool
	OverbookingLimitPercent int

	WaitlistEnabled bool

	// Ручное подтверждение дорогих броней персоналом
	HighValueThreshold float64

	// Политика отмены по умолчанию (разрешение политик - забота вызывающего,
	// порядок: booking override > product policy > tenant default)
	DefaultCancellationPolicy *CancellationPolicy
}

// EffectiveCutoffHours возвращает отсечку в часах с учётом дефолта
func (t *Tenant) EffectiveCutoffHours() int {
	if t.BookingCutoffHours <= 0 {
		return DefaultBookingCutoffHours
	}
	return t.BookingCutoffHours
}

// EffectiveMaxAdvanceDays возвращает максимум дней вперёд с учётом дефолта
func (t *Tenant) EffectiveMaxAdvanceDays() int {
	if t.MaxAdvanceBookingDays <= 0 {
		return DefaultMaxAdvanceBookingDays
	}
	return t.MaxAdvanceBookingDays
}

// EffectiveSameDayCutoff возвращает дневную отсечку с учётом дефолта
func (t *Tenant) EffectiveSameDayCutoff() types.TimeString {
	if t.SameDayCutoffTime.IsZero() {
		return DefaultSameDayCutoffTime
	}
	return t.SameDayCutoffTime
}

// EffectiveHighValueThreshold возвращает порог дорогой брони с учётом дефолта
func (t *Tenant) EffectiveHighValueThreshold() float64 {
	if t.HighValueThreshold <= 0 {
		return DefaultHighValueThreshold
	}
	return t.HighValueThreshold
}
