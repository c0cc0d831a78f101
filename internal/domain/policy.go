package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy возвращается при некорректно сконфигурированной политике отмены.
// Это ошибка конфигурации, а не бизнес-исход: движок возвратов падает громко,
// молчаливое исправление лестницы скрыло бы финансовую ошибку.
var ErrInvalidPolicy = errors.New("domain: invalid cancellation policy")

// RefundTier одна ступень лестницы возвратов:
// при отмене не позже чем за HoursBefore часов возвращается RefundPercent процентов
type RefundTier struct {
	HoursBefore   int
	RefundPercent float64
}

// CancellationPolicy описывает тарифную сетку возвратов при отмене,
// штраф за no-show и условия переноса
type CancellationPolicy struct {
	ID       int64
	TenantID int64
	Name     string

	// Tiers отсортированы по убыванию HoursBefore; выбирается первая ступень,
	// у которой HoursBefore <= часов до активности
	Tiers []RefundTier

	NoShowFeePercent float64

	WeatherCancellationAllowed bool
	WeatherRefundPercent       float64

	AllowReschedule      bool
	RescheduleFeePercent float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты лестницы возвратов:
// ступени строго убывают по HoursBefore (без дублей и нарушений порядка),
// проценты в диапазоне [0, 100], пороги неотрицательны
func (p *CancellationPolicy) Validate() error {
	for i, tier := range p.Tiers {
		if tier.HoursBefore < 0 {
			return fmt.Errorf("%w: tier %d has negative hours_before", ErrInvalidPolicy, i)
		}
		if tier.RefundPercent < 0 || tier.RefundPercent > 100 {
			return fmt.Errorf("%w: tier %d refund_percent %.2f out of range [0, 100]", ErrInvalidPolicy, i, tier.RefundPercent)
		}
		if i > 0 && tier.HoursBefore >= p.Tiers[i-1].HoursBefore {
			return fmt.Errorf("%w: tiers must be sorted strictly descending by hours_before (tier %d)", ErrInvalidPolicy, i)
		}
	}
	if p.NoShowFeePercent < 0 || p.NoShowFeePercent > 100 {
		return fmt.Errorf("%w: no_show_fee_percent %.2f out of range [0, 100]", ErrInvalidPolicy, p.NoShowFeePercent)
	}
	if p.WeatherRefundPercent < 0 || p.WeatherRefundPercent > 100 {
		return fmt.Errorf("%w: weather_refund_percent %.2f out of range [0, 100]", ErrInvalidPolicy, p.WeatherRefundPercent)
	}
	if p.RescheduleFeePercent < 0 || p.RescheduleFeePercent > 100 {
		return fmt.Errorf("%w: reschedule_fee_percent %.2f out of range [0, 100]", ErrInvalidPolicy, p.RescheduleFeePercent)
	}
	return nil
}

// DefaultFallbackPolicy политика, применяемая когда у тенанта нет ни одной
// настроенной политики отмены: >=48ч - 100%, >=24ч - 50%, иначе 0%
func DefaultFallbackPolicy() *CancellationPolicy {
	return &CancellationPolicy{
		Name: "default",
		Tiers: []RefundTier{
			{HoursBefore: 48, RefundPercent: 100},
			{HoursBefore: 24, RefundPercent: 50},
		},
		NoShowFeePercent:           DefaultNoShowFeePercent,
		WeatherCancellationAllowed: true,
		WeatherRefundPercent:       DefaultWeatherRefundPercent,
	}
}
