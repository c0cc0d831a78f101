// Package refund вычисляет суммы возвратов, штрафов за неявку и сборов
// за перенос по ступенчатой политике отмены. Чистые вычисления без I/O.
package refund

import (
	"fmt"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/money"
)

// Engine движок расчёта возвратов
type Engine struct{}

// NewEngine создает движок расчёта возвратов
func NewEngine() *Engine {
	return &Engine{}
}

// CalculateRefund вычисляет сумму возврата при отмене брони.
//
// Погодная отмена коротко замыкает: если политика разрешает погодные отмены,
// применяется weather_refund_percent независимо от ступеней тайминга.
//
// Иначе часы до активности (не меньше 0) сравниваются со ступенями политики
// в порядке убывания hours_before: применяется первая ступень, чей порог
// не превышает оставшиеся часы. Если ни одна не подошла - возврат 0%.
//
// Некорректная политика (неотсортированная лестница, проценты вне диапазона) -
// ошибка конфигурации: возвращается ошибка, ничего не исправляется молча.
func (e *Engine) CalculateRefund(in Input) (Result, error) {
	if in.AmountPaid < 0 {
		return Result{}, fmt.Errorf("%w: %.2f", ErrNegativeAmountPaid, in.AmountPaid)
	}

	policy := in.Policy
	if policy == nil {
		policy = domain.DefaultFallbackPolicy()
	}
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	// Погодная отмена - особый случай, тайминг не важен
	if in.IsWeatherCancellation && policy.WeatherCancellationAllowed {
		percent := policy.WeatherRefundPercent
		refundAmount := money.Percent(in.AmountPaid, percent)
		return Result{
			RefundAmount:   refundAmount,
			RefundPercent:  percent,
			FeeAmount:      in.AmountPaid - refundAmount,
			WeatherApplied: true,
		}, nil
	}

	hoursUntil := in.ActivityDateTime.Sub(in.CancellationTime).Hours()
	if hoursUntil < 0 {
		hoursUntil = 0
	}

	percent := 0.0
	var tierApplied *domain.RefundTier
	for i := range policy.Tiers {
		if float64(policy.Tiers[i].HoursBefore) <= hoursUntil {
			tierApplied = &policy.Tiers[i]
			percent = policy.Tiers[i].RefundPercent
			break
		}
	}

	refundAmount := money.Percent(in.AmountPaid, percent)
	return Result{
		RefundAmount:  refundAmount,
		RefundPercent: percent,
		FeeAmount:     in.AmountPaid - refundAmount,
		TierApplied:   tierApplied,
	}, nil
}

// CalculateNoShowPenalty вычисляет штраф за неявку.
// Ступени тайминга игнорируются полностью: применяется no_show_fee_percent
// (по умолчанию 100). Арифметика симметрична расчёту возврата.
func (e *Engine) CalculateNoShowPenalty(amountPaid float64, policy *domain.CancellationPolicy) (NoShowResult, error) {
	if amountPaid < 0 {
		return NoShowResult{}, fmt.Errorf("%w: %.2f", ErrNegativeAmountPaid, amountPaid)
	}

	feePercent := domain.DefaultNoShowFeePercent
	if policy != nil {
		if err := policy.Validate(); err != nil {
			return NoShowResult{}, err
		}
		feePercent = policy.NoShowFeePercent
	}

	feeAmount := money.Percent(amountPaid, feePercent)
	return NoShowResult{
		FeePercent:   feePercent,
		FeeAmount:    feeAmount,
		RefundAmount: amountPaid - feeAmount,
	}, nil
}

// RescheduleOption возвращает условия переноса брони, если политика его
// разрешает, иначе nil. Сбор считается от полной стоимости брони, а не от
// оплаченной суммы.
func (e *Engine) RescheduleOption(totalAmount float64, policy *domain.CancellationPolicy) *RescheduleOption {
	if policy == nil || !policy.AllowReschedule {
		return nil
	}
	return &RescheduleOption{
		FeePercent: policy.RescheduleFeePercent,
		FeeAmount:  money.Percent(totalAmount, policy.RescheduleFeePercent),
	}
}

// ValidateRefundAmount проверяет, что запрошенная сумма возврата не превышает
// фактически оплаченную. Вызывается до любого изменения состояния брони.
func (e *Engine) ValidateRefundAmount(booking *domain.Booking, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidAmount, amount)
	}
	refundable := booking.RefundableAmount()
	if amount > refundable {
		return fmt.Errorf("%w: requested %.2f, refundable %.2f", ErrRefundExceedsPaid, amount, refundable)
	}
	return nil
}

// ResolvePolicy выбирает действующую политику отмены в порядке приоритета:
// переопределение на брони > политика продукта > дефолт тенанта.
// Если все nil, вернётся nil - движок применит фолбэк-лестницу.
func ResolvePolicy(bookingOverride, productPolicy, tenantDefault *domain.CancellationPolicy) *domain.CancellationPolicy {
	if bookingOverride != nil {
		return bookingOverride
	}
	if productPolicy != nil {
		return productPolicy
	}
	return tenantDefault
}
