// Package tax вычисляет налог для денежной суммы по правилам юрисдикции
// и освобождений. Чистая функция без I/O: все входные данные передаются явно.
package tax

import (
	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/money"
)

// Calculator калькулятор налогов
type Calculator struct{}

// NewCalculator создает калькулятор налогов
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute вычисляет налог для суммы.
//
// Порядок разрешения:
//  1. Освобождения: product-level флаг > явная запись TaxExemption > нет освобождения.
//     Любое освобождение коротко замыкает расчёт: taxAmount = 0, exempt = true.
//  2. Ставка: самая специфичная подходящая TaxRate, иначе скалярный fallback тенанта.
//  3. Inclusive (налог уже в цене): налог извлекается из gross-суммы,
//     netAmount = amount - tax, grossAmount = amount.
//     Exclusive: налог добавляется, netAmount = amount, grossAmount = amount + tax.
//
// Округление до 2 знаков (half-up) применяется ровно один раз - при вычислении
// taxAmount. Остальные компоненты выводятся из него вычитанием/сложением,
// чтобы не накапливать дрейф в центах.
func (c *Calculator) Compute(in Input) Result {
	if exempt, reason := c.resolveExemption(in); exempt {
		return Result{
			TaxAmount:   0,
			NetAmount:   in.Amount,
			GrossAmount: in.Amount,
			Exempt:      true,
			Reason:      reason,
		}
	}

	rate, inclusive, fixed := c.resolveRate(in)

	var taxAmount float64
	switch {
	case fixed:
		taxAmount = money.Round2(rate)
	case inclusive:
		// Извлекаем налог из суммы, уже содержащей его
		taxAmount = money.Round2(in.Amount - in.Amount/(1+rate/100))
	default:
		taxAmount = money.Round2(in.Amount * rate / 100)
	}

	if inclusive {
		return Result{
			TaxAmount:   taxAmount,
			NetAmount:   in.Amount - taxAmount,
			GrossAmount: in.Amount,
			RateApplied: rate,
			Inclusive:   true,
		}
	}

	return Result{
		TaxAmount:   taxAmount,
		NetAmount:   in.Amount,
		GrossAmount: in.Amount + taxAmount,
		RateApplied: rate,
	}
}

// resolveExemption проверяет освобождения в порядке приоритета
func (c *Calculator) resolveExemption(in Input) (bool, string) {
	if in.ProductTaxExempt {
		return true, ReasonProductExempt
	}
	for _, e := range in.Exemptions {
		if e.AppliesTo(in.ProductID, in.MemberID) {
			reason := e.Reason
			if reason == "" {
				reason = ReasonExemptionRecord
			}
			return true, reason
		}
	}
	return false, ""
}

// resolveRate выбирает самую специфичную подходящую ставку.
// Возвращает (ставка, inclusive-режим, фиксированная ли сумма).
func (c *Calculator) resolveRate(in Input) (rate float64, inclusive, fixed bool) {
	var best *domain.TaxRate
	for i := range in.Rates {
		r := &in.Rates[i]
		if !r.Matches(in.ProductType, in.Location) {
			continue
		}
		if best == nil || r.Specificity() > best.Specificity() {
			best = r
		}
	}

	if best == nil {
		// Fallback на скалярную ставку тенанта
		return in.FallbackRate, in.PricesIncludeTax, false
	}

	return best.Rate, best.IncludedInPrice || in.PricesIncludeTax, best.Kind == domain.TaxRateFixed
}
