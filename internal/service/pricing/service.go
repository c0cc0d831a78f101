// Package pricing собирает итоговую цену брони: базовая цена, скидки,
// депозитная схема и налог через калькулятор налогов. Чистые вычисления.
package pricing

import (
	"fmt"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/tax"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/money"
)

// TaxCalculator интерфейс калькулятора налогов
type TaxCalculator interface {
	Compute(in tax.Input) tax.Result
}

// Composer композер цены
type Composer struct {
	tax TaxCalculator
}

// NewComposer создает композер цены
func NewComposer(taxCalc TaxCalculator) *Composer {
	return &Composer{tax: taxCalc}
}

// Compute вычисляет полную раскладку цены брони.
//
// Порядок: базовая цена (переопределение расписания > цена продукта) ->
// subtotal за всех участников -> скидки (каждая считается от subtotal) ->
// налог от дисконтированной суммы -> итог -> депозитная схема.
func (c *Composer) Compute(in Input) (*Breakdown, error) {
	if in.Tenant == nil {
		return nil, ErrMissingTenant
	}
	if in.Product == nil {
		return nil, ErrMissingProduct
	}
	if in.ParticipantCount < domain.MinParticipantsPerBooking || in.ParticipantCount > domain.MaxParticipantsPerBooking {
		return nil, fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidParticipantCount,
			in.ParticipantCount, domain.MinParticipantsPerBooking, domain.MaxParticipantsPerBooking)
	}

	unitPrice := in.Product.PriceFor(in.Schedule)
	subtotal := money.Round2(unitPrice * float64(in.ParticipantCount))

	discounts := c.applyDiscounts(in, subtotal)
	discountAmount := 0.0
	for _, d := range discounts {
		discountAmount += d.Amount
	}
	// Скидки не могут опустить сумму ниже нуля
	if discountAmount > subtotal {
		discountAmount = subtotal
	}

	taxable := money.Round2(subtotal - discountAmount)

	taxResult := c.tax.Compute(tax.Input{
		Amount:           taxable,
		ProductID:        in.Product.ID,
		MemberID:         in.MemberID,
		ProductType:      in.Product.Type,
		Location:         in.Location,
		ProductTaxExempt: in.Product.TaxExempt,
		Rates:            in.TaxRates,
		Exemptions:       in.Exemptions,
		FallbackRate:     in.Tenant.TaxRate,
		PricesIncludeTax: in.Tenant.PricesIncludeTax,
	})

	breakdown := &Breakdown{
		UnitPrice:        unitPrice,
		ParticipantCount: in.ParticipantCount,
		Subtotal:         subtotal,
		Discounts:        discounts,
		DiscountAmount:   discountAmount,
		TaxableAmount:    taxable,
		Tax:              taxResult,
		TaxAmount:        taxResult.TaxAmount,
		TotalAmount:      taxResult.GrossAmount,
	}

	c.applyDepositSchedule(in, breakdown)

	return breakdown, nil
}

// applyDiscounts вычисляет применимые скидки. Каждая скидка считается
// от полного subtotal (скидки не компаундятся друг на друга).
func (c *Composer) applyDiscounts(in Input, subtotal float64) []DiscountLine {
	discounts := make([]DiscountLine, 0, 2)

	if in.PayingOnline && in.Tenant.OnlinePaymentDiscountPercent > 0 {
		discounts = append(discounts, DiscountLine{
			Code:    DiscountOnlinePayment,
			Percent: in.Tenant.OnlinePaymentDiscountPercent,
			Amount:  money.Percent(subtotal, in.Tenant.OnlinePaymentDiscountPercent),
		})
	}

	if in.Tenant.EarlyBirdDiscountPercent > 0 && in.Tenant.EarlyBirdDays > 0 && in.Schedule != nil {
		activityAt, err := in.Schedule.ActivityDateTime()
		if err == nil {
			daysUntil := activityAt.Sub(in.Now).Hours() / 24
			if daysUntil >= float64(in.Tenant.EarlyBirdDays) {
				discounts = append(discounts, DiscountLine{
					Code:    DiscountEarlyBird,
					Percent: in.Tenant.EarlyBirdDiscountPercent,
					Amount:  money.Percent(subtotal, in.Tenant.EarlyBirdDiscountPercent),
				})
			}
		}
	}

	return discounts
}

// applyDepositSchedule делит итог на депозит и остаток, если тенант работает
// по депозитной схеме и до активности ещё достаточно времени. Иначе вся
// сумма подлежит оплате сразу.
func (c *Composer) applyDepositSchedule(in Input, b *Breakdown) {
	b.BalanceDue = b.TotalAmount

	if in.Tenant.DepositPercent <= 0 || in.Schedule == nil {
		return
	}

	activityAt, err := in.Schedule.ActivityDateTime()
	if err != nil {
		return
	}

	dueDate := activityAt.AddDate(0, 0, -in.Tenant.DepositDueDaysBefore)
	if !dueDate.After(in.Now) {
		// Активность слишком близко - депозитная схема не имеет смысла
		return
	}

	b.DepositDue = money.Percent(b.TotalAmount, in.Tenant.DepositPercent)
	b.BalanceDue = money.Round2(b.TotalAmount - b.DepositDue)
	b.PaymentDueDate = &dueDate
}
