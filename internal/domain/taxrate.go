package domain

import "time"

// TaxRateKind способ вычисления налога
type TaxRateKind string

const (
	TaxRatePercentage TaxRateKind = "percentage"
	TaxRateFixed      TaxRateKind = "fixed" // Фиксированная сумма за позицию
)

// TaxRate налоговая ставка тенанта.
// Разрешение "самой специфичной" ставки: (location + product type) >
// (product type) > (location) > общая ставка тенанта > скалярный fallback Tenant.TaxRate.
type TaxRate struct {
	ID              int64
	TenantID        int64
	Name            string
	Kind            TaxRateKind
	Rate            float64 // Процент для percentage, сумма для fixed
	IncludedInPrice bool
	AppliesToType   string // Тип продукта ("" = любой)
	Location        string // Локация ("" = любая)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Matches returns true if the rate is applicable to the product type and location
func (r *TaxRate) Matches(productType, location string) bool {
	if r.AppliesToType != "" && r.AppliesToType != productType {
		return false
	}
	if r.Location != "" && r.Location != location {
		return false
	}
	return true
}

// Specificity возвращает вес специфичности ставки для выбора наиболее подходящей
func (r *TaxRate) Specificity() int {
	score := 0
	if r.AppliesToType != "" {
		score += 2
	}
	if r.Location != "" {
		score++
	}
	return score
}

// TaxExemption явная запись об освобождении от налога для продукта или участника
type TaxExemption struct {
	ID        int64
	TenantID  int64
	ProductID *int64
	MemberID  *int64
	Reason    string // Машиночитаемый код причины ("reseller", "minor", "non_profit")

	CreatedAt time.Time
}

// AppliesTo returns true if the exemption covers the given product or member
func (e *TaxExemption) AppliesTo(productID, memberID int64) bool {
	if e.ProductID != nil && *e.ProductID == productID {
		return true
	}
	if e.MemberID != nil && *e.MemberID == memberID {
		return true
	}
	return false
}
