package tax

import "github.com/m04kA/SMC-ActivityBookingService/internal/domain"

// Input входные данные расчёта налога.
// Amount - это уже дисконтированный subtotal: налог всегда считается
// от суммы после скидок, никогда от цены до скидок.
type Input struct {
	Amount float64

	ProductID        int64
	MemberID         int64
	ProductType      string
	Location         string
	ProductTaxExempt bool

	// Кандидаты-ставки тенанта; выбирается самая специфичная подходящая
	Rates []domain.TaxRate

	// Явные записи освобождения (product-level или member-level)
	Exemptions []domain.TaxExemption

	// Скалярный fallback тенанта на случай отсутствия подходящей TaxRate
	FallbackRate     float64
	PricesIncludeTax bool
}

// Result результат расчёта налога
type Result struct {
	TaxAmount   float64
	NetAmount   float64
	GrossAmount float64
	RateApplied float64
	Inclusive   bool
	Exempt      bool
	Reason      string // Машиночитаемая причина освобождения ("" если налог начислен)
}

// Exemption reason codes
const (
	ReasonProductExempt   = "product_tax_exempt"
	ReasonExemptionRecord = "exemption_record"
)
