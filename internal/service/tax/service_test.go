package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
)

func TestCompute_ExclusiveRate(t *testing.T) {
	calc := NewCalculator()

	result := calc.Compute(Input{
		Amount:       100,
		FallbackRate: 10,
	})

	assert.InDelta(t, 10.0, result.TaxAmount, 0.001)
	assert.InDelta(t, 100.0, result.NetAmount, 0.001)
	assert.InDelta(t, 110.0, result.GrossAmount, 0.001)
	assert.False(t, result.Inclusive)
	assert.False(t, result.Exempt)
}

func TestCompute_InclusiveRate(t *testing.T) {
	calc := NewCalculator()

	// 110 с включённым налогом 10%: налог = 110 - 110/1.1 = 10
	result := calc.Compute(Input{
		Amount:           110,
		FallbackRate:     10,
		PricesIncludeTax: true,
	})

	assert.InDelta(t, 10.0, result.TaxAmount, 0.001)
	assert.InDelta(t, 100.0, result.NetAmount, 0.001)
	assert.InDelta(t, 110.0, result.GrossAmount, 0.001)
	assert.True(t, result.Inclusive)
}

func TestCompute_ProductExempt(t *testing.T) {
	calc := NewCalculator()

	result := calc.Compute(Input{
		Amount:           200,
		ProductTaxExempt: true,
		FallbackRate:     21,
	})

	assert.True(t, result.Exempt)
	assert.Equal(t, ReasonProductExempt, result.Reason)
	assert.Zero(t, result.TaxAmount)
	assert.InDelta(t, 200.0, result.NetAmount, 0.001)
	assert.InDelta(t, 200.0, result.GrossAmount, 0.001)
}

func TestCompute_ExemptionRecord(t *testing.T) {
	calc := NewCalculator()
	memberID := int64(77)

	result := calc.Compute(Input{
		Amount:       150,
		ProductID:    5,
		MemberID:     77,
		FallbackRate: 19,
		Exemptions: []domain.TaxExemption{
			{MemberID: &memberID, Reason: "reseller"},
		},
	})

	assert.True(t, result.Exempt)
	assert.Equal(t, "reseller", result.Reason)
	assert.Zero(t, result.TaxAmount)
}

func TestCompute_ExemptionRecordForOtherMember(t *testing.T) {
	calc := NewCalculator()
	otherMember := int64(99)

	result := calc.Compute(Input{
		Amount:       150,
		ProductID:    5,
		MemberID:     77,
		FallbackRate: 10,
		Exemptions: []domain.TaxExemption{
			{MemberID: &otherMember, Reason: "reseller"},
		},
	})

	assert.False(t, result.Exempt)
	assert.InDelta(t, 15.0, result.TaxAmount, 0.001)
}

func TestCompute_MostSpecificRateWins(t *testing.T) {
	calc := NewCalculator()

	rates := []domain.TaxRate{
		{Rate: 20, Kind: domain.TaxRatePercentage},                                               // общая
		{Rate: 10, Kind: domain.TaxRatePercentage, AppliesToType: "course"},                      // по типу
		{Rate: 5, Kind: domain.TaxRatePercentage, AppliesToType: "course", Location: "Tenerife"}, // тип + локация
	}

	result := calc.Compute(Input{
		Amount:      100,
		ProductType: "course",
		Location:    "Tenerife",
		Rates:       rates,
	})

	assert.InDelta(t, 5.0, result.RateApplied, 0.001)
	assert.InDelta(t, 5.0, result.TaxAmount, 0.001)
}

func TestCompute_RateDoesNotMatchFallsBack(t *testing.T) {
	calc := NewCalculator()

	result := calc.Compute(Input{
		Amount:       100,
		ProductType:  "rental",
		FallbackRate: 7,
		Rates: []domain.TaxRate{
			{Rate: 21, Kind: domain.TaxRatePercentage, AppliesToType: "course"},
		},
	})

	assert.InDelta(t, 7.0, result.RateApplied, 0.001)
	assert.InDelta(t, 7.0, result.TaxAmount, 0.001)
}

func TestCompute_FixedRate(t *testing.T) {
	calc := NewCalculator()

	result := calc.Compute(Input{
		Amount: 250,
		Rates: []domain.TaxRate{
			{Rate: 3.5, Kind: domain.TaxRateFixed},
		},
	})

	assert.InDelta(t, 3.50, result.TaxAmount, 0.001)
	assert.InDelta(t, 253.50, result.GrossAmount, 0.001)
}

func TestCompute_ZeroAmount(t *testing.T) {
	calc := NewCalculator()

	result := calc.Compute(Input{
		Amount:       0,
		FallbackRate: 21,
	})

	assert.Zero(t, result.TaxAmount)
	assert.Zero(t, result.GrossAmount)
}

func TestCompute_RoundingHalfUp(t *testing.T) {
	calc := NewCalculator()

	// 33.33 * 7.5% = 2.49975 -> 2.50
	result := calc.Compute(Input{
		Amount:       33.33,
		FallbackRate: 7.5,
	})

	assert.InDelta(t, 2.50, result.TaxAmount, 0.0001)
	assert.InDelta(t, 35.83, result.GrossAmount, 0.0001)
}
