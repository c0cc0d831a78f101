package refund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
)

func testPolicy() *domain.CancellationPolicy {
	return &domain.CancellationPolicy{
		Tiers: []domain.RefundTier{
			{HoursBefore: 72, RefundPercent: 100},
			{HoursBefore: 48, RefundPercent: 75},
			{HoursBefore: 24, RefundPercent: 25},
		},
		NoShowFeePercent:           100,
		WeatherCancellationAllowed: true,
		WeatherRefundPercent:       100,
		AllowReschedule:            true,
		RescheduleFeePercent:       10,
	}
}

func TestCalculateRefund_TierLadder(t *testing.T) {
	engine := NewEngine()
	activityAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		hoursBefore     float64
		expectedPercent float64
		expectedRefund  float64
	}{
		{"well before first tier", 100, 100, 200},
		{"exactly on first tier", 72, 100, 200},
		{"between first and second", 60, 75, 150},
		{"between second and third", 30, 25, 50},
		{"below last tier", 10, 0, 0},
		{"after activity started", -5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.CalculateRefund(Input{
				AmountPaid:       200,
				ActivityDateTime: activityAt,
				CancellationTime: activityAt.Add(-time.Duration(tt.hoursBefore * float64(time.Hour))),
				Policy:           testPolicy(),
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedPercent, result.RefundPercent, 0.001)
			assert.InDelta(t, tt.expectedRefund, result.RefundAmount, 0.001)
			assert.InDelta(t, 200-tt.expectedRefund, result.FeeAmount, 0.001)
		})
	}
}

func TestCalculateRefund_DefaultFallbackLadder(t *testing.T) {
	engine := NewEngine()
	activityAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		hoursBefore    float64
		expectedRefund float64
	}{
		{"50h before gets full refund", 50, 100},
		{"30h before gets half", 30, 50},
		{"10h before gets nothing", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.CalculateRefund(Input{
				AmountPaid:       100,
				ActivityDateTime: activityAt,
				CancellationTime: activityAt.Add(-time.Duration(tt.hoursBefore * float64(time.Hour))),
				Policy:           nil,
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedRefund, result.RefundAmount, 0.001)
		})
	}
}

func TestCalculateRefund_WeatherCancellation(t *testing.T) {
	engine := NewEngine()
	activityAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	// Погодная отмена за час до активности - тайминг не важен
	result, err := engine.CalculateRefund(Input{
		AmountPaid:            300,
		ActivityDateTime:      activityAt,
		CancellationTime:      activityAt.Add(-time.Hour),
		IsWeatherCancellation: true,
		Policy:                testPolicy(),
	})
	require.NoError(t, err)

	assert.True(t, result.WeatherApplied)
	assert.InDelta(t, 300.0, result.RefundAmount, 0.001)
	assert.Zero(t, result.FeeAmount)
	assert.Nil(t, result.TierApplied)
}

func TestCalculateRefund_WeatherNotAllowedFallsToTiers(t *testing.T) {
	engine := NewEngine()
	policy := testPolicy()
	policy.WeatherCancellationAllowed = false
	activityAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	result, err := engine.CalculateRefund(Input{
		AmountPaid:            300,
		ActivityDateTime:      activityAt,
		CancellationTime:      activityAt.Add(-time.Hour),
		IsWeatherCancellation: true,
		Policy:                policy,
	})
	require.NoError(t, err)

	assert.False(t, result.WeatherApplied)
	assert.Zero(t, result.RefundAmount)
}

func TestCalculateRefund_InvalidPolicyFailsLoud(t *testing.T) {
	engine := NewEngine()
	policy := testPolicy()
	// Лестница не отсортирована по убыванию
	policy.Tiers = []domain.RefundTier{
		{HoursBefore: 24, RefundPercent: 25},
		{HoursBefore: 72, RefundPercent: 100},
	}

	_, err := engine.CalculateRefund(Input{
		AmountPaid:       100,
		ActivityDateTime: time.Now().Add(100 * time.Hour),
		CancellationTime: time.Now(),
		Policy:           policy,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
}

func TestCalculateRefund_NegativeAmountPaid(t *testing.T) {
	engine := NewEngine()

	_, err := engine.CalculateRefund(Input{
		AmountPaid:       -10,
		ActivityDateTime: time.Now(),
		CancellationTime: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNegativeAmountPaid)
}

func TestCalculateRefund_ZeroPaid(t *testing.T) {
	engine := NewEngine()
	activityAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	result, err := engine.CalculateRefund(Input{
		AmountPaid:       0,
		ActivityDateTime: activityAt,
		CancellationTime: activityAt.Add(-100 * time.Hour),
		Policy:           testPolicy(),
	})
	require.NoError(t, err)

	assert.Zero(t, result.RefundAmount)
	assert.InDelta(t, 100.0, result.RefundPercent, 0.001)
}

func TestCalculateNoShowPenalty(t *testing.T) {
	engine := NewEngine()

	policy := testPolicy()
	policy.NoShowFeePercent = 80

	result, err := engine.CalculateNoShowPenalty(200, policy)
	require.NoError(t, err)

	assert.InDelta(t, 80.0, result.FeePercent, 0.001)
	assert.InDelta(t, 160.0, result.FeeAmount, 0.001)
	assert.InDelta(t, 40.0, result.RefundAmount, 0.001)
}

func TestCalculateNoShowPenalty_NilPolicyDefaults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.CalculateNoShowPenalty(150, nil)
	require.NoError(t, err)

	assert.InDelta(t, domain.DefaultNoShowFeePercent, result.FeePercent, 0.001)
	assert.InDelta(t, 150.0, result.FeeAmount, 0.001)
	assert.Zero(t, result.RefundAmount)
}

func TestRescheduleOption(t *testing.T) {
	engine := NewEngine()

	option := engine.RescheduleOption(400, testPolicy())
	require.NotNil(t, option)
	assert.InDelta(t, 10.0, option.FeePercent, 0.001)
	assert.InDelta(t, 40.0, option.FeeAmount, 0.001)

	noReschedule := testPolicy()
	noReschedule.AllowReschedule = false
	assert.Nil(t, engine.RescheduleOption(400, noReschedule))
	assert.Nil(t, engine.RescheduleOption(400, nil))
}

func TestValidateRefundAmount(t *testing.T) {
	engine := NewEngine()
	booking := &domain.Booking{AmountPaid: 100}

	assert.NoError(t, engine.ValidateRefundAmount(booking, 100))
	assert.NoError(t, engine.ValidateRefundAmount(booking, 0))
	assert.ErrorIs(t, engine.ValidateRefundAmount(booking, 100.01), ErrRefundExceedsPaid)
	assert.ErrorIs(t, engine.ValidateRefundAmount(booking, -1), ErrInvalidAmount)
}

func TestResolvePolicy_Priority(t *testing.T) {
	override := &domain.CancellationPolicy{Name: "override"}
	product := &domain.CancellationPolicy{Name: "product"}
	tenant := &domain.CancellationPolicy{Name: "tenant"}

	assert.Equal(t, override, ResolvePolicy(override, product, tenant))
	assert.Equal(t, product, ResolvePolicy(nil, product, tenant))
	assert.Equal(t, tenant, ResolvePolicy(nil, nil, tenant))
	assert.Nil(t, ResolvePolicy(nil, nil, nil))
}
