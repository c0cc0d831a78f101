package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSpots(t *testing.T) {
	assert.Equal(t, 4, AvailableSpots(10, 6))
	assert.Equal(t, 0, AvailableSpots(10, 10))
	// Переполненное расписание не даёт отрицательного остатка
	assert.Equal(t, 0, AvailableSpots(10, 12))
}

func TestCheckCapacity_FitsNominal(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 10}
	tenant := &Tenant{}

	check := CheckCapacity(schedule, tenant, 6, 4)

	assert.True(t, check.Admissible)
	assert.False(t, check.OverbookingUsed)
	assert.Equal(t, 4, check.Available)
}

func TestCheckCapacity_ExceedsNominalNoOverbooking(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 10}
	tenant := &Tenant{}

	check := CheckCapacity(schedule, tenant, 8, 3)

	assert.False(t, check.Admissible)
	assert.Equal(t, 2, check.Available)
	assert.Zero(t, check.OverbookCapacity)
}

func TestCheckCapacity_OverbookingAdmits(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 10}
	tenant := &Tenant{AllowOverbooking: true, OverbookingLimitPercent: 20}

	// 8 занято, остаток 2, овербукинг даёт ещё floor(10*20/100)=2
	check := CheckCapacity(schedule, tenant, 8, 4)

	assert.True(t, check.Admissible)
	assert.True(t, check.OverbookingUsed)
	assert.Equal(t, 2, check.Available)
	assert.Equal(t, 2, check.OverbookCapacity)
}

func TestCheckCapacity_OverbookingExhausted(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 10}
	tenant := &Tenant{AllowOverbooking: true, OverbookingLimitPercent: 20}

	check := CheckCapacity(schedule, tenant, 8, 5)

	assert.False(t, check.Admissible)
	assert.False(t, check.OverbookingUsed)
}

func TestCheckCapacity_NilTenant(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 10}

	check := CheckCapacity(schedule, nil, 10, 1)

	assert.False(t, check.Admissible)
	assert.Zero(t, check.OverbookCapacity)
}

func TestOverbookCapacity_FloorsFraction(t *testing.T) {
	schedule := &Schedule{MaxParticipants: 7}

	// floor(7 * 15 / 100) = 1
	assert.Equal(t, 1, schedule.OverbookCapacity(15))
	assert.Equal(t, 0, schedule.OverbookCapacity(0))
	assert.Equal(t, 0, schedule.OverbookCapacity(-10))
}
