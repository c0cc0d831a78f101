package domain

// CapacityCheck результат проверки вместимости расписания
type CapacityCheck struct {
	Available        int // Свободные места в пределах номинальной вместимости
	OverbookCapacity int // Дополнительные места сверх номинала (0, если overbooking выключен)
	Admissible       bool
	OverbookingUsed  bool // Бронь прошла только за счёт овербукинга
}

// AvailableSpots возвращает остаток свободных мест (не меньше 0)
func AvailableSpots(maxParticipants, booked int) int {
	available := maxParticipants - booked
	if available < 0 {
		return 0
	}
	return available
}

// CheckCapacity проверяет, помещается ли requested участников в расписание.
// Единая арифметика для валидатора (неавторитетный снимок) и admission
// (авторитетная проверка под блокировкой строки).
//
// Овербукинг: floor(maxParticipants * limitPercent / 100) дополнительных мест
// прибавляется к уже вычисленному остатку свободных мест. Семантика исходной
// системы (допуск = "лишние места сверх остатка") сохранена намеренно.
func CheckCapacity(schedule *Schedule, tenant *Tenant, booked, requested int) CapacityCheck {
	check := CapacityCheck{
		Available: AvailableSpots(schedule.MaxParticipants, booked),
	}

	if requested <= check.Available {
		check.Admissible = true
		return check
	}

	if tenant != nil && tenant.AllowOverbooking {
		check.OverbookCapacity = schedule.OverbookCapacity(tenant.OverbookingLimitPercent)
		if requested <= check.Available+check.OverbookCapacity {
			check.Admissible = true
			check.OverbookingUsed = true
		}
	}

	return check
}
