package domain

import "time"

// Product represents a bookable activity (course, guided dive, tour)
type Product struct {
	ID              int64
	TenantID        int64
	Name            string
	Type            string // "course", "dive", "tour", "rental" - scope для налоговых ставок
	BasePrice       float64
	DurationMinutes int
	TaxExempt       bool
	PolicyID        *int64 // Продукт-специфичная политика отмены (опционально)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceFor возвращает действующую цену за участника:
// переопределение расписания имеет приоритет над базовой ценой продукта
func (p *Product) PriceFor(schedule *Schedule) float64 {
	if schedule != nil && schedule.PriceOverride != nil {
		return *schedule.PriceOverride
	}
	return p.BasePrice
}
