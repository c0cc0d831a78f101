package domain

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// ScheduleStatus represents the lifecycle status of a schedule
type ScheduleStatus string

const (
	ScheduleScheduled        ScheduleStatus = "scheduled"
	ScheduleConfirmed        ScheduleStatus = "confirmed"
	ScheduleInProgress       ScheduleStatus = "in_progress"
	ScheduleCompleted        ScheduleStatus = "completed"
	ScheduleCancelled        ScheduleStatus = "cancelled"
	ScheduleWeatherCancelled ScheduleStatus = "weather_cancelled"
)

// Schedule represents one bookable occurrence of a product at a fixed
// date/time with finite capacity
type Schedule struct {
	ID                 int64
	TenantID           int64
	ProductID          int64
	Date               time.Time
	StartTime          types.TimeString
	Status             ScheduleStatus
	MaxParticipants    int
	MinParticipants    int
	BookedParticipants int      // Денормализованный счётчик, авторитетный пересчёт - в admission
	PriceOverride      *float64 // Переопределение цены продукта для конкретного расписания
	AllowOnlineBooking bool
	InstructorID       *int64
	WeatherDependent   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable returns true if the schedule accepts new bookings by status.
// Дата и время проверяются отдельно правилами тайминга.
func (s *Schedule) IsBookable() bool {
	return (s.Status == ScheduleScheduled || s.Status == ScheduleConfirmed) && s.AllowOnlineBooking
}

// ActivityDateTime возвращает полную дату-время начала активности
func (s *Schedule) ActivityDateTime() (time.Time, error) {
	return s.StartTime.OnDate(s.Date)
}

// OverbookCapacity вычисляет допустимое количество мест сверх номинальной
// вместимости: floor(maxParticipants * limitPercent / 100).
// Допуск прибавляется к уже вычисленному остатку свободных мест -
// семантика исходной системы сохранена намеренно.
func (s *Schedule) OverbookCapacity(limitPercent int) int {
	if limitPercent <= 0 {
		return 0
	}
	return s.MaxParticipants * limitPercent / 100
}
