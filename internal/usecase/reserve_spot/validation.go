package reserve_spot

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}
	if req.ProductID <= 0 {
		return fmt.Errorf("%w: productID must be positive", ErrInvalidInput)
	}
	if req.ScheduleID <= 0 {
		return fmt.Errorf("%w: scheduleID must be positive", ErrInvalidInput)
	}
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}
	if req.ParticipantCount < domain.MinParticipantsPerBooking || req.ParticipantCount > domain.MaxParticipantsPerBooking {
		return fmt.Errorf("%w: participant count must be between %d and %d",
			ErrInvalidInput, domain.MinParticipantsPerBooking, domain.MaxParticipantsPerBooking)
	}
	return nil
}

// checkBookingWindow повторяет проверки тайминга под блокировкой строки.
// Валидатор уже показал пользователю детальные ошибки; здесь достаточно
// одного жёсткого вердикта - окно открыто или закрыто.
func checkBookingWindow(tenant *domain.Tenant, activityAt, now time.Time) error {
	hoursUntil := activityAt.Sub(now).Hours()

	if hoursUntil < 0 {
		return fmt.Errorf("%w: activity has already started", ErrBookingWindowClosed)
	}
	if cutoff := tenant.EffectiveCutoffHours(); hoursUntil < float64(cutoff) {
		return fmt.Errorf("%w: bookings close %d hours before the activity", ErrBookingWindowClosed, cutoff)
	}
	if days := daysBetween(now, activityAt); days > tenant.EffectiveMaxAdvanceDays() {
		return fmt.Errorf("%w: bookings open %d days before the activity", ErrBookingWindowClosed, tenant.EffectiveMaxAdvanceDays())
	}
	if isSameDay(activityAt, now) {
		if types.NewTimeString(now).IsAfter(tenant.EffectiveSameDayCutoff()) {
			return fmt.Errorf("%w: same-day bookings close at %s", ErrBookingWindowClosed, tenant.EffectiveSameDayCutoff())
		}
	}
	return nil
}

func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// daysBetween считает календарные дни между датами, не 24-часовые интервалы
func daysBetween(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDate.Sub(fromDate).Hours() / 24)
}
