package validate_booking

import (
	"fmt"
	"strings"
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
	return nil
}

// timingIssues проверяет правила тайминга бронирования.
// hoursUntil - знаковая величина: отрицательная для активности в прошлом.
func timingIssues(tenant *domain.Tenant, activityAt, now time.Time) (errs, warnings []Issue) {
	hoursUntil := activityAt.Sub(now).Hours()

	if hoursUntil < 0 {
		errs = append(errs, Issue{
			Code:    CodePastActivity,
			Message: "activity has already started or passed",
		})
		return errs, warnings
	}

	cutoff := tenant.EffectiveCutoffHours()
	if hoursUntil < float64(cutoff) {
		errs = append(errs, Issue{
			Code:    CodeCutoffViolation,
			Message: fmt.Sprintf("bookings close %d hours before the activity", cutoff),
		})
	}

	// Дни считаются по календарным датам, не по 24-часовым интервалам
	daysUntil := daysBetween(now, activityAt)
	maxAdvance := tenant.EffectiveMaxAdvanceDays()
	if daysUntil > maxAdvance {
		errs = append(errs, Issue{
			Code:    CodeTooFarInAdvance,
			Message: fmt.Sprintf("bookings open %d days before the activity", maxAdvance),
		})
	}

	// Бронь на сегодня после дневной отсечки закрыта
	if isSameDay(activityAt, now) {
		nowTime := types.NewTimeString(now)
		if nowTime.IsAfter(tenant.EffectiveSameDayCutoff()) {
			errs = append(errs, Issue{
				Code:    CodeSameDayCutoff,
				Message: fmt.Sprintf("same-day bookings close at %s", tenant.EffectiveSameDayCutoff()),
			})
		}
	}

	if hoursUntil > 0 && hoursUntil < domain.ShortNoticeWarningHours {
		warnings = append(warnings, Issue{
			Code:    CodeShortNotice,
			Message: fmt.Sprintf("activity starts in less than %d hours", domain.ShortNoticeWarningHours),
		})
	}

	return errs, warnings
}

// requirementOutcome исход проверки одного требования
type requirementOutcome int

const (
	outcomePassed requirementOutcome = iota
	outcomeFailed
	outcomePending
)

// evaluateRequirement проверяет одно требование против профиля участника.
// Pending возвращается, когда требованию не хватает действия участника
// (форма отправлена и ждёт проверки, дата рождения не указана).
func evaluateRequirement(req *domain.ProductRequirement, member *domain.MemberProfile, activityDate time.Time) (requirementOutcome, string) {
	switch req.Kind {
	case domain.RequirementCertification:
		if member.HasCertification(req.CertificationCode) {
			return outcomePassed, ""
		}
		return outcomeFailed, fmt.Sprintf("certification %s required", req.CertificationCode)

	case domain.RequirementAgeMinimum:
		age := member.AgeAt(activityDate)
		if age < 0 {
			return outcomePending, "date of birth not provided"
		}
		if age < req.MinAge {
			return outcomeFailed, fmt.Sprintf("minimum age is %d", req.MinAge)
		}
		// Несовершеннолетним нужно согласие родителей
		if age < 18 && member.ParentalConsent == domain.FormPending {
			return outcomePending, "parental consent awaiting approval"
		}
		if age < 18 && member.ParentalConsent != domain.FormApproved {
			return outcomeFailed, "parental consent required for minors"
		}
		return outcomePassed, ""

	case domain.RequirementAgeMaximum:
		age := member.AgeAt(activityDate)
		if age < 0 {
			return outcomePending, "date of birth not provided"
		}
		if age > req.MaxAge {
			return outcomeFailed, fmt.Sprintf("maximum age is %d", req.MaxAge)
		}
		return outcomePassed, ""

	case domain.RequirementHealth:
		switch member.HealthFormStatus {
		case domain.FormApproved:
			return outcomePassed, ""
		case domain.FormPending:
			return outcomePending, "health form awaiting approval"
		default:
			return outcomeFailed, "health form required"
		}

	case domain.RequirementExperience:
		if member.LoggedDives >= req.MinLoggedDives {
			return outcomePassed, ""
		}
		return outcomeFailed, fmt.Sprintf("minimum %d logged dives required, member has %d", req.MinLoggedDives, member.LoggedDives)

	case domain.RequirementDocuments:
		missing := make([]string, 0)
		for _, doc := range req.RequiredDocuments {
			if !member.HasDocument(doc) {
				missing = append(missing, doc)
			}
		}
		if len(missing) == 0 {
			return outcomePassed, ""
		}
		return outcomeFailed, "missing documents: " + strings.Join(missing, ", ")

	case domain.RequirementSkill:
		if member.HasSkill(req.SkillCode) {
			return outcomePassed, ""
		}
		return outcomeFailed, fmt.Sprintf("skill %s not confirmed", req.SkillCode)

	case domain.RequirementPhysical:
		if member.MedicalFitness {
			return outcomePassed, ""
		}
		return outcomeFailed, "physical fitness confirmation required"

	default:
		// Неизвестный вид требования - ошибка конфигурации, не пропускаем молча
		return outcomeFailed, fmt.Sprintf("unknown requirement kind %q", req.Kind)
	}
}

// specialConditionWarnings неблокирующие информационные предупреждения
// об условиях проведения активности
func specialConditionWarnings(schedule *domain.Schedule) []Issue {
	warnings := make([]Issue, 0)

	if schedule.WeatherDependent {
		warnings = append(warnings, Issue{
			Code:    CodeWeatherDependent,
			Message: "activity is weather-dependent and may be cancelled",
		})
	}
	if schedule.InstructorID == nil {
		warnings = append(warnings, Issue{
			Code:    CodeInstructorUnassigned,
			Message: "instructor not assigned yet",
		})
	}

	return warnings
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// daysBetween возвращает количество календарных дней от from до to
func daysBetween(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDate.Sub(fromDate).Hours() / 24)
}
