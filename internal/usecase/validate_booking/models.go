package validate_booking

import "github.com/m04kA/SMC-ActivityBookingService/internal/domain"

// Request модель запроса на валидацию бронирования
type Request struct {
	TenantID         int64
	ProductID        int64
	ScheduleID       int64
	MemberID         int64
	ParticipantCount int
}

// Issue одно нарушение правила или предупреждение
type Issue struct {
	Code    string
	Message string
}

// Issue codes
const (
	CodeInvalidParticipants  = "invalid_participant_count"
	CodeScheduleNotBookable  = "schedule_not_bookable"
	CodePastActivity         = "past_activity"
	CodeCutoffViolation      = "booking_cutoff_violation"
	CodeTooFarInAdvance      = "too_far_in_advance"
	CodeSameDayCutoff        = "same_day_cutoff_passed"
	CodeShortNotice          = "short_notice"
	CodeInsufficientCapacity = "insufficient_capacity"
	CodeLowCapacity          = "low_capacity"
	CodeRequirementFailed    = "requirement_failed"
	CodeRequirementPending   = "requirement_pending"
	CodeWeatherDependent     = "weather_dependent"
	CodeInstructorUnassigned = "instructor_unassigned"
)

// RequirementStatus результат проверки одного требования
type RequirementStatus struct {
	RequirementID int64
	Kind          domain.RequirementKind
	Name          string
	Blocking      bool // Требование обязательное и блокирующее
	CanOverride   bool
	Detail        string
}

// RequirementsReport требования, разложенные по результатам проверки.
// Pending - требования, ожидающие действий участника (неподтверждённая
// медицинская анкета, согласие родителей) - отдельная корзина от failed.
type RequirementsReport struct {
	Passed  []RequirementStatus
	Failed  []RequirementStatus
	Pending []RequirementStatus
}

// Response результат валидации бронирования
type Response struct {
	CanBook  bool
	Errors   []Issue
	Warnings []Issue

	Requirements RequirementsReport

	// Бронь технически допустима, но требует подтверждения персоналом
	RequiresManualReview bool

	// Неавторитетный снимок вместимости для обратной связи пользователю;
	// авторитетная проверка выполняется admission-ом под блокировкой
	AvailableSpots int
	TotalSpots     int
}
