package validate_booking

import "errors"

// Ошибки уровня usecase. Бизнес-исходы валидации (нарушение отсечки,
// проваленное требование) ошибками НЕ являются - они возвращаются внутри
// Response как структурированные errors/warnings, чтобы вызывающий мог
// показать частичную информацию.
var (
	// ErrTenantNotFound возвращается, когда оператор не найден
	ErrTenantNotFound = errors.New("validate_booking: tenant not found")

	// ErrProductNotFound возвращается, когда продукт не найден
	ErrProductNotFound = errors.New("validate_booking: product not found")

	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("validate_booking: schedule not found")

	// ErrMemberNotFound возвращается, когда профиль участника не найден
	ErrMemberNotFound = errors.New("validate_booking: member not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("validate_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("validate_booking: internal error")
)
