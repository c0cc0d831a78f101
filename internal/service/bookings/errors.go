package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrScheduleNotFound возвращается, когда расписание брони не найдено
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrTenantNotFound возвращается, когда оператор не найден
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCannotMarkNoShow возвращается, когда бронь нельзя пометить как неявку
	ErrCannotMarkNoShow = errors.New("booking cannot be marked as no-show")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
