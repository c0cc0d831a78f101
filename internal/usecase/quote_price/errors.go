package quote_price

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("quote_price: invalid input data")

	// ErrTenantNotFound возвращается, когда оператор не найден
	ErrTenantNotFound = errors.New("quote_price: tenant not found")

	// ErrProductNotFound возвращается, когда продукт не найден
	ErrProductNotFound = errors.New("quote_price: product not found")

	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("quote_price: schedule not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("quote_price: internal error")
)
