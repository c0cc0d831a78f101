package operatorservice

import "errors"

var (
	// ErrTenantNotFound возвращается, когда оператор не найден
	ErrTenantNotFound = errors.New("operatorservice client: tenant not found")

	// ErrProductNotFound возвращается, когда продукт не найден
	ErrProductNotFound = errors.New("operatorservice client: product not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("operatorservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("operatorservice client: invalid response")
)
