package pricing

import "errors"

var (
	// ErrInvalidParticipantCount возвращается при количестве участников вне диапазона
	ErrInvalidParticipantCount = errors.New("pricing: invalid participant count")

	// ErrMissingTenant возвращается, когда настройки тенанта не переданы
	ErrMissingTenant = errors.New("pricing: tenant settings are required")

	// ErrMissingProduct возвращается, когда продукт не передан
	ErrMissingProduct = errors.New("pricing: product is required")
)
