package memberservice

import "errors"

var (
	// ErrMemberNotFound возвращается, когда профиль участника не найден
	ErrMemberNotFound = errors.New("memberservice client: member not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("memberservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("memberservice client: invalid response")
)
