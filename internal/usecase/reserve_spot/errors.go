package reserve_spot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_spot: invalid input data")

	// ErrTenantNotFound возвращается, когда оператор не найден
	ErrTenantNotFound = errors.New("reserve_spot: tenant not found")

	// ErrProductNotFound возвращается, когда продукт не найден
	ErrProductNotFound = errors.New("reserve_spot: product not found")

	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("reserve_spot: schedule not found")

	// ErrScheduleNotBookable возвращается, когда расписание не принимает брони
	ErrScheduleNotBookable = errors.New("reserve_spot: schedule is not bookable")

	// ErrBookingWindowClosed возвращается, когда тайминг брони нарушен
	// (активность в прошлом, отсечка, слишком далеко вперёд)
	ErrBookingWindowClosed = errors.New("reserve_spot: booking window is closed")

	// ErrInsufficientCapacity возвращается, когда мест не хватает даже
	// с учётом овербукинга. Конкретная ошибка - CapacityError
	ErrInsufficientCapacity = errors.New("reserve_spot: insufficient capacity")

	// ErrAdmissionConflict возвращается, когда конкурентные admission-ы
	// исчерпали повторы сериализуемой транзакции. Запрос можно повторить
	ErrAdmissionConflict = errors.New("reserve_spot: admission conflict, retry the request")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_spot: internal error")
)

// CapacityError несёт остаток мест на момент авторитетной проверки под
// блокировкой. Разворачивается в ErrInsufficientCapacity, так что работают
// и errors.Is, и errors.As.
type CapacityError struct {
	Available    int
	WaitlistOpen bool
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %d spots available", ErrInsufficientCapacity, e.Available)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}
