package reserve_spot

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
)

// Request модель запроса на создание брони
type Request struct {
	TenantID         int64
	ProductID        int64
	ScheduleID       int64
	MemberID         int64
	ParticipantCount int

	// Оплата онлайн влияет на скидки
	PayingOnline bool

	// Локация для разрешения налоговой ставки (пустая - локация расписания)
	Location string

	Notes *string
}

// Response результат успешного admission: созданная бронь и снимок цены
type Response struct {
	BookingID int64
	Reference string

	Status        domain.BookingStatus
	PaymentStatus domain.PaymentStatus

	// Бронь прошла только за счёт овербукинга
	OverbookingUsed bool

	Pricing pricing.Breakdown

	// Остаток мест после admission (в пределах номинальной вместимости)
	SpotsRemaining int

	CreatedAt time.Time
}
