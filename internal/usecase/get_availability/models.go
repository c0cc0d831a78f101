package get_availability

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// Request модель запроса доступности расписания
type Request struct {
	ScheduleID int64
}

// Response снимок доступности расписания.
// Снимок читается без блокировки и может устареть к моменту admission -
// авторитетное решение всегда принимает admission под блокировкой строки.
type Response struct {
	ScheduleID int64
	TenantID   int64
	ProductID  int64

	Date      time.Time
	StartTime types.TimeString
	Status    domain.ScheduleStatus
	Bookable  bool

	TotalSpots     int
	BookedSpots    int
	AvailableSpots int

	// Дополнительные места сверх номинала, если овербукинг разрешён
	OverbookCapacity int
}
