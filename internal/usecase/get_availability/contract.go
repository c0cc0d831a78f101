package get_availability

import (
	"context"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	SumActiveParticipants(ctx context.Context, scheduleID int64) (int, error)
}

// OperatorServiceClient интерфейс клиента для OperatorService
type OperatorServiceClient interface {
	GetTenant(ctx context.Context, tenantID int64) (*operatorservice.Tenant, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
