package validate_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/memberservice"
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
	GetProduct(ctx context.Context, tenantID, productID int64) (*operatorservice.Product, error)
}

// MemberServiceClient интерфейс клиента для MemberService
type MemberServiceClient interface {
	GetMember(ctx context.Context, memberID int64) (*memberservice.Member, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
