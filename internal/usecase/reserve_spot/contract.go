package reserve_spot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
)

// ScheduleRepository интерфейс репозитория расписаний.
// GetByIDForUpdate обязан вызываться внутри транзакции - блокировка строки
// расписания является точкой сериализации всего admission.
type ScheduleRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Schedule, error)
	AdjustBookedCount(ctx context.Context, id int64, delta int) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	SumActiveParticipants(ctx context.Context, scheduleID int64) (int, error)
}

// TaxRateRepository интерфейс репозитория налоговых ставок
type TaxRateRepository interface {
	GetRatesByTenant(ctx context.Context, tenantID int64) ([]domain.TaxRate, error)
	GetExemptions(ctx context.Context, tenantID, productID, memberID int64) ([]domain.TaxExemption, error)
}

// OperatorServiceClient интерфейс клиента для OperatorService
type OperatorServiceClient interface {
	GetTenant(ctx context.Context, tenantID int64) (*operatorservice.Tenant, error)
	GetProduct(ctx context.Context, tenantID, productID int64) (*operatorservice.Product, error)
}

// PricingComposer интерфейс расчёта цены брони
type PricingComposer interface {
	Compute(in pricing.Input) (*pricing.Breakdown, error)
}

// TransactionManager интерфейс менеджера сериализуемых транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdmissionRecorder интерфейс метрик admission (опционален)
type AdmissionRecorder interface {
	IncAdmission(outcome string)
	IncCapacityRejection()
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

// noopRecorder используется, когда метрики выключены
type noopRecorder struct{}

func (noopRecorder) IncAdmission(string) {}

func (noopRecorder) IncCapacityRejection() {}
