package quote_price

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
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
