package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/refund"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	GetByUserFilter(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string, refundAmount, refundPercent float64, paymentStatus domain.PaymentStatus, cancelledAt time.Time) error
	MarkNoShow(ctx context.Context, id int64, refundAmount, refundPercent float64, paymentStatus domain.PaymentStatus) error
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
	AdjustBookedCount(ctx context.Context, id int64, delta int) error
}

// PolicyRepository интерфейс репозитория политик отмены
type PolicyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CancellationPolicy, error)
	GetDefaultByTenant(ctx context.Context, tenantID int64) (*domain.CancellationPolicy, error)
}

// OperatorServiceClient интерфейс клиента для OperatorService
type OperatorServiceClient interface {
	GetTenant(ctx context.Context, tenantID int64) (*operatorservice.Tenant, error)
	GetProduct(ctx context.Context, tenantID, productID int64) (*operatorservice.Product, error)
}

// RefundEngine интерфейс движка расчёта возвратов
type RefundEngine interface {
	CalculateRefund(in refund.Input) (refund.Result, error)
	CalculateNoShowPenalty(amountPaid float64, policy *domain.CancellationPolicy) (refund.NoShowResult, error)
	RescheduleOption(totalAmount float64, policy *domain.CancellationPolicy) *refund.RescheduleOption
	ValidateRefundAmount(booking *domain.Booking, amount float64) error
}

// TransactionManager интерфейс менеджера сериализуемых транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
