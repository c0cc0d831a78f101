package reserve_spot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	operatorclient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/txmanager"
)

// Admission outcomes для метрик
const (
	outcomeAdmitted         = "admitted"
	outcomeCapacityRejected = "capacity_rejected"
	outcomeWindowClosed     = "window_closed"
	outcomeConflict         = "conflict"
	outcomeError            = "error"
)

// UseCase use case создания брони (admission).
//
// Единственная точка, где бронь появляется в системе. Вся решающая часть
// выполняется внутри одной сериализуемой транзакции под блокировкой строки
// расписания: повторная проверка тайминга, авторитетный пересчёт занятости,
// решение по вместимости, снимок цены, вставка брони и инкремент счётчика.
// Либо всё, либо ничего - частично применённых admission не бывает.
type UseCase struct {
	scheduleRepo   ScheduleRepository
	bookingRepo    BookingRepository
	taxRepo        TaxRateRepository
	operatorClient OperatorServiceClient
	pricer         PricingComposer
	txManager      TransactionManager
	recorder       AdmissionRecorder
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepository ScheduleRepository,
	bookingRepository BookingRepository,
	taxRepository TaxRateRepository,
	operatorCl OperatorServiceClient,
	pricer PricingComposer,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:   scheduleRepository,
		bookingRepo:    bookingRepository,
		taxRepo:        taxRepository,
		operatorClient: operatorCl,
		pricer:         pricer,
		txManager:      txManager,
		recorder:       noopRecorder{},
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithAdmissionRecorder подключает метрики admission
func (uc *UseCase) WithAdmissionRecorder(r AdmissionRecorder) *UseCase {
	uc.recorder = r
	return uc
}

// WithTimeProvider подменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет admission брони
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSpot: tenant=%d, product=%d, schedule=%d, member=%d, participants=%d",
		req.TenantID, req.ProductID, req.ScheduleID, req.MemberID, req.ParticipantCount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSpot: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем тенанта, продукт и налоговые данные ДО транзакции -
	// внутри держим только решающую часть, чтобы блокировка жила коротко
	tenantModel, err := uc.operatorClient.GetTenant(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrTenantNotFound) {
			uc.logger.Warn("ReserveSpot: tenant id=%d not found", req.TenantID)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("ReserveSpot: failed to get tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}
	tenant := tenantModel.ToDomain()

	productModel, err := uc.operatorClient.GetProduct(ctx, req.TenantID, req.ProductID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrProductNotFound) {
			uc.logger.Warn("ReserveSpot: product id=%d not found", req.ProductID)
			return nil, ErrProductNotFound
		}
		uc.logger.Error("ReserveSpot: failed to get product id=%d: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: failed to get product: %v", ErrInternal, err)
	}
	product := productModel.ToDomain()

	taxRates, err := uc.taxRepo.GetRatesByTenant(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("ReserveSpot: failed to get tax rates for tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tax rates: %v", ErrInternal, err)
	}

	exemptions, err := uc.taxRepo.GetExemptions(ctx, req.TenantID, req.ProductID, req.MemberID)
	if err != nil {
		uc.logger.Error("ReserveSpot: failed to get tax exemptions for tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tax exemptions: %v", ErrInternal, err)
	}

	// 3. Решающая часть под сериализуемой транзакцией
	var resp *Response
	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, overbooked, remaining, breakdown, err := uc.admit(txCtx, req, tenant, product, taxRates, exemptions)
		if err != nil {
			return err
		}
		resp = &Response{
			BookingID:       created.ID,
			Reference:       created.Reference,
			Status:          created.Status,
			PaymentStatus:   created.PaymentStatus,
			OverbookingUsed: overbooked,
			Pricing:         *breakdown,
			SpotsRemaining:  remaining,
			CreatedAt:       created.CreatedAt,
		}
		return nil
	})

	if txErr != nil {
		return nil, uc.mapTxError(txErr, req.ScheduleID)
	}

	uc.recorder.IncAdmission(outcomeAdmitted)
	uc.logger.Info("ReserveSpot: booking id=%d reference=%s created for schedule=%d (overbooking=%t, remaining=%d)",
		resp.BookingID, resp.Reference, req.ScheduleID, resp.OverbookingUsed, resp.SpotsRemaining)

	return resp, nil
}

// admit выполняет решающую часть внутри транзакции. Вызывающий обязан
// передать контекст с активной транзакцией (txmanager это гарантирует).
func (uc *UseCase) admit(
	ctx context.Context,
	req *Request,
	tenant *domain.Tenant,
	product *domain.Product,
	taxRates []domain.TaxRate,
	exemptions []domain.TaxExemption,
) (*domain.Booking, bool, int, *pricing.Breakdown, error) {
	now := uc.timeProvider.Now()

	// 1. Блокируем строку расписания - точка сериализации admission
	schedule, err := uc.scheduleRepo.GetByIDForUpdate(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, schedulerepo.ErrScheduleNotFound) {
			return nil, false, 0, nil, ErrScheduleNotFound
		}
		return nil, false, 0, nil, fmt.Errorf("%w: failed to lock schedule: %v", ErrInternal, err)
	}

	// 2. Перепроверяем статус и тайминг: между валидацией и admission
	// расписание могли отменить или закрыть для онлайн-брони
	if !schedule.IsBookable() {
		return nil, false, 0, nil, fmt.Errorf("%w: status %s", ErrScheduleNotBookable, schedule.Status)
	}

	activityAt, err := schedule.ActivityDateTime()
	if err != nil {
		return nil, false, 0, nil, fmt.Errorf("%w: invalid schedule start time: %v", ErrInternal, err)
	}
	if err := checkBookingWindow(tenant, activityAt, now); err != nil {
		return nil, false, 0, nil, err
	}

	// 3. Авторитетный пересчёт занятости по строкам броней, не по
	// денормализованному счётчику
	booked, err := uc.bookingRepo.SumActiveParticipants(ctx, req.ScheduleID)
	if err != nil {
		return nil, false, 0, nil, fmt.Errorf("%w: failed to count booked participants: %v", ErrInternal, err)
	}

	capacity := domain.CheckCapacity(schedule, tenant, booked, req.ParticipantCount)
	if !capacity.Admissible {
		return nil, false, 0, nil, &CapacityError{
			Available:    capacity.Available + capacity.OverbookCapacity,
			WaitlistOpen: tenant.WaitlistEnabled,
		}
	}

	// 4. Снимок цены на момент admission
	breakdown, err := uc.pricer.Compute(pricing.Input{
		Tenant:           tenant,
		Product:          product,
		Schedule:         schedule,
		ParticipantCount: req.ParticipantCount,
		PayingOnline:     req.PayingOnline,
		Location:         req.Location,
		MemberID:         req.MemberID,
		TaxRates:         taxRates,
		Exemptions:       exemptions,
		Now:              now,
	})
	if err != nil {
		return nil, false, 0, nil, fmt.Errorf("%w: failed to compute pricing: %v", ErrInternal, err)
	}

	// 5. Вставляем бронь и двигаем денормализованный счётчик
	booking := &domain.Booking{
		Reference:        uuid.NewString(),
		TenantID:         req.TenantID,
		ScheduleID:       req.ScheduleID,
		ProductID:        req.ProductID,
		MemberID:         req.MemberID,
		ParticipantCount: req.ParticipantCount,
		Status:           domain.StatusConfirmed,
		PaymentStatus:    domain.PaymentUnpaid,
		OverbookingUsed:  capacity.OverbookingUsed,
		Subtotal:         breakdown.Subtotal,
		DiscountAmount:   breakdown.DiscountAmount,
		TaxAmount:        breakdown.TaxAmount,
		TotalAmount:      breakdown.TotalAmount,
		AmountPaid:       0,
		BalanceDue:       breakdown.TotalAmount,
		PaymentDueDate:   breakdown.PaymentDueDate,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, false, 0, nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	if err := uc.scheduleRepo.AdjustBookedCount(ctx, req.ScheduleID, req.ParticipantCount); err != nil {
		return nil, false, 0, nil, fmt.Errorf("%w: failed to adjust booked count: %v", ErrInternal, err)
	}

	remaining := domain.AvailableSpots(schedule.MaxParticipants, booked+req.ParticipantCount)

	return created, capacity.OverbookingUsed, remaining, breakdown, nil
}

// mapTxError переводит ошибку транзакции в ошибку usecase и пишет метрики
func (uc *UseCase) mapTxError(err error, scheduleID int64) error {
	var capErr *CapacityError
	switch {
	case errors.As(err, &capErr):
		uc.recorder.IncAdmission(outcomeCapacityRejected)
		uc.recorder.IncCapacityRejection()
		uc.logger.Warn("ReserveSpot: schedule id=%d rejected, %d spots available", scheduleID, capErr.Available)
		return err
	case errors.Is(err, ErrBookingWindowClosed):
		uc.recorder.IncAdmission(outcomeWindowClosed)
		uc.logger.Warn("ReserveSpot: schedule id=%d rejected: %v", scheduleID, err)
		return err
	case errors.Is(err, txmanager.ErrRetriesExhausted):
		uc.recorder.IncAdmission(outcomeConflict)
		uc.logger.Warn("ReserveSpot: schedule id=%d admission conflict: %v", scheduleID, err)
		return fmt.Errorf("%w: %v", ErrAdmissionConflict, err)
	case errors.Is(err, ErrScheduleNotFound), errors.Is(err, ErrScheduleNotBookable):
		uc.recorder.IncAdmission(outcomeError)
		uc.logger.Warn("ReserveSpot: schedule id=%d rejected: %v", scheduleID, err)
		return err
	default:
		uc.recorder.IncAdmission(outcomeError)
		uc.logger.Error("ReserveSpot: admission failed for schedule id=%d: %v", scheduleID, err)
		return err
	}
}
