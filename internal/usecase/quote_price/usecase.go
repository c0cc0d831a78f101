package quote_price

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	operatorclient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
)

// UseCase use case расчёта цены без создания брони (read-only)
type UseCase struct {
	scheduleRepo   ScheduleRepository
	taxRepo        TaxRateRepository
	operatorClient OperatorServiceClient
	pricer         PricingComposer
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepository ScheduleRepository,
	taxRepository TaxRateRepository,
	operatorCl OperatorServiceClient,
	pricer PricingComposer,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:   scheduleRepository,
		taxRepo:        taxRepository,
		operatorClient: operatorCl,
		pricer:         pricer,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute считает раскладку цены для заданного состава брони
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("QuotePrice: validation failed: %v", err)
		return nil, err
	}

	tenantModel, err := uc.operatorClient.GetTenant(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("QuotePrice: failed to get tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}
	tenant := tenantModel.ToDomain()

	productModel, err := uc.operatorClient.GetProduct(ctx, req.TenantID, req.ProductID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		uc.logger.Error("QuotePrice: failed to get product id=%d: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: failed to get product: %v", ErrInternal, err)
	}
	product := productModel.ToDomain()

	var schedule *domain.Schedule
	if req.ScheduleID != nil {
		schedule, err = uc.scheduleRepo.GetByID(ctx, *req.ScheduleID)
		if err != nil {
			if errors.Is(err, schedulerepo.ErrScheduleNotFound) {
				return nil, ErrScheduleNotFound
			}
			uc.logger.Error("QuotePrice: failed to get schedule id=%d: %v", *req.ScheduleID, err)
			return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}
	}

	taxRates, err := uc.taxRepo.GetRatesByTenant(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("QuotePrice: failed to get tax rates for tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tax rates: %v", ErrInternal, err)
	}

	exemptions, err := uc.taxRepo.GetExemptions(ctx, req.TenantID, req.ProductID, req.MemberID)
	if err != nil {
		uc.logger.Error("QuotePrice: failed to get tax exemptions for tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tax exemptions: %v", ErrInternal, err)
	}

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
		Now:              uc.timeProvider.Now(),
	})
	if err != nil {
		uc.logger.Error("QuotePrice: pricing failed for product id=%d: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: pricing failed: %v", ErrInternal, err)
	}

	return &Response{Pricing: *breakdown}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}
	if req.ProductID <= 0 {
		return fmt.Errorf("%w: productID must be positive", ErrInvalidInput)
	}
	if req.ScheduleID != nil && *req.ScheduleID <= 0 {
		return fmt.Errorf("%w: scheduleID must be positive", ErrInvalidInput)
	}
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}
	if req.ParticipantCount < domain.MinParticipantsPerBooking || req.ParticipantCount > domain.MaxParticipantsPerBooking {
		return fmt.Errorf("%w: participant count must be between %d and %d",
			ErrInvalidInput, domain.MinParticipantsPerBooking, domain.MaxParticipantsPerBooking)
	}
	return nil
}
