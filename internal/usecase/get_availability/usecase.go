package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	operatorclient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
)

// UseCase use case получения доступности расписания (read-only, без блокировок)
type UseCase struct {
	scheduleRepo   ScheduleRepository
	bookingRepo    BookingRepository
	operatorClient OperatorServiceClient
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepository ScheduleRepository,
	bookingRepository BookingRepository,
	operatorCl OperatorServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:   scheduleRepository,
		bookingRepo:    bookingRepository,
		operatorClient: operatorCl,
		logger:         logger,
	}
}

// Execute возвращает снимок доступности расписания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ScheduleID <= 0 {
		return nil, fmt.Errorf("%w: scheduleID must be positive", ErrInvalidInput)
	}

	schedule, err := uc.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, schedulerepo.ErrScheduleNotFound) {
			uc.logger.Warn("GetAvailability: schedule id=%d not found", req.ScheduleID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("GetAvailability: failed to get schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	tenantModel, err := uc.operatorClient.GetTenant(ctx, schedule.TenantID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrTenantNotFound) {
			uc.logger.Warn("GetAvailability: tenant id=%d not found", schedule.TenantID)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("GetAvailability: failed to get tenant id=%d: %v", schedule.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}
	tenant := tenantModel.ToDomain()

	booked, err := uc.bookingRepo.SumActiveParticipants(ctx, req.ScheduleID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to count booked participants for schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to count booked participants: %v", ErrInternal, err)
	}

	resp := &Response{
		ScheduleID:     schedule.ID,
		TenantID:       schedule.TenantID,
		ProductID:      schedule.ProductID,
		Date:           schedule.Date,
		StartTime:      schedule.StartTime,
		Status:         schedule.Status,
		Bookable:       schedule.IsBookable(),
		TotalSpots:     schedule.MaxParticipants,
		BookedSpots:    booked,
		AvailableSpots: domain.AvailableSpots(schedule.MaxParticipants, booked),
	}
	if tenant.AllowOverbooking {
		resp.OverbookCapacity = schedule.OverbookCapacity(tenant.OverbookingLimitPercent)
	}

	return resp, nil
}
