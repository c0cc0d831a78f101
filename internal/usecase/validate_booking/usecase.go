package validate_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	memberclient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/memberservice"
	operatorclient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
)

// UseCase use case валидации бронирования.
//
// Read-only проверка: её можно безопасно вызывать спекулятивно до создания
// брони, чтобы показать пользователю ошибки и требования заранее. Снимок
// вместимости здесь неавторитетный - admission перепроверяет вместимость и
// тайминг под блокировкой строки расписания.
type UseCase struct {
	scheduleRepo   ScheduleRepository
	bookingRepo    BookingRepository
	operatorClient OperatorServiceClient
	memberClient   MemberServiceClient
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepository ScheduleRepository,
	bookingRepository BookingRepository,
	operatorCl OperatorServiceClient,
	memberCl MemberServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:   scheduleRepository,
		bookingRepo:    bookingRepository,
		operatorClient: operatorCl,
		memberClient:   memberCl,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет валидацию бронирования.
// Детерминированность: при одинаковых входных данных (включая время от
// timeProvider и состояние хранилища) результат идентичен.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ValidateBooking: tenant=%d, product=%d, schedule=%d, member=%d, participants=%d",
		req.TenantID, req.ProductID, req.ScheduleID, req.MemberID, req.ParticipantCount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ValidateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Загружаем тенанта, продукт с требованиями и профиль участника
	tenantModel, err := uc.operatorClient.GetTenant(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrTenantNotFound) {
			uc.logger.Warn("ValidateBooking: tenant id=%d not found", req.TenantID)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("ValidateBooking: failed to get tenant id=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}
	tenant := tenantModel.ToDomain()

	productModel, err := uc.operatorClient.GetProduct(ctx, req.TenantID, req.ProductID)
	if err != nil {
		if errors.Is(err, operatorclient.ErrProductNotFound) {
			uc.logger.Warn("ValidateBooking: product id=%d not found", req.ProductID)
			return nil, ErrProductNotFound
		}
		uc.logger.Error("ValidateBooking: failed to get product id=%d: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: failed to get product: %v", ErrInternal, err)
	}
	product := productModel.ToDomain()

	memberModel, err := uc.memberClient.GetMember(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, memberclient.ErrMemberNotFound) {
			uc.logger.Warn("ValidateBooking: member id=%d not found", req.MemberID)
			return nil, ErrMemberNotFound
		}
		uc.logger.Error("ValidateBooking: failed to get member id=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: failed to get member: %v", ErrInternal, err)
	}
	member := memberModel.ToDomain()

	// 3. Загружаем расписание и снимок занятости (без блокировки)
	schedule, err := uc.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, schedulerepo.ErrScheduleNotFound) {
			uc.logger.Warn("ValidateBooking: schedule id=%d not found", req.ScheduleID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("ValidateBooking: failed to get schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	activityAt, err := schedule.ActivityDateTime()
	if err != nil {
		uc.logger.Error("ValidateBooking: invalid start time for schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: invalid schedule start time: %v", ErrInternal, err)
	}

	booked, err := uc.bookingRepo.SumActiveParticipants(ctx, req.ScheduleID)
	if err != nil {
		uc.logger.Error("ValidateBooking: failed to count booked participants for schedule id=%d: %v", req.ScheduleID, err)
		return nil, fmt.Errorf("%w: failed to count booked participants: %v", ErrInternal, err)
	}

	resp := evaluate(&evaluationInput{
		Tenant:           tenant,
		Product:          product,
		Schedule:         schedule,
		Member:           member,
		Requirements:     productModel.ActiveRequirements(),
		ParticipantCount: req.ParticipantCount,
		Booked:           booked,
		ActivityAt:       activityAt,
		Now:              now,
	})

	uc.logger.Info("ValidateBooking: schedule=%d canBook=%t errors=%d warnings=%d manualReview=%t",
		req.ScheduleID, resp.CanBook, len(resp.Errors), len(resp.Warnings), resp.RequiresManualReview)

	return resp, nil
}

// evaluationInput все данные, нужные для чистой оценки правил
type evaluationInput struct {
	Tenant           *domain.Tenant
	Product          *domain.Product
	Schedule         *domain.Schedule
	Member           *domain.MemberProfile
	Requirements     []domain.ProductRequirement
	ParticipantCount int
	Booked           int
	ActivityAt       time.Time
	Now              time.Time
}

// evaluate чистая композиция всех правил; время передаётся явно
func evaluate(in *evaluationInput) *Response {
	resp := &Response{
		TotalSpots:     in.Schedule.MaxParticipants,
		AvailableSpots: domain.AvailableSpots(in.Schedule.MaxParticipants, in.Booked),
	}

	// 1. Количество участников
	if in.ParticipantCount < domain.MinParticipantsPerBooking || in.ParticipantCount > domain.MaxParticipantsPerBooking {
		resp.Errors = append(resp.Errors, Issue{
			Code: CodeInvalidParticipants,
			Message: fmt.Sprintf("participant count must be between %d and %d",
				domain.MinParticipantsPerBooking, domain.MaxParticipantsPerBooking),
		})
	}

	// 2. Статус расписания
	if !in.Schedule.IsBookable() {
		resp.Errors = append(resp.Errors, Issue{
			Code:    CodeScheduleNotBookable,
			Message: fmt.Sprintf("schedule does not accept bookings (status %s)", in.Schedule.Status),
		})
	}

	// 3. Тайминг
	timingErrs, timingWarns := timingIssues(in.Tenant, in.ActivityAt, in.Now)
	resp.Errors = append(resp.Errors, timingErrs...)
	resp.Warnings = append(resp.Warnings, timingWarns...)

	// 4. Вместимость (снимок; admission повторяет проверку под блокировкой)
	capacity := domain.CheckCapacity(in.Schedule, in.Tenant, in.Booked, in.ParticipantCount)
	if !capacity.Admissible {
		resp.Errors = append(resp.Errors, Issue{
			Code:    CodeInsufficientCapacity,
			Message: fmt.Sprintf("only %d spots available", capacity.Available),
		})
	} else if capacity.OverbookingUsed || resp.AvailableSpots-in.ParticipantCount <= 1 {
		resp.Warnings = append(resp.Warnings, Issue{
			Code:    CodeLowCapacity,
			Message: "almost fully booked",
		})
	}

	// 5. Требования к участнику
	blockingFailureOverridable := false
	for i := range in.Requirements {
		requirement := &in.Requirements[i]
		outcome, detail := evaluateRequirement(requirement, in.Member, in.ActivityAt)

		status := RequirementStatus{
			RequirementID: requirement.ID,
			Kind:          requirement.Kind,
			Name:          requirement.Name,
			Blocking:      requirement.IsBlocking(),
			CanOverride:   requirement.CanOverride,
			Detail:        detail,
		}

		switch outcome {
		case outcomePassed:
			resp.Requirements.Passed = append(resp.Requirements.Passed, status)
		case outcomePending:
			resp.Requirements.Pending = append(resp.Requirements.Pending, status)
			resp.Warnings = append(resp.Warnings, Issue{
				Code:    CodeRequirementPending,
				Message: fmt.Sprintf("%s: %s", requirement.Name, detail),
			})
		case outcomeFailed:
			resp.Requirements.Failed = append(resp.Requirements.Failed, status)
			issue := Issue{
				Code:    CodeRequirementFailed,
				Message: fmt.Sprintf("%s: %s", requirement.Name, detail),
			}
			if requirement.IsBlocking() {
				resp.Errors = append(resp.Errors, issue)
				if requirement.CanOverride {
					blockingFailureOverridable = true
				}
			} else {
				resp.Warnings = append(resp.Warnings, issue)
			}
		}
	}

	// 6. Особые условия расписания
	resp.Warnings = append(resp.Warnings, specialConditionWarnings(in.Schedule)...)

	resp.CanBook = len(resp.Errors) == 0

	// 7. Ручное подтверждение персоналом
	resp.RequiresManualReview = requiresManualReview(in, blockingFailureOverridable)

	return resp
}

// requiresManualReview определяет, нужна ли ручная проверка персоналом:
// свежий аккаунт, дорогая бронь или перекрываемый персоналом провал
// блокирующего требования.
func requiresManualReview(in *evaluationInput, blockingFailureOverridable bool) bool {
	if age := in.Member.AccountAge(in.Now); age >= 0 && age < domain.NewAccountReviewAgeHours*time.Hour {
		return true
	}
	unitPrice := in.Product.PriceFor(in.Schedule)
	if unitPrice*float64(in.ParticipantCount) > in.Tenant.EffectiveHighValueThreshold() {
		return true
	}
	return blockingFailureOverridable
}
