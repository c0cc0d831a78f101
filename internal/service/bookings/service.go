package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/policy"
	scheduleRepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	operatorClient "github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/refund"
)

// Service сервис жизненного цикла бронирований: просмотр, отмена с расчётом
// возврата, неявка, предварительный расчёт возврата
type Service struct {
	bookingRepo    BookingRepository
	scheduleRepo   ScheduleRepository
	policyRepo     PolicyRepository
	operatorClient OperatorServiceClient
	refundEngine   RefundEngine
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepository BookingRepository,
	scheduleRepository ScheduleRepository,
	policyRepository PolicyRepository,
	operatorCl OperatorServiceClient,
	refundEngine RefundEngine,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepository,
		scheduleRepo:   scheduleRepository,
		policyRepo:     policyRepository,
		operatorClient: operatorCl,
		refundEngine:   refundEngine,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID.
// Проверяет права доступа - участник видит только своё бронирование,
// персонал тенанта видит все брони тенанта
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetByReference получает бронирование по публичному UUID-коду
func (s *Service) GetByReference(ctx context.Context, reference string, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByReference: fetching booking reference=%s for user=%d", reference, userID)

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByReference: access denied for user=%d to booking reference=%s", userID, reference)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований участника.
// Опционально фильтрует по тенанту и статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for member=%d, status=%v", req.MemberID, req.Status)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetUserBookings: invalid status=%v for member=%d", req.Status, req.MemberID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByUserFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for member=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for member=%d", len(bookings), req.MemberID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование с расчётом возврата по действующей политике.
// Участник может отменить только своё бронирование; персонал тенанта - любое.
// Погодная отмена доступна только персоналу.
// Отмена и освобождение мест выполняются в одной сериализуемой транзакции
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancellationResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason too long", ErrInvalidInput)
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isManager, err := s.resolveActor(ctx, booking, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.WeatherCancellation && !isManager {
		s.logger.Warn("Cancel: weather cancellation requested by non-staff user=%d for booking id=%d", req.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	schedule, err := s.getSchedule(ctx, booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	activityAt, err := schedule.ActivityDateTime()
	if err != nil {
		s.logger.Error("Cancel: invalid start time for schedule id=%d: %v", schedule.ID, err)
		return nil, fmt.Errorf("%w: invalid schedule start time: %v", ErrInternal, err)
	}

	policy, err := s.resolvePolicy(ctx, booking)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()

	// Погодная отмена засчитывается и когда расписание уже отменено по погоде
	weather := req.WeatherCancellation || schedule.Status == domain.ScheduleWeatherCancelled

	result, err := s.refundEngine.CalculateRefund(refund.Input{
		AmountPaid:            booking.AmountPaid,
		ActivityDateTime:      activityAt,
		CancellationTime:      now,
		IsWeatherCancellation: weather,
		Policy:                policy,
	})
	if err != nil {
		s.logger.Error("Cancel: refund calculation failed for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: refund calculation failed: %v", ErrInternal, err)
	}

	if err := s.refundEngine.ValidateRefundAmount(booking, result.RefundAmount); err != nil {
		s.logger.Error("Cancel: refund amount %.2f rejected for booking id=%d: %v", result.RefundAmount, bookingID, err)
		return nil, fmt.Errorf("%w: refund validation failed: %v", ErrInternal, err)
	}

	paymentStatus := refundPaymentStatus(booking, result.RefundAmount)

	// Отмена брони и освобождение мест - атомарно
	txErr := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Cancel(txCtx, bookingID, req.CancellationReason,
			result.RefundAmount, result.RefundPercent, paymentStatus, now); err != nil {
			return err
		}
		return s.scheduleRepo.AdjustBookedCount(txCtx, booking.ScheduleID, -booking.ParticipantCount)
	})
	if txErr != nil {
		// Предикат по статусу не совпал: бронь уже отменена или помечена
		// неявкой параллельной операцией. Места второй раз не освобождаются
		if errors.Is(txErr, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("Cancel: booking id=%d already transitioned, concurrent cancel or no-show", bookingID)
			return nil, ErrCannotCancel
		}
		if errors.Is(txErr, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found during cancellation", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, txErr)
		return nil, fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, txErr)
	}

	s.logger.Info("Cancel: booking id=%d cancelled, refund %.2f (%.0f%%), weather=%t",
		bookingID, result.RefundAmount, result.RefundPercent, result.WeatherApplied)

	return &models.CancellationResponse{
		BookingID:      bookingID,
		Status:         string(domain.StatusCancelled),
		PaymentStatus:  string(paymentStatus),
		RefundAmount:   result.RefundAmount,
		RefundPercent:  result.RefundPercent,
		FeeAmount:      result.FeeAmount,
		WeatherApplied: result.WeatherApplied,
	}, nil
}

// MarkNoShow помечает бронь как неявку со штрафом по действующей политике.
// Доступно только персоналу тенанта. Ступени лестницы возвратов не применяются
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64, req *models.MarkNoShowRequest) (*models.NoShowResponse, error) {
	s.logger.Info("MarkNoShow: marking booking id=%d as no-show by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.TenantID, req.UserID); err != nil {
		s.logger.Warn("MarkNoShow: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	if !booking.CanBeMarkedNoShow() {
		s.logger.Warn("MarkNoShow: booking id=%d cannot be marked as no-show, status=%s", bookingID, booking.Status)
		return nil, ErrCannotMarkNoShow
	}

	policy, err := s.resolvePolicy(ctx, booking)
	if err != nil {
		return nil, err
	}

	result, err := s.refundEngine.CalculateNoShowPenalty(booking.AmountPaid, policy)
	if err != nil {
		s.logger.Error("MarkNoShow: penalty calculation failed for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: penalty calculation failed: %v", ErrInternal, err)
	}

	paymentStatus := refundPaymentStatus(booking, result.RefundAmount)

	txErr := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.MarkNoShow(txCtx, bookingID, result.RefundAmount, result.FeePercent, paymentStatus); err != nil {
			return err
		}
		// Неявка освобождает места так же, как отмена
		return s.scheduleRepo.AdjustBookedCount(txCtx, booking.ScheduleID, -booking.ParticipantCount)
	})
	if txErr != nil {
		if errors.Is(txErr, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("MarkNoShow: booking id=%d already transitioned, concurrent cancel or no-show", bookingID)
			return nil, ErrCannotMarkNoShow
		}
		if errors.Is(txErr, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("MarkNoShow: booking id=%d not found during update", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("MarkNoShow: transaction failed for booking id=%d: %v", bookingID, txErr)
		return nil, fmt.Errorf("%w: MarkNoShow - transaction failed: %v", ErrInternal, txErr)
	}

	s.logger.Info("MarkNoShow: booking id=%d marked as no-show, fee %.2f (%.0f%%)",
		bookingID, result.FeeAmount, result.FeePercent)

	return &models.NoShowResponse{
		BookingID:     bookingID,
		Status:        string(domain.StatusNoShow),
		PaymentStatus: string(paymentStatus),
		FeePercent:    result.FeePercent,
		FeeAmount:     result.FeeAmount,
		RefundAmount:  result.RefundAmount,
	}, nil
}

// RefundPreview считает возврат на текущий момент, не изменяя бронь.
// Включает альтернативу переноса, если политика её разрешает
func (s *Service) RefundPreview(ctx context.Context, bookingID int64, req *models.RefundPreviewRequest) (*models.RefundPreviewResponse, error) {
	s.logger.Info("RefundPreview: calculating refund for booking id=%d, user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isManager, err := s.resolveActor(ctx, booking, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.WeatherCancellation && !isManager {
		return nil, ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		return nil, ErrCannotCancel
	}

	schedule, err := s.getSchedule(ctx, booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	activityAt, err := schedule.ActivityDateTime()
	if err != nil {
		s.logger.Error("RefundPreview: invalid start time for schedule id=%d: %v", schedule.ID, err)
		return nil, fmt.Errorf("%w: invalid schedule start time: %v", ErrInternal, err)
	}

	policy, err := s.resolvePolicy(ctx, booking)
	if err != nil {
		return nil, err
	}

	weather := req.WeatherCancellation || schedule.Status == domain.ScheduleWeatherCancelled

	result, err := s.refundEngine.CalculateRefund(refund.Input{
		AmountPaid:            booking.AmountPaid,
		ActivityDateTime:      activityAt,
		CancellationTime:      s.timeProvider.Now(),
		IsWeatherCancellation: weather,
		Policy:                policy,
	})
	if err != nil {
		s.logger.Error("RefundPreview: refund calculation failed for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: refund calculation failed: %v", ErrInternal, err)
	}

	reschedule := s.refundEngine.RescheduleOption(booking.TotalAmount, policy)

	return models.FromRefundResult(bookingID, booking.AmountPaid, result, reschedule), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("getBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("getBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

func (s *Service) getSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("getSchedule: schedule id=%d not found", id)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("getSchedule: repository error for schedule id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return schedule, nil
}

// resolveActor проверяет доступ и сообщает, действует ли пользователь
// как персонал тенанта
func (s *Service) resolveActor(ctx context.Context, booking *domain.Booking, userID int64) (bool, error) {
	if booking.MemberID == userID {
		return false, nil
	}
	if err := s.checkManagerAccess(ctx, booking.TenantID, userID); err != nil {
		return false, err
	}
	return true, nil
}

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию.
// Участник видит своё бронирование, персонал тенанта - все брони тенанта
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.MemberID == userID {
		return nil
	}
	if err := s.checkManagerAccess(ctx, booking.TenantID, userID); err != nil {
		return ErrAccessDenied
	}
	return nil
}

// checkManagerAccess проверяет, что пользователь входит в персонал тенанта
func (s *Service) checkManagerAccess(ctx context.Context, tenantID int64, userID int64) error {
	tenant, err := s.operatorClient.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, operatorClient.ErrTenantNotFound) {
			s.logger.Warn("checkManagerAccess: tenant id=%d not found", tenantID)
			return ErrTenantNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get tenant id=%d: %v", tenantID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get tenant: %v", ErrInternal, err)
	}

	if !tenant.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not staff of tenant=%d", userID, tenantID)
		return ErrAccessDenied
	}

	return nil
}

// resolvePolicy выбирает действующую политику отмены:
// политика продукта > дефолт тенанта > nil (фолбэк-лестница движка)
func (s *Service) resolvePolicy(ctx context.Context, booking *domain.Booking) (*domain.CancellationPolicy, error) {
	var productPolicy *domain.CancellationPolicy

	product, err := s.operatorClient.GetProduct(ctx, booking.TenantID, booking.ProductID)
	if err != nil && !errors.Is(err, operatorClient.ErrProductNotFound) {
		s.logger.Error("resolvePolicy: failed to get product id=%d: %v", booking.ProductID, err)
		return nil, fmt.Errorf("%w: resolvePolicy - failed to get product: %v", ErrInternal, err)
	}
	if err == nil {
		if policyID := product.ToDomain().PolicyID; policyID != nil {
			productPolicy, err = s.policyRepo.GetByID(ctx, *policyID)
			if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
				s.logger.Error("resolvePolicy: failed to get policy id=%d: %v", *policyID, err)
				return nil, fmt.Errorf("%w: resolvePolicy - failed to get policy: %v", ErrInternal, err)
			}
		}
	}

	tenantDefault, err := s.policyRepo.GetDefaultByTenant(ctx, booking.TenantID)
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		s.logger.Error("resolvePolicy: failed to get default policy for tenant id=%d: %v", booking.TenantID, err)
		return nil, fmt.Errorf("%w: resolvePolicy - failed to get default policy: %v", ErrInternal, err)
	}

	return refund.ResolvePolicy(nil, productPolicy, tenantDefault), nil
}

// refundPaymentStatus определяет платёжный статус брони после возврата
func refundPaymentStatus(booking *domain.Booking, refundAmount float64) domain.PaymentStatus {
	switch {
	case booking.AmountPaid <= 0:
		return booking.PaymentStatus
	case refundAmount >= booking.AmountPaid:
		return domain.PaymentRefunded
	case refundAmount > 0:
		return domain.PaymentPartialRefund
	default:
		return booking.PaymentStatus
	}
}
