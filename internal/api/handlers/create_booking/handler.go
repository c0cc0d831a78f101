package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	reserveSpot "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/reserve_spot"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidInput        = "некорректные параметры бронирования"
	msgTenantNotFound      = "оператор не найден"
	msgProductNotFound     = "продукт не найден"
	msgScheduleNotFound    = "расписание не найдено"
	msgScheduleNotBookable = "расписание недоступно для бронирования"
	msgWindowClosed        = "окно бронирования закрыто"
	msgNoCapacity          = "недостаточно свободных мест"
	msgConflict            = "конфликт бронирования, повторите запрос"
)

type Handler struct {
	useCase ReserveSpotUseCase
	logger  Logger
}

func NewHandler(useCase ReserveSpotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		var capErr *reserveSpot.CapacityError
		switch {
		case errors.As(err, &capErr):
			h.logger.Warn("POST /bookings - Insufficient capacity: schedule_id=%d, available=%d",
				req.ScheduleID, capErr.Available)
			handlers.RespondConflict(w, CapacityConflictResponse{
				Error:          msgNoCapacity,
				AvailableSpots: capErr.Available,
				WaitlistOpen:   capErr.WaitlistOpen,
			})

		case errors.Is(err, reserveSpot.ErrAdmissionConflict):
			h.logger.Warn("POST /bookings - Admission conflict: schedule_id=%d", req.ScheduleID)
			handlers.RespondError(w, http.StatusConflict, msgConflict)

		case errors.Is(err, reserveSpot.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reserveSpot.ErrTenantNotFound):
			h.logger.Warn("POST /bookings - Tenant not found: tenant_id=%d", req.TenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, reserveSpot.ErrProductNotFound):
			h.logger.Warn("POST /bookings - Product not found: product_id=%d", req.ProductID)
			handlers.RespondNotFound(w, msgProductNotFound)

		case errors.Is(err, reserveSpot.ErrScheduleNotFound):
			h.logger.Warn("POST /bookings - Schedule not found: schedule_id=%d", req.ScheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, reserveSpot.ErrScheduleNotBookable):
			h.logger.Warn("POST /bookings - Schedule not bookable: schedule_id=%d", req.ScheduleID)
			handlers.RespondUnprocessable(w, msgScheduleNotBookable)

		case errors.Is(err, reserveSpot.ErrBookingWindowClosed):
			h.logger.Warn("POST /bookings - Booking window closed: schedule_id=%d, error=%v", req.ScheduleID, err)
			handlers.RespondUnprocessable(w, msgWindowClosed)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, schedule_id=%d, error=%v",
				userID, req.ScheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, reference=%s, user_id=%d",
		result.BookingID, result.Reference, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
