package validate_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	validateBooking "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/validate_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные параметры запроса"
	msgTenantNotFound     = "оператор не найден"
	msgProductNotFound    = "продукт не найден"
	msgScheduleNotFound   = "расписание не найдено"
	msgMemberNotFound     = "профиль участника не найден"
)

type Handler struct {
	useCase ValidateBookingUseCase
	logger  Logger
}

func NewHandler(useCase ValidateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/validate
//
// Бизнес-исходы (нарушение отсечки, проваленное требование, нехватка мест)
// не являются ошибками HTTP: возвращается 200 с canBook=false и деталями
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ValidateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/validate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/validate - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, validateBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/validate - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, validateBooking.ErrTenantNotFound):
			h.logger.Warn("POST /bookings/validate - Tenant not found: tenant_id=%d", req.TenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, validateBooking.ErrProductNotFound):
			h.logger.Warn("POST /bookings/validate - Product not found: product_id=%d", req.ProductID)
			handlers.RespondNotFound(w, msgProductNotFound)

		case errors.Is(err, validateBooking.ErrScheduleNotFound):
			h.logger.Warn("POST /bookings/validate - Schedule not found: schedule_id=%d", req.ScheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, validateBooking.ErrMemberNotFound):
			h.logger.Warn("POST /bookings/validate - Member not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgMemberNotFound)

		default:
			h.logger.Error("POST /bookings/validate - Validation failed: user_id=%d, schedule_id=%d, error=%v",
				userID, req.ScheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/validate - Validation completed: user_id=%d, schedule_id=%d, can_book=%t",
		userID, req.ScheduleID, result.CanBook)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
