package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/get_availability"
)

const (
	msgInvalidScheduleID = "некорректный ID расписания"
	msgScheduleNotFound  = "расписание не найдено"
	msgTenantNotFound    = "оператор не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/schedules/{scheduleId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scheduleID, err := strconv.ParseInt(vars["scheduleId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /schedules/{id}/availability - Invalid schedule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{ScheduleID: scheduleID})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /schedules/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidScheduleID)

		case errors.Is(err, getAvailability.ErrScheduleNotFound):
			h.logger.Warn("GET /schedules/{id}/availability - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, getAvailability.ErrTenantNotFound):
			h.logger.Warn("GET /schedules/{id}/availability - Tenant not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		default:
			h.logger.Error("GET /schedules/{id}/availability - Failed to get availability: schedule_id=%d, error=%v",
				scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /schedules/{id}/availability - Availability retrieved: schedule_id=%d, available=%d",
		scheduleID, result.AvailableSpots)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
