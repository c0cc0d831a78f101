package no_show

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgCannotMarkNoShow = "бронирование не может быть помечено как неявка"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/no-show
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/no-show - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/no-show - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.MarkNoShow(r.Context(), bookingID, &models.MarkNoShowRequest{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/no-show - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/no-show - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrCannotMarkNoShow):
			h.logger.Warn("PATCH /bookings/{id}/no-show - Cannot mark no-show: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgCannotMarkNoShow)

		default:
			h.logger.Error("PATCH /bookings/{id}/no-show - Failed to mark no-show: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/no-show - Booking marked as no-show: booking_id=%d, fee=%.2f",
		bookingID, result.FeeAmount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
