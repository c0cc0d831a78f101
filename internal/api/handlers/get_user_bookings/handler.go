package get_user_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ActivityBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ActivityBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/ptr"
)

const (
	msgInvalidUserID   = "некорректный ID пользователя"
	msgInvalidTenantID = "некорректный ID оператора"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgInvalidStatus   = "некорректный статус бронирования"
	msgForbidden       = "доступ запрещен"
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

// Handle GET /api/v1/users/{userId}/bookings?status=&tenantId=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetUserID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{id}/bookings - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	authUserID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Историю видит только сам участник
	if authUserID != targetUserID {
		h.logger.Warn("GET /users/{id}/bookings - Access denied: auth_user=%d, target_user=%d",
			authUserID, targetUserID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req := &models.GetUserBookingsRequest{MemberID: targetUserID}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}
	if tenantRaw := r.URL.Query().Get("tenantId"); tenantRaw != "" {
		tenantID, err := strconv.ParseInt(tenantRaw, 10, 64)
		if err != nil || tenantID <= 0 {
			h.logger.Warn("GET /users/{id}/bookings - Invalid tenant ID: %s", tenantRaw)
			handlers.RespondBadRequest(w, msgInvalidTenantID)
			return
		}
		req.TenantID = ptr.Ptr(tenantID)
	}

	result, err := h.service.GetUserBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /users/{id}/bookings - Invalid status filter: user_id=%d", targetUserID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /users/{id}/bookings - Failed to get bookings: user_id=%d, error=%v",
				targetUserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/{id}/bookings - Retrieved %d bookings for user_id=%d",
		len(result.Bookings), targetUserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
