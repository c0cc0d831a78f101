package cancel_booking

import (
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/ptr"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason  *string `json:"cancellationReason,omitempty"`
	WeatherCancellation bool    `json:"weatherCancellation,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(userID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		UserID:              userID,
		CancellationReason:  ptr.Deref(r.CancellationReason, ""),
		WeatherCancellation: r.WeatherCancellation,
	}
}
