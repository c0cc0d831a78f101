package refund_preview

import (
	"context"

	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
)

type BookingService interface {
	RefundPreview(ctx context.Context, bookingID int64, req *models.RefundPreviewRequest) (*models.RefundPreviewResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
