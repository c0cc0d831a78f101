package no_show

import (
	"context"

	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
)

type BookingService interface {
	MarkNoShow(ctx context.Context, bookingID int64, req *models.MarkNoShowRequest) (*models.NoShowResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
