package create_booking

import (
	"context"

	reserveSpot "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/reserve_spot"
)

type ReserveSpotUseCase interface {
	Execute(ctx context.Context, req *reserveSpot.Request) (*reserveSpot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
