package get_availability

import (
	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	getAvailability "github.com/m04kA/SMC-ActivityBookingService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ScheduleID int64  `json:"scheduleId"`
	TenantID   int64  `json:"tenantId"`
	ProductID  int64  `json:"productId"`
	Date       string `json:"date"`      // "2026-09-15"
	StartTime  string `json:"startTime"` // "10:00"
	Status     string `json:"status"`
	Bookable   bool   `json:"bookable"`

	TotalSpots       int `json:"totalSpots"`
	BookedSpots      int `json:"bookedSpots"`
	AvailableSpots   int `json:"availableSpots"`
	OverbookCapacity int `json:"overbookCapacity,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		ScheduleID:       resp.ScheduleID,
		TenantID:         resp.TenantID,
		ProductID:        resp.ProductID,
		Date:             resp.Date.Format(domain.DateFormat),
		StartTime:        resp.StartTime.String(),
		Status:           string(resp.Status),
		Bookable:         resp.Bookable,
		TotalSpots:       resp.TotalSpots,
		BookedSpots:      resp.BookedSpots,
		AvailableSpots:   resp.AvailableSpots,
		OverbookCapacity: resp.OverbookCapacity,
	}
}
