package quote_price

import "github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"

// Request модель запроса расчёта цены без создания брони
type Request struct {
	TenantID         int64
	ProductID        int64
	ScheduleID       *int64 // nil - прямой расчёт по базовой цене продукта
	MemberID         int64
	ParticipantCount int
	PayingOnline     bool
	Location         string
}

// Response раскладка цены. Котировка ни к чему не обязывает: снимок цены
// фиксируется заново на момент admission
type Response struct {
	Pricing pricing.Breakdown
}
