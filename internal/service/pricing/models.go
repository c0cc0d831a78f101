package pricing

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/tax"
)

// Input входные данные расчёта цены брони
type Input struct {
	Tenant   *domain.Tenant
	Product  *domain.Product
	Schedule *domain.Schedule // nil для прямой брони продукта без расписания

	ParticipantCount int

	// Оплата онлайн даёт скидку, если она настроена у тенанта
	PayingOnline bool

	// Локация для разрешения налоговой ставки
	Location string

	MemberID int64

	// Налоговые данные тенанта (передаются вызывающим, composer их не читает из БД)
	TaxRates   []domain.TaxRate
	Exemptions []domain.TaxExemption

	Now time.Time
}

// Discount codes
const (
	DiscountOnlinePayment = "online_payment"
	DiscountEarlyBird     = "early_bird"
)

// DiscountLine одна применённая скидка
type DiscountLine struct {
	Code    string
	Percent float64
	Amount  float64
}

// Breakdown полная раскладка цены брони
type Breakdown struct {
	UnitPrice        float64
	ParticipantCount int
	Subtotal         float64

	Discounts      []DiscountLine
	DiscountAmount float64

	// Сумма после скидок - база для налога
	TaxableAmount float64

	Tax       tax.Result
	TaxAmount float64

	TotalAmount float64

	// Депозитная схема: сколько платится сейчас и когда должен быть погашен остаток.
	// Если депозиты не используются или активность слишком близко, DepositDue = 0
	// и вся сумма подлежит оплате сразу (PaymentDueDate = nil).
	DepositDue     float64
	BalanceDue     float64
	PaymentDueDate *time.Time
}
