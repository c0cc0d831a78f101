package operatorservice

import (
	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// Tenant модель оператора из OperatorService
type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	BookingCutoffHours    int    `json:"booking_cutoff_hours"`
	MaxAdvanceBookingDays int    `json:"max_advance_booking_days"`
	SameDayCutoffTime     string `json:"same_day_cutoff_time"` // "18:00"

	TaxRate          float64 `json:"tax_rate"`
	PricesIncludeTax bool    `json:"prices_include_tax"`

	OnlinePaymentDiscountPercent float64 `json:"online_payment_discount_percent"`
	EarlyBirdDiscountPercent     float64 `json:"early_bird_discount_percent"`
	EarlyBirdDays                int     `json:"early_bird_days"`

	DepositPercent       float64 `json:"deposit_percent"`
	DepositDueDaysBefore int     `json:"deposit_due_days_before"`

	AllowOverbooking        bool `json:"allow_overbooking"`
	OverbookingLimitPercent int  `json:"overbooking_limit_percent"`
	WaitlistEnabled         bool `json:"waitlist_enabled"`

	HighValueThreshold float64 `json:"high_value_threshold"`

	// Пользователи с правами персонала тенанта
	ManagerIDs []int64 `json:"manager_ids"`
}

// IsManager returns true if the user has staff rights for the tenant
func (t *Tenant) IsManager(userID int64) bool {
	for _, id := range t.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ToDomain конвертирует модель в доменные настройки тенанта
func (t *Tenant) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:                           t.ID,
		Name:                         t.Name,
		BookingCutoffHours:           t.BookingCutoffHours,
		MaxAdvanceBookingDays:        t.MaxAdvanceBookingDays,
		SameDayCutoffTime:            types.TimeString(t.SameDayCutoffTime),
		TaxRate:                      t.TaxRate,
		PricesIncludeTax:             t.PricesIncludeTax,
		OnlinePaymentDiscountPercent: t.OnlinePaymentDiscountPercent,
		EarlyBirdDiscountPercent:     t.EarlyBirdDiscountPercent,
		EarlyBirdDays:                t.EarlyBirdDays,
		DepositPercent:               t.DepositPercent,
		DepositDueDaysBefore:         t.DepositDueDaysBefore,
		AllowOverbooking:             t.AllowOverbooking,
		OverbookingLimitPercent:      t.OverbookingLimitPercent,
		WaitlistEnabled:              t.WaitlistEnabled,
		HighValueThreshold:           t.HighValueThreshold,
	}
}

// Product модель продукта (активности) из OperatorService
type Product struct {
	ID              int64   `json:"id"`
	TenantID        int64   `json:"tenant_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	BasePrice       float64 `json:"base_price"`
	DurationMinutes int     `json:"duration_minutes"`
	TaxExempt       bool    `json:"tax_exempt"`
	PolicyID        *int64  `json:"cancellation_policy_id,omitempty"`

	Requirements []Requirement `json:"requirements"`
}

// ToDomain конвертирует модель в доменный продукт
func (p *Product) ToDomain() *domain.Product {
	return &domain.Product{
		ID:              p.ID,
		TenantID:        p.TenantID,
		Name:            p.Name,
		Type:            p.Type,
		BasePrice:       p.BasePrice,
		DurationMinutes: p.DurationMinutes,
		TaxExempt:       p.TaxExempt,
		PolicyID:        p.PolicyID,
	}
}

// Requirement модель требования к участнику из OperatorService
type Requirement struct {
	ID           int64    `json:"id"`
	ProductID    int64    `json:"product_id"`
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	IsMandatory  bool     `json:"is_mandatory"`
	CanOverride  bool     `json:"can_override"`
	BlockBooking bool     `json:"block_booking"`
	SortOrder    int      `json:"sort_order"`
	IsActive     bool     `json:"is_active"`

	CertificationCode string   `json:"certification_code,omitempty"`
	MinAge            int      `json:"min_age,omitempty"`
	MaxAge            int      `json:"max_age,omitempty"`
	MinLoggedDives    int      `json:"min_logged_dives,omitempty"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
	SkillCode         string   `json:"skill_code,omitempty"`
}

// ToDomain конвертирует модель в доменное требование
func (r *Requirement) ToDomain() domain.ProductRequirement {
	return domain.ProductRequirement{
		ID:                r.ID,
		ProductID:         r.ProductID,
		Kind:              domain.RequirementKind(r.Kind),
		Name:              r.Name,
		Description:       r.Description,
		IsMandatory:       r.IsMandatory,
		CanOverride:       r.CanOverride,
		BlockBooking:      r.BlockBooking,
		SortOrder:         r.SortOrder,
		CertificationCode: r.CertificationCode,
		MinAge:            r.MinAge,
		MaxAge:            r.MaxAge,
		MinLoggedDives:    r.MinLoggedDives,
		RequiredDocuments: r.RequiredDocuments,
		SkillCode:         r.SkillCode,
	}
}

// ActiveRequirements возвращает активные требования продукта,
// отсортированные по sort_order (порядок отдаёт OperatorService)
func (p *Product) ActiveRequirements() []domain.ProductRequirement {
	result := make([]domain.ProductRequirement, 0, len(p.Requirements))
	for _, r := range p.Requirements {
		if r.IsActive {
			result = append(result, r.ToDomain())
		}
	}
	return result
}

// ErrorResponse модель ошибки от OperatorService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
