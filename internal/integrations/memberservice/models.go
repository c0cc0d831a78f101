package memberservice

import (
	"time"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
)

// Member модель профиля участника из MemberService
type Member struct {
	ID               int64      `json:"id"`
	TenantID         int64      `json:"tenant_id"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Certifications   []string   `json:"certifications"`
	Skills           []string   `json:"skills"`
	LoggedDives      int        `json:"logged_dives"`
	Documents        []string   `json:"documents"`
	HealthFormStatus string     `json:"health_form_status"`
	ParentalConsent  string     `json:"parental_consent"`
	MedicalFitness   bool       `json:"medical_fitness"`
	AccountCreatedAt time.Time  `json:"account_created_at"`
}

// ToDomain конвертирует модель в доменный профиль участника
func (m *Member) ToDomain() *domain.MemberProfile {
	return &domain.MemberProfile{
		ID:               m.ID,
		TenantID:         m.TenantID,
		DateOfBirth:      m.DateOfBirth,
		Certifications:   m.Certifications,
		Skills:           m.Skills,
		LoggedDives:      m.LoggedDives,
		Documents:        m.Documents,
		HealthFormStatus: domain.FormStatus(m.HealthFormStatus),
		ParentalConsent:  domain.FormStatus(m.ParentalConsent),
		MedicalFitness:   m.MedicalFitness,
		AccountCreatedAt: m.AccountCreatedAt,
	}
}

// ErrorResponse модель ошибки от MemberService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
