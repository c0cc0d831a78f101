package domain

import "time"

// MemberProfile снимок данных участника, достаточный для проверки требований.
// Ядро не ходит за профилем само - профиль передаётся вызывающим.
type MemberProfile struct {
	ID               int64
	TenantID         int64
	DateOfBirth      *time.Time
	Certifications   []string // Коды сертификатов участника
	Skills           []string // Коды подтверждённых навыков
	LoggedDives      int
	Documents        []string // Коды загруженных документов
	HealthFormStatus FormStatus
	ParentalConsent  FormStatus
	MedicalFitness   bool // Подтверждённая физическая готовность
	AccountCreatedAt time.Time
}

// FormStatus статус формы, требующей заполнения (медицинская анкета, согласие родителей)
type FormStatus string

const (
	FormMissing   FormStatus = "missing"
	FormPending   FormStatus = "pending" // Отправлена, ждёт проверки
	FormApproved  FormStatus = "approved"
	FormRejected  FormStatus = "rejected"
)

// AgeAt возвращает полный возраст участника на указанную дату.
// Если дата рождения неизвестна, возвращает -1.
func (m *MemberProfile) AgeAt(date time.Time) int {
	if m.DateOfBirth == nil {
		return -1
	}
	age := date.Year() - m.DateOfBirth.Year()
	birthdayThisYear := time.Date(date.Year(), m.DateOfBirth.Month(), m.DateOfBirth.Day(), 0, 0, 0, 0, date.Location())
	if date.Before(birthdayThisYear) {
		age--
	}
	return age
}

// HasCertification проверяет наличие сертификата по коду
func (m *MemberProfile) HasCertification(code string) bool {
	for _, c := range m.Certifications {
		if c == code {
			return true
		}
	}
	return false
}

// HasSkill проверяет наличие подтверждённого навыка по коду
func (m *MemberProfile) HasSkill(code string) bool {
	for _, s := range m.Skills {
		if s == code {
			return true
		}
	}
	return false
}

// HasDocument проверяет наличие загруженного документа по коду
func (m *MemberProfile) HasDocument(code string) bool {
	for _, d := range m.Documents {
		if d == code {
			return true
		}
	}
	return false
}

// AccountAge возвращает возраст аккаунта относительно now
func (m *MemberProfile) AccountAge(now time.Time) time.Duration {
	return now.Sub(m.AccountCreatedAt)
}
