package domain

// RequirementKind закрытый набор типов требований к участнику.
// Каждому типу соответствует своё типизированное поле в ProductRequirement -
// нетипизированных map-значений в конфигурации требований нет.
type RequirementKind string

const (
	RequirementCertification RequirementKind = "certification"
	RequirementAgeMinimum    RequirementKind = "age_minimum"
	RequirementAgeMaximum    RequirementKind = "age_maximum"
	RequirementHealth        RequirementKind = "health"
	RequirementExperience    RequirementKind = "experience"
	RequirementDocuments     RequirementKind = "documents"
	RequirementSkill         RequirementKind = "skill"
	RequirementPhysical      RequirementKind = "physical"
)

// ProductRequirement is a rule attached to a product, evaluated read-only
// per booking attempt
type ProductRequirement struct {
	ID           int64
	ProductID    int64
	Kind         RequirementKind
	Name         string
	Description  string
	IsMandatory  bool
	CanOverride  bool // Персонал может вручную пропустить участника
	BlockBooking bool
	SortOrder    int

	// Типизированные параметры по видам требований
	CertificationCode string   // certification: требуемый код сертификата ("PADI-OW")
	MinAge            int      // age_minimum
	MaxAge            int      // age_maximum
	MinLoggedDives    int      // experience: минимум залогированных погружений
	RequiredDocuments []string // documents: список обязательных документов
	SkillCode         string   // skill: код подтверждённого навыка
}

// IsBlocking returns true if a failed requirement must block the booking
func (r *ProductRequirement) IsBlocking() bool {
	return r.IsMandatory && r.BlockBooking
}
