package validate_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/memberservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// --- Фейки ---

type fakeScheduleRepo struct {
	schedule *domain.Schedule
	err      error
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, _ int64) (*domain.Schedule, error) {
	return f.schedule, f.err
}

type fakeBookingRepo struct {
	booked int
	err    error
}

func (f *fakeBookingRepo) SumActiveParticipants(_ context.Context, _ int64) (int, error) {
	return f.booked, f.err
}

type fakeOperatorClient struct {
	tenant     *operatorservice.Tenant
	product    *operatorservice.Product
	tenantErr  error
	productErr error
}

func (f *fakeOperatorClient) GetTenant(_ context.Context, _ int64) (*operatorservice.Tenant, error) {
	return f.tenant, f.tenantErr
}

func (f *fakeOperatorClient) GetProduct(_ context.Context, _, _ int64) (*operatorservice.Product, error) {
	return f.product, f.productErr
}

type fakeMemberClient struct {
	member *memberservice.Member
	err    error
}

func (f *fakeMemberClient) GetMember(_ context.Context, _ int64) (*memberservice.Member, error) {
	return f.member, f.err
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Тестовый сценарий по умолчанию ---

type fixture struct {
	now      time.Time
	schedule *fakeScheduleRepo
	bookings *fakeBookingRepo
	operator *fakeOperatorClient
	members  *fakeMemberClient
}

func newFixture() *fixture {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)
	instructorID := int64(9)

	return &fixture{
		now: now,
		schedule: &fakeScheduleRepo{schedule: &domain.Schedule{
			ID:                 3,
			TenantID:           1,
			ProductID:          2,
			Date:               now.AddDate(0, 0, 7),
			StartTime:          types.TimeString("10:00"),
			Status:             domain.ScheduleScheduled,
			MaxParticipants:    10,
			AllowOnlineBooking: true,
			InstructorID:       &instructorID,
		}},
		bookings: &fakeBookingRepo{booked: 3},
		operator: &fakeOperatorClient{
			tenant: &operatorservice.Tenant{
				ID:                    1,
				BookingCutoffHours:    24,
				MaxAdvanceBookingDays: 90,
				SameDayCutoffTime:     "18:00",
				HighValueThreshold:    500,
			},
			product: &operatorservice.Product{
				ID:        2,
				TenantID:  1,
				Type:      "dive",
				BasePrice: 100,
			},
		},
		members: &fakeMemberClient{member: &memberservice.Member{
			ID:               4,
			DateOfBirth:      &dob,
			Certifications:   []string{"PADI-OW"},
			HealthFormStatus: "approved",
			AccountCreatedAt: now.AddDate(-1, 0, 0),
		}},
	}
}

func (f *fixture) useCase() *UseCase {
	return NewUseCase(f.schedule, f.bookings, f.operator, f.members, nopLogger{}).
		WithTimeProvider(&fixedTime{now: f.now})
}

func validRequest() *Request {
	return &Request{TenantID: 1, ProductID: 2, ScheduleID: 3, MemberID: 4, ParticipantCount: 2}
}

func hasIssue(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// --- Тесты ---

func TestExecute_HappyPath(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.Empty(t, resp.Errors)
	assert.False(t, resp.RequiresManualReview)
	assert.Equal(t, 10, resp.TotalSpots)
	assert.Equal(t, 7, resp.AvailableSpots)
}

func TestExecute_InvalidRequest(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.TenantID = 0

	_, err := f.useCase().Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_TenantNotFound(t *testing.T) {
	f := newFixture()
	f.operator.tenant = nil
	f.operator.tenantErr = operatorservice.ErrTenantNotFound

	_, err := f.useCase().Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestExecute_CutoffViolation(t *testing.T) {
	f := newFixture()
	// Активность завтра в 10:00, до неё 22 часа - меньше отсечки в 24
	f.schedule.schedule.Date = f.now.AddDate(0, 0, 1)

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodeCutoffViolation))
	assert.True(t, hasIssue(resp.Warnings, CodeShortNotice))
}

func TestExecute_TooFarInAdvance(t *testing.T) {
	f := newFixture()
	f.schedule.schedule.Date = f.now.AddDate(0, 0, 120)

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodeTooFarInAdvance))
}

func TestExecute_PastActivity(t *testing.T) {
	f := newFixture()
	f.schedule.schedule.Date = f.now.AddDate(0, 0, -1)

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodePastActivity))
	// Прошедшая активность коротко замыкает остальные проверки тайминга
	assert.False(t, hasIssue(resp.Errors, CodeCutoffViolation))
}

func TestExecute_ScheduleNotBookable(t *testing.T) {
	f := newFixture()
	f.schedule.schedule.Status = domain.ScheduleCancelled

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodeScheduleNotBookable))
}

func TestExecute_InsufficientCapacity(t *testing.T) {
	f := newFixture()
	f.bookings.booked = 9

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodeInsufficientCapacity))
	assert.Equal(t, 1, resp.AvailableSpots)
}

func TestExecute_LowCapacityWarning(t *testing.T) {
	f := newFixture()
	f.bookings.booked = 7

	// Остаётся 3, просим 2 - после брони останется 1 место
	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Warnings, CodeLowCapacity))
}

func TestExecute_BlockingCertificationFailure(t *testing.T) {
	f := newFixture()
	f.operator.product.Requirements = []operatorservice.Requirement{{
		ID:                1,
		Kind:              string(domain.RequirementCertification),
		Name:              "Advanced certification",
		IsMandatory:       true,
		BlockBooking:      true,
		CanOverride:       true,
		IsActive:          true,
		CertificationCode: "PADI-AOW",
	}}

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Errors, CodeRequirementFailed))
	require.Len(t, resp.Requirements.Failed, 1)
	// Персонал может перекрыть провал - бронь уходит на ручную проверку
	assert.True(t, resp.RequiresManualReview)
}

func TestExecute_NonBlockingFailureIsWarning(t *testing.T) {
	f := newFixture()
	f.operator.product.Requirements = []operatorservice.Requirement{{
		ID:             1,
		Kind:           string(domain.RequirementExperience),
		Name:           "Logged dives",
		IsMandatory:    false,
		IsActive:       true,
		MinLoggedDives: 20,
	}}

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Warnings, CodeRequirementFailed))
	assert.False(t, resp.RequiresManualReview)
}

func TestExecute_PendingHealthForm(t *testing.T) {
	f := newFixture()
	f.members.member.HealthFormStatus = "pending"
	f.operator.product.Requirements = []operatorservice.Requirement{{
		ID:           1,
		Kind:         string(domain.RequirementHealth),
		Name:         "Health form",
		IsMandatory:  true,
		BlockBooking: true,
		IsActive:     true,
	}}

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Pending - отдельная корзина, не блокирует бронь
	assert.True(t, resp.CanBook)
	require.Len(t, resp.Requirements.Pending, 1)
	assert.True(t, hasIssue(resp.Warnings, CodeRequirementPending))
}

func TestExecute_InactiveRequirementSkipped(t *testing.T) {
	f := newFixture()
	f.operator.product.Requirements = []operatorservice.Requirement{{
		ID:                1,
		Kind:              string(domain.RequirementCertification),
		IsMandatory:       true,
		BlockBooking:      true,
		IsActive:          false,
		CertificationCode: "PADI-AOW",
	}}

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.Empty(t, resp.Requirements.Failed)
}

func TestExecute_NewAccountManualReview(t *testing.T) {
	f := newFixture()
	f.members.member.AccountCreatedAt = f.now.Add(-2 * time.Hour)

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.True(t, resp.RequiresManualReview)
}

func TestExecute_HighValueManualReview(t *testing.T) {
	f := newFixture()
	f.operator.product.BasePrice = 300

	// 300 * 2 участника = 600 > порог 500
	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.True(t, resp.RequiresManualReview)
}

func TestExecute_WeatherDependentWarning(t *testing.T) {
	f := newFixture()
	f.schedule.schedule.WeatherDependent = true
	f.schedule.schedule.InstructorID = nil

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.CanBook)
	assert.True(t, hasIssue(resp.Warnings, CodeWeatherDependent))
	assert.True(t, hasIssue(resp.Warnings, CodeInstructorUnassigned))
}

func TestExecute_MinorNeedsParentalConsent(t *testing.T) {
	f := newFixture()
	dob := f.now.AddDate(-15, 0, 0)
	f.members.member.DateOfBirth = &dob
	f.members.member.ParentalConsent = "missing"
	f.operator.product.Requirements = []operatorservice.Requirement{{
		ID:           1,
		Kind:         string(domain.RequirementAgeMinimum),
		Name:         "Minimum age",
		IsMandatory:  true,
		BlockBooking: true,
		IsActive:     true,
		MinAge:       12,
	}}

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, resp.CanBook)
	require.Len(t, resp.Requirements.Failed, 1)
	assert.Contains(t, resp.Requirements.Failed[0].Detail, "parental consent")
}
