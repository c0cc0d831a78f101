package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	bookingrepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/booking"
	policyrepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/policy"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/refund"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/ptr"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// --- Фейки ---

type fakeBookingRepo struct {
	booking *domain.Booking

	// committedStatus воспроизводит контракт репозитория: UPDATE с предикатом
	// по статусу смотрит на зафиксированное состояние, даже если GetByID
	// успел отдать устаревший снимок
	committedStatus domain.BookingStatus

	cancelled     bool
	cancelReason  string
	cancelRefund  float64
	cancelPercent float64
	cancelStatus  domain.PaymentStatus

	noShowMarked bool
	noShowRefund float64
	noShowFee    float64
	noShowStatus domain.PaymentStatus
}

func (f *fakeBookingRepo) effectiveStatus() domain.BookingStatus {
	if f.committedStatus != "" {
		return f.committedStatus
	}
	return f.booking.Status
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingrepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByReference(_ context.Context, reference string) (*domain.Booking, error) {
	if f.booking == nil || f.booking.Reference != reference {
		return nil, bookingrepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByUserFilter(_ context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	if f.booking == nil || f.booking.MemberID != filter.MemberID {
		return nil, nil
	}
	if filter.Status != nil && f.booking.Status != *filter.Status {
		return nil, nil
	}
	copied := *f.booking
	return []*domain.Booking{&copied}, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, reason string, refundAmount, refundPercent float64, paymentStatus domain.PaymentStatus, _ time.Time) error {
	st := f.effectiveStatus()
	if st != domain.StatusPending && st != domain.StatusConfirmed {
		return bookingrepo.ErrStatusConflict
	}
	f.committedStatus = domain.StatusCancelled
	f.cancelled = true
	f.cancelReason = reason
	f.cancelRefund = refundAmount
	f.cancelPercent = refundPercent
	f.cancelStatus = paymentStatus
	return nil
}

func (f *fakeBookingRepo) MarkNoShow(_ context.Context, _ int64, refundAmount, feePercent float64, paymentStatus domain.PaymentStatus) error {
	st := f.effectiveStatus()
	if st != domain.StatusPending && st != domain.StatusConfirmed && st != domain.StatusCheckedIn {
		return bookingrepo.ErrStatusConflict
	}
	f.committedStatus = domain.StatusNoShow
	f.noShowMarked = true
	f.noShowRefund = refundAmount
	f.noShowFee = feePercent
	f.noShowStatus = paymentStatus
	return nil
}

type fakeScheduleRepo struct {
	schedule    *domain.Schedule
	adjustments []int
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id int64) (*domain.Schedule, error) {
	if f.schedule == nil || f.schedule.ID != id {
		return nil, schedulerepo.ErrScheduleNotFound
	}
	return f.schedule, nil
}

func (f *fakeScheduleRepo) AdjustBookedCount(_ context.Context, _ int64, delta int) error {
	f.adjustments = append(f.adjustments, delta)
	return nil
}

type fakePolicyRepo struct {
	byID          *domain.CancellationPolicy
	tenantDefault *domain.CancellationPolicy
}

func (f *fakePolicyRepo) GetByID(_ context.Context, _ int64) (*domain.CancellationPolicy, error) {
	if f.byID == nil {
		return nil, policyrepo.ErrPolicyNotFound
	}
	return f.byID, nil
}

func (f *fakePolicyRepo) GetDefaultByTenant(_ context.Context, _ int64) (*domain.CancellationPolicy, error) {
	if f.tenantDefault == nil {
		return nil, policyrepo.ErrPolicyNotFound
	}
	return f.tenantDefault, nil
}

type fakeOperatorClient struct {
	tenant  *operatorservice.Tenant
	product *operatorservice.Product
}

func (f *fakeOperatorClient) GetTenant(_ context.Context, _ int64) (*operatorservice.Tenant, error) {
	return f.tenant, nil
}

func (f *fakeOperatorClient) GetProduct(_ context.Context, _, _ int64) (*operatorservice.Product, error) {
	return f.product, nil
}

type inlineTxManager struct{}

func (inlineTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Сборка сценария ---

const (
	ownerID   = int64(4)
	managerID = int64(99)
	otherID   = int64(777)
)

type fixture struct {
	now      time.Time
	bookings *fakeBookingRepo
	schedule *fakeScheduleRepo
	policies *fakePolicyRepo
	operator *fakeOperatorClient
}

func newFixture() *fixture {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return &fixture{
		now: now,
		bookings: &fakeBookingRepo{booking: &domain.Booking{
			ID:               1,
			Reference:        "ref-1",
			TenantID:         1,
			ScheduleID:       3,
			ProductID:        2,
			MemberID:         ownerID,
			ParticipantCount: 2,
			Status:           domain.StatusConfirmed,
			PaymentStatus:    domain.PaymentPaid,
			TotalAmount:      220,
			AmountPaid:       200,
		}},
		schedule: &fakeScheduleRepo{schedule: &domain.Schedule{
			ID:        3,
			TenantID:  1,
			ProductID: 2,
			// Активность через ~70 часов
			Date:      now.AddDate(0, 0, 3),
			StartTime: types.TimeString("10:00"),
			Status:    domain.ScheduleScheduled,
		}},
		policies: &fakePolicyRepo{},
		operator: &fakeOperatorClient{
			tenant: &operatorservice.Tenant{
				ID:         1,
				ManagerIDs: []int64{managerID},
			},
			product: &operatorservice.Product{ID: 2, TenantID: 1},
		},
	}
}

func (f *fixture) service() *Service {
	return NewService(f.bookings, f.schedule, f.policies, f.operator, refund.NewEngine(), inlineTxManager{}, nopLogger{}).
		WithTimeProvider(&fixedTime{now: f.now})
}

// --- Тесты ---

func TestGetByID_Owner(t *testing.T) {
	f := newFixture()

	resp, err := f.service().GetByID(context.Background(), 1, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	f := newFixture()

	_, err := f.service().GetByID(context.Background(), 1, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_ManagerAllowed(t *testing.T) {
	f := newFixture()

	_, err := f.service().GetByID(context.Background(), 1, managerID)
	assert.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service().GetByID(context.Background(), 42, ownerID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_FullRefundBeforeLadder(t *testing.T) {
	f := newFixture()

	// 70 часов до активности, фолбэк-лестница: >=48ч - 100%
	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             ownerID,
		CancellationReason: "changed plans",
	})
	require.NoError(t, err)

	assert.InDelta(t, 200.0, resp.RefundAmount, 0.001)
	assert.InDelta(t, 100.0, resp.RefundPercent, 0.001)
	assert.Equal(t, string(domain.PaymentRefunded), resp.PaymentStatus)

	assert.True(t, f.bookings.cancelled)
	assert.Equal(t, "changed plans", f.bookings.cancelReason)
	// Места освобождены атомарно с отменой
	assert.Equal(t, []int{-2}, f.schedule.adjustments)
}

func TestCancel_PartialRefund(t *testing.T) {
	f := newFixture()
	// Активность через 30 часов: фолбэк-лестница даёт 50%
	f.schedule.schedule.Date = f.now.AddDate(0, 0, 1)
	f.schedule.schedule.StartTime = types.TimeString("18:00")

	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, resp.RefundAmount, 0.001)
	assert.InDelta(t, 50.0, resp.RefundPercent, 0.001)
	assert.Equal(t, string(domain.PaymentPartialRefund), resp.PaymentStatus)
}

func TestCancel_UnpaidKeepsPaymentStatus(t *testing.T) {
	f := newFixture()
	f.bookings.booking.AmountPaid = 0
	f.bookings.booking.PaymentStatus = domain.PaymentUnpaid

	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.Zero(t, resp.RefundAmount)
	assert.Equal(t, string(domain.PaymentUnpaid), resp.PaymentStatus)
}

func TestCancel_StrangerDenied(t *testing.T) {
	f := newFixture()

	_, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, f.bookings.cancelled)
}

func TestCancel_WeatherOnlyForStaff(t *testing.T) {
	f := newFixture()

	_, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:              ownerID,
		WeatherCancellation: true,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_WeatherByManager(t *testing.T) {
	f := newFixture()
	// Активность через 2 часа - лестница дала бы 0%, погода даёт 100%
	f.schedule.schedule.Date = f.now
	f.schedule.schedule.StartTime = types.TimeString("14:00")

	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:              managerID,
		WeatherCancellation: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.WeatherApplied)
	assert.InDelta(t, 200.0, resp.RefundAmount, 0.001)
}

func TestCancel_WeatherCancelledScheduleCountsAsWeather(t *testing.T) {
	f := newFixture()
	f.schedule.schedule.Status = domain.ScheduleWeatherCancelled
	f.schedule.schedule.Date = f.now
	f.schedule.schedule.StartTime = types.TimeString("14:00")

	// Владелец отменяет без флага - погодный возврат применяется по статусу расписания
	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.True(t, resp.WeatherApplied)
	assert.InDelta(t, 200.0, resp.RefundAmount, 0.001)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	f := newFixture()
	f.bookings.booking.Status = domain.StatusCancelled

	_, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_SecondCancelRejected(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	// Повторная отмена читает устаревший снимок (confirmed), но предикат
	// по статусу в UPDATE не совпадает: возврат не начисляется второй раз
	_, err = svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)

	// Места освобождены ровно один раз
	assert.Equal(t, []int{-2}, f.schedule.adjustments)
}

func TestCancel_RacingNoShowRejected(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: managerID})
	require.NoError(t, err)

	// Отмена, прочитавшая бронь до фиксации неявки, не проходит предикат
	_, err = svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)

	assert.Equal(t, []int{-2}, f.schedule.adjustments)
	assert.False(t, f.bookings.cancelled)
}

func TestMarkNoShow_AfterCancelRejected(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	_, err = svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: managerID})
	assert.ErrorIs(t, err, ErrCannotMarkNoShow)

	assert.Equal(t, []int{-2}, f.schedule.adjustments)
	assert.False(t, f.bookings.noShowMarked)
}

func TestCancel_ReasonTooLong(t *testing.T) {
	f := newFixture()
	reason := make([]byte, domain.MaxCancellationReasonLength+1)
	for i := range reason {
		reason[i] = 'a'
	}

	_, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             ownerID,
		CancellationReason: string(reason),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_TenantPolicyOverridesFallback(t *testing.T) {
	f := newFixture()
	// Жёсткая политика тенанта: возврат только при отмене за 100+ часов
	f.policies.tenantDefault = &domain.CancellationPolicy{
		Tiers: []domain.RefundTier{{HoursBefore: 100, RefundPercent: 100}},
	}

	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.Zero(t, resp.RefundAmount)
	assert.Equal(t, string(domain.PaymentPaid), resp.PaymentStatus)
}

func TestCancel_ProductPolicyBeatsTenantDefault(t *testing.T) {
	f := newFixture()
	f.operator.product.PolicyID = ptr.Ptr(int64(12))
	f.policies.byID = &domain.CancellationPolicy{
		ID:    12,
		Tiers: []domain.RefundTier{{HoursBefore: 24, RefundPercent: 90}},
	}
	f.policies.tenantDefault = &domain.CancellationPolicy{
		Tiers: []domain.RefundTier{{HoursBefore: 24, RefundPercent: 10}},
	}

	resp, err := f.service().Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.InDelta(t, 180.0, resp.RefundAmount, 0.001)
	assert.InDelta(t, 90.0, resp.RefundPercent, 0.001)
}

func TestMarkNoShow_ByManager(t *testing.T) {
	f := newFixture()

	resp, err := f.service().MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: managerID})
	require.NoError(t, err)

	// Дефолтный штраф 100%: возврата нет, платёжный статус не меняется
	assert.InDelta(t, 100.0, resp.FeePercent, 0.001)
	assert.InDelta(t, 200.0, resp.FeeAmount, 0.001)
	assert.Zero(t, resp.RefundAmount)
	assert.Equal(t, string(domain.PaymentPaid), resp.PaymentStatus)

	assert.True(t, f.bookings.noShowMarked)
	assert.Equal(t, []int{-2}, f.schedule.adjustments)
}

func TestMarkNoShow_OwnerDenied(t *testing.T) {
	f := newFixture()

	_, err := f.service().MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, f.bookings.noShowMarked)
}

func TestMarkNoShow_PartialPenalty(t *testing.T) {
	f := newFixture()
	f.policies.tenantDefault = &domain.CancellationPolicy{NoShowFeePercent: 60}

	resp, err := f.service().MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: managerID})
	require.NoError(t, err)

	assert.InDelta(t, 120.0, resp.FeeAmount, 0.001)
	assert.InDelta(t, 80.0, resp.RefundAmount, 0.001)
	assert.Equal(t, string(domain.PaymentPartialRefund), resp.PaymentStatus)
}

func TestMarkNoShow_CompletedRejected(t *testing.T) {
	f := newFixture()
	f.bookings.booking.Status = domain.StatusCompleted

	_, err := f.service().MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{UserID: managerID})
	assert.ErrorIs(t, err, ErrCannotMarkNoShow)
}

func TestRefundPreview_DoesNotMutate(t *testing.T) {
	f := newFixture()

	resp, err := f.service().RefundPreview(context.Background(), 1, &models.RefundPreviewRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.InDelta(t, 200.0, resp.RefundAmount, 0.001)
	assert.False(t, f.bookings.cancelled)
	assert.Empty(t, f.schedule.adjustments)
}

func TestRefundPreview_IncludesRescheduleOption(t *testing.T) {
	f := newFixture()
	f.policies.tenantDefault = &domain.CancellationPolicy{
		Tiers:                []domain.RefundTier{{HoursBefore: 48, RefundPercent: 100}},
		AllowReschedule:      true,
		RescheduleFeePercent: 15,
	}

	resp, err := f.service().RefundPreview(context.Background(), 1, &models.RefundPreviewRequest{UserID: ownerID})
	require.NoError(t, err)

	require.NotNil(t, resp.Reschedule)
	assert.InDelta(t, 15.0, resp.Reschedule.FeePercent, 0.001)
	// Сбор за перенос считается от полной стоимости брони
	assert.InDelta(t, 33.0, resp.Reschedule.FeeAmount, 0.001)
}

func TestGetUserBookings_FiltersByStatus(t *testing.T) {
	f := newFixture()
	status := string(domain.StatusCancelled)

	resp, err := f.service().GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		MemberID: ownerID,
		Status:   &status,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)

	confirmed := string(domain.StatusConfirmed)
	resp, err = f.service().GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		MemberID: ownerID,
		Status:   &confirmed,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}
