package reserve_spot

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	schedulerepo "github.com/m04kA/SMC-ActivityBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ActivityBookingService/internal/integrations/operatorservice"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-ActivityBookingService/internal/service/tax"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/types"
)

// --- In-memory фейки ---

// fakeStore общее состояние расписания и броней. Мьютекс имитирует
// блокировку строки расписания: фейковый tx manager держит его на всю
// транзакцию, так что admission-ы сериализуются как в реальной БД.
type fakeStore struct {
	mu       sync.Mutex
	schedule *domain.Schedule
	booked   int
	bookings []*domain.Booking
	nextID   int64
}

type fakeScheduleRepo struct{ store *fakeStore }

func (f *fakeScheduleRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Schedule, error) {
	if f.store.schedule == nil || f.store.schedule.ID != id {
		return nil, schedulerepo.ErrScheduleNotFound
	}
	copied := *f.store.schedule
	return &copied, nil
}

func (f *fakeScheduleRepo) AdjustBookedCount(_ context.Context, _ int64, delta int) error {
	f.store.schedule.BookedParticipants += delta
	return nil
}

type fakeBookingRepo struct{ store *fakeStore }

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.store.nextID++
	created := *b
	created.ID = f.store.nextID
	created.CreatedAt = time.Now()
	f.store.bookings = append(f.store.bookings, &created)
	f.store.booked += b.ParticipantCount
	return &created, nil
}

func (f *fakeBookingRepo) SumActiveParticipants(_ context.Context, _ int64) (int, error) {
	return f.store.booked, nil
}

type fakeTaxRepo struct{}

func (fakeTaxRepo) GetRatesByTenant(_ context.Context, _ int64) ([]domain.TaxRate, error) {
	return nil, nil
}

func (fakeTaxRepo) GetExemptions(_ context.Context, _, _, _ int64) ([]domain.TaxExemption, error) {
	return nil, nil
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

// fakeTxManager сериализует транзакции мьютексом общего состояния
type fakeTxManager struct{ store *fakeStore }

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return fn(ctx)
}

// failingTxManager имитирует исчерпание повторов сериализации
type failingTxManager struct{}

func (failingTxManager) DoSerializable(context.Context, func(ctx context.Context) error) error {
	return txmanager.ErrRetriesExhausted
}

type recordingMetrics struct {
	mu                 sync.Mutex
	admissions         map[string]int
	capacityRejections int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{admissions: make(map[string]int)}
}

func (r *recordingMetrics) IncAdmission(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admissions[outcome]++
}

func (r *recordingMetrics) IncCapacityRejection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacityRejections++
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Сборка сценария ---

type fixture struct {
	now      time.Time
	store    *fakeStore
	operator *fakeOperatorClient
	metrics  *recordingMetrics
}

func newFixture() *fixture {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return &fixture{
		now: now,
		store: &fakeStore{
			schedule: &domain.Schedule{
				ID:                 3,
				TenantID:           1,
				ProductID:          2,
				Date:               now.AddDate(0, 0, 7),
				StartTime:          types.TimeString("10:00"),
				Status:             domain.ScheduleScheduled,
				MaxParticipants:    10,
				AllowOnlineBooking: true,
			},
		},
		operator: &fakeOperatorClient{
			tenant: &operatorservice.Tenant{
				ID:                    1,
				BookingCutoffHours:    24,
				MaxAdvanceBookingDays: 90,
				SameDayCutoffTime:     "18:00",
				TaxRate:               10,
			},
			product: &operatorservice.Product{
				ID:        2,
				TenantID:  1,
				Type:      "dive",
				BasePrice: 100,
			},
		},
		metrics: newRecordingMetrics(),
	}
}

func (f *fixture) useCase() *UseCase {
	return NewUseCase(
		&fakeScheduleRepo{store: f.store},
		&fakeBookingRepo{store: f.store},
		fakeTaxRepo{},
		f.operator,
		pricing.NewComposer(tax.NewCalculator()),
		&fakeTxManager{store: f.store},
		nopLogger{},
	).WithAdmissionRecorder(f.metrics).WithTimeProvider(&fixedTime{now: f.now})
}

func validRequest() *Request {
	return &Request{TenantID: 1, ProductID: 2, ScheduleID: 3, MemberID: 4, ParticipantCount: 2}
}

// --- Тесты ---

func TestExecute_AdmitsAndSnapshotsPricing(t *testing.T) {
	f := newFixture()
	f.store.booked = 3

	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.BookingID)
	assert.NotEmpty(t, resp.Reference)
	assert.Equal(t, domain.StatusConfirmed, resp.Status)
	assert.Equal(t, domain.PaymentUnpaid, resp.PaymentStatus)
	assert.False(t, resp.OverbookingUsed)
	assert.Equal(t, 5, resp.SpotsRemaining)

	// Снимок цены заморожен на брони: 200 + 10% налог
	require.Len(t, f.store.bookings, 1)
	created := f.store.bookings[0]
	assert.InDelta(t, 200.0, created.Subtotal, 0.001)
	assert.InDelta(t, 20.0, created.TaxAmount, 0.001)
	assert.InDelta(t, 220.0, created.TotalAmount, 0.001)
	assert.InDelta(t, 220.0, created.BalanceDue, 0.001)
	assert.Zero(t, created.AmountPaid)

	// Денормализованный счётчик сдвинут
	assert.Equal(t, 2, f.store.schedule.BookedParticipants)
	assert.Equal(t, 1, f.metrics.admissions[outcomeAdmitted])
}

func TestExecute_CapacityRejection(t *testing.T) {
	f := newFixture()
	f.store.booked = 9

	_, err := f.useCase().Execute(context.Background(), validRequest())

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Equal(t, 1, capErr.Available)
	assert.False(t, capErr.WaitlistOpen)
	assert.Equal(t, 1, f.metrics.capacityRejections)
	assert.Equal(t, 1, f.metrics.admissions[outcomeCapacityRejected])

	// Ничего не записано
	assert.Empty(t, f.store.bookings)
	assert.Zero(t, f.store.schedule.BookedParticipants)
}

func TestExecute_CapacityRejectionReportsWaitlist(t *testing.T) {
	f := newFixture()
	f.store.booked = 10
	f.operator.tenant.WaitlistEnabled = true

	_, err := f.useCase().Execute(context.Background(), validRequest())

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.True(t, capErr.WaitlistOpen)
}

func TestExecute_OverbookingAdmits(t *testing.T) {
	f := newFixture()
	f.store.booked = 9
	f.operator.tenant.AllowOverbooking = true
	f.operator.tenant.OverbookingLimitPercent = 20

	// Остаток 1, овербукинг даёт ещё 2
	resp, err := f.useCase().Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.OverbookingUsed)
	require.Len(t, f.store.bookings, 1)
	assert.True(t, f.store.bookings[0].OverbookingUsed)
}

func TestExecute_ConcurrentAdmissionsExactlyOneWins(t *testing.T) {
	f := newFixture()
	f.store.booked = 8

	uc := f.useCase()
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := uc.Execute(context.Background(), validRequest())
			results <- err
		}()
	}

	var succeeded, rejected int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			succeeded++
			continue
		}
		if errors.Is(err, ErrInsufficientCapacity) {
			rejected++
		}
	}

	// 2 свободных места, оба запроса по 2 участника: ровно один проходит
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 10, f.store.booked)
}

func TestExecute_ConcurrentAdmissionsNeverExceedCapacity(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Logf("seed %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for run := 0; run < 5; run++ {
		f := newFixture()
		f.store.schedule.MaxParticipants = 5 + rng.Intn(16)
		capLimit := f.store.schedule.MaxParticipants
		if rng.Intn(2) == 1 {
			f.operator.tenant.AllowOverbooking = true
			f.operator.tenant.OverbookingLimitPercent = 10 + rng.Intn(30)
			capLimit += f.store.schedule.OverbookCapacity(f.operator.tenant.OverbookingLimitPercent)
		}

		uc := f.useCase()
		goroutines := 10 + rng.Intn(30)
		parties := make([]int, goroutines)
		for i := range parties {
			parties[i] = 1 + rng.Intn(4)
		}

		var wg sync.WaitGroup
		errs := make([]error, goroutines)
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				req := validRequest()
				req.ParticipantCount = parties[i]
				_, errs[i] = uc.Execute(context.Background(), req)
			}(i)
		}
		wg.Wait()

		admitted := 0
		for i, err := range errs {
			if err == nil {
				admitted += parties[i]
				continue
			}
			require.ErrorIs(t, err, ErrInsufficientCapacity)
		}

		// Сумма участников принятых броней никогда не превышает вместимость
		// с учётом допуска overbooking-а
		assert.LessOrEqual(t, admitted, capLimit)
		assert.Equal(t, admitted, f.store.booked)
		assert.Equal(t, admitted, f.store.schedule.BookedParticipants)
	}
}

func TestExecute_WindowClosedUnderLock(t *testing.T) {
	f := newFixture()
	// Активность через 10 часов - отсечка 24 часа нарушена
	f.store.schedule.Date = f.now
	f.store.schedule.StartTime = types.TimeString("22:00")

	_, err := f.useCase().Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrBookingWindowClosed)
	assert.Equal(t, 1, f.metrics.admissions[outcomeWindowClosed])
	assert.Empty(t, f.store.bookings)
}

func TestExecute_ScheduleNotBookableUnderLock(t *testing.T) {
	f := newFixture()
	f.store.schedule.Status = domain.ScheduleWeatherCancelled

	_, err := f.useCase().Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrScheduleNotBookable)
}

func TestExecute_ScheduleNotFound(t *testing.T) {
	f := newFixture()
	f.store.schedule = nil

	_, err := f.useCase().Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestExecute_RetriesExhaustedMapsToConflict(t *testing.T) {
	f := newFixture()
	uc := NewUseCase(
		&fakeScheduleRepo{store: f.store},
		&fakeBookingRepo{store: f.store},
		fakeTaxRepo{},
		f.operator,
		pricing.NewComposer(tax.NewCalculator()),
		failingTxManager{},
		nopLogger{},
	).WithAdmissionRecorder(f.metrics).WithTimeProvider(&fixedTime{now: f.now})

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrAdmissionConflict)
	assert.Equal(t, 1, f.metrics.admissions[outcomeConflict])
}

func TestExecute_InvalidRequest(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.ParticipantCount = 0

	_, err := f.useCase().Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
