package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с расписаниями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var scheduleColumns = []string{
	"id",
	"tenant_id",
	"product_id",
	"date",
	"start_time",
	"status",
	"max_participants",
	"min_participants",
	"booked_participants",
	"price_override",
	"allow_online_booking",
	"instructor_id",
	"weather_dependent",
	"created_at",
	"updated_at",
}

// GetByID получает расписание по ID без блокировки.
// Подходит для неавторитетных чтений (валидатор, снимок доступности).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate получает расписание с эксклюзивной блокировкой строки
// (SELECT ... FOR UPDATE). Строка расписания служит токеном сериализации
// admission-а: пока транзакция держит блокировку, другие admission-ы того же
// расписания ждут. Расписания независимы - брони разных расписаний друг
// друга не блокируют.
//
// Вызов вне активной транзакции - ошибка программирования: без транзакции
// FOR UPDATE отпускается немедленно и ничего не гарантирует.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Schedule, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(scheduleColumns...).
		From("schedules").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Schedule
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.TenantID,
		&s.ProductID,
		&s.Date,
		&s.StartTime,
		&s.Status,
		&s.MaxParticipants,
		&s.MinParticipants,
		&s.BookedParticipants,
		&s.PriceOverride,
		&s.AllowOnlineBooking,
		&s.InstructorID,
		&s.WeatherDependent,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get - scan schedule: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// AdjustBookedCount изменяет денормализованный счётчик занятых мест.
// Вызывается только внутри транзакции admission-а (delta > 0) либо
// отмены/no-show (delta < 0); авторитетный пересчёт всегда делается
// агрегатом по броням.
func (r *Repository) AdjustBookedCount(ctx context.Context, id int64, delta int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
		Set("booked_participants", squirrel.Expr("booked_participants + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AdjustBookedCount - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AdjustBookedCount - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AdjustBookedCount - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}
