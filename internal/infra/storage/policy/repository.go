package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для работы с политиками отмены
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик отмены
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var policyColumns = []string{
	"id",
	"tenant_id",
	"name",
	"no_show_fee_percent",
	"weather_cancellation_allowed",
	"weather_refund_percent",
	"allow_reschedule",
	"reschedule_fee_percent",
	"created_at",
	"updated_at",
}

// GetByID получает политику отмены вместе с лестницей возвратов
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CancellationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("cancellation_policies").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanPolicyWithTiers(ctx, executor, query, args)
}

// GetDefaultByTenant получает дефолтную политику отмены тенанта.
// Возвращает ErrPolicyNotFound, если у тенанта нет ни одной политики -
// в этом случае движок возвратов применяет фолбэк-лестницу.
func (r *Repository) GetDefaultByTenant(ctx context.Context, tenantID int64) (*domain.CancellationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("cancellation_policies").
		Where(squirrel.Eq{"tenant_id": tenantID, "is_default": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDefaultByTenant - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanPolicyWithTiers(ctx, executor, query, args)
}

func (r *Repository) scanPolicyWithTiers(ctx context.Context, executor DBExecutor, query string, args []interface{}) (*domain.CancellationPolicy, error) {
	var p domain.CancellationPolicy
	var createdAt, updatedAt sql.NullTime

	err := executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.NoShowFeePercent,
		&p.WeatherCancellationAllowed,
		&p.WeatherRefundPercent,
		&p.AllowReschedule,
		&p.RescheduleFeePercent,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanPolicyWithTiers - scan policy: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	tiers, err := r.getTiers(ctx, executor, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tiers = tiers

	return &p, nil
}

// getTiers загружает ступени лестницы возвратов в порядке убывания hours_before -
// порядок выбора ступени движком возвратов
func (r *Repository) getTiers(ctx context.Context, executor DBExecutor, policyID int64) ([]domain.RefundTier, error) {
	query, args, err := psqlbuilder.Select("hours_before", "refund_percent").
		From("policy_refund_tiers").
		Where(squirrel.Eq{"policy_id": policyID}).
		OrderBy("hours_before DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getTiers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getTiers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tiers := make([]domain.RefundTier, 0)
	for rows.Next() {
		var t domain.RefundTier
		if err := rows.Scan(&t.HoursBefore, &t.RefundPercent); err != nil {
			return nil, fmt.Errorf("%w: getTiers - scan tier: %v", ErrScanRow, err)
		}
		tiers = append(tiers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getTiers - rows error: %v", ErrScanRow, err)
	}

	return tiers, nil
}
