package taxrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("taxrate.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("taxrate.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("taxrate.repository: failed to scan row")
)

// Repository репозиторий для чтения налоговых ставок и освобождений.
// Данные read-only для ядра: записи создаются административным контуром.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория налоговых ставок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRatesByTenant получает все налоговые ставки тенанта.
// Выбор самой специфичной подходящей ставки делает калькулятор налогов.
func (r *Repository) GetRatesByTenant(ctx context.Context, tenantID int64) ([]domain.TaxRate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"kind",
		"rate",
		"included_in_price",
		"applies_to_type",
		"location",
		"created_at",
		"updated_at",
	).
		From("tax_rates").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRatesByTenant - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRatesByTenant - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rates := make([]domain.TaxRate, 0)
	for rows.Next() {
		var rate domain.TaxRate
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&rate.ID,
			&rate.TenantID,
			&rate.Name,
			&rate.Kind,
			&rate.Rate,
			&rate.IncludedInPrice,
			&rate.AppliesToType,
			&rate.Location,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetRatesByTenant - scan rate: %v", ErrScanRow, err)
		}

		rate.CreatedAt = createdAt.Time
		rate.UpdatedAt = updatedAt.Time
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRatesByTenant - rows error: %v", ErrScanRow, err)
	}

	return rates, nil
}

// GetExemptions получает записи освобождения от налога, применимые к
// продукту или участнику
func (r *Repository) GetExemptions(ctx context.Context, tenantID, productID, memberID int64) ([]domain.TaxExemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"product_id",
		"member_id",
		"reason",
		"created_at",
	).
		From("tax_exemptions").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Or{
			squirrel.Eq{"product_id": productID},
			squirrel.Eq{"member_id": memberID},
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExemptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExemptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exemptions := make([]domain.TaxExemption, 0)
	for rows.Next() {
		var e domain.TaxExemption
		var createdAt sql.NullTime

		if err := rows.Scan(
			&e.ID,
			&e.TenantID,
			&e.ProductID,
			&e.MemberID,
			&e.Reason,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetExemptions - scan exemption: %v", ErrScanRow, err)
		}

		e.CreatedAt = createdAt.Time
		exemptions = append(exemptions, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetExemptions - rows error: %v", ErrScanRow, err)
	}

	return exemptions, nil
}
