package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ActivityBookingService/internal/domain"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"reference",
	"tenant_id",
	"schedule_id",
	"product_id",
	"member_id",
	"participant_count",
	"status",
	"payment_status",
	"overbooking_used",
	"subtotal",
	"discount_amount",
	"tax_amount",
	"total_amount",
	"amount_paid",
	"balance_due",
	"payment_due_date",
	"cancellation_reason",
	"cancelled_at",
	"refund_amount",
	"refund_percent",
	"created_at",
	"updated_at",
}

// Create создает новое бронирование со снимком цены.
// Вызывается только внутри транзакции admission-а: вставка брони и
// пересчёт занятых мест под блокировкой строки расписания составляют
// одну атомарную единицу работы.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"tenant_id",
			"schedule_id",
			"product_id",
			"member_id",
			"participant_count",
			"status",
			"payment_status",
			"overbooking_used",
			"subtotal",
			"discount_amount",
			"tax_amount",
			"total_amount",
			"amount_paid",
			"balance_due",
			"payment_due_date",
		).
		Values(
			b.Reference,
			b.TenantID,
			b.ScheduleID,
			b.ProductID,
			b.MemberID,
			b.ParticipantCount,
			b.Status,
			b.PaymentStatus,
			b.OverbookingUsed,
			b.Subtotal,
			b.DiscountAmount,
			b.TaxAmount,
			b.TotalAmount,
			b.AmountPaid,
			b.BalanceDue,
			b.PaymentDueDate,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// SumActiveParticipants возвращает суммарное количество участников в бронях,
// занимающих вместимость расписания (status вне {cancelled, no_show}).
// Авторитетный источник занятости: внутри транзакции admission-а читается
// после взятия блокировки строки расписания.
func (r *Repository) SumActiveParticipants(ctx context.Context, scheduleID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(participant_count), 0)").
		From("bookings").
		Where(squirrel.Eq{"schedule_id": scheduleID}).
		Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveParticipants - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: SumActiveParticipants - scan sum: %v", ErrScanRow, err)
	}

	return total, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByReference получает бронирование по публичному UUID-коду
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	b, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetByUserFilter получает брони участника с опциональной фильтрацией
// по тенанту и статусу
func (r *Repository) GetByUserFilter(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"member_id": filter.MemberID}).
		OrderBy("created_at DESC")

	if filter.TenantID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"tenant_id": *filter.TenantID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByUserFilter - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByUserFilter - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// Cancel отменяет бронирование, сохраняя причину и снимок возврата.
// Предикат по статусу повторяет доменную проверку на стороне БД: гонка
// двух отмен (или отмены с неявкой) не пройдёт дважды - второй UPDATE
// не совпадёт ни с одной строкой и вернёт ErrStatusConflict
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, refundAmount, refundPercent float64, paymentStatus domain.PaymentStatus, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("payment_status", paymentStatus).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("refund_amount", refundAmount).
		Set("refund_percent", refundPercent).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(domain.CancellableStatuses)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Cancel", ErrStatusConflict)
}

// MarkNoShow помечает бронь как неявку, сохраняя снимок штрафа.
// Как и Cancel, защищён предикатом по статусу от повторного перехода
func (r *Repository) MarkNoShow(ctx context.Context, id int64, refundAmount, refundPercent float64, paymentStatus domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusNoShow).
		Set("payment_status", paymentStatus).
		Set("refund_amount", refundAmount).
		Set("refund_percent", refundPercent).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(domain.NoShowEligibleStatuses)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkNoShow - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "MarkNoShow", ErrStatusConflict)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "UpdateStatus", ErrBookingNotFound)
}

// execExpectingRow выполняет UPDATE, ожидающий ровно одну строку.
// noRows возвращается, когда ни одна строка не совпала с предикатом
func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string, noRows error) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return noRows
	}

	return nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.TenantID,
		&b.ScheduleID,
		&b.ProductID,
		&b.MemberID,
		&b.ParticipantCount,
		&b.Status,
		&b.PaymentStatus,
		&b.OverbookingUsed,
		&b.Subtotal,
		&b.DiscountAmount,
		&b.TaxAmount,
		&b.TotalAmount,
		&b.AmountPaid,
		&b.BalanceDue,
		&b.PaymentDueDate,
		&b.CancellationReason,
		&b.CancelledAt,
		&b.RefundAmount,
		&b.RefundPercent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
