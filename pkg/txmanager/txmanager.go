// Package txmanager управляет сериализуемыми транзакциями с автоматическим
// повтором при конфликтах сериализации.
//
// Admission-путь бронирования выполняется строго внутри DoSerializable:
// блокировка строки расписания, пересчёт занятых мест и вставка брони
// составляют одну атомарную единицу работы. Конфликты сериализации и
// дедлоки (SQLSTATE 40001 / 40P01) считаются transient и повторяются
// ограниченное число раз с джиттером, прежде чем вернуться вызывающему.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
)

const (
	// MaxRetries максимальное количество повторов транзакции при конфликтах
	MaxRetries = 3

	// retryBaseBackoff базовая задержка между повторами (умножается на номер попытки)
	retryBaseBackoff = 25 * time.Millisecond
)

// ErrRetriesExhausted возвращается, когда все повторы транзакции исчерпаны
var ErrRetriesExhausted = errors.New("txmanager: serialization retries exhausted")

// TxBeginner интерфейс для начала транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryRecorder опциональный счётчик повторов (pkg/metrics)
type RetryRecorder interface {
	IncAdmissionRetry()
}

// TransactionManager выполняет функции внутри сериализуемых транзакций
type TransactionManager struct {
	db      TxBeginner
	metrics RetryRecorder
}

// NewTransactionManager создает transaction manager поверх БД с метриками
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithRetryRecorder подключает счётчик повторов транзакций
func (m *TransactionManager) WithRetryRecorder(r RetryRecorder) *TransactionManager {
	m.metrics = r
	return m
}

// DoSerializable выполняет fn внутри транзакции с уровнем изоляции Serializable.
// Транзакция кладётся в контекст (dbmetrics.WithTx), репозитории достают её
// через dbmetrics.GetExecutor. При конфликте сериализации или дедлоке
// транзакция повторяется до MaxRetries раз с джиттер-бэкоффом.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			if m.metrics != nil {
				m.metrics.IncAdmissionRetry()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitteredBackoff(attempt)):
			}
		}

		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("txmanager: begin transaction: %w", err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		// Откатываем всю единицу работы - частичных записей не бывает
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("txmanager: rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txmanager: commit: %w", err)
	}
	return nil
}

// IsRetryable определяет, является ли ошибка transient-конфликтом,
// который имеет смысл повторить
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03": // lock_not_available (FOR UPDATE NOWAIT / lock_timeout)
			return true
		}
	}
	return false
}

// jitteredBackoff возвращает задержку перед повтором: base * attempt + случайный джиттер
func jitteredBackoff(attempt int) time.Duration {
	base := retryBaseBackoff * time.Duration(attempt)
	jitter := time.Duration(rand.Int63n(int64(retryBaseBackoff)))
	return base + jitter
}
