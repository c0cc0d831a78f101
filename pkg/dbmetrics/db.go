package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// QueryRecorder интерфейс для записи метрик запросов к БД.
// Реализуется pkg/metrics.Metrics.
type QueryRecorder interface {
	ObserveDBQuery(service, operation string, duration time.Duration)
	SetDBPoolStats(service string, open, inUse, idle int)
}

// DB обёртка над *sql.DB, записывающая длительность каждого запроса
type DB struct {
	db      *sql.DB
	metrics QueryRecorder
	service string
}

// Wrap оборачивает *sql.DB сборщиком метрик запросов
func Wrap(db *sql.DB, metrics QueryRecorder, service string) *DB {
	return &DB{db: db, metrics: metrics, service: service}
}

// WrapWithDefault оборачивает *sql.DB и запускает периодический сбор
// статистики connection pool-а, пока не закрыт канал stop.
func WrapWithDefault(db *sql.DB, metrics QueryRecorder, service string, stop <-chan struct{}) *DB {
	wrapped := Wrap(db, metrics, service)
	go wrapped.collectPoolStats(stop)
	return wrapped
}

func (d *DB) collectPoolStats(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := d.db.Stats()
			d.metrics.SetDBPoolStats(d.service, stats.OpenConnections, stats.InUse, stats.Idle)
		}
	}
}

func (d *DB) observe(operation string, start time.Time) {
	d.metrics.ObserveDBQuery(d.service, operation, time.Since(start))
}

// ExecContext выполняет запрос с записью метрик
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe("exec", time.Now())
	return d.db.ExecContext(ctx, query, args...)
}

// QueryContext выполняет запрос с записью метрик
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe("query", time.Now())
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRowContext выполняет запрос с записью метрик
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe("query_row", time.Now())
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx начинает транзакцию, возвращая исполнитель с метриками
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, metrics: d.metrics, service: d.service}, nil
}

// Tx транзакция с записью метрик запросов
type Tx struct {
	tx      *sql.Tx
	metrics QueryRecorder
	service string
}

func (t *Tx) observe(operation string, start time.Time) {
	t.metrics.ObserveDBQuery(t.service, operation, time.Since(start))
}

// ExecContext выполняет запрос внутри транзакции
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer t.observe("tx_exec", time.Now())
	return t.tx.ExecContext(ctx, query, args...)
}

// QueryContext выполняет запрос внутри транзакции
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer t.observe("tx_query", time.Now())
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext выполняет запрос внутри транзакции
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer t.observe("tx_query_row", time.Now())
	return t.tx.QueryRowContext(ctx, query, args...)
}

// Commit фиксирует транзакцию
func (t *Tx) Commit() error {
	defer t.observe("commit", time.Now())
	return t.tx.Commit()
}

// Rollback откатывает транзакцию
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
