// Package simpletxmanager версия txmanager для "голого" *sql.DB без обёртки метрик.
// Используется, когда метрики в конфигурации выключены.
package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ActivityBookingService/pkg/txmanager"
)

// sqlDBBeginner адаптирует *sql.DB к интерфейсу txmanager.TxBeginner
type sqlDBBeginner struct {
	db *sql.DB
}

func (b sqlDBBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.db.BeginTx(ctx, opts)
}

// NewTransactionManager создает transaction manager поверх *sql.DB
func NewTransactionManager(db *sql.DB) *txmanager.TransactionManager {
	return txmanager.NewTransactionManager(sqlDBBeginner{db: db})
}
