package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ActivityBookingService/pkg/dbmetrics"
)

type fakeTx struct {
	dbmetrics.DBExecutor
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs []*fakeTx
}

func (f *fakeBeginner) BeginTx(_ context.Context, _ *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}

type retryCounter struct{ retries int }

func (r *retryCounter) IncAdmissionRetry() { r.retries++ }

func serializationFailure() error {
	return &pq.Error{Code: "40001"}
}

func TestDoSerializable_CommitsOnSuccess(t *testing.T) {
	db := &fakeBeginner{}
	mgr := NewTransactionManager(db)

	var sawTx bool
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		sawTx = dbmetrics.IsInTransaction(ctx)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, sawTx)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.False(t, db.txs[0].rolledBack)
}

func TestDoSerializable_RollsBackOnError(t *testing.T) {
	db := &fakeBeginner{}
	mgr := NewTransactionManager(db)

	wantErr := errors.New("business rejection")
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)
}

func TestDoSerializable_RetriesSerializationFailure(t *testing.T) {
	db := &fakeBeginner{}
	counter := &retryCounter{}
	mgr := NewTransactionManager(db).WithRetryRecorder(counter)

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, counter.retries)
	assert.True(t, db.txs[2].committed)
}

func TestDoSerializable_ExhaustsRetries(t *testing.T) {
	db := &fakeBeginner{}
	mgr := NewTransactionManager(db)

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return serializationFailure()
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, MaxRetries+1, attempts)
}

func TestDoSerializable_NonRetryableReturnsImmediately(t *testing.T) {
	db := &fakeBeginner{}
	mgr := NewTransactionManager(db)

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("constraint violation")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "55P03"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("plain error")))
}
