package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-retry"
)

const (
	errLockDeadlock    = 1213
	errLockWaitTimeout = 1205
)

// IsRetryable reports whether err is a lock conflict the whole transaction
// can safely be replayed after.
func IsRetryable(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == errLockDeadlock || me.Number == errLockWaitTimeout
	}
	return false
}

// WithTx runs fn inside a transaction. fn's error rolls back; nil commits.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WithRetryTx is WithTx replayed on deadlock / lock wait timeout, at most
// maxRetries extra attempts with jittered exponential backoff.
func WithRetryTx(ctx context.Context, db *sql.DB, maxRetries int, fn func(*sql.Tx) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := retry.NewExponential(20 * time.Millisecond)
	b = retry.WithJitterPercent(25, b)
	b = retry.WithMaxRetries(uint64(maxRetries), b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := WithTx(ctx, db, fn)
		if err != nil && IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
