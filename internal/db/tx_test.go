package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestWithRetryTxReplaysDeadlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	attempts := 0
	err = WithRetryTx(context.Background(), db, 2, func(tx *sql.Tx) error {
		attempts++
		_, err := tx.Exec("UPDATE rides SET available_seats = 1 WHERE id = 1")
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWithRetryTxDoesNotReplayDomainErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("not enough seats")
	attempts := 0
	err = WithRetryTx(context.Background(), db, 3, func(tx *sql.Tx) error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&mysql.MySQLError{Number: 1205}) {
		t.Fatalf("lock wait timeout should be retryable")
	}
	if IsRetryable(&mysql.MySQLError{Number: 1062}) {
		t.Fatalf("duplicate key should not be retryable")
	}
	if IsRetryable(errors.New("boom")) {
		t.Fatalf("plain errors should not be retryable")
	}
}
