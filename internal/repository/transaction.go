package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type txKey struct{}

// executor : транзакция из контекста, если она есть, иначе пул соединений
func executor(ctx context.Context, db *config.Database) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.DB
}

// Locker : сериализация через pg_advisory_xact_lock. Блокировка держится до конца
// транзакции, а все репозитории внутри fn работают в этой же транзакции.
type Locker struct {
	*config.Database
}

func NewLocker(database *config.Database) *Locker {
	return &Locker{database}
}

func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return apperror.Unavailable("[Locker] не удалось взять блокировку", err)
		}
		return fn(ctx)
	}

	tx, err := l.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Unavailable("[Locker] не удалось начать транзакцию", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("[Locker] ошибка отката транзакции: %v", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return apperror.Unavailable("[Locker] не удалось взять блокировку", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Unavailable("[Locker] ошибка коммита транзакции", err)
	}
	committed = true

	return nil
}

const uniqueViolation = "23505"

// translate : sql.ErrNoRows -> NotFound, нарушение уникальности -> Conflict, остальное -> Unavailable
func translate(err error, message string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("%s: не найдено", message)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.Conflict("%s: запись уже существует", message)
	}

	log.Printf("%s: %v", message, err)
	return apperror.Unavailable(message, err)
}

func expectAffected(result sql.Result, message string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Unavailable(message, err)
	}
	if rows == 0 {
		return apperror.NotFound("%s: не найдено", message)
	}
	return nil
}
