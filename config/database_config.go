package config

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(dbDriver string, cfg *DatabaseConfig) (*Database, error) {
	database, err := sqlx.Connect(dbDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	log.Println("Подключение к БД успешно выполнено")
	return &Database{
		database,
	}, nil
}

// Migrate : применяет схему БД (идемпотентно)
func (db *Database) Migrate(ctx context.Context) error {
	for i, statement := range schema {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("ошибка миграции (шаг %d): %w", i+1, err)
		}
	}

	log.Printf("Миграции применены: %d шагов", len(schema))
	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}

func (db *Database) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
