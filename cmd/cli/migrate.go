package cli

import (
	"context"
	"fmt"
	"log"

	"dataroom-server/config"

	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.Storage.Backend != config.BackendPostgres {
				fmt.Printf("storage.backend=%s не требует миграций\n", cfg.Storage.Backend)
				return nil
			}

			db, err := config.SetupDatabase(&cfg.Database)
			if err != nil {
				return fmt.Errorf("не удалось подключиться к БД: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Printf("Ошибка при закрытии БД: %v", err)
				}
			}()

			if err := db.Migrate(context.Background()); err != nil {
				return fmt.Errorf("ошибка миграции: %w", err)
			}

			fmt.Println("Схема БД актуальна")
			return nil
		},
	}
}
