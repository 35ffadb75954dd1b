package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"dataroom-server/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management utilities",
	}

	cmd.AddCommand(newConfigGenerateCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

func newConfigGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate config.yaml with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output")
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("не удалось создать каталог %s: %w", outputDir, err)
			}

			filename := filepath.Join(outputDir, "config.yaml")
			if _, err := os.Stat(filename); err == nil && !overwrite {
				fmt.Printf("Пропуск %s (файл существует, используйте --overwrite)\n", filename)
				return nil
			}

			data, err := yaml.Marshal(config.GetDefault())
			if err != nil {
				return fmt.Errorf("ошибка сериализации конфигурации: %w", err)
			}

			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("не удалось записать %s: %w", filename, err)
			}

			fmt.Printf("Создан %s\n", filename)
			return nil
		},
	}

	cmd.Flags().String("output", ".", "output directory")
	cmd.Flags().Bool("overwrite", false, "overwrite existing file")

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Конфигурация корректна (backend=%s, files=%s)\n", cfg.Storage.Backend, cfg.Storage.Files)
			return nil
		},
	}
}
