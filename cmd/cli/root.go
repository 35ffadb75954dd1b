package cli

import (
	"fmt"

	"dataroom-server/config"

	"github.com/spf13/cobra"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// configPath : значение глобального флага --config
var configPath string

func NewRootCommand(info VersionInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dataroom",
		Short:         "Dataroom server",
		Long:          "Виртуальная комната данных: документы с версиями, папки, выдача доступа и импорт из Google Drive.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is ./config.yaml)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	return cfg, nil
}
