package main

import (
	"fmt"
	"os"

	"dataroom-server/cmd/cli"
	_ "dataroom-server/docs"
)

var (
	version = "0.1.0-dev"
	commit  = "main"
)

// @title Dataroom-server
// @version 1.0
// @description REST API виртуальной комнаты данных: документы, папки, доступы и импорт из Google Drive

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	root := cli.NewRootCommand(cli.VersionInfo{Version: version, Commit: commit})

	root.AddCommand(cli.NewServeCommand())
	root.AddCommand(cli.NewMigrateCommand())
	root.AddCommand(cli.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
