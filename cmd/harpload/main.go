package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taskgraph/harpload/config"
)

var (
	configFile string
	envFiles   []string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "harpload",
		Short:         "Load delimited numeric files into row shards for distributed training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFiles(envFiles...); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (json, yaml or toml).")
	root.PersistentFlags().StringSliceVar(&envFiles, "env_file", []string{".env"}, "Env files loaded before reading the config.")
	root.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level.")

	root.AddCommand(newControllerCmd(), newTaskCmd(), newConvertCmd(), newFetchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}
