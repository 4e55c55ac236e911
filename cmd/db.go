package cmd

import (
	"context"

	"github.com/emrgen/metadata/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				if err := r.Store.Migrate(); err != nil {
					return err
				}
				logrus.Infof("database migrated")
				return nil
			})
		},
	}

	return command
}
