package cmd

import (
	"context"
	"os"

	"github.com/emrgen/metadata/internal/config"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	actorName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metadata",
	Short: "document metadata management tool",
	Example: `metadata db migrate
metadata document-type create -l Invoice
metadata metadata-type save -n number -l "Invoice number" --validation integer
metadata relationship set -d Invoice -m number -t required
metadata document create -d Invoice -l invoice-1
metadata document metadata add -i <doc-id> -m number
metadata document metadata edit -i <doc-id> -s number=42
metadata document metadata remove -i <doc-id> -m number
metadata worker`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(documentTypeCmd)
	rootCmd.AddCommand(metadataTypeCmd)
	rootCmd.AddCommand(relationshipCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(workerCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.PersistentFlags().StringVar(&actorName, "actor", os.Getenv("USER"), "name the changes are attributed to")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

func actor() model.Actor {
	name := actorName
	if name == "" {
		name = "cli"
	}
	return model.Actor{ID: name, Name: name}
}

// withRuntime runs fn against a runtime built from the loaded config.
func withRuntime(fn func(ctx context.Context, r *server.Runtime) error) error {
	ctx := context.Background()

	r, err := server.NewRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	return fn(ctx, r)
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "refresh the cached lookup choices on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				return r.Work()
			})
		},
	}
}
