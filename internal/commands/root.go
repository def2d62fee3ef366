// Package commands implements the contentctl administration CLI.
package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/internal/config"
	"github.com/fastygo/contentflow/pkg/logger"
)

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

// env holds what every subcommand needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewRootCmd builds the command tree writing its output to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	e := &env{out: out}

	root := &cobra.Command{
		Use:   "contentctl",
		Short: "Administration tool for the contentflow server",
		Long: `contentctl prepares a contentflow deployment: it applies the schema of
the configured store and bootstraps the first admin account.
Configuration is read from the same environment variables as the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(logger.Config{
				Level:    cfg.Logger.Level,
				Encoding: "console",
				Output:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = log
			return nil
		},
	}
	root.SetOut(out)

	root.AddCommand(newMigrateCmd(e))
	root.AddCommand(newCreateAdminCmd(e))
	return root
}

// Execute runs the CLI with os.Args.
func Execute(out io.Writer) error {
	return NewRootCmd(out).Execute()
}
