// Package cli wires the viewer engine into cobra commands.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"drawing-viewer/internal/config"
	"drawing-viewer/internal/logging"
)

// options is shared by every subcommand once PersistentPreRunE has run.
type options struct {
	configPath string
	metadata   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "drawing-viewer",
		Short: "Architectural drawing viewer with revision compositing",
		Long: `drawing-viewer shows construction drawings described by a metadata.json
file. Each drawing can carry several disciplines and revisions, which can be
overlaid in compare mode, aligned by their image transforms.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return o.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVarP(&o.metadata, "metadata", "m", "", "metadata.json path (overrides config)")

	cmd.AddCommand(newViewCmd(o))
	cmd.AddCommand(newRenderCmd(o))
	cmd.AddCommand(newTreeCmd(o))

	return cmd
}

func (o *options) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.metadata != "" {
		cfg.Metadata = o.metadata
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}
