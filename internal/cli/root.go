// Package cli wires the gradecalc commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/cgpa-calculator/internal/config"
	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

type options struct {
	configPath string
	cfg        config.Config
}

// NewRootCmd builds the gradecalc command tree. Each call returns fresh
// commands with their own flag state.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "gradecalc",
		Short: "SGPA and CGPA calculator with PDF report export",
		Long: `gradecalc computes a semester grade point average from subject grades
and credits, combines semester averages into a cumulative one, and
exports a one-page report card.

Run "gradecalc serve" for the web calculator, or use the sgpa, cgpa and
report commands directly.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Subcommands inherit this, so bad flags count as input errors.
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperrors.NewValidationError(err.Error())
	})

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file (default $CONFIG_PATH or "+config.DefaultPath+")")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSGPACmd(opts))
	root.AddCommand(newCGPACmd(opts))
	root.AddCommand(newReportCmd(opts))

	return root
}
