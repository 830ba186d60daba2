package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/report"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/security"
)

func newReportCmd(opts *options) *cobra.Command {
	var (
		name   string
		sgpa   float64
		cgpa   float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a PDF report card",
		Long: `Writes a one-page report card with the student name and whichever of
--sgpa and --cgpa are given. Scores are printed to two decimals.

  gradecalc report --name "Asha Rao" --sgpa 8.857 --cgpa 8.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sec := security.NewSecurityMiddleware(security.DefaultSecurityConfig(), nil)
			if err := sec.ValidateName(name); err != nil {
				return err
			}

			card := report.Card{Title: opts.cfg.ReportTitle, Name: sec.SanitizeName(name)}
			if cmd.Flags().Changed("sgpa") {
				card.SGPA = report.Score(sgpa)
			}
			if cmd.Flags().Changed("cgpa") {
				card.CGPA = report.Score(cgpa)
			}

			pdf, err := report.Render(card)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return apperrors.WrapError(err, "writing %s", output)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Student name (required)")
	cmd.Flags().Float64Var(&sgpa, "sgpa", 0, "SGPA to print")
	cmd.Flags().Float64Var(&cgpa, "cgpa", 0, "CGPA to print")
	cmd.Flags().StringVarP(&output, "output", "o", report.Filename, "Output file")
	return cmd
}
