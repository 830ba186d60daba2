package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/server"
)

func newSGPACmd(opts *options) *cobra.Command {
	var (
		subjects []string
		percents []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "sgpa",
		Short: "Calculate a semester grade point average",
		Long: `Computes the credit-weighted mean of subject grade points.

Give each subject as GRADE:CREDITS with --subject, using the letters of
the active grade scale, or as PERCENT:CREDITS with --percent. The two
forms cannot be mixed in one calculation.

  gradecalc sgpa --subject O:4 --subject A+:3 --subject B:2
  gradecalc sgpa --percent 91.5:4 --percent 78:3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, err := grading.LoadScale(opts.cfg.GradeScalePath)
			if err != nil {
				return err
			}

			var entries []grading.SubjectEntry
			switch {
			case len(subjects) > 0 && len(percents) > 0:
				return apperrors.NewValidationError("use either --subject or --percent, not both")
			case len(percents) > 0:
				entries, err = parsePercentFlags(percents)
			default:
				entries, err = parseSubjectFlags(scale, subjects)
			}
			if err != nil {
				return err
			}

			in := grading.NewSubjectInput(entries...)
			if in.Count() > 0 {
				if err := in.Check(opts.cfg.Bounds); err != nil {
					return err
				}
			}
			res, err := in.Aggregate()
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), aggregateJSON("sgpa", res, "", grading.SubjectRows(scale, entries)))
			}
			return printResult(cmd.OutOrStdout(), "SGPA", res, "")
		},
	}

	cmd.Flags().StringArrayVar(&subjects, "subject", nil, "Subject as GRADE:CREDITS (repeatable)")
	cmd.Flags().StringArrayVar(&percents, "percent", nil, "Subject as PERCENT:CREDITS (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON instead of formatted text")
	return cmd
}

func newCGPACmd(opts *options) *cobra.Command {
	var (
		semesters []string
		policy    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "cgpa",
		Short: "Calculate a cumulative grade point average",
		Long: `Combines semester SGPAs into a CGPA.

Give each semester as SGPA:CREDITS with --semester. The policy comes from
the config file (cgpa_policy) unless --policy is set:

  credit_weighted  Σ(sgpa×credits)/Σcredits
  unweighted       plain mean of the SGPAs

  gradecalc cgpa --semester 8.2:22 --semester 7.9:24`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := opts.cfg.CGPAPolicy
			if cmd.Flags().Changed("policy") {
				raw = policy
			}
			p, err := grading.ParsePolicy(raw)
			if err != nil {
				return err
			}

			entries, err := parseSemesterFlags(semesters)
			if err != nil {
				return err
			}

			in := grading.NewSemesterInput(entries...)
			if in.Count() > 0 {
				if err := in.Check(opts.cfg.Bounds); err != nil {
					return err
				}
			}
			res, err := in.Aggregate(p)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), aggregateJSON("cgpa", res, p, grading.SemesterRows(entries)))
			}
			return printResult(cmd.OutOrStdout(), "CGPA", res, p)
		},
	}

	cmd.Flags().StringArrayVar(&semesters, "semester", nil, "Semester as SGPA:CREDITS (repeatable)")
	cmd.Flags().StringVar(&policy, "policy", "", "CGPA policy: credit_weighted or unweighted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON instead of formatted text")
	return cmd
}

// splitPair splits "VALUE:CREDITS" on the last colon.
func splitPair(flag, raw string) (string, int, error) {
	i := strings.LastIndex(raw, ":")
	if i <= 0 || i == len(raw)-1 {
		return "", 0, apperrors.NewValidationError(
			fmt.Sprintf("--%s %q must look like VALUE:CREDITS", flag, raw))
	}
	credits, err := strconv.Atoi(strings.TrimSpace(raw[i+1:]))
	if err != nil {
		return "", 0, apperrors.NewValidationError(
			fmt.Sprintf("--%s %q: credits must be a whole number", flag, raw))
	}
	return strings.TrimSpace(raw[:i]), credits, nil
}

func parseSubjectFlags(scale grading.Scale, raw []string) ([]grading.SubjectEntry, error) {
	entries := make([]grading.SubjectEntry, 0, len(raw))
	for _, r := range raw {
		letter, credits, err := splitPair("subject", r)
		if err != nil {
			return nil, err
		}
		gp, err := scale.Points(letter)
		if err != nil {
			return nil, err
		}
		entries = append(entries, grading.SubjectEntry{GradePoint: gp, Credits: credits})
	}
	return entries, nil
}

func parsePercentFlags(raw []string) ([]grading.SubjectEntry, error) {
	entries := make([]grading.SubjectEntry, 0, len(raw))
	for _, r := range raw {
		value, credits, err := splitPair("percent", r)
		if err != nil {
			return nil, err
		}
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("--percent %q: not a number", r))
		}
		gp, err := grading.GradePointFromPercentage(pct)
		if err != nil {
			return nil, err
		}
		entries = append(entries, grading.SubjectEntry{GradePoint: gp, Credits: credits})
	}
	return entries, nil
}

func parseSemesterFlags(raw []string) ([]grading.SemesterEntry, error) {
	entries := make([]grading.SemesterEntry, 0, len(raw))
	for _, r := range raw {
		value, credits, err := splitPair("semester", r)
		if err != nil {
			return nil, err
		}
		sgpa, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("--semester %q: SGPA is not a number", r))
		}
		entries = append(entries, grading.SemesterEntry{SGPA: sgpa, Credits: credits})
	}
	return entries, nil
}

func aggregateJSON(kind string, res grading.AggregateResult, p grading.Policy, chart []grading.ChartRow) server.AggregateResponse {
	return server.AggregateResponse{
		Kind:           kind,
		Value:          res.Value,
		Display:        grading.FormatScore(res.Value),
		Percentage:     res.Percentage,
		Classification: res.Classification,
		Policy:         p,
		Chart:          chart,
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printResult(out io.Writer, label string, res grading.AggregateResult, p grading.Policy) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", label, grading.FormatScore(res.Value))
	fmt.Fprintf(w, "Percentage\t%s%%\n", grading.FormatScore(res.Percentage))
	fmt.Fprintf(w, "Classification\t%s\n", res.Classification)
	if p != "" {
		fmt.Fprintf(w, "Policy\t%s\n", p)
	}
	return w.Flush()
}
