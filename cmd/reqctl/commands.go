package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/config"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

var errInvalid = errors.New("requirements are invalid")

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "reqctl",
		Short: "Evaluate and check program requirement documents",
		Long: `reqctl reads a program requirements document (JSON or YAML, "-" for stdin)
and evaluates, audits or validates it. Results are written to stdout as JSON.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(config.NewLogger(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(evaluateCmd(), auditCmd(), validateCmd(), totalsCmd(), applyCmd())
	return cmd
}

func evaluateCmd() *cobra.Command {
	var completed []string

	cmd := &cobra.Command{
		Use:   "evaluate FILE",
		Short: "Score each requirement against completed courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStructure(cmd, args[0])
			if err != nil {
				return err
			}
			set := requirements.NewCompletedSet(completed...)
			slog.Debug("evaluating", "requirements", len(s.Requirements), "completed", len(completed))
			return writeOutput(cmd.OutOrStdout(), model.ProgramProgress{
				Requirements: requirements.EvaluateProgram(s, set),
				Overall:      requirements.RollUp(s.Requirements, set),
			})
		},
	}
	cmd.Flags().StringSliceVar(&completed, "completed", nil, "Completed course codes, comma separated")
	return cmd
}

func auditCmd() *cobra.Command {
	var (
		completed []string
		opts      requirements.AuditOptions
	)

	cmd := &cobra.Command{
		Use:   "audit FILE",
		Short: "Run a degree audit against completed courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStructure(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), requirements.Audit(s, completed, opts))
		},
	}
	cmd.Flags().StringSliceVar(&completed, "completed", nil, "Completed course codes, comma separated")
	cmd.Flags().BoolVar(&opts.Wildcards, "wildcards", false, "Treat listed codes such as CS 4XX as patterns")
	cmd.Flags().BoolVar(&opts.SubjectOnly, "subject-only", false, "Match listed bare subjects against any course in that subject")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a document before publishing; exits non-zero when invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStructure(cmd, args[0])
			if err != nil {
				return err
			}
			result := requirements.Validate(s)
			if err := writeOutput(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%w: %d error(s)", errInvalid, len(result.Errors))
			}
			return nil
		},
	}
}

// Totals is the output of the totals command
type Totals struct {
	Requirements    int                       `json:"requirements"`
	TotalMinCredits float64                   `json:"totalMinCredits"`
	CourseSlots     []requirements.CourseSlot `json:"courseSlots"`
}

func totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals FILE",
		Short: "Report the minimum credit total and every listed course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStructure(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), Totals{
				Requirements:    len(s.Requirements),
				TotalMinCredits: requirements.TotalMinCredits(s.Requirements),
				CourseSlots:     requirements.CourseSlots(s),
			})
		},
	}
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply FILE EDITS",
		Short: "Apply a JSON array of edits and print the resulting document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStructure(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			edits, err := requirements.DecodeEdits(data)
			if err != nil {
				return err
			}
			out, err := requirements.ApplyAll(s, time.Now(), edits...)
			if err != nil {
				return err
			}
			slog.Info("edits applied", "count", len(edits))
			return writeOutput(cmd.OutOrStdout(), out)
		},
	}
}

// loadStructure reads a requirements document. YAML files are converted to
// JSON first so both go through the same parser.
func loadStructure(cmd *cobra.Command, path string) (*model.ProgramRequirementsStructure, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return requirements.Parse(doc)
	}
	return requirements.ParseJSON(data)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func writeOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
