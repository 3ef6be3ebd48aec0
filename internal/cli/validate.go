package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rqlstore/internal/queryir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <filter-file>",
		Short: "Check a filter document for portability",
		Long: `Decode a filter document and report features with no query string or
SQL form (matches, custom) and connectives that evaluate surprisingly.

Warnings do not fail the command unless --strict is set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when there are warnings")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	doc, err := LoadDocument(path)
	if err != nil {
		return formatter.fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	result := queryir.Validate(doc.Filter)
	if _, err := queryir.Build[map[string]any](doc.Filter); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFilter, err.Error(), nil)
	}

	if result.IsPortable {
		return formatter.Success(ValidationResult{Portable: true}, "✓ Filter is portable")
	}

	lines := []string{fmt.Sprintf("⚠ %d portability warning(s)", len(result.Warnings))}
	for _, w := range result.Warnings {
		lines = append(lines, "  "+w)
	}
	if opts.Strict {
		return formatter.fail(ExitFailure, ErrCodeNotPortable,
			fmt.Sprintf("filter is not portable: %d warning(s)", len(result.Warnings)), result.Warnings)
	}
	return formatter.Success(ValidationResult{Portable: false, Warnings: result.Warnings}, lines...)
}
