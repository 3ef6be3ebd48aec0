package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rqlstore/internal/store"
	"github.com/roach88/rqlstore/internal/value"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	IDField string
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Query   string         `json:"query,omitempty"`
	Matched int            `json:"matched"`
	Total   int            `json:"total"`
	Records []store.Record `json:"records"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <filter-file> <records-file>",
		Short: "Print the records a filter matches",
		Long: `Load records into an in-memory store and print those the filter matches,
in input order. Records without an id get rec-1, rec-2, ... in load order.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.IDField, "id-field", "id", "record field holding the id")

	return cmd
}

func runEval(rootOpts *RootOptions, opts *EvalOptions, filterPath, recordsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	_, q, err := loadQuery(formatter, filterPath)
	if err != nil {
		return err
	}

	records, err := LoadRecords(recordsPath)
	if err != nil {
		return formatter.fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	s := store.New(
		store.WithIDField(opts.IDField),
		store.WithIDGenerator(store.NewSequenceGenerator("rec")),
	)
	if _, err := s.AddAll(records); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidRecords, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", s.Len(), recordsPath)

	matched := s.Fetch(q)
	formatter.VerboseLog("Matched %d of %d record(s)", len(matched), s.Len())

	if formatter.Format == "json" {
		query, err := s.QueryString(q)
		if err != nil {
			formatter.VerboseLog("Query has no string form: %v", err)
		}
		return formatter.Success(EvalResult{
			Query:   query,
			Matched: len(matched),
			Total:   s.Len(),
			Records: matched,
		})
	}

	lines := make([]string, 0, len(matched))
	for _, r := range matched {
		b, err := value.Marshal(r)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("encoding record %v: %v", r[s.IDField()], err), nil)
		}
		lines = append(lines, string(b))
	}
	if len(lines) == 0 {
		return nil
	}
	return formatter.Success(nil, lines...)
}
