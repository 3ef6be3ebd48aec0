package cli

import (
	"github.com/spf13/cobra"
)

// SerializeResult is the JSON payload of the serialize command.
type SerializeResult struct {
	Query string `json:"query"`
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serialize <filter-file>",
		Short: "Print a filter as a query string",
		Long: `Print the query string for a filter document, e.g.

  eq(/name, "bob")&gt(/age, 21)

Filters with matches or custom leaves have no query string form.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSerialize(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, q, err := loadQuery(formatter, path)
	if err != nil {
		return err
	}

	query, err := q.Serialize()
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeUnserializable, err.Error(), nil)
	}

	return formatter.Success(SerializeResult{Query: query}, query)
}
