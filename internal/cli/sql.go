package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/rqlstore/internal/querysql"
	"github.com/roach88/rqlstore/internal/value"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	Table     string
	IDColumn  string
	DocColumn string
	WhereOnly bool
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{}

	cmd := &cobra.Command{
		Use:   "sql <filter-file>",
		Short: "Compile a filter to SQLite",
		Long: `Compile a filter document to a parameterized SQLite query over a table
of JSON documents. Parameters are printed after the query.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, opts, args[0], cmd)
		},
	}

	defaults := querysql.NewSQLCompiler()
	cmd.Flags().StringVar(&opts.Table, "table", defaults.Table, "table name")
	cmd.Flags().StringVar(&opts.IDColumn, "id-column", defaults.IDColumn, "id column")
	cmd.Flags().StringVar(&opts.DocColumn, "doc-column", defaults.DocColumn, "JSON document column")
	cmd.Flags().BoolVar(&opts.WhereOnly, "where-only", false, "print only the WHERE expression")

	return cmd
}

func runSQL(rootOpts *RootOptions, opts *SQLOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	_, q, err := loadQuery(formatter, path)
	if err != nil {
		return err
	}

	compiler := &querysql.SQLCompiler{
		Table:     opts.Table,
		IDColumn:  opts.IDColumn,
		DocColumn: opts.DocColumn,
	}

	var query string
	var params []any
	if opts.WhereOnly {
		query, params, err = querysql.Where(compiler, q)
	} else {
		query, params, err = querysql.Select(compiler, q)
	}
	if errors.Is(err, querysql.ErrUnsupported) {
		return formatter.fail(ExitFailure, ErrCodeNoSQL, err.Error(), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if params == nil {
		params = []any{}
	}

	paramsJSON, err := value.Marshal(params)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	return formatter.Success(SQLResult{SQL: query, Params: params}, query, "-- params: "+string(paramsJSON))
}
