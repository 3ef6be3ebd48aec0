package cli

import (
	"github.com/roach88/rqlstore/internal/queryir"
	"github.com/roach88/rqlstore/internal/store"
)

// loadQuery loads a filter document and builds it, reporting failures
// through the formatter as command errors.
func loadQuery(formatter *OutputFormatter, path string) (*queryir.Document, store.Query, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, store.Query{}, formatter.fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Loaded filter document %s (%d node(s))", path, len(doc.Filter.Nodes))

	q, err := queryir.Build[store.Record](doc.Filter)
	if err != nil {
		return nil, store.Query{}, formatter.fail(ExitCommandError, ErrCodeInvalidFilter, err.Error(), nil)
	}
	return doc, q, nil
}
