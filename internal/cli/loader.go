package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rqlstore/internal/queryir"
	"github.com/roach88/rqlstore/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeUnknownFormat = "E002" // Unsupported file extension
	ErrCodeParseFailed   = "E004" // JSON/YAML parse failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed

	ErrCodeInvalidFilter  = "E201" // Filter document does not decode
	ErrCodeInvalidRecords = "E202" // Records file is not a list of objects
	ErrCodeUnserializable = "E210" // Filter has no query string form
	ErrCodeNoSQL          = "E211" // Filter has no SQL form
	ErrCodeNotPortable    = "E212" // Strict validation found warnings
)

// LoadError represents an error that occurred while loading a file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads a filter document. The format follows the extension:
// .json, .yaml/.yml or .cue. The filter is the top-level filter field, or
// the whole file when it has none.
func LoadDocument(path string) (*queryir.Document, error) {
	raw, err := loadData(path, "filter")
	if err != nil {
		return nil, err
	}

	g, err := queryir.Decode(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidFilter, Message: err.Error()}
	}
	return &queryir.Document{Filter: g, Source: path}, nil
}

// LoadRecords reads a list of records: a .json, .yaml/.yml or .cue file
// holding a list (or a top-level records field), or .jsonl with one
// object per line.
func LoadRecords(path string) ([]store.Record, error) {
	var raw any
	var err error
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jsonl" || ext == ".ndjson" {
		raw, err = loadJSONLines(path)
	} else {
		raw, err = loadData(path, "records")
	}
	if err != nil {
		return nil, err
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeInvalidRecords,
			Message: fmt.Sprintf("%s: expected a list of records, got %T", path, raw),
		}
	}
	records := make([]store.Record, 0, len(items))
	for i, item := range items {
		r, ok := item.(map[string]any)
		if !ok {
			return nil, &LoadError{
				Code:    ErrCodeInvalidRecords,
				Message: fmt.Sprintf("%s: record %d is %T, not an object", path, i, item),
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// loadData reads path into generic data and unwraps the named top-level
// field if present.
func loadData(path, field string) (any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var raw any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
		}
	case ".cue":
		return loadCUE(data, path, field)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnknownFormat,
			Message: fmt.Sprintf("unsupported file type %q (want .json, .yaml, .yml or .cue)", ext),
		}
	}

	if obj, ok := raw.(map[string]any); ok {
		if inner, ok := obj[field]; ok {
			return inner, nil
		}
	}
	return raw, nil
}

func loadCUE(data []byte, path, field string) (any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(fmt.Sprintf("building CUE value: %v", err), err)
	}

	if fv := v.LookupPath(cue.ParsePath(field)); fv.Exists() {
		v = fv
	}

	var raw any
	if err := v.Decode(&raw); err != nil {
		return nil, cueLoadError(fmt.Sprintf("decoding %s: %v", field, err), err)
	}
	return raw, nil
}

func cueLoadError(message string, err error) *LoadError {
	loadErr := &LoadError{Code: ErrCodeBuildFailed, Message: message}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

func loadJSONLines(path string) (any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var items []any
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var item any
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeParseFailed,
				Message: fmt.Sprintf("parsing %s record %d: %v", path, len(items), err),
			}
		}
		items = append(items, item)
	}
	if items == nil {
		items = []any{}
	}
	return items, nil
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
