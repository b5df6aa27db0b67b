package pipeline

import (
	"errors"
	"fmt"
	"time"

	"bioremcore/internal/ingest"
	"bioremcore/internal/refstore"
	"bioremcore/pkg/table"
)

// Status reports how a source run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Error categories surfaced on failed outcomes.
const (
	CategoryNotFound          = "not_found"
	CategoryUnsupportedFormat = "unsupported_format"
	CategoryParse             = "parse"
	CategoryDecode            = "decode"
	CategoryMissingKey        = "missing_key"
	CategoryTypeMismatch      = "type_mismatch"
	CategoryProcessing        = "processing"
	CategoryPersistence       = "persistence"
	CategoryInternal          = "internal"
)

// NotFoundError reports a missing input file.
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("pipeline: input %s not found", e.Path)
}

// ProcessingError wraps a failure inside a pipeline stage.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("pipeline: %s: %v", e.Stage, e.Err)
}

func (e ProcessingError) Unwrap() error { return e.Err }

// PersistenceError wraps an output write failure.
type PersistenceError struct {
	Target string
	Err    error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("pipeline: persist %s: %v", e.Target, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// Outcome reports one source's pipeline result. Failed outcomes carry the
// error category and message instead of output coordinates.
type Outcome struct {
	Source     Source `json:"source"`
	Status     Status `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	OutputName string `json:"output_name,omitempty"`
	Rows       int    `json:"rows,omitempty"`
	Checksum   string `json:"checksum,omitempty"`
	Category   string `json:"error_category,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunReport is the orchestrator result: one outcome per source plus run
// identity and totals.
type RunReport struct {
	ID         string             `json:"id"`
	Input      string             `json:"input"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Outcomes   map[Source]Outcome `json:"outcomes"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
}

// Categorize maps an error onto the outcome category taxonomy. Wrapper
// categories win over wrapped ones so that a stage failure reports the
// stage, not the root cause buried inside it.
func Categorize(err error) string {
	if err == nil {
		return ""
	}
	var (
		persistErr   PersistenceError
		processErr   ProcessingError
		inputMissing NotFoundError
		refMissing   refstore.NotFoundError
		badFormat    refstore.UnsupportedFormatError
		loadErr      refstore.LoadError
		parseErr     ingest.ParseError
		decodeErr    ingest.DecodeError
		missingKey   table.MissingKeyError
		typeMismatch table.TypeMismatchError
	)
	switch {
	case errors.As(err, &persistErr):
		return CategoryPersistence
	case errors.As(err, &processErr):
		return CategoryProcessing
	case errors.As(err, &inputMissing), errors.As(err, &refMissing):
		return CategoryNotFound
	case errors.As(err, &badFormat):
		return CategoryUnsupportedFormat
	case errors.As(err, &parseErr), errors.Is(err, ingest.ErrNoEntries):
		return CategoryParse
	case errors.As(err, &decodeErr):
		return CategoryDecode
	case errors.As(err, &missingKey):
		return CategoryMissingKey
	case errors.As(err, &typeMismatch):
		return CategoryTypeMismatch
	case errors.As(err, &loadErr):
		return CategoryProcessing
	default:
		return CategoryInternal
	}
}
