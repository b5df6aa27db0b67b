// Package ingest validates the flat annotation format (sample headers plus
// K-number identifier lines) and restructures it into the canonical
// two-column table consumed by the enrichment pipelines.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bioremcore/pkg/table"
)

// Canonical column names of the parsed input table.
const (
	ColumnSample = "sample"
	ColumnKO     = "ko"
)

// dataToken marks inputs that embed their payload as base64 after the
// first comma (data-URI convention).
const dataToken = "data"

var koPattern = regexp.MustCompile(`^K\d+$`)

// ErrNoEntries rejects structurally valid input that yields zero records.
var ErrNoEntries = errors.New("ingest: no valid entries found")

// ParseError reports a grammar violation at a specific input line.
type ParseError struct {
	Line   int    // 1-based
	Text   string // offending line, trimmed
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("ingest: line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

// DecodeError reports an embedded payload that could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest: decode embedded payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest: decode embedded payload: %s", e.Reason)
}

func (e DecodeError) Unwrap() error { return e.Err }

// Parse validates raw annotation text and restructures it into a table
// with one (sample, ko) row per identifier line. A `>` line opens the
// current sample, named by its trimmed remainder (empty names open none);
// identifier lines must match K followed by digits and attach to it. Blank
// lines are discarded; anything else is a grammar violation carrying its
// 1-based line number. Input whose first bytes are the literal data token
// is base64-decoded (payload after the first comma) before the grammar
// scan.
func Parse(raw []byte) (*table.Table, error) {
	payload, err := decodeEmbedded(raw)
	if err != nil {
		return nil, err
	}
	tab := table.New(ColumnSample, ColumnKO)
	var sample string
	haveSample := false
	line := 0
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, ">"):
			// A nameless header closes the current sample without opening
			// one; sample names are non-empty by contract.
			sample = strings.TrimSpace(text[1:])
			haveSample = sample != ""
		case koPattern.MatchString(text):
			if !haveSample {
				return nil, ParseError{Line: line, Text: text, Reason: "expected sample header before identifier"}
			}
			if err := tab.AppendRow(sample, text); err != nil {
				return nil, err
			}
		default:
			return nil, ParseError{Line: line, Text: text, Reason: "expected header or identifier"}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan input: %w", err)
	}
	if tab.Len() == 0 {
		return nil, ErrNoEntries
	}
	return tab, nil
}

func decodeEmbedded(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, []byte(dataToken)) {
		return raw, nil
	}
	_, payload, found := bytes.Cut(raw, []byte{','})
	if !found {
		return nil, DecodeError{Reason: "missing payload after comma"}
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(payload)))
	if err != nil {
		return nil, DecodeError{Reason: "invalid base64", Err: err}
	}
	if len(decoded) == 0 {
		return nil, DecodeError{Reason: "empty payload"}
	}
	return decoded, nil
}
