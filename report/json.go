package report

import (
	"encoding/json"
	"io"

	"github.com/starcalypse/torrentdeck/relocator"
)

// JSONWriter outputs results as indented JSON for tool integration
type JSONWriter struct {
	output io.Writer
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

// WriteScan encodes result
func (w *JSONWriter) WriteScan(result *relocator.ScanResult) error {
	if result.Matches == nil {
		copied := *result
		copied.Matches = []relocator.MatchResult{}
		result = &copied
	}
	return w.encode(result)
}

// WriteOutcomes encodes outcomes as an array
func (w *JSONWriter) WriteOutcomes(outcomes []relocator.ReplaceOutcome) error {
	if outcomes == nil {
		outcomes = []relocator.ReplaceOutcome{}
	}
	return w.encode(outcomes)
}

// WriteDomains encodes domains as an array
func (w *JSONWriter) WriteDomains(domains []relocator.TrackerDomain) error {
	if domains == nil {
		domains = []relocator.TrackerDomain{}
	}
	return w.encode(domains)
}

func (w *JSONWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
