// Package batch reports per-row outcomes of bulk writes such as CSV imports.
package batch

// RowStatus is the processing outcome of a single row.
type RowStatus string

// Row status values.
const (
	StatusOK    RowStatus = "ok"
	StatusError RowStatus = "error"
)

// Result is the outcome of one row of a bulk write.
type Result struct {
	line   int
	id     string
	status RowStatus
	err    error
}

// NewOK creates a successful row result carrying the stored record id.
func NewOK(line int, id string) Result { return Result{line: line, id: id, status: StatusOK} }

// NewError creates a failed row result.
func NewError(line int, err error) Result { return Result{line: line, status: StatusError, err: err} }

// Line returns the 1-based source line of the row (the header is line 1).
func (r Result) Line() int { return r.line }

// ID returns the stored record id. Empty for failed rows.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() RowStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes.
type Summary struct {
	Imported int
	Failed   int
}

// Summarize counts successful and failed rows.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.status == StatusOK {
			s.Imported++
		} else {
			s.Failed++
		}
	}
	return s
}
