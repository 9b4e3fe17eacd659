package domain

// BatchRecord is the outcome of one locator in a batch run.
// Exactly one of Envelope and Error is set.
type BatchRecord struct {
	// Index is the zero-based position of the locator in the input.
	Index int

	// Locator is the raw input line.
	Locator string

	Envelope *Envelope
	Error    *ErrorRecord
}

// OK reports whether the locator succeeded.
func (r BatchRecord) OK() bool {
	return r.Error == nil
}

// ExitCode returns the record's exit code.
func (r BatchRecord) ExitCode() int {
	if r.Error == nil {
		return ExitOK
	}
	return r.Error.ExitCode
}

// ToObject renders the record for output.
func (r BatchRecord) ToObject() *Object {
	out := NewObject().
		Set("index", r.Index).
		Set("locator", r.Locator).
		Set("ok", r.OK())
	if r.Error != nil {
		out.Set("error", NewObject().
			Set("kind", r.Error.Kind).
			Set("message", r.Error.Message).
			Set("exitCode", r.Error.ExitCode))
		return out
	}
	out.Set("result", r.Envelope.ToObject())
	return out
}

// MarshalJSON encodes the record in output shape.
func (r BatchRecord) MarshalJSON() ([]byte, error) {
	return r.ToObject().MarshalJSON()
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	RunID     string `json:"runId"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	ExitCode  int    `json:"exitCode"`
}

// Add folds one record into the summary. The exit code keeps the worst seen.
func (s *BatchSummary) Add(rec BatchRecord) {
	s.Total++
	if rec.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
	if code := rec.ExitCode(); code > s.ExitCode {
		s.ExitCode = code
	}
}
