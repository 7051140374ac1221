// Package editing implements the search/replace edit protocol: schema
// validation of proposed file mutations plus their atomic, exact-match
// application. It is the sole apply path; there is no diff-hunk front end.
package editing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Action selects how an edit request is interpreted.
type Action string

const (
	// ActionEdit targets one region of a file.
	ActionEdit Action = "edit"
	// ActionMultiEdit applies an ordered sequence of regions in one file.
	ActionMultiEdit Action = "multi_edit"
)

// Op is one exact-match substitution. ExpectedReplacements must equal
// the actual occurrence count of OldString at apply time.
type Op struct {
	OldString            string `json:"old_string"`
	NewString            string `json:"new_string"`
	ExpectedReplacements int    `json:"expected_replacements"`
}

// Request is a validated edit payload.
type Request struct {
	Action   Action `json:"action"`
	FilePath string `json:"file_path"`
	Edits    []Op   `json:"edits"`
	Message  string `json:"message,omitempty"`
}

// ErrInvalidPayload is the category for every protocol schema violation.
var ErrInvalidPayload = errors.New("invalid edit payload")

type rawOp struct {
	OldString            *string      `json:"old_string"`
	NewString            *string      `json:"new_string"`
	ExpectedReplacements *json.Number `json:"expected_replacements"`
}

type rawRequest struct {
	Action   *string  `json:"action"`
	FilePath *string  `json:"file_path"`
	Edits    []*rawOp `json:"edits"`
	Message  string   `json:"message"`
}

// ParseRequest validates payload against the protocol schema and fails
// fast on the first violation. Missing fields are never defaulted.
// The payload must be a single JSON object (array form is rejected).
func ParseRequest(payload []byte) (Request, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Request{}, fmt.Errorf("%w: payload must be a JSON object with fields action, file_path, edits[]", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var raw rawRequest
	if err := dec.Decode(&raw); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if raw.Action == nil || (*raw.Action != string(ActionEdit) && *raw.Action != string(ActionMultiEdit)) {
		return Request{}, fmt.Errorf("%w: action must be %q or %q", ErrInvalidPayload, ActionEdit, ActionMultiEdit)
	}
	if raw.FilePath == nil || *raw.FilePath == "" {
		return Request{}, fmt.Errorf("%w: file_path is required", ErrInvalidPayload)
	}
	if len(raw.Edits) == 0 {
		return Request{}, fmt.Errorf("%w: edits must be a non-empty array", ErrInvalidPayload)
	}

	req := Request{
		Action:   Action(*raw.Action),
		FilePath: *raw.FilePath,
		Message:  raw.Message,
	}
	for i, op := range raw.Edits {
		idx := i + 1
		if op == nil {
			return Request{}, fmt.Errorf("%w: edit #%d must be an object", ErrInvalidPayload, idx)
		}
		if op.OldString == nil || op.NewString == nil {
			return Request{}, fmt.Errorf("%w: edit #%d missing old_string/new_string", ErrInvalidPayload, idx)
		}
		if op.ExpectedReplacements == nil {
			return Request{}, fmt.Errorf("%w: edit #%d missing expected_replacements", ErrInvalidPayload, idx)
		}
		n, err := op.ExpectedReplacements.Int64()
		if err != nil || n <= 0 {
			return Request{}, fmt.Errorf("%w: edit #%d expected_replacements must be a positive integer", ErrInvalidPayload, idx)
		}
		req.Edits = append(req.Edits, Op{
			OldString:            *op.OldString,
			NewString:            *op.NewString,
			ExpectedReplacements: int(n),
		})
	}
	return req, nil
}
