package checker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrFormat marks a health page body that is not a well-formed check document.
var ErrFormat = errors.New("malformed health document")

// Parse decodes an okcomputer health document of the form
//
//	{"name": {"message": "...", "success": true}, ...}
//
// keeping the checks in document order. Checks named in exclude are skipped
// before validation. All failures wrap ErrFormat.
func Parse(body []byte, exclude []string) (Report, error) {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Report{}, fmt.Errorf("%w: top level is not an object", ErrFormat)
	}

	var report Report
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Report{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Report{}, fmt.Errorf("%w: check %q: %v", ErrFormat, name, err)
		}
		if skip[name] {
			continue
		}

		c, err := decodeCheck(name, raw)
		if err != nil {
			return Report{}, err
		}
		// Duplicate keys: the last value wins, the first position is kept.
		if i, dup := index[name]; dup {
			report.Checks[i] = c
			continue
		}
		index[name] = len(report.Checks)
		report.Checks = append(report.Checks, c)
	}

	if _, err := dec.Token(); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Report{}, fmt.Errorf("%w: trailing data after document", ErrFormat)
	}
	return report, nil
}

// decodeCheck validates one entry. Field names match exactly; encoding/json
// struct decoding would also accept "Success" or "MESSAGE".
func decodeCheck(name string, raw json.RawMessage) (CheckResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return CheckResult{}, fmt.Errorf("%w: check %q: not an object", ErrFormat, name)
	}

	var success bool
	if err := decodeField(fields, "success", &success); err != nil {
		return CheckResult{}, fmt.Errorf("%w: check %q: %v", ErrFormat, name, err)
	}
	var message string
	if err := decodeField(fields, "message", &message); err != nil {
		return CheckResult{}, fmt.Errorf("%w: check %q: %v", ErrFormat, name, err)
	}
	return CheckResult{Name: name, Message: message, Success: success}, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("missing %s", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	return nil
}
