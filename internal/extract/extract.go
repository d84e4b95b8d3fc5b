// Package extract pulls a JSON payload out of free-form model output.
//
// Models wrap JSON in markdown fences, prepend chatter, or return prose. JSON
// tries, in order: a ```json fenced block, the span from the first "{" to the
// last "}", and finally the whole text. Whatever the outcome, the original
// text is kept so callers can fall back to showing it verbatim.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fenceTag = "```json"

// Tier records which extraction strategy produced the candidate payload.
type Tier int

const (
	TierFence Tier = iota + 1
	TierBraces
	TierWhole
)

func (t Tier) String() string {
	switch t {
	case TierFence:
		return "fence"
	case TierBraces:
		return "braces"
	case TierWhole:
		return "whole"
	}
	return "unknown"
}

// Result is either Structured (a parsed JSON value) or Unstructured (the raw
// text could not be parsed). Use Value to tell them apart.
type Result struct {
	raw        string
	tier       Tier
	value      any
	structured bool
	err        error
}

// JSON extracts and parses a JSON value from raw. It never fails; a parse
// error yields an Unstructured result. A fenced block may hold any JSON
// value, but when the whole text is the candidate only an object counts as
// Structured, so a bare 42 or "true" stays Unstructured.
func JSON(raw string) Result {
	candidate, tier := candidate(raw)
	r := Result{raw: raw, tier: tier}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		r.err = err
		return r
	}
	if _, ok := v.(map[string]any); !ok && tier == TierWhole {
		r.err = fmt.Errorf("whole text is a JSON %s, not an object", kind(v))
		return r
	}
	r.value = v
	r.structured = true
	return r
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	}
	return "value"
}

// candidate selects the substring to parse.
func candidate(raw string) (string, Tier) {
	if i := strings.Index(raw, fenceTag); i >= 0 {
		body := raw[i+len(fenceTag):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body), TierFence
	}
	if start := strings.Index(raw, "{"); start >= 0 {
		end := strings.LastIndex(raw, "}")
		if end < start {
			// No closing brace after the first opening one; hand the
			// decoder something that cannot parse.
			return raw[start:], TierBraces
		}
		return raw[start : end+1], TierBraces
	}
	return raw, TierWhole
}

// Value returns the parsed value and true for a Structured result.
func (r Result) Value() (any, bool) {
	return r.value, r.structured
}

// Object returns the parsed value as a JSON object. It reports false for
// Unstructured results and for JSON values that are not objects.
func (r Result) Object() (map[string]any, bool) {
	if !r.structured {
		return nil, false
	}
	obj, ok := r.value.(map[string]any)
	return obj, ok
}

// Structured reports whether the text parsed as JSON.
func (r Result) Structured() bool { return r.structured }

// Raw returns the original model output unchanged.
func (r Result) Raw() string { return r.raw }

// Tier returns the strategy that selected the parsed candidate.
func (r Result) Tier() Tier { return r.tier }

// Err returns the decode error of an Unstructured result.
func (r Result) Err() error { return r.err }

// Fallback wraps the raw text under key, e.g. {"raw_response": raw}.
func (r Result) Fallback(key string) map[string]any {
	return map[string]any{key: r.raw}
}
