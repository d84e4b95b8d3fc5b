package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

var objects = []string{
	`{}`,
	`{"a": 1}`,
	`{"mcqs": {"EASY": [{"question": "What is force?", "options": ["a","b","c","d"], "answer": "a"}]}}`,
	`{"nested": {"list": [1, 2.5, "x", null, true], "s": "brace } inside"}}`,
	`{"unicode": "धातु", "empty": ""}`,
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

func TestJSON_FenceRoundTrip(t *testing.T) {
	for _, o := range objects {
		want := decode(t, o)
		raw := "Here are the questions:\n```json\n" + o + "\n```\nGood luck!"

		r := JSON(raw)
		got, ok := r.Value()
		if !ok {
			t.Fatalf("JSON(%q) not structured: %v", raw, r.Err())
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("JSON(%q) = %v, want %v", raw, got, want)
		}
		if r.Tier() != TierFence {
			t.Errorf("tier = %s, want fence", r.Tier())
		}
	}
}

func TestJSON_BraceExtraction(t *testing.T) {
	for _, o := range objects {
		want := decode(t, o)
		compact, _ := json.Marshal(want)
		raw := "noise " + string(compact) + " trailing"

		r := JSON(raw)
		got, ok := r.Value()
		if !ok {
			t.Fatalf("JSON(%q) not structured: %v", raw, r.Err())
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("JSON(%q) = %v, want %v", raw, got, want)
		}
		if r.Tier() != TierBraces {
			t.Errorf("tier = %s, want braces", r.Tier())
		}
	}
}

func TestJSON_NoBraceFallsBack(t *testing.T) {
	inputs := []string{
		"",
		"I could not generate questions for this topic.",
		"[1, 2, 3",
		"Answer: true",
	}
	for _, in := range inputs {
		r := JSON(in)
		if r.Structured() {
			t.Errorf("JSON(%q) unexpectedly structured", in)
			continue
		}
		fb := r.Fallback("raw_response")
		if len(fb) != 1 || fb["raw_response"] != in {
			t.Errorf("Fallback = %v, want raw text %q", fb, in)
		}
		if r.Raw() != in {
			t.Errorf("Raw() = %q, want %q", r.Raw(), in)
		}
	}
}

func TestJSON_Cases(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		structured bool
		tier       Tier
	}{
		{"whole text array", `[1, 2]`, false, TierWhole},
		{"whole text number", `42`, false, TierWhole},
		{"whole text boolean", `true`, false, TierWhole},
		{"whole text string", `"done"`, false, TierWhole},
		{"fenced array", "```json\n[1, 2]\n```", true, TierFence},
		{"unterminated fence", "```json\n{\"a\": 1}\n", true, TierFence},
		{"broken fence payload", "```json\n{\"a\": }\n```", false, TierFence},
		{"closing brace before opening", "} oops {", false, TierBraces},
		{"unbalanced braces", "x { \"a\": 1 ", false, TierBraces},
		{"fence wins over earlier braces", "{ignored} ```json\n{\"b\": 2}\n```", true, TierFence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := JSON(tt.in)
			if r.Structured() != tt.structured {
				t.Fatalf("structured = %v, want %v (err %v)", r.Structured(), tt.structured, r.Err())
			}
			if r.Tier() != tt.tier {
				t.Errorf("tier = %s, want %s", r.Tier(), tt.tier)
			}
		})
	}
}

func TestObject(t *testing.T) {
	if _, ok := JSON(`[1]`).Object(); ok {
		t.Error("array should not be an object")
	}
	obj, ok := JSON(`prefix {"k": "v"}`).Object()
	if !ok || obj["k"] != "v" {
		t.Errorf("Object() = %v, %v", obj, ok)
	}
	if _, ok := JSON("nothing").Object(); ok {
		t.Error("unstructured result should not be an object")
	}
}
