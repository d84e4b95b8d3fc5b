package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// Validate checks a decoded JSON value, or any value that marshals to JSON,
// against schema. A nil schema accepts everything. Failures are returned as
// *ErrInvalidResponse; use Violations to list them.
func Validate(schema *Schema, value any) error {
	if schema == nil {
		return nil
	}
	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Err: err}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return &ErrInvalidResponse{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return validateBytes(sch, data)
}

// ValidateText parses text as JSON and validates it against schema.
func ValidateText(schema *Schema, text string) error {
	if schema == nil {
		return nil
	}
	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Text: text, Err: err}
	}
	if err := validateBytes(sch, []byte(text)); err != nil {
		err.(*ErrInvalidResponse).Text = text
		return err
	}
	return nil
}

func validateBytes(sch *jsonschema.Schema, data []byte) error {
	// jsonschema.UnmarshalJSON keeps numbers as json.Number, so integer
	// checks see the literal the model wrote.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ErrInvalidResponse{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Err: err}
	}
	return nil
}

// Violations lists the individual schema failures inside err as
// "location: message" lines. Errors that are not schema failures yield
// their message alone.
func Violations(err error) []string {
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	var out []string
	for _, unit := range verr.BasicOutput().Errors {
		if unit.Error == nil {
			continue
		}
		loc := unit.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, loc+": "+unit.Error.String())
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(verr.Error()))
	}
	return out
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if sch, ok := compiled[schema.Name]; ok {
		return sch, nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", schema.Name, err)
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	compiled[schema.Name] = sch
	return sch, nil
}
