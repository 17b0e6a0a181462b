package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "todos.schema.json"

// Problem is one schema violation in the data file.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks raw JSON against the document schema.
func validateDocument(schema *jsonschema.Schema, data []byte) ([]Problem, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []Problem{{Message: fmt.Sprintf("invalid JSON: %v", err)}}, nil
	}
	err := schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	var problems []Problem
	collectProblems(&problems, ve)
	return problems, nil
}

func collectProblems(out *[]Problem, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*out = append(*out, Problem{Path: pointerToPath(err.InstanceLocation), Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(out, cause)
	}
}

// pointerToPath turns "/tasks/0/priority" into "tasks[0].priority".
func pointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
