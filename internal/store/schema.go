package store

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed board.schema.json
var boardSchemaJSON string

var boardSchema = mustCompileBoardSchema()

func mustCompileBoardSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("board.schema.json", strings.NewReader(boardSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add board schema: %v", err))
	}
	schema, err := compiler.Compile("board.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile board schema: %v", err))
	}
	return schema
}

// validateBoardDoc validates a decoded data file against the embedded JSON
// schema and maps the first failure to a readable path.
func validateBoardDoc(doc any) error {
	err := boardSchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate data file: %w", err)
	}
	if leaf := firstLeafError(ve); leaf != nil {
		path := jsonPointerToPath(leaf.InstanceLocation)
		if path == "" {
			return fmt.Errorf("validate data file: %s", leaf.Message)
		}
		return fmt.Errorf("validate data file: %s: %s", path, leaf.Message)
	}
	return fmt.Errorf("validate data file: %w", err)
}

// firstLeafError returns the first cause without further causes.
func firstLeafError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, cause := range err.Causes {
		if leaf := firstLeafError(cause); leaf != nil {
			return leaf
		}
	}
	return err
}

// jsonPointerToPath converts a JSON Pointer (RFC 6901) to a dot-notation
// path, e.g. "/Extension/0/id" becomes "Extension[0].id".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var path string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
