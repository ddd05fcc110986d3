// Where: internal/schema/schema.go
// What: JSON schema validation for project configuration files.
// Why: Reject malformed configuration shapes before the compiler sees them.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://edgeman.dev/schema/config.schema.json"

//go:embed config.schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Source returns the embedded schema document.
func Source() []byte {
	return bytes.Clone(schemaSource)
}

// ValidateJSON validates a JSON-encoded configuration document.
func ValidateJSON(data []byte) error {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return Validate(document)
}

// Validate checks a decoded JSON document. Validation failures are returned
// as *manifest.Error values.
func Validate(document any) error {
	sch, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load config schema: %w", err)
	}
	err = sch.Validate(document)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return translate(verr)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

func translate(verr *jsonschema.ValidationError) *manifest.Error {
	leaves := collectLeaves(verr, nil)
	if len(leaves) == 0 {
		leaves = []*jsonschema.ValidationError{verr}
	}

	for _, leaf := range leaves {
		if !isAdditionalProperties(leaf) || insideAlternative(leaf) {
			continue
		}
		path := instancePath(leaf.InstanceLocation)
		if names := extraProperties(leaf.Message); len(names) > 0 {
			path = joinPath(path, names[0])
		}
		return manifest.NewError(manifest.KindInvalidPropertyFound, "", path,
			"Invalid property found: %s", path)
	}

	leaf := leaves[0]
	path := instancePath(leaf.InstanceLocation)
	return manifest.NewError(manifest.KindSchemaViolation, path, nil, "%s", leaf.Message)
}

// collectLeaves returns the innermost errors in depth-first order.
func collectLeaves(err *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return append(out, err)
	}
	for _, cause := range err.Causes {
		out = collectLeaves(cause, out)
	}
	return out
}

func isAdditionalProperties(err *jsonschema.ValidationError) bool {
	return strings.HasSuffix(err.KeywordLocation, "/additionalProperties")
}

// insideAlternative reports whether the failure belongs to one branch of an
// anyOf/oneOf, where a sibling branch may be the intended shape.
func insideAlternative(err *jsonschema.ValidationError) bool {
	return strings.Contains(err.KeywordLocation, "/anyOf/") || strings.Contains(err.KeywordLocation, "/oneOf/")
}

// extraProperties parses "additionalProperties 'a', 'b' not allowed".
func extraProperties(message string) []string {
	rest, ok := strings.CutPrefix(message, "additionalProperties ")
	if !ok {
		return nil
	}
	rest, ok = strings.CutSuffix(rest, " not allowed")
	if !ok {
		return nil
	}
	var names []string
	for _, part := range strings.Split(rest, ", ") {
		names = append(names, strings.Trim(part, `'"`))
	}
	return names
}

// instancePath converts a JSON pointer such as /rules/request/0 into
// rules.request[0].
func instancePath(pointer string) string {
	var b strings.Builder
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if token == "" {
			continue
		}
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(token); err == nil {
			b.WriteString("[" + token + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(token)
	}
	return b.String()
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
