package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed schemas
var schemasFS embed.FS

var (
	loadOnce        sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	loadErr         error
)

// load compiles every embedded schema once. Schemas may $ref each other,
// so all of them are registered as resources before the first compile.
func load() (map[string]*jsonschema.Schema, error) {
	loadOnce.Do(func() {
		root, err := fs.Sub(schemasFS, "schemas")
		if err != nil {
			loadErr = err
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		var paths []string
		err = fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := root.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				return fmt.Errorf("failed to add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			loadErr = fmt.Errorf("error walking schema resources: %w", err)
			return
		}

		compiled := make(map[string]*jsonschema.Schema, len(paths))
		for _, path := range paths {
			schema, err := compiler.Compile(path)
			if err != nil {
				loadErr = fmt.Errorf("could not compile schema %s: %w", path, err)
				return
			}
			compiled[keyFromPath(path)] = schema
		}
		compiledSchemas = compiled
	})
	return compiledSchemas, loadErr
}

// keyFromPath turns "events/normalization-run-report/v1.json" into
// "NormalizationRunReportEvent/1.0.0" and "records/normalized-auction/v1.json"
// into "NormalizedAuctionRecord/1.0.0".
func keyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 {
		return path
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	switch parts[0] {
	case "events":
		name.WriteString("Event")
	case "records":
		name.WriteString("Record")
	}

	version := strings.TrimPrefix(parts[2], "v") + ".0.0"
	return name.String() + "/" + version
}

// Validate checks a JSON document against the named schema version.
func Validate(name, version string, body []byte) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	key := name + "/" + version
	schema, ok := schemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' version '%s' not found", name, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
