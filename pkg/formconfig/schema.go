package formconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-dynaform/pkg/model"
)

const schemaResource = "formconfig.schema.json"

var (
	schemaOnce     sync.Once
	schemaDoc      *invopop.Schema
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON Schema configuration documents must satisfy.
func Schema() *invopop.Schema {
	loadSchema()
	return schemaDoc
}

// SchemaJSON returns Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func loadSchema() {
	schemaOnce.Do(func() {
		reflector := &invopop.Reflector{
			Anonymous:      true,
			ExpandedStruct: true,
		}
		schemaDoc = reflector.Reflect(&model.FormModel{})
		schemaDoc.Title = "Form configuration"

		raw, err := json.Marshal(schemaDoc)
		if err != nil {
			schemaErr = fmt.Errorf("formconfig: marshal schema: %w", err)
			return
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			schemaErr = fmt.Errorf("formconfig: decode schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResource, value); err != nil {
			schemaErr = fmt.Errorf("formconfig: add schema resource: %w", err)
			return
		}
		schemaCompiled, schemaErr = compiler.Compile(schemaResource)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("formconfig: compile schema: %w", schemaErr)
		}
	})
}

// checkSchema validates a decoded JSON value and returns its issues.
func checkSchema(value any) ([]Issue, error) {
	loadSchema()
	if schemaErr != nil {
		return nil, schemaErr
	}
	err := schemaCompiled.Validate(value)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	issues := collectIssues(verr, nil)
	if len(issues) == 0 {
		issues = []Issue{{Message: verr.Error()}}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues, nil
}

var printer = message.NewPrinter(language.English)

func collectIssues(err *jsonschema.ValidationError, out []Issue) []Issue {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		path := ""
		if len(err.InstanceLocation) > 0 {
			path = "/" + strings.Join(err.InstanceLocation, "/")
		}
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			out = append(out, Issue{Path: path, Message: msg})
		}
	}
	for _, cause := range err.Causes {
		out = collectIssues(cause, out)
	}
	return out
}
