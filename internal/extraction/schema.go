package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// metadataSchema constrains the shape of a model response before it is
// persisted. Every field is optional and nullable; the schema only rejects
// payloads whose present fields have the wrong type.
var metadataSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"documentType":    nullableString(),
		"petitionType":    nullableString(),
		"courtName":       nullableString(),
		"bench":           nullableStringArray(),
		"caseTitle":       nullableString(),
		"caseNumber":      nullableString(),
		"filedDate":       nullableString(),
		"dateOfJudgment":  nullableString(),
		"caseStatus":      nullableString(),
		"partiesInvolved": map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"petitioner": nullableString(),
				"respondent": nullableString(),
			},
		},
		"advocates":       nullableStringArray(),
		"legalIssues":     nullableStringArray(),
		"citations":       nullableStringArray(),
		"statutes":        nullableStringArray(),
		"relevantRules":   nullableStringArray(),
		"reliefSought":    nullableString(),
		"verdict":         nullableString(),
		"damagesAwarded":  nullableString(),
		"deadlines":       nullableStringArray(),
		"nextHearingDate": nullableString(),
		"keywords":        nullableStringArray(),
		"relatedCases":    nullableStringArray(),
		"caseSummary":     nullableString(),
	},
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableStringArray() map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": []string{"string", "null"}},
	}
}

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	b, err := json.Marshal(metadataSchema)
	if err != nil {
		panic(fmt.Sprintf("marshal metadata schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("metadata.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add metadata schema: %v", err))
	}
	schema, err := compiler.Compile("metadata.json")
	if err != nil {
		panic(fmt.Sprintf("compile metadata schema: %v", err))
	}
	return schema
}

// ValidateMetadata checks a raw extraction payload against the schema.
func ValidateMetadata(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("schema mismatch: %w", err)
	}
	return nil
}
