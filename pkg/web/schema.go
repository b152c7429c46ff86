package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// syncWebhookSchema gates the inbound payload shape before any side effect.
// user.id and sync are required to resolve downstream state; their absence
// is a platform error, not a silent no-op.
const syncWebhookSchema = `{
	"type": "object",
	"required": ["event", "sync", "user", "data"],
	"properties": {
		"event": {"type": "string", "minLength": 1},
		"sync": {"type": "string", "minLength": 1},
		"user": {
			"type": "object",
			"required": ["id"],
			"properties": {
				"id": {"type": "string", "minLength": 1}
			}
		},
		"data": {
			"type": "object",
			"required": ["synced_at"],
			"properties": {
				"model": {"type": "string"},
				"synced_at": {"type": "string"},
				"num_records": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

func compileSyncWebhookSchema() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(syncWebhookSchema))
}

func validateAgainstSchema(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}

	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("schema validation failed: %s", strings.Join(details, "; "))
	}

	return nil
}
