package server

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// messageRequestSchema mirrors the accepted POST /api/chat/message body.
const messageRequestSchema = `{
	"type": "object",
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 2000},
		"sessionId": {"type": "string", "format": "uuid"}
	},
	"required": ["message"]
}`

// ValidationDetail is one schema violation reported to the client.
type ValidationDetail struct {
	Path    []string `json:"path"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

func compileMessageSchema() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(messageRequestSchema))
}

// validateBody checks body against schema. A nil slice with a nil error
// means the body is valid.
func validateBody(schema *gojsonschema.Schema, body []byte) ([]ValidationDetail, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	details := make([]ValidationDetail, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		details = append(details, ValidationDetail{
			Path:    fieldPath(re.Field()),
			Code:    re.Type(),
			Message: re.Description(),
		})
	}
	return details, nil
}

func fieldPath(field string) []string {
	if field == "" || field == "(root)" {
		return []string{}
	}
	return strings.Split(field, ".")
}
