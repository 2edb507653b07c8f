package refdata

import (
	"encoding/json"

	"github.com/qri-io/jsonschema"
)

var (
	schemaCountries = mustSchema(`{
        "type": "object",
        "additionalProperties": false,
        "patternProperties": {
            "^[A-Za-z]{2}$": {
                "type": "string",
                "minLength": 1
            }
        }
    }`)

	schemaEU = mustSchema(`{
        "type": "array",
        "items": {
            "type": "string",
            "pattern": "^[A-Za-z]{2}$"
        }
    }`)

	schemaFlags = mustSchema(`{
        "type": "object",
        "additionalProperties": false,
        "patternProperties": {
            "^[A-Za-z]{2}$": {
                "type": "object",
                "required": ["emoji", "unicode"],
                "properties": {
                    "emoji": {"type": "string"},
                    "unicode": {"type": "string"}
                }
            }
        }
    }`)

	schemaCurrencies = mustSchema(`{
        "type": "object",
        "additionalProperties": false,
        "patternProperties": {
            "^[A-Za-z]{2}$": {
                "type": "object",
                "required": ["code", "symbol"],
                "properties": {
                    "code": {"type": "string"},
                    "symbol": {"type": "string"}
                }
            }
        }
    }`)

	schemaContinents = mustSchema(`{
        "type": "object",
        "additionalProperties": false,
        "patternProperties": {
            "^[A-Za-z]{2}$": {
                "type": "object",
                "required": ["code", "name"],
                "properties": {
                    "code": {"type": "string", "minLength": 2, "maxLength": 2},
                    "name": {"type": "string"}
                }
            }
        }
    }`)
)

func mustSchema(data string) *jsonschema.Schema {
	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}
