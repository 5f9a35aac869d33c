// internal/search/classifier/schema.go
package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// StructuredResult is the fixed schema the external classifier must return.
// Any response that fails schema validation is treated as a classifier failure.
type StructuredResult struct {
	Positions       []string `json:"positions"`
	AgeMin          *int     `json:"ageMin"`
	AgeMax          *int     `json:"ageMax"`
	Nationalities   []string `json:"nationalities"`
	Leagues         []string `json:"leagues"`
	MarketValueMin  *int64   `json:"marketValueMin"`
	MarketValueMax  *int64   `json:"marketValueMax"`
	TransferStatus  string   `json:"transferStatus"`
	Keywords        []string `json:"keywords"`
	ParsedIntent    string   `json:"parsedIntent"`
	PriorityFactors []string `json:"priorityFactors"`
	TokenUsage      int      `json:"tokenUsage"`
}

const responseSchema = `{
	"type": "object",
	"properties": {
		"positions": {"type": "array", "items": {"type": "string"}},
		"ageMin": {"type": ["integer", "null"]},
		"ageMax": {"type": ["integer", "null"]},
		"nationalities": {"type": "array", "items": {"type": "string"}},
		"leagues": {"type": "array", "items": {"type": "string"}},
		"marketValueMin": {"type": ["integer", "null"]},
		"marketValueMax": {"type": ["integer", "null"]},
		"transferStatus": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"parsedIntent": {"type": "string"},
		"priorityFactors": {"type": "array", "items": {"type": "string"}},
		"tokenUsage": {"type": "integer"}
	},
	"required": ["positions", "parsedIntent"],
	"additionalProperties": true
}`

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema)

// ValidateResponse checks a raw classifier response body against the contract
// and decodes it on success.
func ValidateResponse(body []byte) (*StructuredResult, error) {
	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("schema check failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
	}

	var parsed StructuredResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return &parsed, nil
}

// systemPrompt describes the position and league vocabulary for the
// structured-output call.
const systemPrompt = `You convert free-text football scouting requests into structured search parameters.
Position codes: GK, CB, LB, RB, LWB, RWB, CDM, CM, CAM, LM, RM, LW, RW, ST, CF.
Leagues: Premier League, La Liga, Serie A, Bundesliga, Ligue 1, Serie B, Championship, Eredivisie, Primeira Liga, Süper Lig, MLS, Brasileirão, Liga MX, 2. Bundesliga, Scottish Premiership.
Market values are integers in euros. Respond with a single JSON object matching the requested schema. List priorityFactors in descending importance.`
