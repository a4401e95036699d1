package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed event.schema.json
var eventSchemaJSON string

// UpstreamEvent is one event as returned by the market API's paginated
// events endpoint, with its optional nested markets.
type UpstreamEvent struct {
	EventTicker string           `json:"event_ticker"`
	Title       string           `json:"title"`
	Category    string           `json:"category"`
	SubTitle    string           `json:"sub_title"`
	Status      string           `json:"status"`
	StrikeDate  *string          `json:"strike_date,omitempty"`
	Markets     []UpstreamMarket `json:"markets,omitempty"`
}

type UpstreamMarket struct {
	Ticker         string  `json:"ticker"`
	Title          string  `json:"title"`
	YesSubTitle    string  `json:"yes_sub_title"`
	NoSubTitle     string  `json:"no_sub_title"`
	Status         string  `json:"status"`
	YesBid         int64   `json:"yes_bid"`
	NoBid          int64   `json:"no_bid"`
	Volume         int64   `json:"volume"`
	ExpirationTime *string `json:"expiration_time,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateEventPayload checks a raw upstream event against the embedded
// schema and decodes it. Invalid payloads are rejected so one malformed
// event can be skipped without aborting the page.
func ValidateEventPayload(payload json.RawMessage) (*UpstreamEvent, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var event UpstreamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if strings.TrimSpace(event.EventTicker) == "" {
		return nil, fmt.Errorf("event_ticker must not be blank")
	}
	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("title must not be blank")
	}

	return &event, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("upstream_event.schema.json", strings.NewReader(eventSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("upstream_event.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})
	return compiledSchema, compiledSchemaErr
}

func decodeStrictJSON(payload json.RawMessage) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := ensureSingleDocument(decoder); err != nil {
		return nil, err
	}
	return value, nil
}

func ensureSingleDocument(decoder *json.Decoder) error {
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("payload contains trailing data")
	}
	return nil
}
