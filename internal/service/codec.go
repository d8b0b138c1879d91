package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is the persisted shape of an event. Field names follow the
// camelCase keys of the browser-era "eventDataList" payload so old exports
// load unchanged.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	StartDate   string    `json:"startDate" yaml:"startDate"`
	EndDate     string    `json:"endDate" yaml:"endDate"`
	Latitude    FlexFloat `json:"latitude" yaml:"latitude"`
	Longitude   FlexFloat `json:"longitude" yaml:"longitude"`
}

// FlexFloat is a coordinate stored either as a number or as a numeric
// string (older payloads kept the raw form value). Valid is false when the
// key was missing, null, or not a finite number; such records are dropped
// when the collection is normalized.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid FlexFloat holding v.
func Float(v float64) FlexFloat { return FlexFloat{Value: v, Valid: true} }

func (f FlexFloat) MarshalJSON() ([]byte, error) { return json.Marshal(f.Value) }

func (f FlexFloat) MarshalYAML() (any, error) { return f.Value, nil }

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = FlexFloat{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		s = raw
	}
	*f = parseFlex(s)
	return nil
}

func (f *FlexFloat) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: coordinate must be a scalar", node.Line)
	}
	*f = parseFlex(node.Value)
	return nil
}

func parseFlex(s string) FlexFloat {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return FlexFloat{}
	}
	return Float(v)
}

// Codec turns the persisted collection into bytes and back.
type Codec interface {
	// Ext is the file extension of the encoding, without the dot.
	Ext() string
	Encode(records []Record) ([]byte, error)
	Decode(data []byte) ([]Record, error)
}

// JSONCodec stores the collection as a JSON array. It is the default.
type JSONCodec struct{}

func (JSONCodec) Ext() string { return "json" }

func (JSONCodec) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return records, nil
}

// YAMLCodec stores the collection as a YAML sequence, handy when the data
// file is edited by hand.
type YAMLCodec struct{}

func (YAMLCodec) Ext() string { return "yaml" }

func (YAMLCodec) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

func (YAMLCodec) Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return records, nil
}

// CodecFor returns the codec registered under name ("json" or "yaml").
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
