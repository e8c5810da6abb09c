// Package chart turns a chart spec emitted by the model into a scene of
// positioned shapes and serializes that scene to SVG or PNG.
package chart

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Type names one of the supported chart kinds.
type Type string

const (
	Bar     Type = "bar"
	Line    Type = "line"
	Scatter Type = "scatter"
	Pie     Type = "pie"
)

// Record is one datum: field name to JSON value.
type Record map[string]any

// Options are the optional presentation keys of a spec.
type Options struct {
	XKey     string `json:"xKey,omitempty"`
	YKey     string `json:"yKey,omitempty"`
	LabelKey string `json:"labelKey,omitempty"`
	ValueKey string `json:"valueKey,omitempty"`
	Title    string `json:"title,omitempty"`
	XLabel   string `json:"xLabel,omitempty"`
	YLabel   string `json:"yLabel,omitempty"`
}

// Spec describes a single chart.
type Spec struct {
	Type    Type     `json:"type"`
	Data    []Record `json:"data"`
	Options Options  `json:"options,omitempty"`
}

// Parse decodes a chart spec from the raw JSON payload of a fenced block.
// Only malformed JSON is an error. Valid JSON of the wrong shape yields a
// spec the renderer draws as empty.
func Parse(raw string) (Spec, error) {
	var s Spec
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Spec{}, fmt.Errorf("parse chart spec: %w", err)
	}
	return s, nil
}

// UnmarshalJSON reads a spec leniently: scalar options are stringified,
// a non-array data field counts as no data and non-object records are empty.
func (s *Spec) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = fromValue(v)
	return nil
}

func fromValue(v any) Spec {
	obj, _ := v.(map[string]any)
	s := Spec{Type: Type(field(obj, "type"))}

	if items, ok := obj["data"].([]any); ok {
		s.Data = make([]Record, len(items))
		for i, it := range items {
			r, _ := it.(map[string]any)
			if r == nil {
				r = map[string]any{}
			}
			s.Data[i] = Record(r)
		}
	}

	opts, _ := obj["options"].(map[string]any)
	s.Options = Options{
		XKey:     field(opts, "xKey"),
		YKey:     field(opts, "yKey"),
		LabelKey: field(opts, "labelKey"),
		ValueKey: field(opts, "valueKey"),
		Title:    field(opts, "title"),
		XLabel:   field(opts, "xLabel"),
		YLabel:   field(opts, "yLabel"),
	}
	return s
}

// field stringifies a scalar member of obj; objects and arrays read as "".
func field(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil, map[string]any, []any:
		return ""
	case string:
		return v
	default:
		return cast.ToString(v)
	}
}

// Keys resolves the two field names a chart reads from each record, applying
// the per-type defaults: label/value for bar and pie, x/y for line and scatter.
func (s Spec) Keys() (string, string) {
	o := s.Options
	switch s.Type {
	case Pie:
		return or(o.LabelKey, "label"), or(o.ValueKey, "value")
	case Line, Scatter:
		return or(o.XKey, "x"), or(o.YKey, "y")
	default:
		return or(o.XKey, "label"), or(o.YKey, "value")
	}
}

// Supported reports whether the renderer knows how to draw s.Type.
func (s Spec) Supported() bool {
	switch s.Type {
	case Bar, Line, Scatter, Pie:
		return true
	}
	return false
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
