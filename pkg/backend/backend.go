// Package backend defines the contract of the dataset API consumed by the
// form: the catalog, per-dataset parameter lists and result sets.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// Backend fetches catalog, parameter and result payloads.
type Backend interface {
	Catalog(ctx context.Context) ([]Resource, error)
	Parameters(ctx context.Context, path string, params query.Params) ([]widget.Spec, error)
	Results(ctx context.Context, path string, params query.Params) (ResultSet, error)
}

// Resource is one catalog entry as returned by the backend.
type Resource struct {
	Dataset        string `json:"dataset"`
	Label          string `json:"label"`
	ParametersPath string `json:"parameters_path"`
	ResultPath     string `json:"result_path"`
}

// UnmarshalJSON also accepts the shorter "parameters" and "result" keys used
// by older catalog responses.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var wire struct {
		Dataset        string `json:"dataset"`
		Label          string `json:"label"`
		ParametersPath string `json:"parameters_path"`
		ResultPath     string `json:"result_path"`
		Parameters     string `json:"parameters"`
		Result         string `json:"result"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Dataset = wire.Dataset
	r.Label = wire.Label
	r.ParametersPath = firstNonEmpty(wire.ParametersPath, wire.Parameters)
	r.ResultPath = firstNonEmpty(wire.ResultPath, wire.Result)
	return nil
}

// Field describes one column of a result set. Only the name is used for
// rendering; the type is kept for documentation and export.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ResultSet is the tabular result of a dataset query. Row values keep JSON
// numbers as json.Number so their literal text survives rendering.
type ResultSet struct {
	Fields []Field
	Rows   []map[string]any
}

// FieldNames returns the column names in schema order.
func (r ResultSet) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, field := range r.Fields {
		names = append(names, field.Name)
	}
	return names
}

// DecodeCatalog parses a `{"resource_paths": [...]}` payload.
func DecodeCatalog(data []byte) ([]Resource, error) {
	var payload struct {
		ResourcePaths []Resource `json:"resource_paths"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("backend: decode catalog: %w", err)
	}
	if payload.ResourcePaths == nil {
		return nil, fmt.Errorf("backend: decode catalog: missing resource_paths")
	}
	for idx, resource := range payload.ResourcePaths {
		if resource.Dataset == "" {
			return nil, fmt.Errorf("backend: decode catalog: resource %d has no dataset id", idx)
		}
	}
	return payload.ResourcePaths, nil
}

// DecodeResults parses a `{"schema": {"fields": [...]}, "data": [...]}`
// payload.
func DecodeResults(data []byte) (ResultSet, error) {
	var payload struct {
		Schema *struct {
			Fields []Field `json:"fields"`
		} `json:"schema"`
		Data []map[string]any `json:"data"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return ResultSet{}, fmt.Errorf("backend: decode results: %w", err)
	}
	if payload.Schema == nil {
		return ResultSet{}, fmt.Errorf("backend: decode results: missing schema")
	}
	return ResultSet{Fields: payload.Schema.Fields, Rows: payload.Data}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
