package servicemodel

import (
	"fmt"
	"os"

	"github.com/mark3labs/smokegen/internal/naming"
	"gopkg.in/yaml.v3"
)

// ModelOverride replaces the model-derived input or output description of
// individual operations. Keys are normalized operation type names, so both
// "getWidget" and "GetWidget" in a model match the key "GetWidget".
type ModelOverride struct {
	OperationInputOverrides  map[string]OperationInputDescription  `json:"operationInputOverrides,omitempty" yaml:"operationInputOverrides,omitempty"`
	OperationOutputOverrides map[string]OperationOutputDescription `json:"operationOutputOverrides,omitempty" yaml:"operationOutputOverrides,omitempty"`
}

// LoadModelOverride reads a JSON or YAML override file.
func LoadModelOverride(path string) (*ModelOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model override %q: %w", path, err)
	}
	var o ModelOverride
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse model override %q: %w", path, err)
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("model override %q: %w", path, err)
	}
	return &o, nil
}

// Validate checks that default input locations are body or query.
func (o *ModelOverride) Validate() error {
	if o == nil {
		return nil
	}
	for name, d := range o.OperationInputOverrides {
		switch d.DefaultInputLocation {
		case "", LocationBody, LocationQuery:
		default:
			return fmt.Errorf("operation %q: defaultInputLocation must be body or query, got %q", name, d.DefaultInputLocation)
		}
	}
	return nil
}

// InputDescription returns the override for the operation when present, the
// model-derived description otherwise, and the all-body default when neither
// exists. An override replaces the model description as a whole.
func (o *ModelOverride) InputDescription(operation string, od OperationDescription) OperationInputDescription {
	if o != nil {
		if d, ok := o.OperationInputOverrides[naming.TypeName(operation)]; ok {
			return d
		}
	}
	if od.InputDescription != nil {
		return *od.InputDescription
	}
	return DefaultOperationInputDescription()
}

// OutputDescription mirrors InputDescription for outputs.
func (o *ModelOverride) OutputDescription(operation string, od OperationDescription) OperationOutputDescription {
	if o != nil {
		if d, ok := o.OperationOutputOverrides[naming.TypeName(operation)]; ok {
			return d
		}
	}
	if od.OutputDescription != nil {
		return *od.OutputDescription
	}
	return OperationOutputDescription{}
}
