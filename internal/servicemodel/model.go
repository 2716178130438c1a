// Package servicemodel holds the normalized, read-only description of a service
// that every emitter consumes: operations, structures and errors.
package servicemodel

import (
	"fmt"
	"slices"
	"sort"
)

// TypeKind is the kind of a member's type reference.
type TypeKind string

const (
	KindString    TypeKind = "string"
	KindInteger   TypeKind = "integer"
	KindLong      TypeKind = "long"
	KindDouble    TypeKind = "double"
	KindBoolean   TypeKind = "boolean"
	KindTimestamp TypeKind = "timestamp"
	KindBlob      TypeKind = "blob"
	KindList      TypeKind = "list"
	KindMap       TypeKind = "map"
	KindStructure TypeKind = "structure"
	KindAny       TypeKind = "any"
)

// TypeRef references the type of a member. Name is set for structures,
// Element for lists and maps.
type TypeRef struct {
	Kind    TypeKind
	Name    string
	Element *TypeRef
}

func (t TypeRef) String() string {
	switch t.Kind {
	case KindStructure:
		return t.Name
	case KindList:
		return fmt.Sprintf("list<%s>", t.Element)
	case KindMap:
		return fmt.Sprintf("map<string,%s>", t.Element)
	default:
		return string(t.Kind)
	}
}

// Member is one named field of a structure.
type Member struct {
	Value         TypeRef
	Position      int
	Required      bool
	Documentation string
}

// StructureDescription is a named shape with ordered members.
type StructureDescription struct {
	Members       map[string]Member
	Documentation string
}

// MemberNames returns member names in declaration position order. Members
// sharing a position are ordered by name.
func (s StructureDescription) MemberNames() []string {
	names := make([]string, 0, len(s.Members))
	for name := range s.Members {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := s.Members[names[i]].Position, s.Members[names[j]].Position
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

// ErrorDescription is one declared error of an operation.
type ErrorDescription struct {
	Type string
	Code int
}

// FieldLocation is where a member of an operation input or output travels in
// an HTTP message.
type FieldLocation string

const (
	LocationBody    FieldLocation = "body"
	LocationQuery   FieldLocation = "query"
	LocationPath    FieldLocation = "path"
	LocationHeaders FieldLocation = "headers"
)

// OperationInputDescription assigns input members to HTTP locations. Members
// not listed in any of the field lists travel in DefaultInputLocation, which is
// either body or query.
type OperationInputDescription struct {
	PathFields             []string      `json:"pathFields,omitempty" yaml:"pathFields,omitempty"`
	QueryFields            []string      `json:"queryFields,omitempty" yaml:"queryFields,omitempty"`
	BodyFields             []string      `json:"bodyFields,omitempty" yaml:"bodyFields,omitempty"`
	AdditionalHeaderFields []string      `json:"additionalHeaderFields,omitempty" yaml:"additionalHeaderFields,omitempty"`
	DefaultInputLocation   FieldLocation `json:"defaultInputLocation,omitempty" yaml:"defaultInputLocation,omitempty"`
	PayloadAsMember        string        `json:"payloadAsMember,omitempty" yaml:"payloadAsMember,omitempty"`
}

// DefaultOperationInputDescription places every member in the body.
func DefaultOperationInputDescription() OperationInputDescription {
	return OperationInputDescription{DefaultInputLocation: LocationBody}
}

// Default returns the effective default location, treating empty as body.
func (d OperationInputDescription) Default() FieldLocation {
	if d.DefaultInputLocation == "" {
		return LocationBody
	}
	return d.DefaultInputLocation
}

// Equal reports value equality. An empty default location equals body.
func (d OperationInputDescription) Equal(other OperationInputDescription) bool {
	return slices.Equal(d.PathFields, other.PathFields) &&
		slices.Equal(d.QueryFields, other.QueryFields) &&
		slices.Equal(d.BodyFields, other.BodyFields) &&
		slices.Equal(d.AdditionalHeaderFields, other.AdditionalHeaderFields) &&
		d.Default() == other.Default() &&
		d.PayloadAsMember == other.PayloadAsMember
}

// OperationOutputDescription assigns output members to the body or to
// additional response headers. Unlisted members travel in the body.
type OperationOutputDescription struct {
	BodyFields      []string `json:"bodyFields,omitempty" yaml:"bodyFields,omitempty"`
	HeaderFields    []string `json:"headerFields,omitempty" yaml:"headerFields,omitempty"`
	PayloadAsMember string   `json:"payloadAsMember,omitempty" yaml:"payloadAsMember,omitempty"`
}

// OperationDescription describes one service operation. An empty HTTPVerb
// means the operation is not HTTP-bound.
type OperationDescription struct {
	Input             string
	Output            string
	HTTPVerb          string
	HTTPURL           string
	Errors            []ErrorDescription
	InputDescription  *OperationInputDescription
	OutputDescription *OperationOutputDescription
	Documentation     string
}

// ServiceModel is the normalized service description.
type ServiceModel struct {
	Title       string
	Version     string
	Description string
	Operations  map[string]OperationDescription
	Structures  map[string]StructureDescription
}

// OperationNames returns declared operation names in ascending lexicographic order.
func (m *ServiceModel) OperationNames() []string {
	names := make([]string, 0, len(m.Operations))
	for name := range m.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StructureNames returns structure names in ascending order.
func (m *ServiceModel) StructureNames() []string {
	names := make([]string, 0, len(m.Structures))
	for name := range m.Structures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrorTypes returns the distinct error identities declared by any operation,
// sorted.
func (m *ServiceModel) ErrorTypes() []string {
	seen := map[string]struct{}{}
	for _, op := range m.Operations {
		for _, e := range op.Errors {
			seen[e.Type] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SortedErrors returns the operation's errors ordered by status code. Errors
// sharing a code keep their declaration order.
func (o OperationDescription) SortedErrors() []ErrorDescription {
	out := append([]ErrorDescription(nil), o.Errors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
