// Package binding decides where each member of an operation's input and output
// travels in an HTTP message.
package binding

import (
	"errors"
	"fmt"

	"github.com/mark3labs/smokegen/internal/naming"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// ErrInconsistentModel matches every ConsistencyError.
var ErrInconsistentModel = errors.New("inconsistent service model")

// ConsistencyError reports a model or override that cannot be bound safely.
type ConsistencyError struct {
	Operation string
	Message   string
}

func (e *ConsistencyError) Error() string {
	if e.Operation == "" {
		return e.Message
	}
	return fmt.Sprintf("operation %s: %s", e.Operation, e.Message)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrInconsistentModel }

func inconsistent(operation, format string, args ...any) error {
	return &ConsistencyError{Operation: operation, Message: fmt.Sprintf(format, args...)}
}

// InputLocations lists the input locations in the order part types and
// composition parameters are emitted.
var InputLocations = []sm.FieldLocation{sm.LocationPath, sm.LocationQuery, sm.LocationBody, sm.LocationHeaders}

// InputBinding is the resolved placement of every member of an input structure.
type InputBinding struct {
	InputType string
	// Prefix names the synthesized part types, e.g. "CreateWidgetOperationInput".
	Prefix      string
	Description sm.OperationInputDescription
	// LocationByMember holds exactly one location per structure member.
	LocationByMember map[string]sm.FieldLocation
	// Members lists each location's members in declaration position order.
	Members         map[sm.FieldLocation][]string
	PayloadAsMember string

	HasBody    bool
	HasQuery   bool
	HasPath    bool
	HasHeaders bool
}

// Occupied returns the locations holding at least one member, in InputLocations order.
func (b InputBinding) Occupied() []sm.FieldLocation {
	var out []sm.FieldLocation
	for _, loc := range InputLocations {
		if len(b.Members[loc]) > 0 {
			out = append(out, loc)
		}
	}
	return out
}

// SingleLocation reports the only occupied location, if exactly one is.
func (b InputBinding) SingleLocation() (sm.FieldLocation, bool) {
	occupied := b.Occupied()
	if len(occupied) != 1 {
		return "", false
	}
	return occupied[0], true
}

// ResolveInput partitions the members of an input structure into locations.
// Explicitly listed members take their listed location; every other member
// takes the description's default location. Listed names that are not members
// are ignored.
func ResolveInput(operation, inputType string, structure sm.StructureDescription, desc sm.OperationInputDescription) (InputBinding, error) {
	def := desc.Default()
	if def != sm.LocationBody && def != sm.LocationQuery {
		return InputBinding{}, inconsistent(operation, "default input location must be body or query, got %q", def)
	}

	locations := make(map[string]sm.FieldLocation, len(structure.Members))
	explicit := []struct {
		loc    sm.FieldLocation
		fields []string
	}{
		{sm.LocationPath, desc.PathFields},
		{sm.LocationQuery, desc.QueryFields},
		{sm.LocationBody, desc.BodyFields},
		{sm.LocationHeaders, desc.AdditionalHeaderFields},
	}
	for _, e := range explicit {
		for _, name := range e.fields {
			if _, ok := structure.Members[name]; !ok {
				continue
			}
			if prev, assigned := locations[name]; assigned && prev != e.loc {
				return InputBinding{}, inconsistent(operation, "member %s of %s is assigned to both %s and %s", name, inputType, prev, e.loc)
			}
			locations[name] = e.loc
		}
	}
	for name := range structure.Members {
		if _, assigned := locations[name]; !assigned {
			locations[name] = def
		}
	}

	b := InputBinding{
		InputType:        inputType,
		Prefix:           naming.TypeName(operation) + "OperationInput",
		Description:      desc,
		LocationByMember: locations,
		Members:          map[sm.FieldLocation][]string{},
		PayloadAsMember:  desc.PayloadAsMember,
	}
	for _, name := range structure.MemberNames() {
		loc := locations[name]
		b.Members[loc] = append(b.Members[loc], name)
	}
	b.HasBody = len(b.Members[sm.LocationBody]) > 0
	b.HasQuery = len(b.Members[sm.LocationQuery]) > 0
	b.HasPath = len(b.Members[sm.LocationPath]) > 0
	b.HasHeaders = len(b.Members[sm.LocationHeaders]) > 0

	if err := checkPayload(operation, structure, locations, b.Members[sm.LocationBody], desc.PayloadAsMember); err != nil {
		return InputBinding{}, err
	}
	return b, nil
}

// checkPayload enforces that a payload member exists, travels in the body, and
// is the only body member.
func checkPayload(operation string, structure sm.StructureDescription, locations map[string]sm.FieldLocation, body []string, payload string) error {
	if payload == "" {
		return nil
	}
	if _, ok := structure.Members[payload]; !ok {
		return inconsistent(operation, "Unknown payload member %s", payload)
	}
	if loc := locations[payload]; loc != sm.LocationBody {
		return inconsistent(operation, "Payload member %s is located in %s, not body", payload, loc)
	}
	for _, name := range body {
		if name != payload {
			return inconsistent(operation, "Body member %s not part of payload", name)
		}
	}
	return nil
}

// OutputBinding is the resolved placement of every member of an output structure.
type OutputBinding struct {
	OutputType string
	// Prefix names the synthesized body and header types.
	Prefix          string
	BodyMembers     []string
	HeaderMembers   []string
	PayloadAsMember string

	HasBody    bool
	HasHeaders bool
}

// ResolveOutput places output members in the body or in additional headers.
// Members not listed as headers travel in the body.
func ResolveOutput(operation, outputType string, structure sm.StructureDescription, desc sm.OperationOutputDescription) (OutputBinding, error) {
	locations := make(map[string]sm.FieldLocation, len(structure.Members))
	for _, name := range desc.HeaderFields {
		if _, ok := structure.Members[name]; ok {
			locations[name] = sm.LocationHeaders
		}
	}
	for _, name := range desc.BodyFields {
		if _, ok := structure.Members[name]; !ok {
			continue
		}
		if locations[name] == sm.LocationHeaders {
			return OutputBinding{}, inconsistent(operation, "member %s of %s is assigned to both headers and body", name, outputType)
		}
		locations[name] = sm.LocationBody
	}

	b := OutputBinding{
		OutputType:      outputType,
		Prefix:          naming.TypeName(operation) + "OperationOutput",
		PayloadAsMember: desc.PayloadAsMember,
	}
	for _, name := range structure.MemberNames() {
		if locations[name] == sm.LocationHeaders {
			b.HeaderMembers = append(b.HeaderMembers, name)
			continue
		}
		locations[name] = sm.LocationBody
		b.BodyMembers = append(b.BodyMembers, name)
	}
	b.HasBody = len(b.BodyMembers) > 0
	b.HasHeaders = len(b.HeaderMembers) > 0

	if err := checkPayload(operation, structure, locations, b.BodyMembers, desc.PayloadAsMember); err != nil {
		return OutputBinding{}, err
	}
	return b, nil
}
