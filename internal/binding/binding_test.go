package binding

import (
	"errors"
	"testing"

	sm "github.com/mark3labs/smokegen/internal/servicemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structure(members ...string) sm.StructureDescription {
	s := sm.StructureDescription{Members: map[string]sm.Member{}}
	for i, m := range members {
		s.Members[m] = sm.Member{Value: sm.TypeRef{Kind: sm.KindString}, Position: i}
	}
	return s
}

func assertPartition(t *testing.T, s sm.StructureDescription, b InputBinding) {
	t.Helper()
	seen := map[string]int{}
	for _, loc := range InputLocations {
		for _, m := range b.Members[loc] {
			seen[m]++
		}
	}
	assert.Len(t, seen, len(s.Members))
	for name := range s.Members {
		assert.Equal(t, 1, seen[name], "member %s", name)
		assert.Contains(t, b.LocationByMember, name)
	}
}

func TestResolveInput_CreateWidgetScenario(t *testing.T) {
	t.Parallel()
	s := structure("name", "id", "payload")
	desc := sm.OperationInputDescription{
		QueryFields: []string{"name"},
		PathFields:  []string{"id"},
		BodyFields:  []string{"payload"},
	}
	b, err := ResolveInput("CreateWidget", "CreateWidgetRequest", s, desc)
	require.NoError(t, err)
	assertPartition(t, s, b)

	assert.Equal(t, sm.LocationQuery, b.LocationByMember["name"])
	assert.Equal(t, sm.LocationPath, b.LocationByMember["id"])
	assert.Equal(t, sm.LocationBody, b.LocationByMember["payload"])
	assert.True(t, b.HasBody && b.HasQuery && b.HasPath)
	assert.False(t, b.HasHeaders)
	assert.Equal(t, []sm.FieldLocation{sm.LocationPath, sm.LocationQuery, sm.LocationBody}, b.Occupied())
	_, single := b.SingleLocation()
	assert.False(t, single)
	assert.Equal(t, "CreateWidgetOperationInput", b.Prefix)
}

func TestResolveInput_PingSingleLocation(t *testing.T) {
	t.Parallel()
	s := structure("token")
	b, err := ResolveInput("Ping", "PingRequest", s, sm.OperationInputDescription{DefaultInputLocation: sm.LocationQuery})
	require.NoError(t, err)
	assertPartition(t, s, b)
	loc, single := b.SingleLocation()
	require.True(t, single)
	assert.Equal(t, sm.LocationQuery, loc)
}

func TestResolveInput_DefaultLocationCatchAll(t *testing.T) {
	t.Parallel()
	s := structure("c", "a", "b", "h")
	desc := sm.OperationInputDescription{AdditionalHeaderFields: []string{"h"}, PathFields: []string{"ghost"}}
	b, err := ResolveInput("Op", "OpInput", s, desc)
	require.NoError(t, err)
	assertPartition(t, s, b)
	// declaration order, not name order
	assert.Equal(t, []string{"c", "a", "b"}, b.Members[sm.LocationBody])
	assert.Equal(t, []string{"h"}, b.Members[sm.LocationHeaders])
	assert.Empty(t, b.Members[sm.LocationPath])
}

func TestResolveInput_MemberInTwoLocations(t *testing.T) {
	t.Parallel()
	s := structure("a")
	_, err := ResolveInput("Op", "OpInput", s, sm.OperationInputDescription{QueryFields: []string{"a"}, PathFields: []string{"a"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentModel))
}

func TestResolveInput_RejectsNonBodyQueryDefault(t *testing.T) {
	t.Parallel()
	_, err := ResolveInput("Op", "OpInput", structure("a"), sm.OperationInputDescription{DefaultInputLocation: sm.LocationPath})
	require.ErrorIs(t, err, ErrInconsistentModel)
}

func TestResolveInput_Payload(t *testing.T) {
	t.Parallel()
	s := structure("id", "widget")

	b, err := ResolveInput("Put", "PutInput", s, sm.OperationInputDescription{PathFields: []string{"id"}, PayloadAsMember: "widget"})
	require.NoError(t, err)
	assert.Equal(t, "widget", b.PayloadAsMember)

	_, err = ResolveInput("Put", "PutInput", s, sm.OperationInputDescription{PayloadAsMember: "missing"})
	require.ErrorIs(t, err, ErrInconsistentModel)
	assert.Contains(t, err.Error(), "Unknown payload member missing")

	_, err = ResolveInput("Put", "PutInput", s, sm.OperationInputDescription{QueryFields: []string{"widget"}, PathFields: []string{"id"}, PayloadAsMember: "widget"})
	require.ErrorIs(t, err, ErrInconsistentModel)
	assert.Contains(t, err.Error(), "not body")

	_, err = ResolveInput("Put", "PutInput", s, sm.OperationInputDescription{PayloadAsMember: "widget"})
	require.ErrorIs(t, err, ErrInconsistentModel)
	assert.Contains(t, err.Error(), "Body member id not part of payload")
}

func TestResolveOutput(t *testing.T) {
	t.Parallel()
	s := structure("etag", "widget", "extra")
	b, err := ResolveOutput("Get", "GetOutput", s, sm.OperationOutputDescription{HeaderFields: []string{"etag"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"etag"}, b.HeaderMembers)
	assert.Equal(t, []string{"widget", "extra"}, b.BodyMembers)
	assert.True(t, b.HasBody && b.HasHeaders)
	assert.Equal(t, "GetOperationOutput", b.Prefix)

	_, err = ResolveOutput("Get", "GetOutput", s, sm.OperationOutputDescription{HeaderFields: []string{"etag"}, PayloadAsMember: "widget"})
	require.ErrorIs(t, err, ErrInconsistentModel)

	_, err = ResolveOutput("Get", "GetOutput", s, sm.OperationOutputDescription{HeaderFields: []string{"etag"}, BodyFields: []string{"etag"}})
	require.ErrorIs(t, err, ErrInconsistentModel)
}

func sharedInputModel(first, second *sm.OperationInputDescription) *sm.ServiceModel {
	return &sm.ServiceModel{
		Operations: map[string]sm.OperationDescription{
			"UpdateWidget":  {Input: "WidgetInput", HTTPVerb: "PUT", InputDescription: second},
			"ReplaceWidget": {Input: "WidgetInput", HTTPVerb: "PUT", InputDescription: first},
		},
		Structures: map[string]sm.StructureDescription{"WidgetInput": structure("id", "name")},
	}
}

func TestNewPlan_DuplicateEqualInputsAreShared(t *testing.T) {
	t.Parallel()
	desc := &sm.OperationInputDescription{PathFields: []string{"id"}}
	same := &sm.OperationInputDescription{PathFields: []string{"id"}, DefaultInputLocation: sm.LocationBody}
	plan, err := NewPlan(sharedInputModel(desc, same), nil)
	require.NoError(t, err)
	require.Len(t, plan.Operations, 2)

	replace, update := plan.Operations[0], plan.Operations[1]
	assert.Equal(t, "ReplaceWidget", replace.Name)
	assert.True(t, replace.EmitsInput)
	assert.False(t, update.EmitsInput)
	assert.Equal(t, "ReplaceWidgetOperationInput", update.Input.Prefix)
}

func TestNewPlan_DuplicateDifferentInputsConflict(t *testing.T) {
	t.Parallel()
	_, err := NewPlan(sharedInputModel(
		&sm.OperationInputDescription{PathFields: []string{"id"}},
		&sm.OperationInputDescription{QueryFields: []string{"id"}},
	), nil)
	require.ErrorIs(t, err, ErrInconsistentModel)
	assert.Contains(t, err.Error(), "Incompatible duplicate operation inputs for WidgetInput")
	assert.Contains(t, err.Error(), "UpdateWidget")
}

func TestNewPlan_OverrideConflict(t *testing.T) {
	t.Parallel()
	override := &sm.ModelOverride{OperationInputOverrides: map[string]sm.OperationInputDescription{
		"UpdateWidget": {QueryFields: []string{"name"}},
	}}
	_, err := NewPlan(sharedInputModel(nil, nil), override)
	require.ErrorIs(t, err, ErrInconsistentModel)
}

func TestNewPlan_UnknownStructure(t *testing.T) {
	t.Parallel()
	model := &sm.ServiceModel{Operations: map[string]sm.OperationDescription{"Get": {Output: "Missing"}}}
	_, err := NewPlan(model, nil)
	require.ErrorIs(t, err, ErrInconsistentModel)
	assert.Contains(t, err.Error(), "No structure with type Missing")
}

func TestNewPlan_GetWidgetWithoutShapes(t *testing.T) {
	t.Parallel()
	model := &sm.ServiceModel{Operations: map[string]sm.OperationDescription{
		"GetWidget": {HTTPVerb: "GET"},
		"Internal":  {},
	}}
	plan, err := NewPlan(model, nil)
	require.NoError(t, err)
	require.Len(t, plan.Operations, 2)
	assert.Nil(t, plan.Operations[0].Input)
	assert.Nil(t, plan.Operations[0].Output)
	http := plan.HTTPOperations()
	require.Len(t, http, 1)
	assert.Equal(t, "GetWidget", http[0].Name)
}
