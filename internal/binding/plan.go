package binding

import (
	"github.com/mark3labs/smokegen/internal/naming"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

// Emitted accumulates the input and output types bound by earlier operations.
// It is threaded through the operations in name order; the zero value is not
// usable, use NewEmitted.
type Emitted struct {
	inputs  map[string]InputBinding
	outputs map[string]OutputBinding
}

// NewEmitted returns an empty accumulator.
func NewEmitted() *Emitted {
	return &Emitted{inputs: map[string]InputBinding{}, outputs: map[string]OutputBinding{}}
}

// Input returns the binding recorded for an input type.
func (e *Emitted) Input(inputType string) (InputBinding, bool) {
	b, ok := e.inputs[inputType]
	return b, ok
}

// BindInput resolves an operation's input unless an earlier operation already
// bound the same input type. A recorded description that differs by value is
// fatal; an equal one is reused and first reports false.
func (e *Emitted) BindInput(operation, inputType string, structure sm.StructureDescription, desc sm.OperationInputDescription) (b InputBinding, first bool, err error) {
	if prev, ok := e.inputs[inputType]; ok {
		if !prev.Description.Equal(desc) {
			return InputBinding{}, false, inconsistent(operation, "Incompatible duplicate operation inputs for %s", naming.TypeName(inputType))
		}
		return prev, false, nil
	}
	b, err = ResolveInput(operation, inputType, structure, desc)
	if err != nil {
		return InputBinding{}, false, err
	}
	e.inputs[inputType] = b
	return b, true, nil
}

// BindOutput resolves an operation's output unless an earlier operation
// already bound the same output type, in which case that binding is reused.
func (e *Emitted) BindOutput(operation, outputType string, structure sm.StructureDescription, desc sm.OperationOutputDescription) (b OutputBinding, first bool, err error) {
	if prev, ok := e.outputs[outputType]; ok {
		return prev, false, nil
	}
	b, err = ResolveOutput(operation, outputType, structure, desc)
	if err != nil {
		return OutputBinding{}, false, err
	}
	e.outputs[outputType] = b
	return b, true, nil
}

// OperationBinding is everything the emitters need to know about one operation.
type OperationBinding struct {
	// Name is the declared operation name; TypeName its normalized form used
	// as the prefix of synthesized types.
	Name        string
	TypeName    string
	Description sm.OperationDescription

	Input  *InputBinding
	Output *OutputBinding
	// EmitsInput and EmitsOutput are set on the first operation binding a type.
	EmitsInput  bool
	EmitsOutput bool
}

// Plan holds the bindings of every operation, sorted by declared name.
type Plan struct {
	Operations []OperationBinding
}

// NewPlan resolves every operation of the model before anything is emitted, so
// that all consistency errors surface up front.
func NewPlan(model *sm.ServiceModel, override *sm.ModelOverride) (*Plan, error) {
	emitted := NewEmitted()
	plan := &Plan{}
	for _, name := range model.OperationNames() {
		od := model.Operations[name]
		ob := OperationBinding{Name: name, TypeName: naming.TypeName(name), Description: od}

		if od.Input != "" {
			structure, ok := model.Structures[od.Input]
			if !ok {
				return nil, inconsistent(name, "No structure with type %s", od.Input)
			}
			in, first, err := emitted.BindInput(name, od.Input, structure, override.InputDescription(name, od))
			if err != nil {
				return nil, err
			}
			ob.Input, ob.EmitsInput = &in, first
		}
		if od.Output != "" {
			structure, ok := model.Structures[od.Output]
			if !ok {
				return nil, inconsistent(name, "No structure with type %s", od.Output)
			}
			out, first, err := emitted.BindOutput(name, od.Output, structure, override.OutputDescription(name, od))
			if err != nil {
				return nil, err
			}
			ob.Output, ob.EmitsOutput = &out, first
		}
		plan.Operations = append(plan.Operations, ob)
	}
	return plan, nil
}

// HTTPOperations returns the operations that have an HTTP verb, in name order.
func (p *Plan) HTTPOperations() []OperationBinding {
	var out []OperationBinding
	for _, ob := range p.Operations {
		if ob.Description.HTTPVerb != "" {
			out = append(out, ob)
		}
	}
	return out
}
