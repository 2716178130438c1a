package codegen

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/smokegen/internal/binding"
	"github.com/mark3labs/smokegen/internal/config"
	"github.com/mark3labs/smokegen/internal/naming"
	sm "github.com/mark3labs/smokegen/internal/servicemodel"
)

type fieldView struct {
	Member  string
	Name    string
	Type    string
	Tag     string
	Doc     []string
	Default string
}

type structView struct {
	Name   string
	Doc    []string
	Fields []fieldView
}

type errorView struct {
	Identity    string
	Const       string
	Type        string
	Constructor string
}

type allowedErrorView struct {
	Const string
	Code  int
}

type partView struct {
	Param   string
	Var     string
	Type    string
	Decoder string
	Present bool
	// Used is set for the providers Compose calls.
	Used bool
}

type assignView struct {
	Name string
	Expr string
}

type clientFieldView struct {
	Member string
	Name   string
}

type inputView struct {
	Type        string
	TypeLocal   string
	ComposeFunc string
	DecodeFunc  string
	Emit        bool
	Single      bool
	SingleParam string
	Parts       []partView
	Assignments []assignView
	// Synthesized part types, declared in the model package.
	PartTypes []structView

	ClientPath    []clientFieldView
	ClientQuery   []clientFieldView
	ClientHeaders []clientFieldView
	ClientBody    string
}

type outputView struct {
	Type       string
	TypeLocal  string
	EncodeFunc string
	Emit       bool
	Body       string
	Headers    string
	PartTypes  []structView

	ClientBodyPart   string
	ClientBodyTarget string
	ClientBodyFields []clientFieldView
	HeaderFields     []clientFieldView
}

type operationView struct {
	Name         string
	GoName       string
	Const        string
	Doc          []string
	HTTP         bool
	Verb         string
	Method       string
	Path         string
	Standalone   bool
	Registration string
	Async        bool
	Input        *inputView
	Output       *outputView
	Errors       []allowedErrorView
	ErrorSummary string

	StubFile      string
	TestFile      string
	StubDoc       []string
	StubSignature string
	StubReturn    string
	HandlerCall   string
	TestCall      string
	TestInput     string
	ClientParams  string
	ClientResults string
}

// view is the data every template is executed with.
type view struct {
	L          layout
	Model      *sm.ServiceModel
	Structures []structView
	Errors     []errorView
	Operations []operationView
	// HTTPOperations is Operations without the verb-less ones.
	HTTPOperations []operationView
	Inputs         []*inputView
	Outputs        []*outputView
	Features       config.CodeGenFeatures
	Streamlined    bool
	Client         config.HTTPClientConfiguration
	ClientRetries  []retryView
	// GeneratedDirs are the regenerated library directories of this run.
	GeneratedDirs []string
}

type retryView struct {
	Const string
	Retry bool
}

// identifiers tracks declarations of the model package to reject collisions.
type identifiers map[string]string

func (ids identifiers) declare(name, owner string) error {
	if prev, ok := ids[name]; ok {
		return inconsistent("", "generated identifier %s is declared for both %s and %s", name, prev, owner)
	}
	ids[name] = owner
	return nil
}

func newView(model *sm.ServiceModel, plan *binding.Plan, opts Options, l layout) (*view, error) {
	v := &view{
		L:           l,
		Model:       model,
		Features:    opts.Features,
		Streamlined: opts.InitializationType == config.InitializationStreamlined,
		Client:      opts.HTTPClient,
	}
	ids := identifiers{}
	for _, reserved := range []string{"Operation", "AllOperations", l.Base + "Error"} {
		if err := ids.declare(reserved, "the generated model"); err != nil {
			return nil, err
		}
	}
	modelQ := l.ModelPkg + "."

	for _, name := range model.StructureNames() {
		s, err := newStructView(model, name, ids)
		if err != nil {
			return nil, err
		}
		v.Structures = append(v.Structures, s)
	}

	for _, identity := range model.ErrorTypes() {
		e := errorView{Identity: identity, Const: naming.ErrorName(identity) + "Identity"}
		if err := ids.declare(e.Const, "error "+identity); err != nil {
			return nil, err
		}
		if _, ok := model.Structures[identity]; ok {
			e.Type = naming.TypeName(identity)
			e.Constructor = "New" + naming.ErrorName(identity)
			if err := ids.declare(e.Constructor, "error "+identity); err != nil {
				return nil, err
			}
		}
		v.Errors = append(v.Errors, e)
		v.ClientRetries = append(v.ClientRetries, retryView{Const: e.Const, Retry: opts.HTTPClient.KnownErrorRetries(identity)})
	}

	for _, ob := range plan.Operations {
		op := operationView{
			Name:   ob.Name,
			GoName: ob.TypeName,
			Const:  "Operation" + ob.TypeName,
			Doc:    commentLines(ob.Description.Documentation),
			Path:   ob.Description.HTTPURL,
			Async:  opts.Features.AsyncOperationStubs.Enabled(),
		}
		if err := ids.declare(op.Const, "operation "+ob.Name); err != nil {
			return nil, err
		}
		if verb := ob.Description.HTTPVerb; verb != "" {
			op.HTTP = true
			op.Verb = strings.ToUpper(verb)
			op.Method = methodConstant(op.Verb)
		}
		switch opts.StubRule.StubGeneration(ob.Name) {
		case config.StandaloneFunction:
			op.Standalone = true
			op.Registration = "AddHandlerForOperation"
		case config.FunctionWithinContext:
			op.Registration = "AddContextHandlerForOperation"
		default:
			return nil, configurationError("no stub generation for operation %s", ob.Name)
		}
		var summary []string
		for _, e := range ob.Description.SortedErrors() {
			op.Errors = append(op.Errors, allowedErrorView{Const: naming.ErrorName(e.Type) + "Identity", Code: e.Code})
			summary = append(summary, fmt.Sprintf("%s (%d)", e.Type, e.Code))
		}
		op.ErrorSummary = strings.Join(summary, ", ")

		if ob.Input != nil {
			in, err := newInputView(model, *ob.Input, ob.EmitsInput, modelQ, ids)
			if err != nil {
				return nil, err
			}
			if in.Emit {
				v.Inputs = append(v.Inputs, in)
			} else {
				in = findInput(v.Inputs, in.Type)
			}
			op.Input = in
		}
		if ob.Output != nil {
			out, err := newOutputView(model, *ob.Output, ob.EmitsOutput, modelQ, ids)
			if err != nil {
				return nil, err
			}
			if out.Emit {
				v.Outputs = append(v.Outputs, out)
			} else {
				out = findOutput(v.Outputs, out.Type)
			}
			op.Output = out
		}
		fillSignatures(&op, l)
		v.Operations = append(v.Operations, op)
		if op.HTTP {
			v.HTTPOperations = append(v.HTTPOperations, op)
		}
	}
	assignStubFiles(v.Operations)
	return v, nil
}

func newStructView(model *sm.ServiceModel, name string, ids identifiers) (structView, error) {
	s := model.Structures[name]
	sv := structView{Name: naming.TypeName(name), Doc: commentLines(s.Documentation)}
	if err := ids.declare(sv.Name, "structure "+name); err != nil {
		return structView{}, err
	}
	if err := ids.declare("Default"+sv.Name, "structure "+name); err != nil {
		return structView{}, err
	}
	fields, err := fieldViews(model, name, s.MemberNames(), "")
	if err != nil {
		return structView{}, err
	}
	sv.Fields = fields
	return sv, nil
}

// fieldViews renders members of structure owner, in the given order.
func fieldViews(model *sm.ServiceModel, owner string, members []string, qualifier string) ([]fieldView, error) {
	s := model.Structures[owner]
	seen := map[string]string{}
	out := make([]fieldView, 0, len(members))
	for _, member := range members {
		m := s.Members[member]
		typ, err := goType(m.Value, qualifier)
		if err != nil {
			return nil, err
		}
		f := fieldView{
			Member: member,
			Name:   naming.FieldName(member),
			Type:   typ,
			Doc:    commentLines(m.Documentation),
		}
		if prev, ok := seen[f.Name]; ok {
			return nil, inconsistent("", "members %s and %s of %s both map to field %s", prev, member, owner, f.Name)
		}
		seen[f.Name] = member
		pointer := m.Value.Kind == sm.KindStructure && valueCycle(model, owner, m.Value.Name)
		if pointer {
			f.Type = "*" + f.Type
		}
		tag := member
		if !m.Required || pointer {
			tag += ",omitempty"
		}
		f.Tag = fmt.Sprintf("`json:%q`", tag)
		switch {
		case pointer:
		case m.Value.Kind == sm.KindStructure:
			if _, ok := model.Structures[m.Value.Name]; ok {
				f.Default = qualifier + "Default" + naming.TypeName(m.Value.Name) + "()"
			}
		case m.Value.Kind == sm.KindList || m.Value.Kind == sm.KindMap:
			f.Default = f.Type + "{}"
		}
		out = append(out, f)
	}
	return out, nil
}

var partSuffix = map[sm.FieldLocation]string{
	sm.LocationPath:    "Path",
	sm.LocationQuery:   "Query",
	sm.LocationBody:    "Body",
	sm.LocationHeaders: "AdditionalHeaders",
}

var partDecoder = map[sm.FieldLocation]string{
	sm.LocationPath:    "smoke.DecodePath",
	sm.LocationQuery:   "smoke.DecodeQuery",
	sm.LocationBody:    "smoke.DecodeBody",
	sm.LocationHeaders: "smoke.DecodeHeaders",
}

func newInputView(model *sm.ServiceModel, b binding.InputBinding, emit bool, modelQ string, ids identifiers) (*inputView, error) {
	typeName := naming.TypeName(b.InputType)
	in := &inputView{
		Type:        modelQ + typeName,
		TypeLocal:   typeName,
		ComposeFunc: "Compose" + typeName + "Input",
		DecodeFunc:  "Decode" + typeName + "Input",
		Emit:        emit,
	}
	if !emit {
		return in, nil
	}
	structure := model.Structures[b.InputType]

	loc, single := b.SingleLocation()
	if single && b.PayloadAsMember == "" {
		in.Single = true
		in.SingleParam = string(loc)
	}
	for _, l := range binding.InputLocations {
		part := partView{Param: string(l), Var: string(l) + "Part", Decoder: partDecoder[l], Present: len(b.Members[l]) > 0}
		switch {
		case in.Single:
			part.Type = in.Type
			part.Used = l == loc
		case !part.Present:
			part.Type = "struct{}"
		case l == sm.LocationBody && b.PayloadAsMember != "":
			typ, err := goType(structure.Members[b.PayloadAsMember].Value, modelQ)
			if err != nil {
				return nil, err
			}
			part.Used = true
			part.Type = typ
		default:
			part.Used = true
			local := b.Prefix + partSuffix[l]
			part.Type = modelQ + local
			fields, err := fieldViews(model, b.InputType, b.Members[l], "")
			if err != nil {
				return nil, err
			}
			if err := ids.declare(local, "input "+b.InputType); err != nil {
				return nil, err
			}
			in.PartTypes = append(in.PartTypes, structView{Name: local, Fields: fields})
		}
		in.Parts = append(in.Parts, part)
	}

	for _, member := range structure.MemberNames() {
		l := b.LocationByMember[member]
		field := naming.FieldName(member)
		expr := string(l) + "Part." + field
		if member == b.PayloadAsMember {
			expr = "bodyPart"
		}
		in.Assignments = append(in.Assignments, assignView{Name: field, Expr: expr})
		cf := clientFieldView{Member: member, Name: field}
		switch l {
		case sm.LocationPath:
			in.ClientPath = append(in.ClientPath, cf)
		case sm.LocationQuery:
			in.ClientQuery = append(in.ClientQuery, cf)
		case sm.LocationHeaders:
			in.ClientHeaders = append(in.ClientHeaders, cf)
		}
	}

	switch {
	case !b.HasBody:
	case b.PayloadAsMember != "":
		in.ClientBody = "input." + naming.FieldName(b.PayloadAsMember)
	case in.Single:
		in.ClientBody = "input"
	default:
		var fields []string
		for _, member := range b.Members[sm.LocationBody] {
			f := naming.FieldName(member)
			fields = append(fields, f+": input."+f)
		}
		in.ClientBody = modelQ + b.Prefix + "Body{" + strings.Join(fields, ", ") + "}"
	}
	return in, nil
}

func newOutputView(model *sm.ServiceModel, b binding.OutputBinding, emit bool, modelQ string, ids identifiers) (*outputView, error) {
	typeName := naming.TypeName(b.OutputType)
	out := &outputView{
		Type:       modelQ + typeName,
		TypeLocal:  typeName,
		EncodeFunc: "Encode" + typeName + "Output",
		Emit:       emit,
		Body:       "nil",
		Headers:    "nil",
	}
	if !emit {
		return out, nil
	}

	for _, member := range b.HeaderMembers {
		out.HeaderFields = append(out.HeaderFields, clientFieldView{Member: member, Name: naming.FieldName(member)})
	}
	if b.HasHeaders {
		local := b.Prefix + "AdditionalHeaders"
		fields, err := fieldViews(model, b.OutputType, b.HeaderMembers, "")
		if err != nil {
			return nil, err
		}
		if err := ids.declare(local, "output "+b.OutputType); err != nil {
			return nil, err
		}
		out.PartTypes = append(out.PartTypes, structView{Name: local, Fields: fields})
		out.Headers = modelQ + local + "{" + copyFields("output", b.HeaderMembers) + "}"
	}

	switch {
	case !b.HasBody:
		out.ClientBodyTarget = "nil"
	case b.PayloadAsMember != "":
		field := naming.FieldName(b.PayloadAsMember)
		out.Body = "output." + field
		out.ClientBodyTarget = "&output." + field
	case !b.HasHeaders:
		out.Body = "output"
		out.ClientBodyTarget = "&output"
	default:
		local := b.Prefix + "Body"
		fields, err := fieldViews(model, b.OutputType, b.BodyMembers, "")
		if err != nil {
			return nil, err
		}
		if err := ids.declare(local, "output "+b.OutputType); err != nil {
			return nil, err
		}
		out.PartTypes = append(out.PartTypes, structView{Name: local, Fields: fields})
		out.Body = modelQ + local + "{" + copyFields("output", b.BodyMembers) + "}"
		out.ClientBodyPart = modelQ + local
		for _, member := range b.BodyMembers {
			out.ClientBodyFields = append(out.ClientBodyFields, clientFieldView{Member: member, Name: naming.FieldName(member)})
		}
	}
	return out, nil
}

func copyFields(from string, members []string) string {
	parts := make([]string, 0, len(members))
	for _, member := range members {
		f := naming.FieldName(member)
		parts = append(parts, f+": "+from+"."+f)
	}
	return strings.Join(parts, ", ")
}

func findInput(inputs []*inputView, typ string) *inputView {
	for _, in := range inputs {
		if in.Type == typ {
			return in
		}
	}
	return nil
}

func findOutput(outputs []*outputView, typ string) *outputView {
	for _, out := range outputs {
		if out.Type == typ {
			return out
		}
	}
	return nil
}

// fillSignatures derives the stub, registration, test and client call shapes
// from the operation's single stub decision.
func fillSignatures(op *operationView, l layout) {
	var params, args, testArgs []string
	if op.Async {
		params = append(params, "ctx context.Context")
		args = append(args, "request.Context()")
		testArgs = append(testArgs, "context.Background()")
	}
	results := "error"
	op.StubReturn = "return nil"
	op.ClientResults = "error"
	if op.Input != nil {
		params = append(params, "input "+op.Input.Type)
		args = append(args, "input")
		testArgs = append(testArgs, "input")
		op.TestInput = l.ModelPkg + ".Default" + op.Input.TypeLocal + "()"
	}
	if op.Output != nil {
		results = "(" + op.Output.Type + ", error)"
		op.StubReturn = "return " + l.ModelPkg + ".Default" + op.Output.TypeLocal + "(), nil"
		op.ClientResults = results
	}

	handler := "Handle" + op.GoName
	if op.Standalone {
		params = append(params, "c Context")
		op.StubSignature = handler + "(" + strings.Join(params, ", ") + ") " + results
		op.HandlerCall = l.OperationsPkg + "." + handler + "(" + strings.Join(append(args, "operationsContext"), ", ") + ")"
		op.TestCall = handler + "(" + strings.Join(append(testArgs, "newTestContext()"), ", ") + ")"
	} else {
		op.StubSignature = "(c Context) " + handler + "(" + strings.Join(params, ", ") + ") " + results
		op.HandlerCall = "operationsContext." + handler + "(" + strings.Join(args, ", ") + ")"
		op.TestCall = "newTestContext()." + handler + "(" + strings.Join(testArgs, ", ") + ")"
	}

	op.StubDoc = append([]string{handler + " handles the " + op.Name + " operation."}, op.Doc...)
	var shapes []string
	if op.Input != nil {
		shapes = append(shapes, "Input: "+op.Input.Type)
	}
	if op.Output != nil {
		shapes = append(shapes, "Output: "+op.Output.Type)
	}
	if op.ErrorSummary != "" {
		shapes = append(shapes, "Errors: "+op.ErrorSummary)
	}
	if len(shapes) > 0 {
		op.StubDoc = append(append(op.StubDoc, ""), shapes...)
	}

	clientParams := []string{"ctx context.Context"}
	if op.Input != nil {
		clientParams = append(clientParams, "input "+op.Input.Type)
	}
	op.ClientParams = strings.Join(clientParams, ", ")
}

// reservedSuffixes would turn a generated file into a test file or attach a
// build constraint to it.
var reservedSuffixes = map[string]bool{
	"test": true, "aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true, "netbsd": true,
	"openbsd": true, "plan9": true, "solaris": true, "wasip1": true, "windows": true, "zos": true,
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true, "mips": true, "mips64": true,
	"mips64le": true, "mipsle": true, "ppc64": true, "ppc64le": true, "riscv64": true, "s390x": true, "wasm": true,
}

// reservedStems are file names the operations package already uses.
var reservedStems = map[string]bool{"context": true, "test_config": true, "main": true}

func assignStubFiles(ops []operationView) {
	used := map[string]bool{}
	for i := range ops {
		stem := naming.FileName(ops[i].Name)
		parts := strings.Split(stem, "_")
		if reservedSuffixes[parts[len(parts)-1]] || reservedStems[stem] {
			stem += "_operation"
		}
		for base, n := stem, 2; used[stem]; n++ {
			stem = fmt.Sprintf("%s_%d", base, n)
		}
		used[stem] = true
		ops[i].StubFile = stem + ".go"
		ops[i].TestFile = stem + "_test.go"
	}
}

func methodConstant(verb string) string {
	switch verb {
	case http.MethodGet:
		return "http.MethodGet"
	case http.MethodHead:
		return "http.MethodHead"
	case http.MethodPost:
		return "http.MethodPost"
	case http.MethodPut:
		return "http.MethodPut"
	case http.MethodPatch:
		return "http.MethodPatch"
	case http.MethodDelete:
		return "http.MethodDelete"
	case http.MethodOptions:
		return "http.MethodOptions"
	case http.MethodTrace:
		return "http.MethodTrace"
	case http.MethodConnect:
		return "http.MethodConnect"
	default:
		return fmt.Sprintf("%q", verb)
	}
}

// commentLines splits documentation into trimmed comment lines.
func commentLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return lines
}
