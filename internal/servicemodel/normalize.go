package servicemodel

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/smokegen/internal/naming"
	"go.uber.org/zap"
)

// BuildOption configures how the ServiceModel is built from a loaded document.
type BuildOption func(*buildConfig)

type buildConfig struct {
	logger *zap.Logger
}

// WithBuildLogger reports skipped or degraded constructs.
func WithBuildLogger(logger *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// bodyMemberName names the member that carries a non-object request or response body.
const bodyMemberName = "body"

type builder struct {
	spec  *openapi3.T
	order propertyOrder
	model *ServiceModel
	log   *zap.Logger
}

// Build converts a loaded document into a ServiceModel.
//
// Named object schemas become structures. Each operation is keyed by its
// operationId (or a name derived from method and path); parameters and bodies
// that do not map onto a single named structure are collected into a
// synthesized "<Operation>Request" or "<Operation>Response" structure with a
// matching input or output description.
func Build(ctx context.Context, doc *Document, opts ...BuildOption) (*ServiceModel, error) {
	_ = ctx
	if doc == nil || doc.Spec == nil {
		return nil, fmt.Errorf("nil document")
	}
	cfg := &buildConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	spec := doc.Spec
	b := &builder{
		spec:  spec,
		order: readPropertyOrder(doc.Raw),
		model: &ServiceModel{
			Operations: map[string]OperationDescription{},
			Structures: map[string]StructureDescription{},
		},
		log: cfg.logger,
	}
	if spec.Info != nil {
		b.model.Title = strings.TrimSpace(spec.Info.Title)
		b.model.Version = strings.TrimSpace(spec.Info.Version)
		b.model.Description = strings.TrimSpace(spec.Info.Description)
	}

	if spec.Components != nil {
		names := make([]string, 0, len(spec.Components.Schemas))
		for name := range spec.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		var named []string
		for _, name := range names {
			ref := spec.Components.Schemas[name]
			if ref == nil || ref.Value == nil || !isNamedStructure(ref.Value) {
				continue
			}
			// Registered first so members can reference structures declared later.
			b.model.Structures[name] = StructureDescription{}
			named = append(named, name)
		}
		for _, name := range named {
			b.addStructure(name, spec.Components.Schemas[name].Value, b.order[name])
		}
	}

	if err := b.addOperations(); err != nil {
		return nil, err
	}
	return b.model, nil
}

func (b *builder) addOperations() error {
	pathKeys := make([]string, 0, len(b.spec.Paths))
	for p := range b.spec.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := b.spec.Paths[p]
		if item == nil {
			continue
		}
		// Supported HTTP methods in a stable order
		ops := []struct {
			verb string
			op   *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
			{"TRACE", item.Trace},
		}
		for _, pair := range ops {
			if pair.op == nil {
				continue
			}
			name := strings.TrimSpace(pair.op.OperationID)
			if name == "" {
				name = naming.TypeName(strings.ToLower(pair.verb) + " " + p)
			}
			if _, dup := b.model.Operations[name]; dup {
				return fmt.Errorf("duplicate operation %q at %s %s", name, pair.verb, p)
			}

			od := OperationDescription{
				HTTPVerb:      pair.verb,
				HTTPURL:       p,
				Documentation: firstNonEmpty(pair.op.Summary, pair.op.Description),
			}
			b.addInput(name, &od, item.Parameters, pair.op)
			b.addOutput(name, &od, pair.op)
			od.Errors = b.operationErrors(name, pair.op)
			b.model.Operations[name] = od
		}
	}
	return nil
}

func (b *builder) addInput(opName string, od *OperationDescription, pathParams openapi3.Parameters, op *openapi3.Operation) {
	params := mergeParameters(pathParams, op.Parameters)
	body := requestBodySchema(op)

	if len(params) == 0 {
		if body == nil {
			return
		}
		if target, ok := b.structureRef(body); ok {
			od.Input = target
			return
		}
	}

	structName := b.uniqueStructureName(naming.TypeName(opName) + "Request")
	desc := &OperationInputDescription{DefaultInputLocation: LocationQuery}
	st := StructureDescription{Members: map[string]Member{}}
	for _, p := range params {
		switch p.In {
		case openapi3.ParameterInPath:
			desc.PathFields = append(desc.PathFields, p.Name)
		case openapi3.ParameterInQuery:
			desc.QueryFields = append(desc.QueryFields, p.Name)
		case openapi3.ParameterInHeader:
			desc.AdditionalHeaderFields = append(desc.AdditionalHeaderFields, p.Name)
		default:
			b.log.Warn("skipping unsupported parameter location",
				zap.String("operation", opName), zap.String("parameter", p.Name), zap.String("in", p.In))
			continue
		}
		st.Members[p.Name] = Member{
			Value:         b.typeRef(structName, p.Name, p.Schema),
			Position:      len(st.Members),
			Required:      p.Required || p.In == openapi3.ParameterInPath,
			Documentation: strings.TrimSpace(p.Description),
		}
	}

	if body != nil {
		desc.DefaultInputLocation = LocationBody
		if body.Ref == "" && body.Value != nil && len(body.Value.Properties) > 0 {
			for _, prop := range sortedKeys(body.Value.Properties) {
				st.Members[prop] = Member{
					Value:    b.typeRef(structName, prop, body.Value.Properties[prop]),
					Position: len(st.Members),
					Required: contains(body.Value.Required, prop),
				}
				desc.BodyFields = append(desc.BodyFields, prop)
			}
		} else {
			member := uniqueMemberName(st, bodyMemberName)
			st.Members[member] = Member{
				Value:    b.typeRef(structName, member, body),
				Position: len(st.Members),
				Required: op.RequestBody.Value.Required,
			}
			desc.BodyFields = append(desc.BodyFields, member)
			desc.PayloadAsMember = member
		}
	}

	b.model.Structures[structName] = st
	od.Input = structName
	od.InputDescription = desc
}

func (b *builder) addOutput(opName string, od *OperationDescription, op *openapi3.Operation) {
	resp := successResponse(op)
	if resp == nil {
		return
	}
	schema := jsonSchema(resp.Content)
	headers := sortedKeys(resp.Headers)

	if len(headers) == 0 {
		if schema == nil {
			return
		}
		if target, ok := b.structureRef(schema); ok {
			od.Output = target
			return
		}
	}

	structName := b.uniqueStructureName(naming.TypeName(opName) + "Response")
	desc := &OperationOutputDescription{}
	st := StructureDescription{Members: map[string]Member{}}
	for _, h := range headers {
		ref := resp.Headers[h]
		var hs *openapi3.SchemaRef
		if ref != nil && ref.Value != nil {
			hs = ref.Value.Schema
		}
		st.Members[h] = Member{Value: b.typeRef(structName, h, hs), Position: len(st.Members)}
		desc.HeaderFields = append(desc.HeaderFields, h)
	}
	switch {
	case schema == nil:
	case schema.Ref == "" && schema.Value != nil && len(schema.Value.Properties) > 0:
		for _, prop := range sortedKeys(schema.Value.Properties) {
			st.Members[prop] = Member{
				Value:    b.typeRef(structName, prop, schema.Value.Properties[prop]),
				Position: len(st.Members),
				Required: contains(schema.Value.Required, prop),
			}
			desc.BodyFields = append(desc.BodyFields, prop)
		}
	default:
		member := uniqueMemberName(st, bodyMemberName)
		st.Members[member] = Member{Value: b.typeRef(structName, member, schema), Position: len(st.Members)}
		desc.BodyFields = append(desc.BodyFields, member)
		desc.PayloadAsMember = member
	}

	b.model.Structures[structName] = st
	od.Output = structName
	od.OutputDescription = desc
}

// operationErrors collects non-success responses whose body references a named
// structure. Responses are visited in ascending code order.
func (b *builder) operationErrors(opName string, op *openapi3.Operation) []ErrorDescription {
	var out []ErrorDescription
	for _, code := range sortedKeys(op.Responses) {
		status, err := strconv.Atoi(code)
		if err != nil || status < 300 {
			continue
		}
		ref := op.Responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		schema := jsonSchema(ref.Value.Content)
		target, ok := b.structureRef(schema)
		if !ok {
			b.log.Debug("skipping error response without a named structure",
				zap.String("operation", opName), zap.String("code", code))
			continue
		}
		out = append(out, ErrorDescription{Type: target, Code: status})
	}
	return out
}

func (b *builder) addStructure(name string, schema *openapi3.Schema, order map[string]int) {
	props := map[string]*openapi3.SchemaRef{}
	var required []string
	collectSchemaProperties(schema, props, &required)

	st := StructureDescription{
		Members:       make(map[string]Member, len(props)),
		Documentation: strings.TrimSpace(schema.Description),
	}
	// Properties missing from the declaration order follow it in name order.
	next := len(order)
	for _, prop := range sortedKeys(props) {
		pos, ok := order[prop]
		if !ok {
			pos = next
			next++
		}
		st.Members[prop] = Member{
			Value:         b.typeRef(name, prop, props[prop]),
			Position:      pos,
			Required:      contains(required, prop),
			Documentation: schemaDescription(props[prop]),
		}
	}
	b.model.Structures[name] = st
}

// typeRef maps a schema onto a member type. Inline object schemas with
// properties become "<Parent><Member>" structures.
func (b *builder) typeRef(parent, member string, ref *openapi3.SchemaRef) TypeRef {
	if ref == nil {
		return TypeRef{Kind: KindAny}
	}
	if ref.Ref != "" {
		if target, ok := b.structureRef(ref); ok {
			return TypeRef{Kind: KindStructure, Name: target}
		}
	}
	s := ref.Value
	if s == nil {
		return TypeRef{Kind: KindAny}
	}
	switch s.Type {
	case "string":
		switch s.Format {
		case "date-time", "date":
			return TypeRef{Kind: KindTimestamp}
		case "byte", "binary":
			return TypeRef{Kind: KindBlob}
		}
		return TypeRef{Kind: KindString}
	case "integer":
		if s.Format == "int64" {
			return TypeRef{Kind: KindLong}
		}
		return TypeRef{Kind: KindInteger}
	case "number":
		return TypeRef{Kind: KindDouble}
	case "boolean":
		return TypeRef{Kind: KindBoolean}
	case "array":
		elem := b.typeRef(parent, member+"Item", s.Items)
		return TypeRef{Kind: KindList, Element: &elem}
	}
	if len(s.Properties) > 0 || len(s.AllOf) > 0 {
		name := b.uniqueStructureName(naming.TypeName(parent) + naming.TypeName(member))
		b.addStructure(name, s, nil)
		return TypeRef{Kind: KindStructure, Name: name}
	}
	if s.Type == "object" {
		return TypeRef{Kind: KindMap, Element: &TypeRef{Kind: KindAny}}
	}
	return TypeRef{Kind: KindAny}
}

// structureRef reports the structure name a schema reference points at.
func (b *builder) structureRef(ref *openapi3.SchemaRef) (string, bool) {
	if ref == nil || ref.Ref == "" {
		return "", false
	}
	name := ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
	if _, ok := b.model.Structures[name]; ok {
		return name, true
	}
	return "", false
}

func (b *builder) uniqueStructureName(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := b.model.Structures[name]; !taken {
			return name
		}
		name = base + strconv.Itoa(i)
	}
}

func isNamedStructure(s *openapi3.Schema) bool {
	return s.Type == "object" || len(s.Properties) > 0 || len(s.AllOf) > 0
}

func collectSchemaProperties(s *openapi3.Schema, into map[string]*openapi3.SchemaRef, required *[]string) {
	if s == nil {
		return
	}
	for _, part := range s.AllOf {
		if part != nil {
			collectSchemaProperties(part.Value, into, required)
		}
	}
	for name, prop := range s.Properties {
		into[name] = prop
	}
	*required = append(*required, s.Required...)
}

// mergeParameters returns path-level parameters followed by operation-level
// ones; an operation-level parameter replaces a path-level one in place.
func mergeParameters(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := map[string]int{}
	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	add(pathLevel)
	add(opLevel)
	return out
}

func requestBodySchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	return jsonSchema(op.RequestBody.Value.Content)
}

// successResponse picks the lowest 2xx response.
func successResponse(op *openapi3.Operation) *openapi3.Response {
	for _, code := range sortedKeys(op.Responses) {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		if ref := op.Responses[code]; ref != nil && ref.Value != nil {
			return ref.Value
		}
	}
	return nil
}

// jsonSchema prefers application/json content, then the first media type by name.
func jsonSchema(content openapi3.Content) *openapi3.SchemaRef {
	if len(content) == 0 {
		return nil
	}
	if mt := content["application/json"]; mt != nil {
		return mt.Schema
	}
	for _, key := range sortedKeys(content) {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

func schemaDescription(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil {
		return ""
	}
	return strings.TrimSpace(ref.Value.Description)
}

func uniqueMemberName(st StructureDescription, base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := st.Members[name]; !taken {
			return name
		}
		name = base + strconv.Itoa(i)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
