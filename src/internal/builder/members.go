package builder

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

// scope carries what every member extractor of one contract needs.
type scope struct {
	source   string
	contract string
	types    *TypeResolver
	docs     annotation.Extractor
}

func (s *scope) sourceRange(n astparser.Node) model.SourceRange {
	return model.SourceRange{Range: n.Span(), Loc: n.Location()}
}

func (s *scope) annotations(n astparser.Node) []model.SolidityAnnotation {
	return s.docs.Extract(s.source, n)
}

func (s *scope) params(vars []*astparser.VariableDeclaration) ([]*model.ContractParam, error) {
	out := make([]*model.ContractParam, 0, len(vars))
	for _, v := range vars {
		t, err := s.types.Resolve(v.TypeName)
		if err != nil {
			if v.Name != "" {
				return nil, fmt.Errorf("parameter %s: %w", v.Name, err)
			}
			return nil, err
		}
		out = append(out, &model.ContractParam{Name: v.Name, SolidityType: t, Indexed: v.Indexed})
	}
	return out, nil
}

func (s *scope) enums(def *astparser.ContractDefinition) []*model.ContractEnumeration {
	out := []*model.ContractEnumeration{}
	for _, n := range def.SubNodes {
		e, ok := n.(*astparser.EnumDefinition)
		if !ok {
			continue
		}
		out = append(out, &model.ContractEnumeration{
			ShortName:   e.Name,
			Name:        s.contract + "." + e.Name,
			ParentName:  s.contract,
			Entries:     append([]string{}, e.Members...),
			Source:      s.sourceRange(e),
			Annotations: s.annotations(e),
		})
	}
	return out
}

func (s *scope) structs(def *astparser.ContractDefinition) ([]*model.ContractStruct, error) {
	out := []*model.ContractStruct{}
	for _, n := range def.SubNodes {
		st, ok := n.(*astparser.StructDefinition)
		if !ok {
			continue
		}
		fields, err := s.params(st.Members)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", st.Name, err)
		}
		out = append(out, &model.ContractStruct{
			ShortName:   st.Name,
			Name:        s.contract + "." + st.Name,
			ParentName:  s.contract,
			Fields:      fields,
			Source:      s.sourceRange(st),
			Annotations: s.annotations(st),
		})
	}
	return out, nil
}

func (s *scope) events(def *astparser.ContractDefinition) ([]*model.ContractEvent, error) {
	out := []*model.ContractEvent{}
	for _, n := range def.SubNodes {
		ev, ok := n.(*astparser.EventDefinition)
		if !ok {
			continue
		}
		params, err := s.params(ev.Parameters)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.Name, err)
		}
		out = append(out, &model.ContractEvent{
			Name:        ev.Name,
			Params:      params,
			Anonymous:   ev.Anonymous,
			Source:      s.sourceRange(ev),
			Annotations: s.annotations(ev),
			Origin:      s.contract,
		})
	}
	return out, nil
}

func (s *scope) modifiers(def *astparser.ContractDefinition) ([]*model.ContractModifier, error) {
	out := []*model.ContractModifier{}
	for _, n := range def.SubNodes {
		m, ok := n.(*astparser.ModifierDefinition)
		if !ok {
			continue
		}
		params, err := s.params(m.Parameters)
		if err != nil {
			return nil, fmt.Errorf("modifier %s: %w", m.Name, err)
		}
		out = append(out, &model.ContractModifier{
			Name:        m.Name,
			Params:      params,
			Source:      s.sourceRange(m),
			Annotations: s.annotations(m),
			Origin:      s.contract,
		})
	}
	return out, nil
}

func (s *scope) functions(def *astparser.ContractDefinition) ([]*model.ContractFunction, error) {
	out := []*model.ContractFunction{}
	for _, n := range def.SubNodes {
		fn, ok := n.(*astparser.FunctionDefinition)
		if !ok {
			continue
		}
		f, err := s.function(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *scope) function(fn *astparser.FunctionDefinition) (*model.ContractFunction, error) {
	name := functionName(fn)
	params, err := s.params(fn.Parameters)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	returns, err := s.params(fn.ReturnParameters)
	if err != nil {
		return nil, fmt.Errorf("function %s returns: %w", name, err)
	}

	// visibility and mutability ride along as pseudo-modifiers
	mods := make([]string, 0, len(fn.Modifiers)+3)
	mods = append(mods, fn.Modifiers...)
	if fn.Visibility != "" {
		mods = append(mods, fn.Visibility)
	}
	if fn.StateMutability != "" {
		mods = append(mods, fn.StateMutability)
	}
	if fn.Constant {
		mods = append(mods, "constant")
	}

	kind := fn.Kind
	if fn.IsConstructor {
		kind = model.ConstructorName
	}

	f := &model.ContractFunction{
		Name:          name,
		Kind:          kind,
		Params:        params,
		ReturnParams:  returns,
		Modifiers:     mods,
		Source:        s.sourceRange(fn),
		Annotations:   s.annotations(fn),
		Origin:        s.contract,
		IsImplemented: fn.Implemented,
	}
	f.Description = describe(f)
	return f, nil
}

func functionName(fn *astparser.FunctionDefinition) string {
	if fn.Name != "" {
		return fn.Name
	}
	switch {
	case fn.IsConstructor:
		return model.ConstructorName
	case fn.Kind == "receive":
		return model.ReceiveName
	default:
		// before 0.6 the unnamed function is the fallback
		return model.FallbackName
	}
}

func (s *scope) stateVariables(def *astparser.ContractDefinition) ([]*model.ContractStateVariable, error) {
	out := []*model.ContractStateVariable{}
	for _, n := range def.SubNodes {
		v, ok := n.(*astparser.VariableDeclaration)
		if !ok {
			continue
		}
		t, err := s.types.Resolve(v.TypeName)
		if err != nil {
			return nil, fmt.Errorf("state variable %s: %w", v.Name, err)
		}
		visibility := v.Visibility
		if visibility == "" {
			visibility = "internal"
		}
		sv := &model.ContractStateVariable{
			Name:         v.Name,
			SolidityType: t,
			Visibility:   visibility,
			Constant:     v.Constant,
			Source:       s.sourceRange(v),
			Annotations:  s.annotations(v),
			Origin:       s.contract,
		}
		sv.Getter = s.getter(sv)
		out = append(out, sv)
	}
	return out, nil
}

// getter synthesizes the accessor the compiler generates for a state variable.
// Mapping keys and array indices become inputs until a plain value type is
// reached, which is returned. Non-public variables get a getter without
// modifiers, i.e. one that cannot be called.
func (s *scope) getter(sv *model.ContractStateVariable) *model.ContractFunction {
	params := []*model.ContractParam{}
	t := sv.SolidityType
	for {
		if t.IsMapping() {
			params = append(params, &model.ContractParam{SolidityType: t.Mapping.Key})
			t = t.Mapping.Value
			continue
		}
		if t.IsArray && t.BaseType != nil {
			params = append(params, &model.ContractParam{SolidityType: model.SolidityType{Name: "uint256"}})
			t = *t.BaseType
			continue
		}
		break
	}

	mods := []string{}
	if sv.Visibility == "public" {
		mods = append(mods, "public", "view")
	}
	g := &model.ContractFunction{
		Name:          sv.Name,
		Kind:          "function",
		Params:        params,
		ReturnParams:  []*model.ContractParam{{SolidityType: t}},
		Modifiers:     mods,
		Source:        sv.Source,
		Annotations:   sv.Annotations,
		Origin:        sv.Origin,
		IsImplemented: true,
	}
	g.Description = describe(g)
	return g
}

// describe renders a readable signature, e.g. `transfer(address to, uint256 amount) returns (bool)`.
func describe(f *model.ContractFunction) string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteString("(")
	sb.WriteString(joinParams(f.Params))
	sb.WriteString(")")
	if len(f.ReturnParams) > 0 {
		sb.WriteString(" returns (")
		sb.WriteString(joinParams(f.ReturnParams))
		sb.WriteString(")")
	}
	return sb.String()
}

func joinParams(params []*model.ContractParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strings.TrimSpace(p.SolidityType.Name + " " + p.Name)
	}
	return strings.Join(parts, ", ")
}
