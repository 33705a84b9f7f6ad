// Package abiproj projects model members onto Ethereum JSON-ABI entries and
// compares them by selector.
package abiproj

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/VectorBits/Solview/src/internal/model"
)

// ABI entry types.
const (
	TypeFunction    = "function"
	TypeConstructor = "constructor"
	TypeFallback    = "fallback"
	TypeReceive     = "receive"
	TypeEvent       = "event"
)

// Argument is one ABI input, output or tuple component.
type Argument struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	InternalType string     `json:"internalType,omitempty"`
	Components   []Argument `json:"components,omitempty"`
	Indexed      bool       `json:"indexed,omitempty"`
}

// Entry is one element of a JSON ABI.
type Entry struct {
	Type            string     `json:"type"`
	Name            string     `json:"name,omitempty"`
	Inputs          []Argument `json:"inputs"`
	Outputs         []Argument `json:"outputs,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`
}

// Projector resolves user-defined types against a fixed contract set.
type Projector struct {
	contracts map[string]*model.Contract
	enums     map[string]bool
}

// NewProjector indexes contracts and their enums. As in inheritance
// resolution, the first contract with a given name wins.
func NewProjector(contracts []*model.Contract) *Projector {
	p := &Projector{
		contracts: make(map[string]*model.Contract, len(contracts)),
		enums:     make(map[string]bool),
	}
	for _, c := range contracts {
		if _, ok := p.contracts[c.Name]; !ok {
			p.contracts[c.Name] = c
		}
		for _, e := range c.Enumerations {
			p.enums[e.Name] = true
			p.enums[e.ShortName] = true
		}
	}
	return p
}

// Function returns the single-entry ABI of f. ctx is the contract that
// unqualified struct names are resolved in.
func (p *Projector) Function(f *model.ContractFunction, ctx *model.Contract) ([]Entry, error) {
	inputs, err := p.arguments(f.Params, ctx)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", f.Name, err)
	}
	entry := Entry{
		Type:            FunctionType(f),
		Inputs:          inputs,
		StateMutability: stateMutability(f),
	}
	switch entry.Type {
	case TypeFunction:
		entry.Name = f.Name
		outputs, err := p.arguments(f.ReturnParams, ctx)
		if err != nil {
			return nil, fmt.Errorf("function %s returns: %w", f.Name, err)
		}
		entry.Outputs = outputs
	case TypeFallback, TypeReceive:
		entry.Inputs = []Argument{}
	}
	return []Entry{entry}, nil
}

// Event returns the single-entry ABI of e.
func (p *Projector) Event(e *model.ContractEvent, ctx *model.Contract) ([]Entry, error) {
	inputs, err := p.arguments(e.Params, ctx)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", e.Name, err)
	}
	return []Entry{{
		Type:      TypeEvent,
		Name:      e.Name,
		Inputs:    inputs,
		Anonymous: e.Anonymous,
	}}, nil
}

// Getter returns the ABI of the accessor of v.
func (p *Projector) Getter(v *model.ContractStateVariable, ctx *model.Contract) ([]Entry, error) {
	return p.Function(v.Getter, ctx)
}

// Contract returns the external interface of c: constructor, callable
// functions, public getters and events, direct members first. Members whose
// types cannot be projected are left out and reported in the error.
func (p *Projector) Contract(c *model.Contract) ([]Entry, error) {
	var (
		entries []Entry
		result  *multierror.Error
	)
	add := func(es []Entry, err error) {
		if err != nil {
			result = multierror.Append(result, err)
			return
		}
		entries = append(entries, es...)
	}

	seen := make(map[string]bool)
	for _, f := range c.AllFunctions() {
		kind := FunctionType(f)
		if kind == TypeConstructor && f.Origin != c.Name {
			continue
		}
		if kind == TypeFunction && !f.IsCallable() {
			continue
		}
		key := kind + " " + f.SignatureKey(p.lookup)
		if seen[key] {
			continue
		}
		seen[key] = true
		add(p.Function(f, c))
	}
	for _, v := range c.AllStateVariables() {
		if v.Visibility != "public" || v.Getter == nil {
			continue
		}
		add(p.Getter(v, c))
	}
	for _, e := range c.AllEvents() {
		add(p.Event(e, c))
	}
	return entries, result.ErrorOrNil()
}

func (p *Projector) arguments(params []*model.ContractParam, ctx *model.Contract) ([]Argument, error) {
	args := make([]Argument, 0, len(params))
	for _, param := range params {
		arg, err := p.argument(param.Name, param.SolidityType, ctx, map[string]bool{})
		if err != nil {
			return nil, err
		}
		arg.Indexed = param.Indexed
		args = append(args, arg)
	}
	return args, nil
}

func (p *Projector) argument(name string, t model.SolidityType, ctx *model.Contract, visiting map[string]bool) (Argument, error) {
	if t.IsMapping() {
		return Argument{}, fmt.Errorf("mapping type %s has no ABI representation", t.Name)
	}
	elem, suffix, err := unwrapArray(t)
	if err != nil {
		return Argument{}, err
	}
	arg := Argument{Name: name}

	if !elem.UserDefined {
		arg.Type = model.CanonicalElementary(elem.Name) + suffix
		arg.InternalType = arg.Type
		return arg, nil
	}

	switch kind := p.ElementType(elem.Name); kind {
	case model.ElementContract:
		arg.Type = "address" + suffix
		arg.InternalType = "contract " + elem.Name + suffix
		return arg, nil
	case model.ElementEnum:
		arg.Type = "uint8" + suffix
		arg.InternalType = "enum " + elem.Name + suffix
		return arg, nil
	}

	st, err := p.StructForTuple(elem.Name, ctx)
	if err != nil {
		return Argument{}, err
	}
	if visiting[st.Name] {
		return Argument{}, &model.NamePathError{NamePath: elem.Name, Reason: "recursive struct"}
	}
	visiting[st.Name] = true
	defer delete(visiting, st.Name)

	owner := p.contracts[st.ParentName]
	if owner == nil {
		owner = ctx
	}
	components := make([]Argument, 0, len(st.Fields))
	for _, field := range st.Fields {
		comp, err := p.argument(field.Name, field.SolidityType, owner, visiting)
		if err != nil {
			return Argument{}, fmt.Errorf("struct %s field %s: %w", st.Name, field.Name, err)
		}
		components = append(components, comp)
	}
	arg.Type = "tuple" + suffix
	arg.InternalType = "struct " + st.Name + suffix
	arg.Components = components
	return arg, nil
}

// CheckType maps a declared type to its ABI type name. User-defined names
// that are neither contracts nor enums map to "tuple".
func (p *Projector) CheckType(t model.SolidityType) string {
	if t.IsMapping() {
		return t.Name
	}
	elem, suffix, _ := unwrapArray(t)
	if !elem.UserDefined {
		return model.CanonicalElementary(elem.Name) + suffix
	}
	switch p.ElementType(elem.Name) {
	case model.ElementContract:
		return "address" + suffix
	case model.ElementEnum:
		return "uint8" + suffix
	default:
		return "tuple" + suffix
	}
}

// ElementType classifies a user-defined type name.
func (p *Projector) ElementType(name string) model.ElementType {
	if _, ok := p.contracts[name]; ok {
		return model.ElementContract
	}
	if p.enums[name] {
		return model.ElementEnum
	}
	return model.ElementStruct
}

// StructForTuple finds the struct a user-defined name refers to. `C.S` is
// looked up in contract C and its bases; a bare `S` in ctx and its bases.
func (p *Projector) StructForTuple(namePath string, ctx *model.Contract) (*model.ContractStruct, error) {
	parts := strings.Split(namePath, ".")
	switch len(parts) {
	case 1:
		if ctx == nil {
			return nil, &model.NamePathError{NamePath: namePath, Reason: "no context contract"}
		}
		if st := p.structInHierarchy(ctx, namePath, map[string]bool{}); st != nil {
			return st, nil
		}
		return nil, &model.NamePathError{NamePath: namePath, Reason: "no struct in " + ctx.Name + " or its bases"}
	case 2:
		c, ok := p.contracts[parts[0]]
		if !ok {
			return nil, &model.NamePathError{NamePath: namePath, Reason: "unknown contract " + parts[0]}
		}
		if st := p.structInHierarchy(c, parts[1], map[string]bool{}); st != nil {
			return st, nil
		}
		return nil, &model.NamePathError{NamePath: namePath, Reason: "no struct " + parts[1] + " in " + parts[0] + " or its bases"}
	default:
		return nil, &model.NamePathError{NamePath: namePath, Reason: "ambiguous nesting"}
	}
}

func (p *Projector) lookup(name string) (*model.Contract, bool) {
	c, ok := p.contracts[name]
	return c, ok
}

func (p *Projector) structInHierarchy(c *model.Contract, name string, visited map[string]bool) *model.ContractStruct {
	if visited[c.Name] {
		return nil
	}
	visited[c.Name] = true
	if st := c.Struct(name); st != nil {
		return st
	}
	for _, baseName := range c.BaseContracts {
		base, ok := p.contracts[baseName]
		if !ok {
			continue
		}
		if st := p.structInHierarchy(base, name, visited); st != nil {
			return st
		}
	}
	return nil
}

// unwrapArray returns the innermost element type and the array suffix,
// outermost dimension last (`uint[][3]` gives "[][3]"). Literal lengths are
// written in decimal; a length given as a constant expression (`N * 2`) has
// no ABI form and is kept as written alongside an error.
func unwrapArray(t model.SolidityType) (model.SolidityType, string, error) {
	var (
		suffix string
		err    error
	)
	for t.IsArray {
		dim := "[]"
		if t.Length != "" {
			length, ok := new(big.Int).SetString(t.Length, 0)
			if ok && length.Sign() > 0 {
				dim = "[" + length.String() + "]"
			} else {
				dim = "[" + t.Length + "]"
				if err == nil {
					err = fmt.Errorf("array length %q of %s is not a positive number literal", t.Length, t.Name)
				}
			}
		}
		suffix = dim + suffix
		if t.BaseType != nil {
			t = *t.BaseType
		} else {
			t = model.SolidityType{Name: t.PureName, UserDefined: t.UserDefined}
		}
	}
	return t, suffix, err
}

// FunctionType returns the ABI entry type of f.
func FunctionType(f *model.ContractFunction) string {
	switch f.Kind {
	case TypeConstructor, TypeFallback, TypeReceive:
		return f.Kind
	case "":
		switch f.Name {
		case model.ConstructorName, model.FallbackName, model.ReceiveName:
			return f.Name
		}
	}
	return TypeFunction
}

func stateMutability(f *model.ContractFunction) string {
	switch {
	case f.HasModifier("pure"):
		return "pure"
	case f.HasModifier("view"), f.HasModifier("constant"):
		return "view"
	case f.HasModifier("payable"):
		return "payable"
	}
	return "nonpayable"
}
