package model

import "github.com/VectorBits/Solview/src/internal/astparser"

// ElementType tags the NodeElement variants.
type ElementType string

const (
	ElementContract ElementType = "contract"
	ElementStruct   ElementType = "struct"
	ElementEnum     ElementType = "enum"
)

// Contract kinds.
const (
	KindContract  = "contract"
	KindInterface = "interface"
	KindLibrary   = "library"
)

// NoSources is the InFile value of placeholder contracts whose source was not supplied.
const NoSources = "No Sources"

// Sentinel names for functions declared without a name.
const (
	ConstructorName = "constructor"
	FallbackName    = "fallback"
	ReceiveName     = "receive"
)

// NodeElement is implemented by Contract, ContractStruct and ContractEnumeration.
type NodeElement interface {
	ElementType() ElementType
	ElementName() string
}

// SolidityType is the canonical form of a declared type. Exactly one shape
// holds: elementary, user-defined, array (IsArray) or mapping (Mapping != nil).
type SolidityType struct {
	Name        string       `json:"name"`
	PureName    string       `json:"pureName,omitempty"`
	IsArray     bool         `json:"isArray"`
	UserDefined bool         `json:"userDefined"`
	Mapping     *MappingType `json:"mapping,omitempty"`
	// References lists every user-defined type name reachable from this type.
	References []string `json:"references,omitempty"`

	// BaseType is the element type of an array.
	BaseType *SolidityType `json:"baseType,omitempty"`
	// Length is the static length of a fixed-size array, empty when dynamic.
	Length string `json:"length,omitempty"`
}

type MappingType struct {
	Key   SolidityType `json:"key"`
	Value SolidityType `json:"value"`
}

// IsMapping reports whether t is a mapping type.
func (t SolidityType) IsMapping() bool { return t.Mapping != nil }

// Element returns the element type of an array, or t itself.
func (t SolidityType) Element() SolidityType {
	if t.IsArray && t.BaseType != nil {
		return *t.BaseType
	}
	return t
}

// SolidityAnnotation is one NatSpec `@tag value` pair. `@param` tags carry
// the parameter name and description as SubAnnotation.
type SolidityAnnotation struct {
	Name          string              `json:"name"`
	Value         string              `json:"value"`
	SubAnnotation *SolidityAnnotation `json:"subAnnotation,omitempty"`
}

// SourceRange locates a declaration in its file.
type SourceRange struct {
	Range astparser.Range `json:"range"`
	Loc   astparser.Loc   `json:"loc"`
}

// ContractParam is a function/event/modifier parameter or a struct field.
type ContractParam struct {
	Name         string       `json:"name"`
	SolidityType SolidityType `json:"solidityType"`
	Indexed      bool         `json:"indexed,omitempty"`
}

type ContractFunction struct {
	Name          string               `json:"name"`
	Kind          string               `json:"kind"`
	Params        []*ContractParam     `json:"params"`
	ReturnParams  []*ContractParam     `json:"returnParams"`
	Modifiers     []string             `json:"modifiers"`
	Description   string               `json:"description"`
	Source        SourceRange          `json:"source"`
	Annotations   []SolidityAnnotation `json:"annotations,omitempty"`
	Origin        string               `json:"origin"`
	IsImplemented bool                 `json:"isImplemented"`
}

// HasModifier reports whether m is in the function's modifier list.
func (f *ContractFunction) HasModifier(m string) bool {
	for _, x := range f.Modifiers {
		if x == m {
			return true
		}
	}
	return false
}

// IsConstant reports whether the function can be called without a transaction.
func (f *ContractFunction) IsConstant() bool {
	return f.HasModifier("view") || f.HasModifier("pure") || f.HasModifier("constant")
}

// IsCallable reports whether the function is part of the external interface.
func (f *ContractFunction) IsCallable() bool {
	return f.HasModifier("public") || f.HasModifier("external")
}

// ParamTypes returns the declared type names of the parameters in order.
func (f *ContractFunction) ParamTypes() []string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.SolidityType.Name
	}
	return types
}

type ContractModifier struct {
	Name        string               `json:"name"`
	Params      []*ContractParam     `json:"params"`
	Source      SourceRange          `json:"source"`
	Annotations []SolidityAnnotation `json:"annotations,omitempty"`
	Origin      string               `json:"origin"`
}

type ContractEvent struct {
	Name        string               `json:"name"`
	Params      []*ContractParam     `json:"params"`
	Anonymous   bool                 `json:"anonymous,omitempty"`
	Source      SourceRange          `json:"source"`
	Annotations []SolidityAnnotation `json:"annotations,omitempty"`
	Origin      string               `json:"origin"`
}

// ContractStateVariable always carries a Getter. Its Modifiers are empty when
// the variable is not public, i.e. not externally callable.
type ContractStateVariable struct {
	Name         string               `json:"name"`
	SolidityType SolidityType         `json:"solidityType"`
	Visibility   string               `json:"visibility"`
	Constant     bool                 `json:"constant,omitempty"`
	Getter       *ContractFunction    `json:"getter"`
	Source       SourceRange          `json:"source"`
	Annotations  []SolidityAnnotation `json:"annotations,omitempty"`
	Origin       string               `json:"origin"`
}

type ContractStruct struct {
	ShortName   string               `json:"shortName"`
	Name        string               `json:"name"`
	ParentName  string               `json:"parentName"`
	Fields      []*ContractParam     `json:"fields"`
	Source      SourceRange          `json:"source"`
	Annotations []SolidityAnnotation `json:"annotations,omitempty"`
}

func (s *ContractStruct) ElementType() ElementType { return ElementStruct }
func (s *ContractStruct) ElementName() string      { return s.Name }

type ContractEnumeration struct {
	ShortName   string               `json:"shortName"`
	Name        string               `json:"name"`
	ParentName  string               `json:"parentName"`
	Entries     []string             `json:"entries"`
	Source      SourceRange          `json:"source"`
	Annotations []SolidityAnnotation `json:"annotations,omitempty"`
}

func (e *ContractEnumeration) ElementType() ElementType { return ElementEnum }
func (e *ContractEnumeration) ElementName() string      { return e.Name }

// Contract is the normalized record of one contract, interface or library.
// Once HeritageDissolved is set the Inherited* collections are final.
type Contract struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	BaseContracts []string `json:"baseContracts"`

	Structs      []*ContractStruct      `json:"structs"`
	Enumerations []*ContractEnumeration `json:"enumerations"`

	StateVariables          []*ContractStateVariable `json:"stateVariables"`
	InheritedStateVariables []*ContractStateVariable `json:"inheritedStateVariables"`
	Functions               []*ContractFunction      `json:"functions"`
	InheritedFunctions      []*ContractFunction      `json:"inheritedFunctions"`
	Modifiers               []*ContractModifier      `json:"modifiers"`
	InheritedModifiers      []*ContractModifier      `json:"inheritedModifiers"`
	Events                  []*ContractEvent         `json:"events"`
	InheritedEvents         []*ContractEvent         `json:"inheritedEvents"`

	Annotations       []SolidityAnnotation `json:"annotations,omitempty"`
	References        []string             `json:"references"`
	IsAbstract        bool                 `json:"isAbstract"`
	HeritageDissolved bool                 `json:"heritageDissolved"`
	Source            string               `json:"source"`
	SourceRange       SourceRange          `json:"sourceRange"`
	InFile            string               `json:"inFile"`
	DeployedAt        string               `json:"deployedAt,omitempty"`
}

func (c *Contract) ElementType() ElementType { return ElementContract }
func (c *Contract) ElementName() string      { return c.Name }

// NewPlaceholder returns the stand-in for a base contract whose source is missing.
func NewPlaceholder(name string) *Contract {
	return &Contract{
		Name:                    name,
		Kind:                    KindContract,
		BaseContracts:           []string{},
		Structs:                 []*ContractStruct{},
		Enumerations:            []*ContractEnumeration{},
		StateVariables:          []*ContractStateVariable{},
		InheritedStateVariables: []*ContractStateVariable{},
		Functions:               []*ContractFunction{},
		InheritedFunctions:      []*ContractFunction{},
		Modifiers:               []*ContractModifier{},
		InheritedModifiers:      []*ContractModifier{},
		Events:                  []*ContractEvent{},
		InheritedEvents:         []*ContractEvent{},
		References:              []string{},
		IsAbstract:              true,
		HeritageDissolved:       true,
		InFile:                  NoSources,
	}
}

// IsPlaceholder reports whether c stands in for a contract without sources.
func (c *Contract) IsPlaceholder() bool { return c.InFile == NoSources }

// AllFunctions returns direct then inherited functions.
func (c *Contract) AllFunctions() []*ContractFunction {
	out := make([]*ContractFunction, 0, len(c.Functions)+len(c.InheritedFunctions))
	out = append(out, c.Functions...)
	return append(out, c.InheritedFunctions...)
}

// AllEvents returns direct then inherited events.
func (c *Contract) AllEvents() []*ContractEvent {
	out := make([]*ContractEvent, 0, len(c.Events)+len(c.InheritedEvents))
	out = append(out, c.Events...)
	return append(out, c.InheritedEvents...)
}

// AllStateVariables returns direct then inherited state variables.
func (c *Contract) AllStateVariables() []*ContractStateVariable {
	out := make([]*ContractStateVariable, 0, len(c.StateVariables)+len(c.InheritedStateVariables))
	out = append(out, c.StateVariables...)
	return append(out, c.InheritedStateVariables...)
}

// Struct finds a struct declared directly in c by its local name.
func (c *Contract) Struct(shortName string) *ContractStruct {
	for _, s := range c.Structs {
		if s.ShortName == shortName {
			return s
		}
	}
	return nil
}

// Function finds the first direct or inherited function called name.
func (c *Contract) Function(name string) *ContractFunction {
	for _, f := range c.AllFunctions() {
		if f.Name == name {
			return f
		}
	}
	return nil
}
