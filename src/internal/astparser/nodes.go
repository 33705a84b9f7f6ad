package astparser

// TypeName is the closed set of type-name shapes the parser can produce.
// Only the variants declared in this file implement it.
type TypeName interface {
	typeName()
	Span() Range
}

// ElementaryTypeName is a built-in value type such as uint256, bytes32 or address.
type ElementaryTypeName struct {
	Name            string
	StateMutability string // "payable" for `address payable`
	Range           Range
}

// UserDefinedTypeName references a contract, struct, enum or value type by path.
type UserDefinedTypeName struct {
	NamePath string
	Range    Range
}

// ArrayTypeName is T[] or T[n]. Length is empty for dynamic arrays.
type ArrayTypeName struct {
	BaseType TypeName
	Length   string
	Range    Range
}

// Mapping is mapping(K => V).
type Mapping struct {
	KeyType   TypeName
	ValueType TypeName
	Range     Range
}

// UnknownTypeName keeps any other type node (function types, future syntax)
// so that resolution fails for the enclosing declaration only.
type UnknownTypeName struct {
	NodeType string
	Range    Range
}

func (*ElementaryTypeName) typeName()  {}
func (*UserDefinedTypeName) typeName() {}
func (*ArrayTypeName) typeName()       {}
func (*Mapping) typeName()             {}
func (*UnknownTypeName) typeName()     {}

func (t *ElementaryTypeName) Span() Range  { return t.Range }
func (t *UserDefinedTypeName) Span() Range { return t.Range }
func (t *ArrayTypeName) Span() Range       { return t.Range }
func (t *Mapping) Span() Range             { return t.Range }
func (t *UnknownTypeName) Span() Range     { return t.Range }

// Node is implemented by every declaration node: it has a source span, a
// line/column location and the doc comment solc attached to it, if any.
type Node interface {
	Span() Range
	Location() Loc
	Doc() string
}

// SubNode is the closed set of declarations found inside a contract body.
type SubNode interface {
	Node
	subNode()
}

type Header struct {
	Range         Range
	Loc           Loc
	Documentation string
}

func (h Header) Span() Range   { return h.Range }
func (h Header) Location() Loc { return h.Loc }
func (h Header) Doc() string   { return h.Documentation }

// SourceUnit is one parsed file.
type SourceUnit struct {
	Path      string
	Source    string
	Contracts []*ContractDefinition
}

// ContractDefinition covers contracts, interfaces and libraries.
type ContractDefinition struct {
	Header
	Name          string
	Kind          string // contract | interface | library
	Abstract      bool
	BaseContracts []string
	SubNodes      []SubNode
}

// FunctionDefinition includes constructors, fallback and receive functions.
type FunctionDefinition struct {
	Header
	Name             string
	Kind             string // function | constructor | fallback | receive
	IsConstructor    bool
	Implemented      bool
	Constant         bool // pre-0.5 `constant` functions
	Parameters       []*VariableDeclaration
	ReturnParameters []*VariableDeclaration
	Modifiers        []string
	Visibility       string
	StateMutability  string
}

type ModifierDefinition struct {
	Header
	Name       string
	Parameters []*VariableDeclaration
}

type EventDefinition struct {
	Header
	Name       string
	Parameters []*VariableDeclaration
	Anonymous  bool
}

// VariableDeclaration is used for state variables, parameters and struct members.
type VariableDeclaration struct {
	Header
	Name            string
	TypeName        TypeName
	Visibility      string
	StateVariable   bool
	Constant        bool
	Indexed         bool
	StorageLocation string
}

type StructDefinition struct {
	Header
	Name    string
	Members []*VariableDeclaration
}

type EnumDefinition struct {
	Header
	Name    string
	Members []string
}

// OtherNode is any contract member without a model counterpart
// (using-for, errors, user-defined value types).
type OtherNode struct {
	Header
	NodeType string
	Name     string
}

func (*FunctionDefinition) subNode()  {}
func (*ModifierDefinition) subNode()  {}
func (*EventDefinition) subNode()     {}
func (*VariableDeclaration) subNode() {}
func (*StructDefinition) subNode()    {}
func (*EnumDefinition) subNode()      {}
func (*OtherNode) subNode()           {}
