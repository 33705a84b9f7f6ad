package astparser

import "encoding/json"

// rawUnit is the solc compact-JSON SourceUnit as emitted by `solc --ast-compact-json`.
type rawUnit struct {
	AbsolutePath string    `json:"absolutePath"`
	ID           int       `json:"id"`
	NodeType     string    `json:"nodeType"`
	Nodes        []rawNode `json:"nodes"`
	Src          string    `json:"src"`
}

// rawNode carries the union of fields used by the declaration and type-name
// nodes we care about. Expression nodes are never decoded past their header.
type rawNode struct {
	ID              int    `json:"id"`
	NodeType        string `json:"nodeType"`
	Name            string `json:"name,omitempty"`
	Src             string `json:"src"`
	Kind            string `json:"kind,omitempty"`
	ContractKind    string `json:"contractKind,omitempty"`
	Abstract        bool   `json:"abstract,omitempty"`
	Implemented     bool   `json:"implemented,omitempty"`
	IsConstructor   bool   `json:"isConstructor,omitempty"`
	Visibility      string `json:"visibility,omitempty"`
	StateMutability string `json:"stateMutability,omitempty"`
	StateVariable   bool   `json:"stateVariable,omitempty"`
	Constant        bool   `json:"constant,omitempty"`
	Mutability      string `json:"mutability,omitempty"`
	Indexed         bool   `json:"indexed,omitempty"`
	Anonymous       bool   `json:"anonymous,omitempty"`
	StorageLocation string `json:"storageLocation,omitempty"`
	NamePath        string `json:"namePath,omitempty"`

	Nodes            []rawNode  `json:"nodes,omitempty"`
	Members          []rawNode  `json:"members,omitempty"`
	BaseContracts    []rawNode  `json:"baseContracts,omitempty"`
	BaseName         *rawNode   `json:"baseName,omitempty"`
	Modifiers        []rawNode  `json:"modifiers,omitempty"`
	ModifierName     *rawNode   `json:"modifierName,omitempty"`
	Parameters       *rawParams `json:"parameters,omitempty"`
	ReturnParameters *rawParams `json:"returnParameters,omitempty"`
	TypeName         *rawNode   `json:"typeName,omitempty"`
	PathNode         *rawNode   `json:"pathNode,omitempty"`
	BaseType         *rawNode   `json:"baseType,omitempty"`
	KeyType          *rawNode   `json:"keyType,omitempty"`
	ValueType        *rawNode   `json:"valueType,omitempty"`
	Length           *rawNode   `json:"length,omitempty"`

	// value is a string on Literal nodes and an expression on VariableDeclaration.
	Value json.RawMessage `json:"value,omitempty"`
	// documentation is a plain string before solc 0.6.3 and a StructuredDocumentation node after.
	Documentation json.RawMessage `json:"documentation,omitempty"`
}

type rawParams struct {
	Parameters []rawNode `json:"parameters"`
}

type rawDoc struct {
	Text string `json:"text"`
}
