package astparser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes one solc compact-JSON SourceUnit for the file at path.
// source must be the exact text the compiler saw; it backs ranges and locations.
// Leading non-JSON noise (compiler banners) is skipped.
func Parse(data []byte, path, source string) (*SourceUnit, error) {
	jsonStart := bytes.IndexByte(data, '{')
	if jsonStart == -1 {
		return nil, fmt.Errorf("no JSON object in AST output for %s", path)
	}

	var unit rawUnit
	if err := json.Unmarshal(data[jsonStart:], &unit); err != nil {
		return nil, fmt.Errorf("decode AST JSON for %s: %w", path, err)
	}
	if unit.NodeType != "" && unit.NodeType != "SourceUnit" {
		return nil, fmt.Errorf("expected SourceUnit for %s, got %s", path, unit.NodeType)
	}

	c := &converter{source: source, lines: newLineIndex(source)}
	su := &SourceUnit{Path: path, Source: source}
	for i := range unit.Nodes {
		if unit.Nodes[i].NodeType == "ContractDefinition" {
			su.Contracts = append(su.Contracts, c.contract(&unit.Nodes[i]))
		}
	}
	return su, nil
}

// SplitCompilerOutput splits `solc --ast-compact-json` stdout into one JSON
// document per source, keyed by the path in the "======= path =======" header.
// Output without headers is returned under the empty key.
func SplitCompilerOutput(output []byte) map[string][]byte {
	sections := make(map[string][]byte)
	current := ""
	var buf bytes.Buffer
	flush := func() {
		body := bytes.TrimSpace(buf.Bytes())
		if i := bytes.IndexByte(body, '{'); i >= 0 {
			sections[current] = append([]byte(nil), body[i:]...)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(string(output), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "======= ") && strings.HasSuffix(trimmed, " =======") {
			flush()
			current = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "======= "), " ======="))
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()
	return sections
}

type converter struct {
	source string
	lines  *lineIndex
}

func (c *converter) header(n *rawNode) Header {
	r, ok := parseSrc(n.Src)
	if !ok {
		return Header{Documentation: decodeDoc(n.Documentation)}
	}
	return Header{Range: r, Loc: c.lines.loc(r), Documentation: decodeDoc(n.Documentation)}
}

func (c *converter) contract(n *rawNode) *ContractDefinition {
	def := &ContractDefinition{
		Header:   c.header(n),
		Name:     n.Name,
		Kind:     n.ContractKind,
		Abstract: n.Abstract,
	}
	if def.Kind == "" {
		def.Kind = "contract"
	}
	for i := range n.BaseContracts {
		if name := pathName(n.BaseContracts[i].BaseName); name != "" {
			def.BaseContracts = append(def.BaseContracts, name)
		}
	}
	for i := range n.Nodes {
		def.SubNodes = append(def.SubNodes, c.subNode(&n.Nodes[i]))
	}
	return def
}

func (c *converter) subNode(n *rawNode) SubNode {
	switch n.NodeType {
	case "FunctionDefinition":
		return c.function(n)
	case "ModifierDefinition":
		return &ModifierDefinition{
			Header:     c.header(n),
			Name:       n.Name,
			Parameters: c.params(n.Parameters),
		}
	case "EventDefinition":
		return &EventDefinition{
			Header:     c.header(n),
			Name:       n.Name,
			Parameters: c.params(n.Parameters),
			Anonymous:  n.Anonymous,
		}
	case "VariableDeclaration":
		return c.variable(n)
	case "StructDefinition":
		s := &StructDefinition{Header: c.header(n), Name: n.Name}
		for i := range n.Members {
			s.Members = append(s.Members, c.variable(&n.Members[i]))
		}
		return s
	case "EnumDefinition":
		e := &EnumDefinition{Header: c.header(n), Name: n.Name}
		for _, m := range n.Members {
			e.Members = append(e.Members, m.Name)
		}
		return e
	default:
		return &OtherNode{Header: c.header(n), NodeType: n.NodeType, Name: n.Name}
	}
}

func (c *converter) function(n *rawNode) *FunctionDefinition {
	fn := &FunctionDefinition{
		Header:           c.header(n),
		Name:             n.Name,
		Kind:             n.Kind,
		IsConstructor:    n.IsConstructor || n.Kind == "constructor",
		Implemented:      n.Implemented,
		Constant:         n.Constant,
		Parameters:       c.params(n.Parameters),
		ReturnParameters: c.params(n.ReturnParameters),
		Visibility:       n.Visibility,
		StateMutability:  n.StateMutability,
	}
	if fn.Kind == "" {
		fn.Kind = "function"
		if fn.IsConstructor {
			fn.Kind = "constructor"
		}
	}
	for i := range n.Modifiers {
		m := &n.Modifiers[i]
		// `constructor() Base(arg)` is encoded as a modifier invocation too
		if m.Kind == "baseConstructorSpecifier" {
			continue
		}
		if name := pathName(m.ModifierName); name != "" {
			fn.Modifiers = append(fn.Modifiers, name)
		}
	}
	return fn
}

func (c *converter) params(p *rawParams) []*VariableDeclaration {
	if p == nil {
		return nil
	}
	out := make([]*VariableDeclaration, 0, len(p.Parameters))
	for i := range p.Parameters {
		out = append(out, c.variable(&p.Parameters[i]))
	}
	return out
}

func (c *converter) variable(n *rawNode) *VariableDeclaration {
	return &VariableDeclaration{
		Header:          c.header(n),
		Name:            n.Name,
		TypeName:        c.typeName(n.TypeName),
		Visibility:      n.Visibility,
		StateVariable:   n.StateVariable,
		Constant:        n.Constant || n.Mutability == "constant",
		Indexed:         n.Indexed,
		StorageLocation: n.StorageLocation,
	}
}

func (c *converter) typeName(n *rawNode) TypeName {
	if n == nil {
		return &UnknownTypeName{NodeType: "<missing>"}
	}
	r, _ := parseSrc(n.Src)
	switch n.NodeType {
	case "ElementaryTypeName":
		return &ElementaryTypeName{Name: n.Name, StateMutability: n.StateMutability, Range: r}
	case "UserDefinedTypeName":
		return &UserDefinedTypeName{NamePath: pathName(n), Range: r}
	case "ArrayTypeName":
		return &ArrayTypeName{BaseType: c.typeName(n.BaseType), Length: c.arrayLength(n.Length), Range: r}
	case "Mapping":
		return &Mapping{KeyType: c.typeName(n.KeyType), ValueType: c.typeName(n.ValueType), Range: r}
	default:
		return &UnknownTypeName{NodeType: n.NodeType, Range: r}
	}
}

func (c *converter) arrayLength(n *rawNode) string {
	if n == nil {
		return ""
	}
	var literal string
	if n.NodeType == "Literal" && json.Unmarshal(n.Value, &literal) == nil && literal != "" {
		return literal
	}
	// constant expressions such as `N * 2` keep their source text
	if r, ok := parseSrc(n.Src); ok {
		return strings.TrimSpace(Slice(c.source, r))
	}
	return ""
}

// pathName resolves the dotted name of an IdentifierPath or UserDefinedTypeName
// across solc versions (pathNode in >=0.8, name before, namePath in the legacy AST).
func pathName(n *rawNode) string {
	if n == nil {
		return ""
	}
	if n.PathNode != nil && n.PathNode.Name != "" {
		return n.PathNode.Name
	}
	if n.Name != "" {
		return n.Name
	}
	return n.NamePath
}

func decodeDoc(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	var doc rawDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return doc.Text
}
