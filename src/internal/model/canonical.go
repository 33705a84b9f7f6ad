package model

import "strings"

// Lookup returns the contract called name.
type Lookup func(name string) (*Contract, bool)

// CanonicalElementary expands the elementary aliases (`uint`, `byte`, ...)
// and drops the `payable` marker of `address payable`.
func CanonicalElementary(name string) string {
	name = strings.TrimSuffix(name, " payable")
	switch name {
	case "uint":
		return "uint256"
	case "int":
		return "int256"
	case "byte":
		return "bytes1"
	case "fixed":
		return "fixed128x18"
	case "ufixed":
		return "ufixed128x18"
	}
	return name
}

// Enumeration finds an enum declared directly in c by its local name.
func (c *Contract) Enumeration(shortName string) *ContractEnumeration {
	for _, e := range c.Enumerations {
		if e.ShortName == shortName {
			return e
		}
	}
	return nil
}

// DeclaredIn finds the struct or enum called shortName in c, then depth-first
// in its bases in declaration order.
func DeclaredIn(lookup Lookup, c *Contract, shortName string) NodeElement {
	return declaredIn(lookup, c, shortName, map[string]bool{})
}

func declaredIn(lookup Lookup, c *Contract, shortName string, visited map[string]bool) NodeElement {
	if c == nil || visited[c.Name] {
		return nil
	}
	visited[c.Name] = true
	if st := c.Struct(shortName); st != nil {
		return st
	}
	if e := c.Enumeration(shortName); e != nil {
		return e
	}
	for _, baseName := range c.BaseContracts {
		base, ok := lookup(baseName)
		if !ok {
			continue
		}
		if el := declaredIn(lookup, base, shortName, visited); el != nil {
			return el
		}
	}
	return nil
}

// QualifiedName resolves a user-defined type name written inside contract ctx.
// Structs and enums become `Parent.Short`, whether written as `S` or `C.S`
// and whether declared in the named contract or one of its bases. Contract
// names and unresolvable names are returned as written.
func QualifiedName(lookup Lookup, name, ctx string) string {
	parts := strings.Split(name, ".")
	var (
		scope string
		short string
	)
	switch len(parts) {
	case 1:
		scope, short = ctx, name
	case 2:
		scope, short = parts[0], parts[1]
	default:
		return name
	}
	c, ok := lookup(scope)
	if !ok {
		return name
	}
	if el := DeclaredIn(lookup, c, short); el != nil {
		return el.ElementName()
	}
	return name
}

// CanonicalType renders t for identity comparison: elementary aliases are
// expanded and user-defined names qualified relative to ctx, so `uint` and
// `uint256`, or `S` and `Base.S`, render the same.
func CanonicalType(t SolidityType, lookup Lookup, ctx string) string {
	switch {
	case t.IsMapping():
		return "(" + CanonicalType(t.Mapping.Key, lookup, ctx) + " => " + CanonicalType(t.Mapping.Value, lookup, ctx) + ")"
	case t.IsArray:
		elem := SolidityType{Name: t.PureName, UserDefined: t.UserDefined}
		if t.BaseType != nil {
			elem = *t.BaseType
		}
		return CanonicalType(elem, lookup, ctx) + "[" + t.Length + "]"
	case t.UserDefined:
		return QualifiedName(lookup, t.Name, ctx)
	}
	return CanonicalElementary(t.Name)
}

// SignatureKey identifies f by name and canonical parameter types. Types are
// qualified relative to the contract f was declared in.
func (f *ContractFunction) SignatureKey(lookup Lookup) string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = CanonicalType(p.SolidityType, lookup, f.Origin)
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}
