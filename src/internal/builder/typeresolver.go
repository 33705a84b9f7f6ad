package builder

import (
	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

// TypeResolver converts type nodes into SolidityType values. Every user-defined
// name it meets is appended to its reference accumulator, which is shared by
// all declarations of one contract.
type TypeResolver struct {
	references []string
}

func NewTypeResolver() *TypeResolver {
	return &TypeResolver{}
}

// References returns the accumulated user-defined type names, in encounter order.
func (r *TypeResolver) References() []string {
	return r.references
}

// Resolve returns the canonical type for node. Unknown node shapes fail with
// *model.UnknownTypeError.
func (r *TypeResolver) Resolve(node astparser.TypeName) (model.SolidityType, error) {
	switch n := node.(type) {
	case *astparser.ElementaryTypeName:
		return model.SolidityType{Name: n.Name}, nil

	case *astparser.UserDefinedTypeName:
		r.references = append(r.references, n.NamePath)
		return model.SolidityType{
			Name:        n.NamePath,
			UserDefined: true,
			References:  []string{n.NamePath},
		}, nil

	case *astparser.ArrayTypeName:
		base, err := r.Resolve(n.BaseType)
		if err != nil {
			return model.SolidityType{}, err
		}
		return model.SolidityType{
			Name:        base.Name + "[]",
			PureName:    base.Name,
			IsArray:     true,
			UserDefined: base.UserDefined,
			References:  base.References,
			BaseType:    &base,
			Length:      n.Length,
		}, nil

	case *astparser.Mapping:
		key, err := r.Resolve(n.KeyType)
		if err != nil {
			return model.SolidityType{}, err
		}
		value, err := r.Resolve(n.ValueType)
		if err != nil {
			return model.SolidityType{}, err
		}
		return model.SolidityType{
			Name:        "(" + key.Name + " => " + value.Name + ")",
			UserDefined: value.UserDefined,
			Mapping:     &model.MappingType{Key: key, Value: value},
			References:  concatRefs(key.References, value.References),
		}, nil

	case *astparser.UnknownTypeName:
		return model.SolidityType{}, &model.UnknownTypeError{NodeType: n.NodeType}

	default:
		return model.SolidityType{}, &model.UnknownTypeError{NodeType: "<nil>"}
	}
}

func concatRefs(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
