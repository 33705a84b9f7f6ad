package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

func elem(name string) *astparser.ElementaryTypeName { return &astparser.ElementaryTypeName{Name: name} }

func user(path string) *astparser.UserDefinedTypeName {
	return &astparser.UserDefinedTypeName{NamePath: path}
}

func array(base astparser.TypeName) *astparser.ArrayTypeName {
	return &astparser.ArrayTypeName{BaseType: base}
}

func mapping(k, v astparser.TypeName) *astparser.Mapping {
	return &astparser.Mapping{KeyType: k, ValueType: v}
}

func TestResolveElementary(t *testing.T) {
	r := NewTypeResolver()
	got, err := r.Resolve(elem("uint256"))
	require.NoError(t, err)
	assert.Equal(t, model.SolidityType{Name: "uint256"}, got)
	assert.Empty(t, r.References())
}

func TestResolveUserDefined(t *testing.T) {
	r := NewTypeResolver()
	got, err := r.Resolve(user("Token.Order"))
	require.NoError(t, err)
	assert.Equal(t, "Token.Order", got.Name)
	assert.True(t, got.UserDefined)
	assert.False(t, got.IsArray)
	assert.Equal(t, []string{"Token.Order"}, r.References())
}

func TestResolveArray(t *testing.T) {
	r := NewTypeResolver()
	got, err := r.Resolve(array(user("Item")))
	require.NoError(t, err)
	assert.Equal(t, "Item[]", got.Name)
	assert.Equal(t, "Item", got.PureName)
	assert.True(t, got.IsArray)
	assert.True(t, got.UserDefined)
	require.NotNil(t, got.BaseType)
	assert.Equal(t, "Item", got.BaseType.Name)

	nested, err := r.Resolve(&astparser.ArrayTypeName{BaseType: array(elem("uint")), Length: "3"})
	require.NoError(t, err)
	assert.Equal(t, "uint[][]", nested.Name)
	assert.Equal(t, "uint[]", nested.PureName)
	assert.Equal(t, "3", nested.Length)
	assert.False(t, nested.UserDefined)
}

func TestResolveMapping(t *testing.T) {
	r := NewTypeResolver()
	got, err := r.Resolve(mapping(elem("address"), mapping(user("Kind"), user("Order"))))
	require.NoError(t, err)

	assert.Equal(t, "(address => (Kind => Order))", got.Name)
	assert.True(t, got.IsMapping())
	assert.True(t, got.UserDefined)
	assert.False(t, got.IsArray)
	assert.Equal(t, "address", got.Mapping.Key.Name)
	assert.Equal(t, "(Kind => Order)", got.Mapping.Value.Name)
	assert.Equal(t, []string{"Kind", "Order"}, got.References)
	assert.Equal(t, []string{"Kind", "Order"}, r.References())
}

func TestResolveUnknownFailsFast(t *testing.T) {
	r := NewTypeResolver()
	_, err := r.Resolve(mapping(elem("address"), &astparser.UnknownTypeName{NodeType: "FunctionTypeName"}))

	var unknown *model.UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "FunctionTypeName", unknown.NodeType)

	_, err = r.Resolve(nil)
	assert.True(t, errors.As(err, &unknown))
}

func TestReferencesAccumulateAcrossCalls(t *testing.T) {
	r := NewTypeResolver()
	_, _ = r.Resolve(user("A"))
	_, _ = r.Resolve(array(user("B")))
	_, _ = r.Resolve(user("A"))
	assert.Equal(t, []string{"A", "B", "A"}, r.References())
}
