package builder

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

const bankSource = `pragma solidity ^0.8.0;

/// @title Bank
contract Bank is Ownable {
    enum Status { Open, Closed }
    struct Account { address owner; Status status; }

    /// @notice balances per holder
    mapping(address => uint256) public balances;
    uint256[] public items;
    Account public main;
    uint256 internal secret;

    event Deposit(address indexed who, uint256 amount);

    modifier onlyOpen() { _; }

    constructor() {}

    /// @notice Deposits ether
    /// @param to the receiver
    function deposit(address to) public payable onlyOpen {}

    function total() external view returns (uint256) { return 0; }
}
`

func hdr(src, needle string) astparser.Header {
	start := strings.Index(src, needle)
	if start < 0 {
		panic("fixture needle not found: " + needle)
	}
	return astparser.Header{Range: astparser.Range{Start: start, End: start + len(needle)}}
}

func param(name string, t astparser.TypeName) *astparser.VariableDeclaration {
	return &astparser.VariableDeclaration{Name: name, TypeName: t}
}

func bankDefinition() *astparser.ContractDefinition {
	src := bankSource
	return &astparser.ContractDefinition{
		Header:        hdr(src, "contract Bank"),
		Name:          "Bank",
		Kind:          "contract",
		BaseContracts: []string{"Ownable"},
		SubNodes: []astparser.SubNode{
			&astparser.EnumDefinition{Header: hdr(src, "enum Status"), Name: "Status", Members: []string{"Open", "Closed"}},
			&astparser.StructDefinition{Header: hdr(src, "struct Account"), Name: "Account", Members: []*astparser.VariableDeclaration{
				param("owner", elem("address")),
				param("status", user("Status")),
			}},
			&astparser.VariableDeclaration{Header: hdr(src, "mapping(address"), Name: "balances", Visibility: "public", StateVariable: true,
				TypeName: mapping(elem("address"), elem("uint256"))},
			&astparser.VariableDeclaration{Header: hdr(src, "uint256[] public"), Name: "items", Visibility: "public", StateVariable: true,
				TypeName: array(elem("uint256"))},
			&astparser.VariableDeclaration{Header: hdr(src, "Account public"), Name: "main", Visibility: "public", StateVariable: true,
				TypeName: user("Account")},
			&astparser.VariableDeclaration{Header: hdr(src, "uint256 internal"), Name: "secret", Visibility: "internal", StateVariable: true,
				TypeName: elem("uint256")},
			&astparser.EventDefinition{Header: hdr(src, "event Deposit"), Name: "Deposit", Parameters: []*astparser.VariableDeclaration{
				{Name: "who", TypeName: elem("address"), Indexed: true},
				param("amount", elem("uint256")),
			}},
			&astparser.ModifierDefinition{Header: hdr(src, "modifier onlyOpen"), Name: "onlyOpen"},
			&astparser.FunctionDefinition{Header: hdr(src, "constructor()"), Kind: "constructor", IsConstructor: true,
				Implemented: true, Visibility: "public", StateMutability: "nonpayable"},
			&astparser.FunctionDefinition{Header: hdr(src, "function deposit"), Name: "deposit", Kind: "function", Implemented: true,
				Parameters: []*astparser.VariableDeclaration{param("to", elem("address"))},
				Modifiers:  []string{"onlyOpen"}, Visibility: "public", StateMutability: "payable"},
			&astparser.FunctionDefinition{Header: hdr(src, "function total"), Name: "total", Kind: "function", Implemented: true,
				ReturnParameters: []*astparser.VariableDeclaration{param("", elem("uint256"))},
				Visibility:       "external", StateMutability: "view"},
			&astparser.OtherNode{NodeType: "UsingForDirective"},
		},
	}
}

func buildBank(t *testing.T) *model.Contract {
	unit := &astparser.SourceUnit{Path: "Bank.sol", Source: bankSource, Contracts: []*astparser.ContractDefinition{bankDefinition()}}
	contracts, err := New(annotation.Scanner{}).Build([]Input{{FileName: "Bank.sol", Unit: unit, DeployedAt: "0xabc"}})
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	return contracts[0]
}

func TestBuildContractShape(t *testing.T) {
	c := buildBank(t)

	assert.Equal(t, "Bank", c.Name)
	assert.Equal(t, model.ElementContract, c.ElementType())
	assert.Equal(t, "contract", c.Kind)
	assert.Equal(t, []string{"Ownable"}, c.BaseContracts)
	assert.Equal(t, "Bank.sol", c.InFile)
	assert.Equal(t, "0xabc", c.DeployedAt)
	assert.False(t, c.IsAbstract)
	assert.False(t, c.HeritageDissolved)
	assert.Equal(t, []string{"Status", "Account"}, c.References)
	assert.True(t, strings.HasPrefix(c.Source, "contract Bank"))
	assert.Equal(t, []model.SolidityAnnotation{{Name: "title", Value: "Bank"}}, c.Annotations)

	assert.Empty(t, c.InheritedFunctions)
	assert.Empty(t, c.InheritedEvents)
}

func TestBuildEnumsAndStructs(t *testing.T) {
	c := buildBank(t)

	require.Len(t, c.Enumerations, 1)
	e := c.Enumerations[0]
	assert.Equal(t, "Status", e.ShortName)
	assert.Equal(t, "Bank.Status", e.Name)
	assert.Equal(t, "Bank", e.ParentName)
	assert.Equal(t, []string{"Open", "Closed"}, e.Entries)

	require.Len(t, c.Structs, 1)
	s := c.Structs[0]
	assert.Equal(t, "Bank.Account", s.Name)
	assert.Equal(t, model.ElementStruct, s.ElementType())
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "owner", s.Fields[0].Name)
	assert.Equal(t, "Status", s.Fields[1].SolidityType.Name)
}

func TestBuildFunctions(t *testing.T) {
	c := buildBank(t)
	require.Len(t, c.Functions, 3)

	ctor := c.Functions[0]
	assert.Equal(t, model.ConstructorName, ctor.Name)
	assert.Equal(t, "constructor", ctor.Kind)

	deposit := c.Function("deposit")
	require.NotNil(t, deposit)
	assert.Equal(t, []string{"onlyOpen", "public", "payable"}, deposit.Modifiers)
	assert.False(t, deposit.IsConstant())
	assert.True(t, deposit.IsCallable())
	assert.Equal(t, "deposit(address to)", deposit.Description)
	assert.Equal(t, "Bank", deposit.Origin)
	require.Len(t, deposit.Annotations, 2)
	assert.Equal(t, "to", deposit.Annotations[0].SubAnnotation.Name)

	total := c.Function("total")
	require.NotNil(t, total)
	assert.True(t, total.IsConstant())
	assert.Equal(t, "total() returns (uint256)", total.Description)
}

func TestBuildEventsAndModifiers(t *testing.T) {
	c := buildBank(t)
	require.Len(t, c.Events, 1)
	assert.True(t, c.Events[0].Params[0].Indexed)
	assert.False(t, c.Events[0].Params[1].Indexed)
	require.Len(t, c.Modifiers, 1)
	assert.Equal(t, "onlyOpen", c.Modifiers[0].Name)
}

func TestStateVariableGetters(t *testing.T) {
	c := buildBank(t)
	require.Len(t, c.StateVariables, 4)

	t.Run("public mapping", func(t *testing.T) {
		g := c.StateVariables[0].Getter
		require.Len(t, g.Params, 1)
		assert.Equal(t, "address", g.Params[0].SolidityType.Name)
		require.Len(t, g.ReturnParams, 1)
		assert.Equal(t, "uint256", g.ReturnParams[0].SolidityType.Name)
		assert.True(t, g.IsConstant())
		assert.Equal(t, "balances", g.Name)
		assert.Equal(t, "notice", c.StateVariables[0].Annotations[0].Name)
	})

	t.Run("public array", func(t *testing.T) {
		g := c.StateVariables[1].Getter
		require.Len(t, g.Params, 1)
		assert.Equal(t, "uint256", g.Params[0].SolidityType.Name)
		assert.Equal(t, "uint256", g.ReturnParams[0].SolidityType.Name)
		assert.False(t, g.ReturnParams[0].SolidityType.IsArray)
	})

	t.Run("public value", func(t *testing.T) {
		g := c.StateVariables[2].Getter
		assert.Empty(t, g.Params)
		assert.Equal(t, "Account", g.ReturnParams[0].SolidityType.Name)
	})

	t.Run("internal", func(t *testing.T) {
		sv := c.StateVariables[3]
		assert.Equal(t, "internal", sv.Visibility)
		require.NotNil(t, sv.Getter)
		assert.Empty(t, sv.Getter.Modifiers)
		assert.False(t, sv.Getter.IsCallable())
	})
}

func TestNestedMappingGetterUnrolls(t *testing.T) {
	src := "contract N { mapping(address => mapping(uint256 => bool[])) public flags; }"
	def := &astparser.ContractDefinition{
		Header: hdr(src, "contract N"), Name: "N", Kind: "contract",
		SubNodes: []astparser.SubNode{
			&astparser.VariableDeclaration{Header: hdr(src, "mapping(address"), Name: "flags", Visibility: "public",
				TypeName: mapping(elem("address"), mapping(elem("uint256"), array(elem("bool"))))},
		},
	}
	c, err := New(nil).BuildContract(Input{FileName: "N.sol", Unit: &astparser.SourceUnit{Source: src}}, def)
	require.NoError(t, err)

	g := c.StateVariables[0].Getter
	require.Len(t, g.Params, 3)
	assert.Equal(t, []string{"address", "uint256", "uint256"}, g.ParamTypes())
	assert.Equal(t, "bool", g.ReturnParams[0].SolidityType.Name)
}

func TestBuildIsolatesFailingContract(t *testing.T) {
	src := "contract Good {} contract Bad { function f(function() x) public {} }"
	good := &astparser.ContractDefinition{Header: hdr(src, "contract Good {}"), Name: "Good", Kind: "contract"}
	bad := &astparser.ContractDefinition{
		Header: hdr(src, "contract Bad"), Name: "Bad", Kind: "contract",
		SubNodes: []astparser.SubNode{
			&astparser.FunctionDefinition{Name: "f", Kind: "function", Implemented: true, Parameters: []*astparser.VariableDeclaration{
				param("x", &astparser.UnknownTypeName{NodeType: "FunctionTypeName"}),
			}},
		},
	}
	unit := &astparser.SourceUnit{Source: src, Contracts: []*astparser.ContractDefinition{bad, good}}

	contracts, err := New(nil).Build([]Input{{FileName: "Mixed.sol", Unit: unit}})
	require.Error(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "Good", contracts[0].Name)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)

	var buildErr *model.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "Bad", buildErr.Contract)
	var unknown *model.UnknownTypeError
	assert.True(t, errors.As(err, &unknown))
}

func TestAbstractDetection(t *testing.T) {
	src := "interface I { function f() external; }"
	def := &astparser.ContractDefinition{
		Header: hdr(src, "interface I"), Name: "I", Kind: "interface",
		SubNodes: []astparser.SubNode{&astparser.FunctionDefinition{Name: "f", Kind: "function", Visibility: "external"}},
	}
	c, err := New(nil).BuildContract(Input{Unit: &astparser.SourceUnit{Source: src}}, def)
	require.NoError(t, err)
	assert.True(t, c.IsAbstract)
	assert.Equal(t, "interface", c.Kind)
}

func TestDeployedAtTargetsNamedContract(t *testing.T) {
	src := "contract A {} contract B {}"
	unit := &astparser.SourceUnit{Source: src, Contracts: []*astparser.ContractDefinition{
		{Header: hdr(src, "contract A {}"), Name: "A", Kind: "contract"},
		{Header: hdr(src, "contract B {}"), Name: "B", Kind: "contract"},
	}}
	contracts, err := New(nil).BuildFile(Input{Unit: unit, DeployedAt: "0x1", DeployedContract: "B"})
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Empty(t, contracts[0].DeployedAt)
	assert.Equal(t, "0x1", contracts[1].DeployedAt)
}
