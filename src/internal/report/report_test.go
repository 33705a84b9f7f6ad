package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Solview/src/internal/abiproj"
	"github.com/VectorBits/Solview/src/internal/model"
)

func elementary(name string) model.SolidityType { return model.SolidityType{Name: name} }

func tokenModel() (*model.Contract, *model.Contract, *abiproj.Projector) {
	ownable := model.NewPlaceholder("Ownable")
	ownable.InFile = "Ownable.sol"
	ownable.IsAbstract = false

	token := model.NewPlaceholder("Token")
	token.InFile = "Token.sol"
	token.IsAbstract = false
	token.BaseContracts = []string{"Ownable"}
	token.Annotations = []model.SolidityAnnotation{{Name: "title", Value: "Token"}}
	token.Functions = []*model.ContractFunction{
		{
			Name: "transfer", Kind: "function", Modifiers: []string{"external"}, Origin: "Token",
			Description: "function transfer(address to, uint amount) external",
			Params: []*model.ContractParam{
				{Name: "to", SolidityType: elementary("address")},
				{Name: "amount", SolidityType: elementary("uint")},
			},
			// stored last tag first
			Annotations: []model.SolidityAnnotation{
				{Name: "param", SubAnnotation: &model.SolidityAnnotation{Name: "to", Value: "receiver"}},
				{Name: "notice", Value: "moves tokens"},
			},
		},
		{Name: "helper", Kind: "function", Modifiers: []string{"internal"}, Origin: "Token"},
		{
			Name: "bad", Kind: "function", Modifiers: []string{"public"}, Origin: "Token",
			Params: []*model.ContractParam{{Name: "x", SolidityType: model.SolidityType{Name: "A.B.C", UserDefined: true}}},
		},
	}
	token.InheritedFunctions = []*model.ContractFunction{
		{Name: "owner", Kind: "function", Modifiers: []string{"public", "view"}, Origin: "Ownable",
			ReturnParams: []*model.ContractParam{{SolidityType: elementary("address")}}},
	}
	token.Events = []*model.ContractEvent{{
		Name: "Transfer", Origin: "Token",
		Params: []*model.ContractParam{
			{Name: "from", SolidityType: elementary("address"), Indexed: true},
			{Name: "to", SolidityType: elementary("address"), Indexed: true},
			{Name: "value", SolidityType: elementary("uint256")},
		},
	}}
	token.StateVariables = []*model.ContractStateVariable{{
		Name: "supply", SolidityType: elementary("uint256"), Visibility: "public", Origin: "Token",
		Getter: &model.ContractFunction{Name: "supply", Kind: "function", Modifiers: []string{"public", "view"}, Origin: "Token",
			ReturnParams: []*model.ContractParam{{SolidityType: elementary("uint256")}}},
	}}
	token.Enumerations = []*model.ContractEnumeration{{ShortName: "Phase", Name: "Token.Phase", ParentName: "Token", Entries: []string{"Init", "Live"}}}

	return token, ownable, abiproj.NewProjector([]*model.Contract{token, ownable})
}

func TestABIGenerator(t *testing.T) {
	token, ownable, p := tokenModel()
	g := NewABIGenerator()
	assert.Equal(t, "json", g.Extension())

	out, err := g.Generate(NewReport(KindABI, "Token", []*model.Contract{token}, p))
	require.NoError(t, err)

	var entries []abiproj.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// bad is left out
	assert.Equal(t, []string{"transfer", "owner", "supply", "Transfer"}, names)

	out, err = g.Generate(NewReport(KindABI, "all", []*model.Contract{token, ownable}, p))
	require.NoError(t, err)
	var all map[string][]abiproj.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all["Token"], 4)
	assert.NotNil(t, all["Ownable"])
	assert.Empty(t, all["Ownable"])

	_, err = g.Generate(NewReport(KindABI, "x", []*model.Contract{token}, nil))
	assert.Error(t, err)
}

func TestMarkdownGenerator(t *testing.T) {
	token, _, p := tokenModel()
	g := NewMarkdownGenerator()
	assert.Equal(t, "md", g.Extension())

	out, err := g.Generate(NewReport(KindDocs, "Token", []*model.Contract{token}, p))
	require.NoError(t, err)

	assert.Contains(t, out, "# 📄 Contract `Token`")
	assert.Contains(t, out, "**Inherits**: Ownable")
	assert.Contains(t, out, "> Token")
	assert.Contains(t, out, "`transfer(address,uint256)` selector `0xa9059cbb`")
	assert.Contains(t, out, "- **@param** `to`: receiver")
	assert.Contains(t, out, "*Inherited from Ownable*")
	assert.Contains(t, out, "could not build ABI")
	assert.Contains(t, out, "topic `0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef`")
	assert.Contains(t, out, "| `supply` | `uint256` | public | Token |")
	assert.Contains(t, out, "| enum | `Token.Phase` | Init, Live |")
	assert.NotContains(t, out, "### helper")

	// the notice comes before the param tag
	assert.Less(t, strings.Index(out, "> moves tokens"), strings.Index(out, "**@param** `to`"))
}

func TestMarkdownPlaceholder(t *testing.T) {
	missing := model.NewPlaceholder("Missing")
	out, err := NewMarkdownGenerator().Generate(NewReport(KindDocs, "Missing", []*model.Contract{missing}, nil))
	require.NoError(t, err)
	assert.Contains(t, out, "No sources were supplied")
}

func TestSortedByName(t *testing.T) {
	b := model.NewPlaceholder("B")
	b.InFile = "b.sol"
	a := model.NewPlaceholder("A")
	z := model.NewPlaceholder("Z")
	z.InFile = "z.sol"

	got := SortedByName([]*model.Contract{z, a, b})
	assert.Equal(t, []string{"B", "Z", "A"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestReporterWritesDeterministicFile(t *testing.T) {
	token, _, p := tokenModel()
	dir := t.TempDir()

	r, err := ForKind(KindABI, dir)
	require.NoError(t, err)
	path, err := r.GenerateAndSave(NewReport(KindABI, "Token", []*model.Contract{token}, p))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Token.abi.json"), path)

	again, err := r.GenerateAndSave(NewReport(KindABI, "Token", []*model.Contract{token}, p))
	require.NoError(t, err)
	assert.Equal(t, path, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = ForKind("pdf", dir)
	assert.Error(t, err)
}

func TestSanitizeFilenameComponent(t *testing.T) {
	assert.Equal(t, "unknown", sanitizeFilenameComponent("  "))
	assert.Equal(t, "contracts_Token.sol", sanitizeFilenameComponent("contracts/Token.sol"))
	assert.Equal(t, "unknown", sanitizeFilenameComponent("../"))
	assert.Equal(t, "Token.docs.md", Filename(&Report{Name: "Token", Kind: KindDocs}, "md"))
}

func TestModelGenerator(t *testing.T) {
	token, _, _ := tokenModel()
	r, err := ForKind(KindModel, t.TempDir())
	require.NoError(t, err)

	out, err := r.Generate(NewReport(KindModel, "Token", []*model.Contract{token}, nil))
	require.NoError(t, err)

	var doc struct {
		Contracts []*model.Contract `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Contracts, 1)
	assert.Equal(t, "Token", doc.Contracts[0].Name)
	assert.Equal(t, "Ownable", doc.Contracts[0].InheritedFunctions[0].Origin)
}
