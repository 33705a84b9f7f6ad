package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/builder"
	"github.com/VectorBits/Solview/src/internal/config"
	"github.com/VectorBits/Solview/src/internal/project"
	"github.com/VectorBits/Solview/src/internal/report"
)

func TestCLIConfigValidate(t *testing.T) {
	assert.NoError(t, (&CLIConfig{}).Validate())
	assert.Error(t, (&CLIConfig{Concurrency: -1}).Validate())
	assert.Error(t, (&CLIConfig{Timeout: -time.Second}).Validate())
	assert.Error(t, (&CLIConfig{Annotations: "html"}).Validate())
	assert.Error(t, (&CLIConfig{Contracts: []string{" "}}).Validate())

	c := &CLIConfig{Contracts: []string{" Token "}}
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Token"}, c.Contracts)
}

func TestMergeConfigs(t *testing.T) {
	base := config.Default()
	cli := &CLIConfig{OutputDir: "docs", Network: "5", Solc: "/usr/bin/solc", Concurrency: 8, Timeout: time.Second, Verbose: true}
	got := cli.MergeConfigs(base)

	assert.Equal(t, "docs", got.Output.Dir)
	assert.Equal(t, "5", got.Loader.NetworkID)
	assert.Equal(t, "/usr/bin/solc", got.Solc.Binary)
	assert.Equal(t, 8, got.Loader.Concurrency)
	assert.Equal(t, time.Second, got.Solc.Timeout)
	assert.Equal(t, "debug", got.Log.Level)
	// the loaded settings are not modified
	assert.Equal(t, "output", base.Output.Dir)

	assert.Equal(t, config.Default(), (&CLIConfig{}).MergeConfigs(nil))
}

func writeArtifact(t *testing.T, dir string) {
	t.Helper()
	src, err := os.ReadFile("../internal/loader/testdata/token.sol")
	require.NoError(t, err)
	ast, err := os.ReadFile("../internal/loader/testdata/token.json")
	require.NoError(t, err)
	data, err := json.Marshal(map[string]interface{}{
		"contractName": "Token",
		"source":       string(src),
		"ast":          json.RawMessage(ast),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Token.json"), data, 0644))
}

func TestExecuteReportStdout(t *testing.T) {
	in := t.TempDir()
	writeArtifact(t, in)

	var out bytes.Buffer
	err := ExecuteReport(context.Background(), config.Default(), &CLIConfig{Stdout: true}, report.KindABI, []string{in}, &out)
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	var names []string
	for _, e := range entries {
		name, _ := e["name"].(string)
		names = append(names, e["type"].(string)+":"+name)
	}
	assert.Contains(t, names, "function:move")
	assert.Contains(t, names, "function:balances")
	assert.Contains(t, names, "event:Moved")
	assert.Contains(t, names, "receive:")
}

func TestExecuteReportWritesFiles(t *testing.T) {
	in := t.TempDir()
	writeArtifact(t, in)
	app := config.Default()
	app.Output.Dir = filepath.Join(t.TempDir(), "out")

	err := ExecuteReport(context.Background(), app, &CLIConfig{}, report.KindDocs, []string{in}, &bytes.Buffer{})
	require.NoError(t, err)

	doc, err := os.ReadFile(filepath.Join(app.Output.Dir, "Token.docs.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "### move")
	// placeholders get no file of their own
	_, err = os.Stat(filepath.Join(app.Output.Dir, "Ownable.docs.md"))
	assert.True(t, os.IsNotExist(err))

	err = ExecuteReport(context.Background(), app, &CLIConfig{Contracts: []string{"Nope"}}, report.KindDocs, []string{in}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuildModelWithoutInputs(t *testing.T) {
	_, err := BuildModel(context.Background(), nil, []string{t.TempDir()})
	assert.Error(t, err)
}

func contract(name string, fns ...*astparser.FunctionDefinition) builder.Input {
	def := &astparser.ContractDefinition{Name: name, Kind: "contract"}
	for _, f := range fns {
		def.SubNodes = append(def.SubNodes, f)
	}
	return builder.Input{FileName: name + ".sol", Unit: &astparser.SourceUnit{Path: name + ".sol", Contracts: []*astparser.ContractDefinition{def}}}
}

func function(name, visibility string, params ...string) *astparser.FunctionDefinition {
	f := &astparser.FunctionDefinition{Name: name, Kind: "function", Implemented: true, Visibility: visibility}
	for _, p := range params {
		f.Parameters = append(f.Parameters, &astparser.VariableDeclaration{Name: "p", TypeName: &astparser.ElementaryTypeName{Name: p}})
	}
	return f
}

func TestMatchFunctions(t *testing.T) {
	left, err := project.New(nil, nil).SubmitInputs([]builder.Input{
		contract("A", function("transfer", "public", "address", "uint"), function("hidden", "internal")),
	})
	require.NoError(t, err)
	right, err := project.New(nil, nil).SubmitInputs([]builder.Input{
		contract("B", function("transfer", "external", "address", "uint256"), function("hidden", "internal"), function("other", "public")),
	})
	require.NoError(t, err)

	matches := MatchFunctions(left, right)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{Left: "A.transfer", Right: "B.transfer", Signature: "transfer(address,uint256)", Selector: "0xa9059cbb"}, matches[0])
}

func TestRootCommandTree(t *testing.T) {
	root := BuildRoot()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"model", "abi", "docs", "compare"}, names)

	root.SetArgs([]string{"compare", "only-one"})
	root.SetOut(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
