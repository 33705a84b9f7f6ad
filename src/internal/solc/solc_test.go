package solc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPragmaVersion(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"caret", "pragma solidity ^0.8.16;\ncontract A {}", "0.8.16"},
		{"range", "pragma solidity >=0.6.0 <0.9.0;", "0.9.0"},
		{"highest of many", "pragma solidity ^0.6.12;\npragma solidity 0.7.6;", "0.7.6"},
		{"none", "contract A {}", ""},
		{"partial", "pragma solidity ^0.8;", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPragmaVersion(tc.source))
		})
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Positive(t, compareVersions("0.8.10", "0.8.9"))
	assert.Negative(t, compareVersions("0.4.26", "0.5.0"))
	assert.Zero(t, compareVersions("0.8.0", "0.8.0"))
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "0.8.19", normalizeVersion(" v0.8.19 "))
	assert.Equal(t, "0.8.19", normalizeVersion("^0.8.19"))
	assert.Equal(t, "0.6.0", normalizeVersion(">=0.6.0"))
}

func TestBinaryOverride(t *testing.T) {
	m := NewManager(Options{Binary: "/opt/solc"})
	path, err := m.GetSolcPath("0.8.20")
	require.NoError(t, err)
	assert.Equal(t, "/opt/solc", path)
}

func TestParseASTWithoutSources(t *testing.T) {
	res, err := NewManager(Options{}).ParseAST(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.ASTs)
}

func TestExpandStandardJSON(t *testing.T) {
	input := `{
		"language": "Solidity",
		"sources": {
			"contracts/Token.sol": {"content": "pragma solidity ^0.8.0;\r\ncontract Token {}"},
			"./contracts/../lib/Ownable.sol": {"content": "contract Ownable {}"}
		},
		"settings": {"optimizer": {"enabled": true}}
	}`
	sources, err := ExpandStandardJSON(input)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "contracts/Token.sol", sources[0].Path)
	assert.Equal(t, "pragma solidity ^0.8.0;\ncontract Token {}", sources[0].Content)
	assert.Equal(t, "lib/Ownable.sol", sources[1].Path)
}

func TestExpandExplorerFormat(t *testing.T) {
	input := `{{"A.sol": {"content": "contract A {}"}}}`
	assert.True(t, IsJSONSource(input))

	sources, err := ExpandStandardJSON(input)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "A.sol", sources[0].Path)
}

func TestExpandRejects(t *testing.T) {
	_, err := ExpandStandardJSON(`{"language": "Vyper", "sources": {"a.vy": {"content": "x"}}}`)
	assert.Error(t, err)

	_, err = ExpandStandardJSON(`not json`)
	assert.Error(t, err)
	assert.False(t, IsJSONSource("contract A {}"))
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "a/b.sol", CleanPath("./a/b.sol"))
	assert.Equal(t, "etc/passwd", CleanPath("../../etc/passwd"))
	assert.Equal(t, "x/y.sol", CleanPath(`x\y.sol`))
	assert.Equal(t, "abs.sol", CleanPath("/abs.sol"))
}
