package annotation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

func nodeAt(source, decl string) astparser.Node {
	start := strings.Index(source, decl)
	return &astparser.FunctionDefinition{
		Header: astparser.Header{Range: astparser.Range{Start: start, End: start + len(decl)}},
	}
}

func TestScannerExtractsNoticeAndParam(t *testing.T) {
	src := "/// @notice Does X\n/// @param a the value\nfunction f(uint a) public {}"
	anns := Scanner{}.Extract(src, nodeAt(src, "function f"))

	require.Len(t, anns, 2)
	assert.Contains(t, anns, model.SolidityAnnotation{Name: "notice", Value: "Does X"})
	assert.Contains(t, anns, model.SolidityAnnotation{
		Name:          "param",
		Value:         "a the value",
		SubAnnotation: &model.SolidityAnnotation{Name: "a", Value: "the value"},
	})
	// closest tag first
	assert.Equal(t, "param", anns[0].Name)
	assert.Equal(t, "notice", InSourceOrder(anns)[0].Name)
}

func TestScannerStopsAtCode(t *testing.T) {
	src := strings.Join([]string{
		"contract C {",
		"    /// @dev unrelated",
		"    uint x;",
		"",
		"    /// @dev first",
		"",
		"    /// @dev second",
		"    function g() public {}",
		"}",
	}, "\n")

	anns := Scanner{}.Extract(src, nodeAt(src, "function g"))
	require.Len(t, anns, 2)
	assert.Equal(t, "second", anns[0].Value)
	assert.Equal(t, "first", anns[1].Value)
}

func TestScannerIgnoresUntaggedComments(t *testing.T) {
	src := "// @notice plain comment\n/// no tag here\n/// @dev kept\nfunction h() {}"
	anns := Scanner{}.Extract(src, nodeAt(src, "function h"))
	require.Len(t, anns, 1)
	assert.Equal(t, model.SolidityAnnotation{Name: "dev", Value: "kept"}, anns[0])
}

func TestScannerKeepsRepeatedTags(t *testing.T) {
	src := "/// @dev one\n/// @dev two\nfunction k() {}"
	anns := Scanner{}.Extract(src, nodeAt(src, "function k"))
	assert.Len(t, anns, 2)
}

func TestScannerAtStartOfFile(t *testing.T) {
	src := "contract A {}"
	assert.Empty(t, Scanner{}.Extract(src, nodeAt(src, "contract A")))
}

func TestDocExtractor(t *testing.T) {
	node := &astparser.FunctionDefinition{Header: astparser.Header{
		Documentation: "Transfers tokens\n@param to the receiver\n  of the funds\n@return ok",
	}}
	anns := InSourceOrder(DocExtractor{}.Extract("", node))

	require.Len(t, anns, 3)
	assert.Equal(t, model.SolidityAnnotation{Name: "notice", Value: "Transfers tokens"}, anns[0])
	assert.Equal(t, "to the receiver of the funds", anns[1].Value)
	assert.Equal(t, "the receiver of the funds", anns[1].SubAnnotation.Value)
	assert.Equal(t, "return", anns[2].Name)
	assert.Equal(t, "ok", anns[2].Value)
}

func TestNew(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Scanner{}, e)

	e, err = New(SourceAST)
	require.NoError(t, err)
	assert.IsType(t, DocExtractor{}, e)

	_, err = New("regex")
	assert.Error(t, err)
}
