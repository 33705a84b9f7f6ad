package annotation

import (
	"strings"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

const docMarker = "///"

// Scanner reads `/// @tag value` lines directly above a declaration in the raw
// source. Blank lines are skipped; any other line ends the block.
type Scanner struct{}

func (Scanner) Extract(source string, node astparser.Node) []model.SolidityAnnotation {
	lines := strings.Split(astparser.Before(source, node.Span()), "\n")
	// the last element is the declaration's own line up to its first byte
	var anns []model.SolidityAnnotation
	for i := len(lines) - 2; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, docMarker) || !strings.Contains(line, "@") {
			break
		}
		anns = append(anns, parseTag(line[strings.Index(line, "@")+1:]))
	}
	return anns
}
