package annotation

import (
	"strings"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

// DocExtractor reads the documentation text the compiler attached to the node.
// Untagged leading text is an implicit @notice and untagged lines continue the
// previous tag, as NatSpec defines.
type DocExtractor struct{}

func (DocExtractor) Extract(_ string, node astparser.Node) []model.SolidityAnnotation {
	doc := node.Doc()
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	var ordered []model.SolidityAnnotation
	for _, raw := range strings.Split(doc, "\n") {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "*"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@") {
			ordered = append(ordered, parseTag(line[1:]))
			continue
		}
		if len(ordered) == 0 {
			ordered = append(ordered, model.SolidityAnnotation{Name: "notice", Value: line})
			continue
		}
		last := &ordered[len(ordered)-1]
		last.Value = strings.TrimSpace(last.Value + " " + line)
		if last.SubAnnotation != nil {
			last.SubAnnotation.Value = strings.TrimSpace(last.SubAnnotation.Value + " " + line)
		}
	}
	return InSourceOrder(ordered)
}
