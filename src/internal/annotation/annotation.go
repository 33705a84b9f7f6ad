// Package annotation recovers NatSpec tags for declarations.
//
// Extractors return annotations in reverse source order: the tag closest to
// the declaration comes first. Use InSourceOrder for presentation.
package annotation

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/model"
)

// Source names accepted by New.
const (
	SourceScan = "scan"
	SourceAST  = "ast"
)

// Extractor returns the documentation tags attached to node.
type Extractor interface {
	Extract(source string, node astparser.Node) []model.SolidityAnnotation
}

// New returns the extractor registered under name.
func New(name string) (Extractor, error) {
	switch name {
	case "", SourceScan:
		return Scanner{}, nil
	case SourceAST:
		return DocExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown annotation source %q (want %s|%s)", name, SourceScan, SourceAST)
	}
}

// InSourceOrder returns a reversed copy of anns.
func InSourceOrder(anns []model.SolidityAnnotation) []model.SolidityAnnotation {
	out := make([]model.SolidityAnnotation, len(anns))
	for i, a := range anns {
		out[len(anns)-1-i] = a
	}
	return out
}

// parseTag splits "tag value..." into an annotation. A @param value is split
// again into the parameter name and its description.
func parseTag(s string) model.SolidityAnnotation {
	name, value := splitWord(s)
	ann := model.SolidityAnnotation{Name: name, Value: value}
	if name == "param" {
		pname, desc := splitWord(value)
		ann.SubAnnotation = &model.SolidityAnnotation{Name: pname, Value: desc}
	}
	return ann
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i == -1 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
