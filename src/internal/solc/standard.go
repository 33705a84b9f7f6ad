package solc

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// StandardInputJSON 标准 JSON 输入格式
type StandardInputJSON struct {
	Language string                 `json:"language"`
	Sources  map[string]SourceFile  `json:"sources"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

type SourceFile struct {
	Content string `json:"content"`
}

// Source is one named Solidity source.
type Source struct {
	Path    string
	Content string
}

// IsJSONSource 检查源代码是否为多文件 JSON 格式
func IsJSONSource(source string) bool {
	trimmed := strings.TrimSpace(source)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, "\"content\"")
}

// ExpandStandardJSON splits a standard-JSON input (or a bare `{path: {content}}`
// map, as served by block explorers) into its sources, sorted by path.
func ExpandStandardJSON(data string) ([]Source, error) {
	normalized := normalizeJSONSource(data)

	var input StandardInputJSON
	if err := json.Unmarshal([]byte(normalized), &input); err != nil || len(input.Sources) == 0 {
		var direct map[string]SourceFile
		if err := json.Unmarshal([]byte(normalized), &direct); err != nil || len(direct) == 0 {
			return nil, fmt.Errorf("invalid multi-file JSON format")
		}
		input.Sources = direct
	}
	if input.Language != "" && !strings.EqualFold(input.Language, "Solidity") {
		return nil, fmt.Errorf("unsupported language %q", input.Language)
	}

	out := make([]Source, 0, len(input.Sources))
	for p, src := range input.Sources {
		out = append(out, Source{
			Path:    CleanPath(p),
			Content: strings.ReplaceAll(src.Content, "\r\n", "\n"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// CleanPath makes p a relative slash path that cannot escape its root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// normalizeJSONSource 规范化 JSON 字符串（Etherscan 返回的 {{...}} 包裹）
func normalizeJSONSource(jsonStr string) string {
	trimmed := strings.TrimSpace(jsonStr)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}
