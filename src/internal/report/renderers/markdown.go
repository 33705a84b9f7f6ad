package renderers

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Solview/src/internal/model"
)

type MarkdownRenderer struct{}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderContractHeader 合约标题及基本信息
func (r *MarkdownRenderer) RenderContractHeader(c *model.Contract) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s %s `%s`\n\n", getKindIcon(c.Kind), capitalize(c.Kind), c.Name))
	b.WriteString(fmt.Sprintf("**File**: %s\n", c.InFile))
	if len(c.BaseContracts) > 0 {
		b.WriteString(fmt.Sprintf("**Inherits**: %s\n", strings.Join(c.BaseContracts, ", ")))
	}
	if c.IsAbstract {
		b.WriteString("**Abstract**: yes\n")
	}
	if c.DeployedAt != "" {
		b.WriteString(fmt.Sprintf("**Deployed at**: `%s`\n", c.DeployedAt))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderAnnotations expects annotations in source order.
func (r *MarkdownRenderer) RenderAnnotations(anns []model.SolidityAnnotation) string {
	if len(anns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range anns {
		switch {
		case a.SubAnnotation != nil:
			b.WriteString(fmt.Sprintf("- **@%s** `%s`: %s\n", a.Name, a.SubAnnotation.Name, a.SubAnnotation.Value))
		case a.Name == "notice" || a.Name == "title":
			b.WriteString(fmt.Sprintf("> %s\n", a.Value))
		default:
			b.WriteString(fmt.Sprintf("- **@%s**: %s\n", a.Name, a.Value))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// RenderMember renders one function, getter or event. A non-empty abiErr
// replaces the signature line.
func (r *MarkdownRenderer) RenderMember(title, description, signature, abiErr string, inherited string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	if description != "" {
		b.WriteString(fmt.Sprintf("`%s`\n\n", description))
	}
	if inherited != "" {
		b.WriteString(fmt.Sprintf("*Inherited from %s*\n\n", inherited))
	}
	if abiErr != "" {
		b.WriteString(fmt.Sprintf("⚠️ could not build ABI: %s\n\n", abiErr))
	} else if signature != "" {
		b.WriteString(fmt.Sprintf("- **Signature**: `%s`\n", signature))
	}
	return b.String()
}

// RenderTable renders a simple markdown table.
func (r *MarkdownRenderer) RenderTable(header []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
	return b.String()
}

func getKindIcon(kind string) string {
	switch kind {
	case model.KindInterface:
		return "🔌"
	case model.KindLibrary:
		return "📚"
	default:
		return "📄"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
