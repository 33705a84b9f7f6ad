package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/VectorBits/Solview/src/internal/abiproj"
	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
	"github.com/VectorBits/Solview/src/internal/report/renderers"
)

// Report kinds.
const (
	KindABI   = "abi"
	KindDocs  = "docs"
	KindModel = "model"
)

// Report is one output document covering one or more contracts.
type Report struct {
	Kind      string
	Name      string
	Created   time.Time
	Contracts []*model.Contract
	Projector *abiproj.Projector
}

func NewReport(kind, name string, contracts []*model.Contract, projector *abiproj.Projector) *Report {
	return &Report{
		Kind:      kind,
		Name:      name,
		Created:   time.Now(),
		Contracts: contracts,
		Projector: projector,
	}
}

type Generator interface {
	Generate(report *Report) (string, error)
	Extension() string
}

// ABIGenerator writes the JSON ABI of one contract, or an object keyed by
// contract name when the report covers several. Members that cannot be
// projected are logged and left out.
type ABIGenerator struct{}

func NewABIGenerator() *ABIGenerator { return &ABIGenerator{} }

func (g *ABIGenerator) Extension() string { return "json" }

func (g *ABIGenerator) Generate(report *Report) (string, error) {
	if report.Projector == nil {
		return "", fmt.Errorf("report %s has no projector", report.Name)
	}
	abis := make(map[string][]abiproj.Entry, len(report.Contracts))
	for _, c := range report.Contracts {
		entries, err := report.Projector.Contract(c)
		if err != nil {
			logger.Warn("incomplete ABI for %s: %v", c.Name, err)
		}
		if entries == nil {
			entries = []abiproj.Entry{}
		}
		abis[c.Name] = entries
	}

	var v interface{} = abis
	if len(report.Contracts) == 1 {
		v = abis[report.Contracts[0].Name]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode ABI: %w", err)
	}
	return string(data) + "\n", nil
}

// ModelGenerator writes the normalized contract records as JSON.
type ModelGenerator struct{}

func NewModelGenerator() *ModelGenerator { return &ModelGenerator{} }

func (g *ModelGenerator) Extension() string { return "json" }

func (g *ModelGenerator) Generate(report *Report) (string, error) {
	contracts := report.Contracts
	if contracts == nil {
		contracts = []*model.Contract{}
	}
	data, err := json.MarshalIndent(map[string]interface{}{"contracts": contracts}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode model: %w", err)
	}
	return string(data) + "\n", nil
}

type MarkdownGenerator struct {
	renderer *renderers.MarkdownRenderer
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{renderer: renderers.NewMarkdownRenderer()}
}

func (g *MarkdownGenerator) Extension() string { return "md" }

// Generate 生成 markdown 接口文档
func (g *MarkdownGenerator) Generate(report *Report) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<!-- generated by solview at %s -->\n\n", report.Created.Format("2006-01-02 15:04:05")))

	for i, c := range report.Contracts {
		b.WriteString(g.contract(report, c))
		if i < len(report.Contracts)-1 {
			b.WriteString("---\n\n")
		}
	}
	return b.String(), nil
}

func (g *MarkdownGenerator) contract(report *Report, c *model.Contract) string {
	r := g.renderer
	var b strings.Builder
	b.WriteString(r.RenderContractHeader(c))
	b.WriteString(r.RenderAnnotations(annotation.InSourceOrder(c.Annotations)))

	if c.IsPlaceholder() {
		b.WriteString("_No sources were supplied for this contract._\n\n")
		return b.String()
	}

	var functions []string
	for _, f := range c.AllFunctions() {
		kind := abiproj.FunctionType(f)
		if kind == abiproj.TypeConstructor && f.Origin != c.Name {
			continue
		}
		if kind == abiproj.TypeFunction && !f.IsCallable() {
			continue
		}
		entries, err := g.project(report, func(p *abiproj.Projector) ([]abiproj.Entry, error) { return p.Function(f, c) })
		functions = append(functions, g.member(f.Name, f.Description, f.Origin, c, f.Annotations, entries, err))
	}
	for _, v := range c.AllStateVariables() {
		if v.Visibility != "public" || v.Getter == nil {
			continue
		}
		entries, err := g.project(report, func(p *abiproj.Projector) ([]abiproj.Entry, error) { return p.Getter(v, c) })
		functions = append(functions, g.member(v.Name, v.Getter.Description, v.Origin, c, v.Annotations, entries, err))
	}
	if len(functions) > 0 {
		b.WriteString("## Functions\n\n")
		b.WriteString(strings.Join(functions, "\n"))
		b.WriteString("\n")
	}

	var events []string
	for _, e := range c.AllEvents() {
		entries, err := g.project(report, func(p *abiproj.Projector) ([]abiproj.Entry, error) { return p.Event(e, c) })
		events = append(events, g.member(e.Name, eventDescription(e), e.Origin, c, e.Annotations, entries, err))
	}
	if len(events) > 0 {
		b.WriteString("## Events\n\n")
		b.WriteString(strings.Join(events, "\n"))
		b.WriteString("\n")
	}

	var vars [][]string
	for _, v := range c.AllStateVariables() {
		vars = append(vars, []string{"`" + v.Name + "`", "`" + v.SolidityType.Name + "`", v.Visibility, v.Origin})
	}
	if len(vars) > 0 {
		b.WriteString("## State Variables\n\n")
		b.WriteString(r.RenderTable([]string{"Name", "Type", "Visibility", "Declared in"}, vars))
	}

	var types [][]string
	for _, s := range c.Structs {
		fields := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = f.SolidityType.Name + " " + f.Name
		}
		types = append(types, []string{"struct", "`" + s.Name + "`", strings.Join(fields, "; ")})
	}
	for _, e := range c.Enumerations {
		types = append(types, []string{"enum", "`" + e.Name + "`", strings.Join(e.Entries, ", ")})
	}
	if len(types) > 0 {
		b.WriteString("## Types\n\n")
		b.WriteString(r.RenderTable([]string{"Kind", "Name", "Members"}, types))
	}
	return b.String()
}

func (g *MarkdownGenerator) project(report *Report, fn func(*abiproj.Projector) ([]abiproj.Entry, error)) ([]abiproj.Entry, error) {
	if report.Projector == nil {
		return nil, nil
	}
	return fn(report.Projector)
}

func (g *MarkdownGenerator) member(name, description, origin string, c *model.Contract, anns []model.SolidityAnnotation, entries []abiproj.Entry, err error) string {
	inherited := ""
	if origin != "" && origin != c.Name {
		inherited = origin
	}
	signature, abiErr := "", ""
	if err != nil {
		abiErr = err.Error()
	} else if entries != nil {
		signature = signatureLine(entries)
	}
	return g.renderer.RenderMember(name, description, signature, abiErr, inherited) +
		g.renderer.RenderAnnotations(annotation.InSourceOrder(anns))
}

// signatureLine renders the canonical signature and its selector or topic.
func signatureLine(entries []abiproj.Entry) string {
	sig, err := abiproj.Signature(entries)
	if err != nil {
		return ""
	}
	switch entries[0].Type {
	case abiproj.TypeFunction:
		if sel, err := abiproj.Selector(entries); err == nil {
			return sig + "` selector `0x" + hex.EncodeToString(sel)
		}
	case abiproj.TypeEvent:
		if topic, err := abiproj.EventTopic(entries); err == nil {
			return sig + "` topic `" + topic.Hex()
		}
	}
	return sig
}

func eventDescription(e *model.ContractEvent) string {
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		t := p.SolidityType.Name
		if p.Indexed {
			t += " indexed"
		}
		parts[i] = strings.TrimSpace(t + " " + p.Name)
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// SortedByName returns contracts ordered by name, placeholders last.
func SortedByName(contracts []*model.Contract) []*model.Contract {
	out := append([]*model.Contract{}, contracts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPlaceholder() != out[j].IsPlaceholder() {
			return !out[i].IsPlaceholder()
		}
		return out[i].Name < out[j].Name
	})
	return out
}
