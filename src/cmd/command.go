package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/VectorBits/Solview/src/internal/abiproj"
	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/builder"
	"github.com/VectorBits/Solview/src/internal/config"
	"github.com/VectorBits/Solview/src/internal/loader"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
	"github.com/VectorBits/Solview/src/internal/project"
	"github.com/VectorBits/Solview/src/internal/report"
	"github.com/VectorBits/Solview/src/internal/solc"
	"github.com/VectorBits/Solview/src/internal/ui"
)

// newProject wires loader, builder and solc according to the settings.
func newProject(app *config.AppConfig) (*project.Project, error) {
	docs, err := annotation.New(app.Annotations.Source)
	if err != nil {
		return nil, err
	}
	manager := solc.NewManager(solc.Options{
		Binary:      app.Solc.Binary,
		AutoInstall: app.Solc.AutoInstall,
		ParseOnly:   app.Solc.ParseOnly,
		Timeout:     app.Solc.Timeout,
	})
	l, err := loader.New(loader.Options{
		Concurrency: app.Loader.Concurrency,
		CacheSize:   app.Loader.CacheSize,
		NetworkID:   app.Loader.NetworkID,
	}, manager)
	if err != nil {
		return nil, err
	}
	return project.New(l, builder.New(docs)), nil
}

// BuildModel reads paths and builds one model from them. Per-file and
// per-contract failures are logged; the model is returned as long as one was
// produced.
func BuildModel(ctx context.Context, app *config.AppConfig, paths []string) (*project.Model, error) {
	if app == nil {
		app = config.Default()
	}
	files, err := loader.ReadPaths(paths, app.Loader.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files found in %v", paths)
	}
	p, err := newProject(app)
	if err != nil {
		return nil, err
	}

	m, err := p.Submit(ctx, files)
	if m == nil {
		return nil, err
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			logger.Warn("%v", e)
		}
	}
	for _, a := range m.Ambiguities {
		logger.Debug("%s: %s %s from %s shadows %s", a.Contract, a.Kind, a.Member, a.Dropped, a.Kept)
	}
	return m, nil
}

// selectContracts returns the named contracts, or every contract with sources
// when names is empty.
func selectContracts(m *project.Model, names []string) ([]*model.Contract, error) {
	if len(names) == 0 {
		var out []*model.Contract
		for _, c := range report.SortedByName(m.Contracts) {
			if !c.IsPlaceholder() {
				out = append(out, c)
			}
		}
		return out, nil
	}
	var (
		out    []*model.Contract
		result *multierror.Error
	)
	for _, name := range names {
		c := m.Contract(name)
		if c == nil {
			result = multierror.Append(result, fmt.Errorf("contract %s not found", name))
			continue
		}
		out = append(out, c)
	}
	return out, result.ErrorOrNil()
}

// ExecuteReport builds the model of paths and writes one kind report per
// contract, or a single combined document with --stdout.
func ExecuteReport(ctx context.Context, app *config.AppConfig, cli *CLIConfig, kind string, paths []string, out io.Writer) error {
	if app == nil {
		app = config.Default()
	}
	m, err := BuildModel(ctx, app, paths)
	if err != nil {
		return err
	}
	contracts, err := selectContracts(m, cli.Contracts)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		return errors.New("no contracts with sources in input")
	}

	r, err := report.ForKind(kind, app.Output.Dir)
	if err != nil {
		return err
	}
	projector := m.Projector()

	if cli.Stdout {
		content, err := r.Generate(report.NewReport(kind, "solview", contracts, projector))
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, content)
		return err
	}

	for _, c := range contracts {
		path, err := r.GenerateAndSave(report.NewReport(kind, c.Name, []*model.Contract{c}, projector))
		if err != nil {
			return err
		}
		ui.LogSuccess(os.Stderr, "%s", path)
	}
	return nil
}

// Match pairs two functions with the same selector.
type Match struct {
	Left      string
	Right     string
	Signature string
	Selector  string
}

// MatchFunctions lists every callable function of left that has the same
// selector as a callable function of right.
func MatchFunctions(left, right *project.Model) []Match {
	type candidate struct {
		name    string
		entries []abiproj.Entry
	}
	collect := func(m *project.Model) []candidate {
		p := m.Projector()
		var out []candidate
		for _, c := range m.Contracts {
			for _, f := range c.Functions {
				if abiproj.FunctionType(f) != abiproj.TypeFunction || !f.IsCallable() {
					continue
				}
				entries, err := p.Function(f, c)
				if err != nil {
					logger.Debug("skip %s.%s: %v", c.Name, f.Name, err)
					continue
				}
				out = append(out, candidate{name: c.Name + "." + f.Name, entries: entries})
			}
		}
		return out
	}

	rights := collect(right)
	var matches []Match
	for _, l := range collect(left) {
		for _, r := range rights {
			if !abiproj.IsSameFunction(l.entries, r.entries) {
				continue
			}
			sig, _ := abiproj.Signature(l.entries)
			sel, _ := abiproj.Selector(l.entries)
			matches = append(matches, Match{Left: l.name, Right: r.name, Signature: sig, Selector: "0x" + hex.EncodeToString(sel)})
		}
	}
	return matches
}

func ExecuteCompare(ctx context.Context, app *config.AppConfig, left, right string, out io.Writer) error {
	lm, err := BuildModel(ctx, app, []string{left})
	if err != nil {
		return fmt.Errorf("%s: %w", left, err)
	}
	rm, err := BuildModel(ctx, app, []string{right})
	if err != nil {
		return fmt.Errorf("%s: %w", right, err)
	}

	matches := MatchFunctions(lm, rm)
	if len(matches) == 0 {
		ui.LogInfo(os.Stderr, "no shared selectors")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%s %s  %s = %s\n", m.Selector, m.Signature, m.Left, m.Right)
	}
	return nil
}
