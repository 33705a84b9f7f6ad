// Package project drives the build pipeline (load, build, dissolve
// heritage) for one logical project and holds the current model.
package project

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/VectorBits/Solview/src/internal/abiproj"
	"github.com/VectorBits/Solview/src/internal/builder"
	"github.com/VectorBits/Solview/src/internal/heritage"
	"github.com/VectorBits/Solview/src/internal/loader"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
)

// Model is one fully dissolved contract set. It is never mutated after
// Submit returns it.
type Model struct {
	Contracts   []*model.Contract    `json:"contracts"`
	Ambiguities []heritage.Ambiguity `json:"ambiguities,omitempty"`
	// Errors lists the per-file and per-contract failures of the build that
	// did not prevent the model from being produced.
	Errors []error `json:"-"`

	byName map[string]*model.Contract
}

func newModel(contracts []*model.Contract, ambiguities []heritage.Ambiguity, errs []error) *Model {
	m := &Model{
		Contracts:   contracts,
		Ambiguities: ambiguities,
		Errors:      errs,
		byName:      make(map[string]*model.Contract, len(contracts)),
	}
	for _, c := range contracts {
		if _, ok := m.byName[c.Name]; !ok {
			m.byName[c.Name] = c
		}
	}
	return m
}

// Contract returns the contract called name, or nil.
func (m *Model) Contract(name string) *model.Contract {
	if m == nil {
		return nil
	}
	return m.byName[name]
}

// Enum finds an enumeration by qualified (`C.E`) or short name.
func (m *Model) Enum(name string) *model.ContractEnumeration {
	if m == nil {
		return nil
	}
	for _, c := range m.Contracts {
		for _, e := range c.Enumerations {
			if e.Name == name || e.ShortName == name {
				return e
			}
		}
	}
	return nil
}

// Struct finds a struct by its qualified name `C.S`.
func (m *Model) Struct(name string) *model.ContractStruct {
	parent, short, ok := strings.Cut(name, ".")
	if !ok {
		return nil
	}
	c := m.Contract(parent)
	if c == nil {
		return nil
	}
	return c.Struct(short)
}

// Elements returns every contract, struct and enum of the model.
func (m *Model) Elements() []model.NodeElement {
	var out []model.NodeElement
	for _, c := range m.Contracts {
		out = append(out, c)
		for _, s := range c.Structs {
			out = append(out, s)
		}
		for _, e := range c.Enumerations {
			out = append(out, e)
		}
	}
	return out
}

// Projector returns an ABI projector over the model's contracts.
func (m *Model) Projector() *abiproj.Projector {
	return abiproj.NewProjector(m.Contracts)
}

// Project serializes builds so that two submissions never interleave, and
// publishes each finished model atomically.
type Project struct {
	loader  *loader.Loader
	builder *builder.Builder

	mu      sync.Mutex
	current atomic.Pointer[Model]
}

func New(l *loader.Loader, b *builder.Builder) *Project {
	if b == nil {
		b = builder.New(nil)
	}
	return &Project{loader: l, builder: b}
}

// Model returns the last published model, or nil before the first Submit.
func (p *Project) Model() *Model { return p.current.Load() }

// Submit loads files and replaces the current model with the result. Per-file
// and per-contract failures are returned as a multierror alongside the new
// model; only cancellation leaves the current model in place.
func (p *Project) Submit(ctx context.Context, files []loader.File) (*Model, error) {
	if p.loader == nil {
		return nil, errors.New("project has no loader")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	inputs, err := p.loader.Load(ctx, files)
	var merr *multierror.Error
	if err != nil && !errors.As(err, &merr) {
		return nil, err
	}
	return result(p.publish(inputs, err))
}

// SubmitInputs builds already parsed inputs and replaces the current model.
func (p *Project) SubmitInputs(inputs []builder.Input) (*Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return result(p.publish(inputs, nil))
}

func result(m *Model) (*Model, error) {
	if len(m.Errors) == 0 {
		return m, nil
	}
	return m, multierror.Append(nil, m.Errors...)
}

func (p *Project) publish(inputs []builder.Input, loadErr error) *Model {
	var errs []error
	errs = appendErrors(errs, loadErr)

	contracts, err := p.builder.Build(inputs)
	errs = appendErrors(errs, err)

	ctx := heritage.NewContext(contracts)
	errs = appendErrors(errs, ctx.DissolveAll())

	m := newModel(ctx.Contracts(), ctx.Ambiguities(), errs)
	p.current.Store(m)
	logger.Info("model built: %d contracts from %d files, %d errors", len(m.Contracts), len(inputs), len(errs))
	return m
}

func appendErrors(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return append(errs, merr.Errors...)
	}
	return append(errs, err)
}
