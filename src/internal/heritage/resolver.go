// Package heritage flattens multiple, multi-level inheritance into the
// Inherited* collections of each contract ("heritage dissolution").
package heritage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
)

// Context owns the contract table for one resolution pass. It is not safe
// for concurrent use; independent passes need independent contexts.
type Context struct {
	contracts   []*model.Contract
	byName      map[string]*model.Contract
	inProgress  map[string]bool
	stack       []string
	ambiguities []Ambiguity
}

// NewContext indexes contracts by name. When a name is declared twice the
// first declaration wins lookups.
func NewContext(contracts []*model.Contract) *Context {
	ctx := &Context{
		contracts:  append([]*model.Contract{}, contracts...),
		byName:     make(map[string]*model.Contract, len(contracts)),
		inProgress: make(map[string]bool),
	}
	for _, c := range contracts {
		if _, ok := ctx.byName[c.Name]; !ok {
			ctx.byName[c.Name] = c
		} else {
			logger.Warn("contract %s declared more than once, using the one from %s", c.Name, ctx.byName[c.Name].InFile)
		}
	}
	return ctx
}

// Contracts returns the table, including placeholders appended during resolution.
func (ctx *Context) Contracts() []*model.Contract { return ctx.contracts }

// Lookup returns the contract called name.
func (ctx *Context) Lookup(name string) (*model.Contract, bool) {
	c, ok := ctx.byName[name]
	return c, ok
}

// Ambiguities returns the cross-base collisions seen so far.
func (ctx *Context) Ambiguities() []Ambiguity { return ctx.ambiguities }

// Resolve dissolves the heritage of every contract and returns the full
// contract list (input order, then placeholders). Cycles are reported as
// *model.InheritanceCycleError inside the returned multierror; the members of
// a cycle keep whatever was merged before the cycle was detected.
func Resolve(contracts []*model.Contract) ([]*model.Contract, error) {
	ctx := NewContext(contracts)
	err := ctx.DissolveAll()
	return ctx.Contracts(), err
}

// DissolveAll runs Dissolve over every contract in the table.
func (ctx *Context) DissolveAll() error {
	var result *multierror.Error
	reported := make(map[string]bool)

	// placeholders appended while iterating are already dissolved
	for i := 0; i < len(ctx.contracts); i++ {
		c := ctx.contracts[i]
		for !c.HeritageDissolved {
			err := ctx.Dissolve(c)
			if err == nil {
				break
			}
			var cycle *model.InheritanceCycleError
			if !errors.As(err, &cycle) {
				result = multierror.Append(result, err)
				break
			}
			key := cycleKey(cycle.Cycle)
			if !reported[key] {
				reported[key] = true
				logger.Error("%v", cycle)
				result = multierror.Append(result, cycle)
			}
			// finalize the cycle so the next attempt makes progress
			for _, name := range cycle.Cycle {
				if member, ok := ctx.byName[name]; ok {
					member.HeritageDissolved = true
				}
			}
		}
	}
	return result.ErrorOrNil()
}

// Dissolve resolves c after all of its bases (postorder) and merges their
// members into c's Inherited* collections.
func (ctx *Context) Dissolve(c *model.Contract) error {
	if c.HeritageDissolved || len(c.BaseContracts) == 0 {
		c.HeritageDissolved = true
		return nil
	}
	if ctx.inProgress[c.Name] {
		return &model.InheritanceCycleError{Cycle: ctx.cycleFrom(c.Name)}
	}

	ctx.inProgress[c.Name] = true
	ctx.stack = append(ctx.stack, c.Name)
	defer func() {
		delete(ctx.inProgress, c.Name)
		ctx.stack = ctx.stack[:len(ctx.stack)-1]
	}()

	for _, baseName := range c.BaseContracts {
		base, ok := ctx.byName[baseName]
		if !ok {
			ctx.addPlaceholder(baseName)
			continue
		}
		if err := ctx.Dissolve(base); err != nil {
			return err
		}
		ctx.memberCopy(c, base)
	}
	c.HeritageDissolved = true
	return nil
}

func (ctx *Context) addPlaceholder(name string) {
	logger.Debug("base contract %s has no sources, adding placeholder", name)
	p := model.NewPlaceholder(name)
	ctx.contracts = append(ctx.contracts, p)
	ctx.byName[name] = p
}

func (ctx *Context) cycleFrom(name string) []string {
	for i, n := range ctx.stack {
		if n == name {
			cycle := append([]string{}, ctx.stack[i:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}

// cycleKey identifies a cycle independent of the contract it was entered from.
func cycleKey(cycle []string) string {
	if len(cycle) < 2 {
		return strings.Join(cycle, ",")
	}
	ring := cycle[:len(cycle)-1]
	start := 0
	for i, n := range ring {
		if n < ring[start] {
			start = i
		}
	}
	rotated := append(append([]string{}, ring[start:]...), ring[:start]...)
	return fmt.Sprint(rotated)
}
