package heritage

import (
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
)

// Member kinds reported in Ambiguity.
const (
	MemberFunction      = "function"
	MemberModifier      = "modifier"
	MemberEvent         = "event"
	MemberStateVariable = "stateVariable"
)

// Ambiguity records two bases contributing a member with the same key. The
// member from Kept is the one merged; the one from Dropped is discarded.
type Ambiguity struct {
	Contract string `json:"contract"`
	Kind     string `json:"kind"`
	Member   string `json:"member"`
	Kept     string `json:"kept"`
	Dropped  string `json:"dropped"`
}

// FunctionKey identifies a function by name and canonical parameter types, so
// overloads inherited from different bases are all kept while an override
// spelling a type differently (`uint` for `uint256`, `Base.S` for `S`) still
// replaces the base function.
func (ctx *Context) FunctionKey(f *model.ContractFunction) string {
	return f.SignatureKey(ctx.Lookup)
}

// memberCopy merges the direct and inherited members of base into c's
// Inherited* collections. A member is skipped when its key is already
// declared by c or already inherited.
func (ctx *Context) memberCopy(c, base *model.Contract) {
	c.InheritedFunctions = mergeMembers(ctx, c, MemberFunction, c.Functions, c.InheritedFunctions,
		base.AllFunctions(), ctx.FunctionKey,
		func(f *model.ContractFunction) string { return f.Origin })

	c.InheritedModifiers = mergeMembers(ctx, c, MemberModifier, c.Modifiers, c.InheritedModifiers,
		append(append([]*model.ContractModifier{}, base.Modifiers...), base.InheritedModifiers...),
		func(m *model.ContractModifier) string { return m.Name },
		func(m *model.ContractModifier) string { return m.Origin })

	c.InheritedEvents = mergeMembers(ctx, c, MemberEvent, c.Events, c.InheritedEvents,
		base.AllEvents(),
		func(e *model.ContractEvent) string { return e.Name },
		func(e *model.ContractEvent) string { return e.Origin })

	c.InheritedStateVariables = mergeMembers(ctx, c, MemberStateVariable, c.StateVariables, c.InheritedStateVariables,
		base.AllStateVariables(),
		func(v *model.ContractStateVariable) string { return v.Name },
		func(v *model.ContractStateVariable) string { return v.Origin })
}

func mergeMembers[T any](
	ctx *Context,
	c *model.Contract,
	kind string,
	direct, inherited, candidates []T,
	key func(T) string,
	origin func(T) string,
) []T {
	declared := make(map[string]bool, len(direct))
	for _, m := range direct {
		declared[key(m)] = true
	}
	have := make(map[string]T, len(inherited))
	for _, m := range inherited {
		have[key(m)] = m
	}

	out := inherited
	if out == nil {
		out = []T{}
	}
	for _, m := range candidates {
		k := key(m)
		if declared[k] {
			continue
		}
		if existing, ok := have[k]; ok {
			if origin(existing) != origin(m) {
				ctx.ambiguous(Ambiguity{
					Contract: c.Name,
					Kind:     kind,
					Member:   k,
					Kept:     origin(existing),
					Dropped:  origin(m),
				})
			}
			continue
		}
		have[k] = m
		out = append(out, m)
	}
	return out
}

func (ctx *Context) ambiguous(a Ambiguity) {
	for _, seen := range ctx.ambiguities {
		if seen == a {
			return
		}
	}
	logger.Warn("%s inherits %s %s from both %s and %s, keeping %s", a.Contract, a.Kind, a.Member, a.Kept, a.Dropped, a.Kept)
	ctx.ambiguities = append(ctx.ambiguities, a)
}
