package builder

import (
	"github.com/hashicorp/go-multierror"

	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
)

// Input is one parsed file handed to the builder.
type Input struct {
	FileName string
	Unit     *astparser.SourceUnit
	// DeployedAt is the on-chain address from a build artifact. It is applied
	// to DeployedContract, or to every contract of the file when that is empty.
	DeployedAt       string
	DeployedContract string
}

// Builder assembles Contract records from parsed files.
type Builder struct {
	docs annotation.Extractor
}

func New(docs annotation.Extractor) *Builder {
	if docs == nil {
		docs = annotation.Scanner{}
	}
	return &Builder{docs: docs}
}

// Build builds every contract of every input. A contract that fails to build
// is skipped and its error, wrapped in *model.BuildError, is added to the
// returned multierror; the remaining contracts are still returned.
func (b *Builder) Build(inputs []Input) ([]*model.Contract, error) {
	var (
		contracts []*model.Contract
		result    *multierror.Error
	)
	for _, in := range inputs {
		built, err := b.BuildFile(in)
		contracts = append(contracts, built...)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return contracts, result.ErrorOrNil()
}

// BuildFile builds the contracts of one file.
func (b *Builder) BuildFile(in Input) ([]*model.Contract, error) {
	if in.Unit == nil {
		return nil, nil
	}
	var (
		contracts []*model.Contract
		result    *multierror.Error
	)
	for _, def := range in.Unit.Contracts {
		c, err := b.BuildContract(in, def)
		if err != nil {
			logger.Warn("skipping contract %s in %s: %v", def.Name, in.FileName, err)
			result = multierror.Append(result, &model.BuildError{File: in.FileName, Contract: def.Name, Err: err})
			continue
		}
		contracts = append(contracts, c)
	}
	return contracts, result.ErrorOrNil()
}

// BuildContract assembles one contract definition.
func (b *Builder) BuildContract(in Input, def *astparser.ContractDefinition) (*model.Contract, error) {
	s := &scope{
		source:   in.Unit.Source,
		contract: def.Name,
		types:    NewTypeResolver(),
		docs:     b.docs,
	}

	structs, err := s.structs(def)
	if err != nil {
		return nil, err
	}
	events, err := s.events(def)
	if err != nil {
		return nil, err
	}
	modifiers, err := s.modifiers(def)
	if err != nil {
		return nil, err
	}
	functions, err := s.functions(def)
	if err != nil {
		return nil, err
	}
	vars, err := s.stateVariables(def)
	if err != nil {
		return nil, err
	}

	c := &model.Contract{
		Name:                    def.Name,
		Kind:                    def.Kind,
		BaseContracts:           append([]string{}, def.BaseContracts...),
		Structs:                 structs,
		Enumerations:            s.enums(def),
		StateVariables:          vars,
		InheritedStateVariables: []*model.ContractStateVariable{},
		Functions:               functions,
		InheritedFunctions:      []*model.ContractFunction{},
		Modifiers:               modifiers,
		InheritedModifiers:      []*model.ContractModifier{},
		Events:                  events,
		InheritedEvents:         []*model.ContractEvent{},
		Annotations:             s.annotations(def),
		References:              unique(s.types.References()),
		IsAbstract:              isAbstract(def, functions),
		Source:                  astparser.Slice(in.Unit.Source, def.Span()),
		SourceRange:             s.sourceRange(def),
		InFile:                  in.FileName,
	}
	if in.DeployedAt != "" && (in.DeployedContract == "" || in.DeployedContract == def.Name) {
		c.DeployedAt = in.DeployedAt
	}
	return c, nil
}

func isAbstract(def *astparser.ContractDefinition, functions []*model.ContractFunction) bool {
	if def.Abstract || def.Kind == model.KindInterface {
		return true
	}
	for _, f := range functions {
		if !f.IsImplemented {
			return true
		}
	}
	return false
}

func unique(names []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
