// Package loader turns raw input files into parsed source units for the
// builder: it selects source text and deployed address by file shape,
// obtains the AST (embedded in the artifact or from solc) and caches it.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/builder"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/model"
	"github.com/VectorBits/Solview/src/internal/solc"
)

// File is one input as submitted by the user.
type File struct {
	Name    string
	Content string
}

// ASTParser produces compact-JSON ASTs for Solidity sources.
type ASTParser interface {
	ParseAST(ctx context.Context, sources []solc.Source) (*solc.ASTResult, error)
}

type Options struct {
	Concurrency int
	CacheSize   int
	// NetworkID selects the deployment of an artifact; when empty or
	// missing the lowest network id with an address is used.
	NetworkID string
}

// Loader is safe for concurrent use.
type Loader struct {
	opts   Options
	parser ASTParser
	cache  *lru.Cache
}

func New(opts Options, parser ASTParser) (*Loader, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create AST cache: %w", err)
	}
	return &Loader{opts: opts, parser: parser, cache: cache}, nil
}

// artifact is the subset of a truffle-style build artifact that is read.
type artifact struct {
	ContractName string                     `json:"contractName"`
	Source       *string                    `json:"source"`
	AST          json.RawMessage            `json:"ast"`
	Networks     map[string]artifactNetwork `json:"networks"`
}

type artifactNetwork struct {
	Address string `json:"address"`
}

// pending is one source on its way to a SourceUnit.
type pending struct {
	input  builder.Input
	source string
	ast    []byte
	key    string
}

// Load parses files into builder inputs, in input order. Files that cannot
// be parsed are reported as *model.ParseError in the returned multierror and
// left out; the others are still returned.
func (l *Loader) Load(ctx context.Context, files []File) ([]builder.Input, error) {
	var (
		items  []*pending
		result *multierror.Error
	)
	for _, f := range files {
		ps, err := l.classify(f)
		if err != nil {
			result = multierror.Append(result, &model.ParseError{File: f.Name, Err: err})
			continue
		}
		items = append(items, ps...)
	}

	var needSolc []*pending
	for _, p := range items {
		if v, ok := l.cache.Get(p.key); ok {
			logger.Debug("AST cache hit for %s", p.input.FileName)
			p.input.Unit = v.(*astparser.SourceUnit)
			continue
		}
		if p.ast == nil {
			needSolc = append(needSolc, p)
		}
	}

	var mu sync.Mutex
	fail := func(name string, err error) {
		mu.Lock()
		result = multierror.Append(result, &model.ParseError{File: name, Err: err})
		mu.Unlock()
	}

	if len(needSolc) > 0 {
		if err := l.compile(ctx, needSolc, fail); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for _, p := range items {
		if p.input.Unit != nil || p.ast == nil {
			continue
		}
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			unit, err := astparser.Parse(p.ast, p.input.FileName, p.source)
			if err != nil {
				fail(p.input.FileName, err)
				return nil
			}
			l.cache.Add(p.key, unit)
			p.input.Unit = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inputs := make([]builder.Input, 0, len(items))
	for _, p := range items {
		if p.input.Unit != nil {
			inputs = append(inputs, p.input)
		}
	}
	return inputs, result.ErrorOrNil()
}

// compile fills in the AST of every item. One solc run covers all of them so
// imports between submitted files resolve; if that run fails each file is
// retried alone.
func (l *Loader) compile(ctx context.Context, items []*pending, fail func(string, error)) error {
	if l.parser == nil {
		for _, p := range items {
			fail(p.input.FileName, fmt.Errorf("no AST available and no solc configured"))
		}
		return nil
	}

	sources := make([]solc.Source, len(items))
	for i, p := range items {
		sources[i] = solc.Source{Path: p.input.FileName, Content: p.source}
	}
	res, err := l.parser.ParseAST(ctx, sources)
	if err == nil {
		for _, p := range items {
			if ast, ok := res.ASTs[p.input.FileName]; ok {
				p.ast = ast
			} else {
				fail(p.input.FileName, fmt.Errorf("solc produced no AST"))
			}
		}
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(items) == 1 {
		fail(items[0].input.FileName, err)
		return nil
	}
	logger.Warn("batch parse failed, retrying files one by one: %v", err)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i, p := range items {
		p, src := p, sources[i]
		g.Go(func() error {
			res, err := l.parser.ParseAST(gctx, []solc.Source{src})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				fail(p.input.FileName, err)
				return nil
			}
			ast, ok := res.ASTs[src.Path]
			if !ok {
				fail(p.input.FileName, fmt.Errorf("solc produced no AST"))
				return nil
			}
			p.ast = ast
			return nil
		})
	}
	return g.Wait()
}

// classify selects source text, AST and deployed address by file shape.
func (l *Loader) classify(f File) ([]*pending, error) {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".sol":
		return []*pending{newPending(f.Name, f.Content, nil)}, nil
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(f.Name))
	}

	var a artifact
	if err := json.Unmarshal([]byte(f.Content), &a); err == nil && a.Source != nil {
		var ast []byte
		if len(a.AST) > 0 && string(a.AST) != "null" {
			ast = a.AST
		}
		p := newPending(f.Name, *a.Source, ast)
		p.input.DeployedContract = a.ContractName
		p.input.DeployedAt = l.deployedAddress(f.Name, a.Networks)
		return []*pending{p}, nil
	}

	if solc.IsJSONSource(f.Content) {
		sources, err := solc.ExpandStandardJSON(f.Content)
		if err != nil {
			return nil, err
		}
		out := make([]*pending, len(sources))
		for i, s := range sources {
			out[i] = newPending(s.Path, s.Content, nil)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unrecognized JSON: neither a build artifact nor a standard-JSON input")
}

func newPending(name, source string, ast []byte) *pending {
	return &pending{
		input:  builder.Input{FileName: name},
		source: source,
		ast:    ast,
		key:    crypto.Keccak256Hash([]byte(name), []byte{0}, []byte(source)).Hex(),
	}
}

// deployedAddress picks the configured network, or the lowest network id
// that has an address, and returns the checksummed address.
func (l *Loader) deployedAddress(file string, networks map[string]artifactNetwork) string {
	if len(networks) == 0 {
		return ""
	}
	addr := ""
	if n, ok := networks[l.opts.NetworkID]; ok && l.opts.NetworkID != "" {
		addr = n.Address
	} else {
		ids := make([]string, 0, len(networks))
		for id := range networks {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if len(ids[i]) != len(ids[j]) {
				return len(ids[i]) < len(ids[j])
			}
			return ids[i] < ids[j]
		})
		for _, id := range ids {
			if networks[id].Address != "" {
				addr = networks[id].Address
				break
			}
		}
	}
	if addr == "" {
		return ""
	}
	if !common.IsHexAddress(addr) {
		logger.Warn("ignoring invalid deployed address %q in %s", addr, file)
		return ""
	}
	return common.HexToAddress(addr).Hex()
}
