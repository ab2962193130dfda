// Package filter compiles expr expressions that narrow which torrents the
// relocation rules are applied to.
package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/starcalypse/torrentdeck/downloader"
)

// Filter is a compiled torrent scope expression
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*Filter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler compiles expressions into filters
type Compiler struct {
	helperFuncs map[string]any
	cache       *lruCache[*Filter]
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultCompiler = NewCompiler(WithCache(32))

// Compile compiles expression with the shared caching compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.compileEnvironment()),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// compileEnvironment describes the variable types for type checking
func (c *Compiler) compileEnvironment() map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+5)
	maps.Copy(env, c.helperFuncs)
	addTorrentFields(env, downloader.TorrentRecord{})
	return env
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against a torrent
func (f *Filter) Match(torrent downloader.TorrentRecord) (bool, error) {
	env := make(map[string]any, len(f.helpers)+5)
	maps.Copy(env, f.helpers)
	addTorrentFields(env, torrent)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression:  f.expression,
			TorrentName: torrent.Name,
			Err:         err,
		}
	}

	// AsBool at compile time guarantees the type
	return result.(bool), nil
}

// createHelperFunctions creates the static helper functions. expr already
// ships lower, upper, hasPrefix and hasSuffix as builtins.
func createHelperFunctions() map[string]any {
	return map[string]any{
		"like": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
	}
}

// addTorrentFields exposes torrent data and torrent bound helpers
func addTorrentFields(env map[string]any, torrent downloader.TorrentRecord) {
	urls := torrent.TrackerURLs()

	env["Hash"] = torrent.Hash
	env["Name"] = torrent.Name
	env["Trackers"] = urls
	env["TrackerCount"] = len(urls)
	env["hasTracker"] = func(substr string) bool {
		for _, u := range urls {
			if strings.Contains(u, substr) {
				return true
			}
		}
		return false
	}
}
