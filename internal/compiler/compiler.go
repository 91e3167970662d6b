// Package compiler drives a compilation: it owns the Program, feeds inputs
// through the transformer for their file type, interprets in-source
// directives and renders the result with a writer.
package compiler

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/jsc/internal/codegen"
	"github.com/roach88/jsc/internal/ir"
)

// Reader loads the content of an included path.
type Reader func(path string) ([]byte, error)

// StdCalls are the runtime functions every program can call.
var StdCalls = []string{
	"debug", "Array",
	"rand",
	"abs", "floor", "round", "ceil", "sqrt",
	"cos", "sin", "atan2", "tan",
	"min", "max",
	"vectorLength", "angleDifference",
}

// Input records one consumed file for build fingerprints.
type Input struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Compiler accumulates inputs into one Program.
type Compiler struct {
	program *ir.Program
	opts    *Options
	reader  Reader
	logger  *slog.Logger

	inputs   []Input
	included map[string]bool
	symbols  map[string]string
	pending  []string
	busy     bool
}

// New creates a compiler with the standard calls and every configured
// syscall registered. A nil reader rejects includes; a nil logger uses
// slog.Default().
func New(opts *Options, reader Reader, logger *slog.Logger) *Compiler {
	if opts == nil {
		opts = NewOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Compiler{
		program:  ir.NewProgram(),
		opts:     opts,
		reader:   reader,
		logger:   logger,
		included: make(map[string]bool),
		symbols:  make(map[string]string),
	}
	c.AddSysCall(StdCalls...)
	c.AddSysCall(opts.Syscalls()...)
	return c
}

// Program returns the program being built.
func (c *Compiler) Program() *ir.Program { return c.program }

// Options returns the live option bag, including directive changes.
func (c *Compiler) Options() *Options { return c.opts }

// Inputs lists every consumed file in order.
func (c *Compiler) Inputs() []Input { return c.inputs }

// Add transforms one input chosen by its extension, then processes any
// includes it queued.
func (c *Compiler) Add(name string, data []byte) error {
	c.included[name] = true
	if err := c.transform(name, data); err != nil {
		return err
	}
	return c.Process()
}

func (c *Compiler) transform(name string, data []byte) error {
	ext := strings.ToLower(path.Ext(name))
	t, ok := transformers[ext]
	if !ok {
		return fmt.Errorf("%s: no transformer for %q files", name, ext)
	}
	c.inputs = append(c.inputs, Input{
		Name: norm.NFC.String(name),
		Hash: ir.HashBytes(ir.DomainSource, data),
	})
	c.logger.Debug("adding input", "file", name, "type", ext, "bytes", len(data))
	return t(c, name, data)
}

// AddResource adds a resource file under an explicit name instead of the
// one derived from its path.
func (c *Compiler) AddResource(name, file string, data []byte) error {
	c.symbols[file] = name
	return c.Add(file, data)
}

// Include queues paths that have not been seen yet.
func (c *Compiler) Include(paths ...string) {
	for _, p := range paths {
		if c.included[p] {
			continue
		}
		c.included[p] = true
		c.pending = append(c.pending, p)
	}
}

// Process reads and adds queued includes until none remain.
func (c *Compiler) Process() error {
	if c.busy {
		return nil
	}
	c.busy = true
	defer func() { c.busy = false }()

	for len(c.pending) > 0 {
		p := c.pending[0]
		c.pending = c.pending[1:]
		if c.reader == nil {
			return fmt.Errorf("include %s: no reader configured", p)
		}
		data, err := c.reader(p)
		if err != nil {
			return fmt.Errorf("include %s: %w", p, err)
		}
		c.logger.Info("resolved include", "path", p)
		if err := c.transform(p, data); err != nil {
			return err
		}
	}
	return nil
}

// AddSysCall registers native methods on main. Names already bound there
// are left alone.
func (c *Compiler) AddSysCall(names ...string) {
	main := c.program.MainMethod()
	for _, name := range names {
		if main.Find(ir.ByName(name), false) != nil {
			continue
		}
		m := c.program.NewMethod(name)
		m.IsNative = true
		main.Add(m)
	}
}

// RegisterBuiltinResource declares resources the runtime provides.
func (c *Compiler) RegisterBuiltinResource(names ...string) {
	for _, name := range names {
		c.program.SetResource(&ir.Resource{Name: name, Builtin: true})
	}
}

// Formats lists the writer names.
func Formats() []string { return []string{"cpp", "ir"} }

// Write renders the program. "cpp" runs the generator, which can only
// happen once per compiler; "ir" dumps the scope tree.
func (c *Compiler) Write(format string) ([]byte, error) {
	switch format {
	case "cpp":
		platform := c.opts.Platform()
		if platform != "" && !codegen.HasPlatform(platform) {
			c.logger.Warn("unknown platform, using default", "platform", platform, "default", codegen.DefaultPlatform)
		}
		out, err := codegen.Generate(c.program, codegen.Options{
			Platform: platform,
			Globals:  c.opts.Globals(),
			Strings:  c.opts.Strings(),
		})
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case "ir":
		return ir.MarshalDump(c.program)
	}
	return nil, fmt.Errorf("no writer for format %q", format)
}
