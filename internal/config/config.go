// Package config loads jsc project files: CUE documents with a top-level
// `project` field, checked against an embedded schema.
package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/jsc/internal/compiler"
)

//go:embed schema.cue
var schemaSource []byte

// FileName is the conventional project file.
const FileName = "jsc.cue"

// ConfigError is a project file problem, positioned when CUE knows where.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Resource is a named resource file. An empty Path marks a resource the
// runtime provides.
type Resource struct {
	Name string
	Path string
}

// Project is a loaded project with every path made absolute.
type Project struct {
	Dir       string
	Platform  string
	Sources   []string
	Resources []Resource
	Globals   []string
	Strings   []string
	Syscalls  []string
	Options   map[string]string
}

type rawProject struct {
	Platform  string             `json:"platform"`
	Sources   []string           `json:"sources"`
	Resources map[string]*string `json:"resources"`
	Globals   []string           `json:"globals"`
	Strings   []string           `json:"strings"`
	Syscalls  []string           `json:"syscalls"`
	Options   map[string]string  `json:"options"`
}

// Load reads the CUE package in dir and validates its `project` value.
func Load(dir string) (*Project, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &ConfigError{Field: "project", Message: fmt.Sprintf("project directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &ConfigError{Field: "project", Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: abs})
	if len(instances) == 0 {
		return nil, &ConfigError{Field: "project", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decode(ctx, abs, value.LookupPath(cue.ParsePath("project")))
}

// Parse validates a single project document held in memory. Relative paths
// resolve against dir.
func Parse(dir, filename string, src []byte) (*Project, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decode(ctx, dir, value.LookupPath(cue.ParsePath("project")))
}

func decode(ctx *cue.Context, dir string, project cue.Value) (*Project, error) {
	if !project.Exists() {
		return nil, &ConfigError{Field: "project", Message: "no project field defined"}
	}
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("embedded schema: %w", err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(project)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw rawProject
	if err := unified.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Project{
		Dir:      dir,
		Platform: raw.Platform,
		Globals:  raw.Globals,
		Strings:  raw.Strings,
		Syscalls: raw.Syscalls,
		Options:  raw.Options,
	}
	for _, src := range raw.Sources {
		p.Sources = append(p.Sources, resolve(dir, src))
	}
	for name, path := range raw.Resources {
		r := Resource{Name: name}
		if path != nil {
			r.Path = resolve(dir, *path)
		}
		p.Resources = append(p.Resources, r)
	}
	slices.SortFunc(p.Resources, func(a, b Resource) int {
		return strings.Compare(a.Name, b.Name)
	})
	return p, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// CompilerOptions converts the project into a driver option bag. Free-form
// options are applied first so the typed fields win.
func (p *Project) CompilerOptions() *compiler.Options {
	opts := compiler.NewOptions()
	for _, key := range slices.Sorted(maps.Keys(p.Options)) {
		opts.Set(key, p.Options[key])
	}
	if p.Platform != "" {
		opts.Set(compiler.OptPlatform, p.Platform)
	}
	if len(p.Globals) > 0 {
		opts.Push(compiler.OptGlobals, p.Globals...)
	}
	if len(p.Strings) > 0 {
		opts.Push(compiler.OptStrings, p.Strings...)
	}
	if len(p.Syscalls) > 0 {
		opts.Push(compiler.OptSyscalls, p.Syscalls...)
	}
	return opts
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	field := "project"
	if path := first.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	cerr := &ConfigError{Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cerr.Pos = positions[0]
	}
	return cerr
}
