package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/jsc/internal/compiler"
	"github.com/roach88/jsc/internal/config"
)

// SourceOptions selects the inputs of a compilation and overrides project
// options.
type SourceOptions struct {
	Project  string
	Platform string
	Globals  []string
	Strings  []string
	Syscalls []string
}

func (s *SourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.Project, "project", "p", "", "project directory containing "+config.FileName)
	cmd.Flags().StringVar(&s.Platform, "platform", "", "target platform template")
	cmd.Flags().StringArrayVar(&s.Globals, "global", nil, "global symbol to bind (repeatable)")
	cmd.Flags().StringArrayVar(&s.Strings, "string", nil, "string to intern up front (repeatable)")
	cmd.Flags().StringArrayVar(&s.Syscalls, "syscall", nil, "native call provided by the runtime (repeatable)")
}

// session is a compiler holding every selected input.
type session struct {
	compiler *compiler.Compiler
	// options is the bag as configured, before any directive ran.
	options map[string]any
}

// open builds the option bag (project, then flags), creates the compiler
// and adds resources followed by sources. Paths given as arguments are
// relative to the working directory; includes resolve against the project
// directory when there is one.
func (s *SourceOptions) open(args []string, logger *slog.Logger) (*session, error) {
	opts := compiler.NewOptions()
	base := "."
	var sources []string
	var resources []config.Resource

	if s.Project != "" {
		project, err := config.Load(s.Project)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded project", "dir", project.Dir, "sources", len(project.Sources))
		opts = project.CompilerOptions()
		base = project.Dir
		sources = project.Sources
		resources = project.Resources
	}
	sources = append(sources, args...)
	if len(sources) == 0 {
		return nil, withCode(ErrCodeNoInputs, errors.New("no input files: pass files or --project"))
	}

	if s.Platform != "" {
		opts.Set(compiler.OptPlatform, s.Platform)
	}
	opts.Push(compiler.OptGlobals, s.Globals...)
	opts.Push(compiler.OptStrings, s.Strings...)
	opts.Push(compiler.OptSyscalls, s.Syscalls...)

	sess := &session{options: opts.Canonical()}
	sess.compiler = compiler.New(opts, includeReader(base), logger)
	c := sess.compiler

	for _, r := range resources {
		if r.Path == "" {
			c.RegisterBuiltinResource(r.Name)
			continue
		}
		data, err := readInput(r.Path)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(r.Name, inputName(base, r.Path), data); err != nil {
			return nil, err
		}
	}
	for _, path := range sources {
		data, err := readInput(path)
		if err != nil {
			return nil, err
		}
		if err := c.Add(inputName(base, path), data); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func includeReader(base string) compiler.Reader {
	return func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, filepath.FromSlash(path))
		}
		return os.ReadFile(path)
	}
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, withCode(ErrCodeNotFound, fmt.Errorf("input not found: %s", path))
	}
	if err != nil {
		return nil, withCode(ErrCodeReadFailed, err)
	}
	return data, nil
}

// inputName is the name a file is compiled under: relative to base when it
// lives below it, so fingerprints do not depend on where a project sits.
func inputName(base, path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(base, path); err == nil && filepath.IsLocal(rel) {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
