package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/jsc/internal/codegen"
	"github.com/roach88/jsc/internal/compiler"
	"github.com/roach88/jsc/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	SourceOptions
	Output string // output file path, stdout when empty
	Emit   string // writer format
	Cache  string // build cache database
}

// CompileResult summarizes a compilation.
type CompileResult struct {
	Format      string           `json:"format"`
	Platform    string           `json:"platform"`
	Inputs      []compiler.Input `json:"inputs"`
	Bytes       int              `json:"bytes"`
	Output      string           `json:"output,omitempty"`
	Artifact    string           `json:"artifact,omitempty"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	BuildID     string           `json:"build_id,omitempty"`
	Cached      bool             `json:"cached"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile sources to C++",
		Long: `Compile ESTree sources and resources into one C++ translation unit.

Inputs come from the project file (--project) followed by the listed files.
With --cache, builds are fingerprinted over options and input contents and
a repeated build returns the stored artifact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Emit, "emit", "cpp", fmt.Sprintf("output format %v", compiler.Formats()))
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "build cache database file")

	return cmd
}

// NewIRCommand creates the ir command, compile with --emit ir.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts, Emit: "ir"}

	cmd := &cobra.Command{
		Use:   "ir [files...]",
		Short: "Dump the lowered scope tree as canonical JSON",
		Long: `Lower the inputs and print the canonical JSON dump of the program's
scope tree instead of generating C++.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	if !slices.Contains(compiler.Formats(), opts.Emit) {
		return formatter.Fail(withCode(ErrCodeGeneric,
			fmt.Errorf("invalid --emit %q: must be one of %v", opts.Emit, compiler.Formats())))
	}

	sess, err := opts.open(args, logger)
	if err != nil {
		return formatter.Fail(err)
	}
	c := sess.compiler
	platform := c.Options().Platform()
	if platform == "" || !codegen.HasPlatform(platform) {
		platform = codegen.DefaultPlatform
	}

	result := &CompileResult{
		Format:   opts.Emit,
		Platform: platform,
		Inputs:   c.Inputs(),
		Output:   opts.Output,
	}

	artifact, err := build(ctx, opts, sess, result, logger)
	if err != nil {
		return formatter.Fail(err)
	}
	result.Bytes = len(artifact)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, artifact, 0644); err != nil {
			return formatter.Fail(withCode(ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err)))
		}
	}
	formatter.VerboseLog("Compiled %d input(s) for %s", len(result.Inputs), result.Platform)

	if opts.Format == "json" {
		if opts.Output == "" {
			result.Artifact = string(artifact)
		}
		return formatter.Success(result)
	}
	if opts.Output == "" {
		_, err := formatter.Writer.Write(artifact)
		return err
	}
	fmt.Fprintf(formatter.Writer, "Compiled %d input(s) to %s (%d bytes)\n",
		len(result.Inputs), opts.Output, result.Bytes)
	if result.BuildID != "" {
		state := "recorded"
		if result.Cached {
			state = "cached"
		}
		fmt.Fprintf(formatter.Writer, "Build %s %s\n", result.BuildID, state)
	}
	return nil
}

// build runs the writer, going through the cache when one is configured.
func build(ctx context.Context, opts *CompileOptions, sess *session, result *CompileResult, logger *slog.Logger) ([]byte, error) {
	c := sess.compiler
	if opts.Cache == "" {
		return write(c, opts.Emit)
	}

	st, err := store.Open(opts.Cache)
	if err != nil {
		return nil, withCode(ErrCodeCache, err)
	}
	defer st.Close()

	key := store.Key{Format: opts.Emit, Options: sess.options}
	for _, in := range c.Inputs() {
		key.Inputs = append(key.Inputs, store.Input{Name: in.Name, Hash: in.Hash})
	}
	fp, err := key.Fingerprint()
	if err != nil {
		return nil, withCode(ErrCodeCache, err)
	}
	result.Fingerprint = fp

	b, err := st.Lookup(ctx, fp)
	switch {
	case err == nil:
		artifact, err := st.Artifact(ctx, b.ArtifactHash)
		if err != nil {
			return nil, withCode(ErrCodeCache, err)
		}
		logger.Info("cache hit", "fingerprint", fp, "build", b.ID)
		result.BuildID = b.ID
		result.Cached = true
		return artifact, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, withCode(ErrCodeCache, err)
	}

	logger.Info("cache miss", "fingerprint", fp)
	artifact, err := write(c, opts.Emit)
	if err != nil {
		return nil, err
	}
	b, _, err = st.Record(ctx, key, result.Platform, artifact)
	if err != nil {
		return nil, withCode(ErrCodeCache, err)
	}
	result.BuildID = b.ID
	return artifact, nil
}

func write(c *compiler.Compiler, format string) ([]byte, error) {
	out, err := c.Write(format)
	if err != nil {
		if isDiagnostic(err) {
			return nil, err
		}
		return nil, withCode(ErrCodeBuildFailed, err)
	}
	return out, nil
}
