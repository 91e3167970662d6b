package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/jsc/internal/store"
)

// NewBuildsCommand creates the builds command.
func NewBuildsCommand(rootOpts *RootOptions) *cobra.Command {
	var cache string

	cmd := &cobra.Command{
		Use:   "builds --cache <file>",
		Short: "List builds recorded in a cache",
		Long: `List the builds recorded in a build cache, oldest first, with their
fingerprint, target platform and artifact size.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilds(cmd.Context(), rootOpts, cache, cmd)
		},
	}

	cmd.Flags().StringVar(&cache, "cache", "", "build cache database file (required)")
	_ = cmd.MarkFlagRequired("cache")

	return cmd
}

func runBuilds(ctx context.Context, opts *RootOptions, cache string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Open would create a missing database.
	if _, err := os.Stat(cache); errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(withCode(ErrCodeNotFound, fmt.Errorf("cache not found: %s", cache)))
	}
	st, err := store.Open(cache)
	if err != nil {
		return formatter.Fail(withCode(ErrCodeCache, err))
	}
	defer st.Close()

	builds, err := st.Builds(ctx)
	if err != nil {
		return formatter.Fail(withCode(ErrCodeCache, err))
	}

	if opts.Format == "json" {
		return formatter.Success(builds)
	}
	if len(builds) == 0 {
		fmt.Fprintln(formatter.Writer, "No builds recorded")
		return nil
	}
	for _, b := range builds {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %-4s %-8s %8d  %s\n",
			b.Seq, b.ID, b.Format, b.Platform, b.Size, b.Fingerprint[:16])
	}
	return nil
}
