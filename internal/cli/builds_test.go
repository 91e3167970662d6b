package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsc/internal/store"
)

func TestBuildsListsRecordedBuilds(t *testing.T) {
	dir := writeProject(t)
	cache := filepath.Join(t.TempDir(), "builds.db")

	_, _, err := execute(t, "compile", "--project", dir, "--cache", cache, "-o", filepath.Join(t.TempDir(), "a.cpp"))
	require.NoError(t, err)
	_, _, err = execute(t, "ir", "--project", dir, "--cache", cache)
	require.Error(t, err, "ir has no --cache flag")
	_, _, err = execute(t, "compile", "--emit", "ir", "--project", dir, "--cache", cache)
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "builds", "--cache", cache)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []store.Build `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "cpp", resp.Data[0].Format)
	assert.Equal(t, "ir", resp.Data[1].Format)
	assert.Less(t, resp.Data[0].Seq, resp.Data[1].Seq)
	assert.Equal(t, "std", resp.Data[0].Platform)

	text, _, err := execute(t, "builds", "--cache", cache)
	require.NoError(t, err)
	assert.Contains(t, text, resp.Data[0].ID)
	assert.Contains(t, text, resp.Data[1].Fingerprint[:16])
}

func TestBuildsEmptyCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "builds.db")
	st, err := store.Open(cache)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "builds", "--cache", cache)
	require.NoError(t, err)
	assert.Contains(t, out, "No builds recorded")
}

func TestBuildsMissingCache(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "builds", "--cache", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}
