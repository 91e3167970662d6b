package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Build is one recorded compilation.
type Build struct {
	ID              string  `json:"id"`
	Seq             int64   `json:"seq"`
	Fingerprint     string  `json:"fingerprint"`
	Format          string  `json:"format"`
	Platform        string  `json:"platform"`
	Inputs          []Input `json:"inputs"`
	ArtifactHash    string  `json:"artifact_hash"`
	Size            int64   `json:"size"`
	CompilerVersion string  `json:"compiler_version"`
	IRVersion       string  `json:"ir_version"`
}

const buildColumns = `
	b.id, b.seq, b.fingerprint, b.format, b.platform, b.inputs,
	b.artifact_hash, a.size, b.compiler_version, b.ir_version
`

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (*Build, error) {
	var b Build
	var inputs string
	if err := row.Scan(&b.ID, &b.Seq, &b.Fingerprint, &b.Format, &b.Platform, &inputs,
		&b.ArtifactHash, &b.Size, &b.CompilerVersion, &b.IRVersion); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inputs), &b.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs of build %s: %w", b.ID, err)
	}
	return &b, nil
}

// Lookup returns the build with the given fingerprint.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds b JOIN artifacts a ON a.hash = b.artifact_hash
		WHERE b.fingerprint = ?
	`, fingerprint)
	b, err := scanBuild(row)
	if err != nil {
		return nil, notFound(err, "lookup build "+fingerprint)
	}
	return b, nil
}

// Builds lists every build in recording order.
//
// Returns an empty slice (not nil) when the cache is empty.
func (s *Store) Builds(ctx context.Context) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds b JOIN artifacts a ON a.hash = b.artifact_hash
		ORDER BY b.seq ASC, b.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// Artifact returns the stored content with the given hash.
func (s *Store) Artifact(ctx context.Context, hash string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, `SELECT content FROM artifacts WHERE hash = ?`, hash).Scan(&content)
	if err != nil {
		return nil, notFound(err, "artifact "+hash)
	}
	return content, nil
}
