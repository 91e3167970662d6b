package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/jsc/internal/ir"
)

// Input is one consumed source file.
type Input struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Key is everything that determines a build's output.
type Key struct {
	Format  string
	Options map[string]any
	Inputs  []Input
}

func (k Key) canonical() map[string]any {
	inputs := make([]any, len(k.Inputs))
	for i, in := range k.Inputs {
		inputs[i] = map[string]any{"name": in.Name, "hash": in.Hash}
	}
	options := k.Options
	if options == nil {
		options = map[string]any{}
	}
	return map[string]any{
		"format":           k.Format,
		"options":          options,
		"inputs":           inputs,
		"compiler_version": ir.CompilerVersion,
		"ir_version":       ir.IRVersion,
	}
}

// Fingerprint is the cache key of k.
func (k Key) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainBuild, k.canonical())
}

// Record stores artifact as the output of key. When a build with the same
// fingerprint already exists it is returned unchanged, and created is false.
func (s *Store) Record(ctx context.Context, key Key, platform string, artifact []byte) (b *Build, created bool, err error) {
	fp, err := key.Fingerprint()
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	canonical := key.canonical()
	options, err := ir.MarshalCanonical(canonical["options"])
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	inputs, err := ir.MarshalCanonical(canonical["inputs"])
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	if artifact == nil {
		artifact = []byte{}
	}
	hash := ir.HashBytes(ir.DomainArtifact, artifact)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts (hash, size, content)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, len(artifact), artifact); err != nil {
		return nil, false, fmt.Errorf("record artifact: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return nil, false, fmt.Errorf("next build seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, seq, fingerprint, format, platform, options, inputs, artifact_hash, compiler_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		s.ids.Generate(),
		seq,
		fp,
		key.Format,
		platform,
		string(options),
		string(inputs),
		hash,
		ir.CompilerVersion,
		ir.IRVersion,
	)
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("record build: %w", err)
	}

	b, err = s.Lookup(ctx, fp)
	if err != nil {
		return nil, false, err
	}
	return b, n == 1, nil
}

// ErrNotFound reports a missing build or artifact.
var ErrNotFound = errors.New("not found")

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
