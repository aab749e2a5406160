// Package snapshot persists a term store to a SQLite file and restores it
// with identical ids, variables, cached types and scopes.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/termcore/internal/config"
	"github.com/funvibe/termcore/internal/store"
	"github.com/funvibe/termcore/internal/term"
)

var ErrFormatVersion = errors.New("unsupported snapshot format version")

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS variables (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	type INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS terms (
	id INTEGER PRIMARY KEY,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL,
	cached_type INTEGER NOT NULL,
	scope INTEGER NOT NULL
);
`

const (
	metaVersion   = "format_version"
	metaStoreID   = "store_id"
	metaLen       = "term_count"
	metaUniqueSeq = "unique_seq"
)

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	return db, nil
}

// Save writes s to path, replacing any snapshot already there.
func Save(ctx context.Context, path string, s *store.Store) (err error) {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"meta", "variables", "terms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	meta := map[string]string{
		metaVersion:   strconv.Itoa(config.SnapshotFormatVersion),
		metaStoreID:   s.ID().String(),
		metaLen:       strconv.Itoa(s.Len()),
		metaUniqueSeq: strconv.FormatUint(s.UniqueSeq(), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	for _, v := range s.Variables() {
		if _, err := tx.ExecContext(ctx, "INSERT INTO variables (id, name, type) VALUES (?, ?, ?)",
			uint32(v.ID), v.Name, uint32(v.Type)); err != nil {
			return fmt.Errorf("writing variable %s: %w", v.ID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO terms (id, kind, payload, cached_type, scope) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	s.Each(func(id term.ID, t term.Term) bool {
		var payload []byte
		if payload, err = encode(t); err != nil {
			err = fmt.Errorf("encoding %s: %w", id, err)
			return false
		}
		typ, _ := s.CachedType(id)
		if _, err = stmt.ExecContext(ctx, uint32(id), t.Kind().String(), string(payload),
			uint32(typ), uint32(s.Scope(id))); err != nil {
			err = fmt.Errorf("writing term %s: %w", id, err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

type termRow struct {
	id         term.ID
	kind       string
	payload    string
	cachedType term.ID
	scope      term.ID
}

// Load restores a store written by Save.
func Load(ctx context.Context, path string) (*store.Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}
	if meta[metaVersion] != strconv.Itoa(config.SnapshotFormatVersion) {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrFormatVersion, meta[metaVersion])
	}
	storeID, err := uuid.Parse(meta[metaStoreID])
	if err != nil {
		return nil, fmt.Errorf("%s: store id: %w", path, err)
	}
	count, err := strconv.Atoi(meta[metaLen])
	if err != nil {
		return nil, fmt.Errorf("%s: term count: %w", path, err)
	}
	seq, err := strconv.ParseUint(meta[metaUniqueSeq], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: unique sequence: %w", path, err)
	}

	s := store.New(store.WithID(storeID))
	s.RestoreUniqueSeq(seq)
	if err := readVariables(ctx, db, s); err != nil {
		return nil, err
	}

	// Every id is reserved up front so payloads may reference later ids.
	for s.Len() < count {
		s.Reserve()
	}
	rows, err := readTerms(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		kind, ok := term.KindByName(row.kind)
		if !ok {
			return nil, fmt.Errorf("term %s: unknown kind %q", row.id, row.kind)
		}
		t, err := decode(kind, []byte(row.payload))
		if err != nil {
			return nil, fmt.Errorf("term %s: %w", row.id, err)
		}
		if err := s.Fill(row.id, t); err != nil {
			return nil, err
		}
	}
	for _, row := range rows {
		if row.cachedType != term.NoID {
			if err := s.SetCachedType(row.id, row.cachedType); err != nil {
				return nil, err
			}
		}
		if row.scope != term.NoID {
			if err := s.SetScope(row.id, row.scope); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func readVariables(ctx context.Context, db *sql.DB, s *store.Store) error {
	rows, err := db.QueryContext(ctx, "SELECT id, name, type FROM variables ORDER BY id")
	if err != nil {
		return fmt.Errorf("reading variables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, typ uint32
			name    string
		)
		if err := rows.Scan(&id, &name, &typ); err != nil {
			return err
		}
		if got := s.NewVariable(name, term.ID(typ)); got != term.VarID(id) {
			return fmt.Errorf("variable ids are not contiguous: want %d, got %s", id, got)
		}
	}
	return rows.Err()
}

func readTerms(ctx context.Context, db *sql.DB) ([]termRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, kind, payload, cached_type, scope FROM terms ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("reading terms: %w", err)
	}
	defer rows.Close()

	var out []termRow
	for rows.Next() {
		var (
			r                     termRow
			id, cachedType, scope uint32
		)
		if err := rows.Scan(&id, &r.kind, &r.payload, &cachedType, &scope); err != nil {
			return nil, err
		}
		r.id, r.cachedType, r.scope = term.ID(id), term.ID(cachedType), term.ID(scope)
		out = append(out, r)
	}
	return out, rows.Err()
}
