package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

// Publishers, languages, genres and series share one shape: a table named
// after the kind with an id and a name.

func referenceTable(kind model.ReferenceKind) (string, error) {
	if !kind.Valid() {
		return "", errors.Errorf("unknown reference kind %q", kind)
	}
	return string(kind), nil
}

func (s *Store) ListReferences(ctx context.Context, kind model.ReferenceKind) ([]*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, "SELECT id, name FROM "+table+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Reference, 0)
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		list = append(list, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetReference(ctx context.Context, kind model.ReferenceKind, id int32) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	var ref model.Reference
	if err := s.queryRow(ctx, "SELECT id, name FROM "+table+" WHERE id = ?", id).Scan(&ref.ID, &ref.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

// FindReferenceByName returns the oldest row with exactly this name.
func (s *Store) FindReferenceByName(ctx context.Context, kind model.ReferenceKind, name string) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	var ref model.Reference
	if err := s.queryRow(ctx, "SELECT id, name FROM "+table+" WHERE name = ? ORDER BY id LIMIT 1", name).Scan(&ref.ID, &ref.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

func (s *Store) CreateReference(ctx context.Context, kind model.ReferenceKind, name string) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.Errorf("%s name is required", kind)
	}

	var ref model.Reference
	if err := s.queryRow(ctx, "INSERT INTO "+table+" (name) VALUES (?) RETURNING id, name", name).Scan(&ref.ID, &ref.Name); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", kind)
	}
	return &ref, nil
}

// GetOrCreateReference looks the name up exactly and inserts it on a miss.
func (s *Store) GetOrCreateReference(ctx context.Context, kind model.ReferenceKind, name string) (*model.Reference, error) {
	ref, err := s.FindReferenceByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		return ref, nil
	}
	return s.CreateReference(ctx, kind, name)
}

// DeleteReference removes the row. Books pointing to it lose the reference,
// genre links are dropped.
func (s *Store) DeleteReference(ctx context.Context, kind model.ReferenceKind, id int32) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	if _, err := s.exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "failed to delete %s", kind)
	}
	return nil
}

func (s *Store) CountReferences(ctx context.Context, kind model.ReferenceKind) (int, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
