package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

const workColumns = "id, title, summary, notes"

func (s *Store) ListWorks(ctx context.Context) ([]*model.Work, error) {
	rows, err := s.query(ctx, "SELECT "+workColumns+" FROM work ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Work, 0)
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, work)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetWork(ctx context.Context, id int32) (*model.Work, error) {
	work, err := scanWork(s.queryRow(ctx, "SELECT "+workColumns+" FROM work WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return work, nil
}

func (s *Store) CreateWork(ctx context.Context, create *model.Work) (*model.Work, error) {
	if create.Title == "" {
		return nil, errors.New("work title is required")
	}
	stmt := `
		INSERT INTO work (
			title, summary, notes
		) VALUES (?, ?, ?)
		RETURNING ` + workColumns
	work, err := scanWork(s.queryRow(ctx, stmt, create.Title, nullString(create.Summary), nullString(create.Notes)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create work")
	}
	return work, nil
}

// GetOrCreateWork matches the exact title.
func (s *Store) GetOrCreateWork(ctx context.Context, title string) (*model.Work, error) {
	work, err := scanWork(s.queryRow(ctx, "SELECT "+workColumns+" FROM work WHERE title = ? ORDER BY id LIMIT 1", title))
	if err == nil {
		return work, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.CreateWork(ctx, &model.Work{Title: title})
}

// DeleteWork also drops the work from every book that binds it.
func (s *Store) DeleteWork(ctx context.Context, id int32) error {
	if _, err := s.exec(ctx, "DELETE FROM work WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete work")
	}
	return nil
}

func (s *Store) CountWorks(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, "SELECT COUNT(*) FROM work").Scan(&count)
	return count, err
}

func scanWork(row rowScanner) (*model.Work, error) {
	var work model.Work
	var summary, notes sql.NullString
	if err := row.Scan(&work.ID, &work.Title, &summary, &notes); err != nil {
		return nil, err
	}
	work.Summary = summary.String
	work.Notes = notes.String
	return &work, nil
}
