package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

type FindAuthor struct {
	ID        *int32
	LastName  *string
	FirstName *string
}

func (s *Store) ListAuthors(ctx context.Context, find *FindAuthor) ([]*model.Author, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.LastName; v != nil {
		where, args = append(where, "last_name = ?"), append(args, *v)
	}
	// An empty first name is stored as NULL, and IS matches NULL too.
	if v := find.FirstName; v != nil {
		where, args = append(where, "first_name IS ?"), append(args, nullString(*v))
	}

	query := `
		SELECT id, last_name, first_name, alias
		FROM author
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_name, first_name, id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Author, 0)
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, author)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetAuthor(ctx context.Context, find *FindAuthor) (*model.Author, error) {
	list, err := s.ListAuthors(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) CreateAuthor(ctx context.Context, create *model.Author) (*model.Author, error) {
	if create.LastName == "" {
		return nil, errors.New("author last name is required")
	}
	stmt := `
		INSERT INTO author (
			last_name, first_name, alias
		) VALUES (?, ?, ?)
		RETURNING id, last_name, first_name, alias`
	author, err := scanAuthor(s.queryRow(ctx, stmt, create.LastName, nullString(create.FirstName), nullString(create.Alias)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create author")
	}
	return author, nil
}

// GetOrCreateAuthor matches on the exact (last name, first name) pair and
// picks the oldest author when several match.
func (s *Store) GetOrCreateAuthor(ctx context.Context, lastName, firstName string) (*model.Author, error) {
	stmt := `
		SELECT id, last_name, first_name, alias
		FROM author
		WHERE last_name = ? AND first_name IS ?
		ORDER BY id LIMIT 1`
	found, err := scanAuthor(s.queryRow(ctx, stmt, lastName, nullString(firstName)))
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.CreateAuthor(ctx, &model.Author{LastName: lastName, FirstName: firstName})
}

func (s *Store) DeleteAuthor(ctx context.Context, id int32) error {
	if _, err := s.exec(ctx, "DELETE FROM author WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete author")
	}
	return nil
}

func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, "SELECT COUNT(*) FROM author").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row rowScanner) (*model.Author, error) {
	var author model.Author
	var firstName, alias sql.NullString
	if err := row.Scan(&author.ID, &author.LastName, &firstName, &alias); err != nil {
		return nil, err
	}
	author.FirstName = firstName.String
	author.Alias = alias.String
	return &author, nil
}
