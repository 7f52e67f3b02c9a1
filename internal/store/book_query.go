package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

// ListBooks returns one page of the catalog. Multi-valued filters go through
// EXISTS subqueries so a book matching several genres or authors is listed
// once. A page past the end is empty, not an error.
func (s *Store) ListBooks(ctx context.Context, find *model.FindBook) (*model.BookPage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "b.id = ?"), append(args, *v)
	}
	if v := strings.TrimSpace(find.Title); v != "" {
		where, args = append(where, "instr(casefold(b.title), casefold(?)) > 0"), append(args, v)
	}
	if v := find.GenreID; v != 0 {
		where, args = append(where, "EXISTS (SELECT 1 FROM book_genre bg WHERE bg.book_id = b.id AND bg.genre_id = ?)"), append(args, v)
	}
	if v := find.PublisherID; v != 0 {
		where, args = append(where, "b.publisher_id = ?"), append(args, v)
	}
	if v := find.SeriesID; v != 0 {
		where, args = append(where, "b.series_id = ?"), append(args, v)
	}
	if v := strings.TrimSpace(find.Author); v != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM book_author ba JOIN author a ON a.id = ba.author_id
			WHERE ba.book_id = b.id
			AND (instr(casefold(a.last_name), casefold(?)) > 0 OR instr(casefold(COALESCE(a.first_name, '')), casefold(?)) > 0))`)
		args = append(args, v, v)
	}
	if v := strings.TrimSpace(find.Zone); v != "" {
		where, args = append(where, "instr(casefold(COALESCE(l.zone, '')), casefold(?)) > 0"), append(args, v)
	}
	if v := find.Column; v != nil {
		where, args = append(where, "l.col = ?"), append(args, *v)
	}
	if v := strings.TrimSpace(find.Floor); v != "" {
		where, args = append(where, "l.floor = ?"), append(args, v)
	}

	// location is one row per book at most, so the join cannot fan out.
	from := " FROM book b LEFT JOIN location l ON l.id = b.location_id WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.queryRow(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "failed to count books")
	}

	page := find.Page
	if page < 1 {
		page = 1
	}
	result := &model.BookPage{
		Books:    []*model.Book{},
		Total:    total,
		Page:     page,
		Pages:    (total + model.BookPageSize - 1) / model.BookPageSize,
		PageSize: model.BookPageSize,
	}

	query := "SELECT " + bookColumns + from + " ORDER BY " + bookOrderBy(find.Sort) + " LIMIT ? OFFSET ?"
	args = append(args, model.BookPageSize, (page-1)*model.BookPageSize)
	books, err := s.listBooks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, books); err != nil {
		return nil, err
	}
	result.Books = books
	return result, nil
}

func bookOrderBy(sort model.BookSort) string {
	switch sort {
	case model.SortTitleAsc:
		return "casefold(b.title) ASC, b.id ASC"
	case model.SortTitleDesc:
		return "casefold(b.title) DESC, b.id DESC"
	case model.SortCreatedAsc:
		return "b.created_ts ASC, b.id ASC"
	default:
		return "b.created_ts DESC, b.id DESC"
	}
}

// ListAllBooks returns every book with its relations, by id.
func (s *Store) ListAllBooks(ctx context.Context) ([]*model.Book, error) {
	books, err := s.listBooks(ctx, "SELECT "+bookColumns+" FROM book b ORDER BY b.id")
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// FindPotentialDuplicates returns up to DuplicateLimit books whose title
// contains title, ignoring case. An empty title matches nothing. excludeID
// leaves one book out, typically the one being renamed.
func (s *Store) FindPotentialDuplicates(ctx context.Context, title string, excludeID int32) ([]*model.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return []*model.Book{}, nil
	}
	query := "SELECT " + bookColumns + `
		FROM book b
		WHERE instr(casefold(b.title), casefold(?)) > 0 AND b.id != ?
		ORDER BY casefold(b.title), b.id
		LIMIT ?`
	return s.listBooks(ctx, query, title, excludeID, DuplicateLimit)
}

func (s *Store) listBooks(ctx context.Context, query string, args ...any) ([]*model.Book, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
