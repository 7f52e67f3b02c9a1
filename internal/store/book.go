package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

const bookColumns = `
	b.id, b.title, b.publisher_id, b.language_id, b.series_id, b.series_number,
	b.location_id, b.cover, b.created_ts, b.updated_ts`

// RETURNING only accepts bare column names.
var bookReturning = strings.ReplaceAll(bookColumns, "b.", "")

// DuplicateLimit caps the books returned by FindPotentialDuplicates.
const DuplicateLimit = 10

func (s *Store) CreateBook(ctx context.Context, create *model.Book) (*model.Book, error) {
	if strings.TrimSpace(create.Title) == "" {
		return nil, errors.New("book title is required")
	}
	stmt := `
		INSERT INTO book (
			title, publisher_id, language_id, series_id, series_number, location_id, cover
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + bookReturning
	book, err := scanBook(s.queryRow(ctx, stmt,
		create.Title,
		nullInt32(create.PublisherID),
		nullInt32(create.LanguageID),
		nullInt32(create.SeriesID),
		nullInt32(create.SeriesNumber),
		nullInt32(create.LocationID),
		nullString(create.Cover),
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create book")
	}
	return book, nil
}

// UpdateBook overwrites every scalar field. Zero values clear the column.
func (s *Store) UpdateBook(ctx context.Context, update *model.Book) error {
	if strings.TrimSpace(update.Title) == "" {
		return errors.New("book title is required")
	}
	stmt := `
		UPDATE book SET
			title = ?,
			publisher_id = ?,
			language_id = ?,
			series_id = ?,
			series_number = ?,
			location_id = ?,
			cover = ?,
			updated_ts = strftime('%s', 'now')
		WHERE id = ?`
	if _, err := s.exec(ctx, stmt,
		update.Title,
		nullInt32(update.PublisherID),
		nullInt32(update.LanguageID),
		nullInt32(update.SeriesID),
		nullInt32(update.SeriesNumber),
		nullInt32(update.LocationID),
		nullString(update.Cover),
		update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update book")
	}
	return nil
}

// GetBook returns the book with all its relations, or nil.
func (s *Store) GetBook(ctx context.Context, id int32) (*model.Book, error) {
	book, err := scanBook(s.queryRow(ctx, "SELECT "+bookColumns+" FROM book b WHERE b.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadRelations(ctx, []*model.Book{book}); err != nil {
		return nil, err
	}
	return book, nil
}

// FindBookByTitle returns the oldest book with exactly this title, without
// relations.
func (s *Store) FindBookByTitle(ctx context.Context, title string) (*model.Book, error) {
	book, err := scanBook(s.queryRow(ctx, "SELECT "+bookColumns+" FROM book b WHERE b.title = ? ORDER BY b.id LIMIT 1", title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

// DeleteBook removes the book. Author, genre and work links cascade.
func (s *Store) DeleteBook(ctx context.Context, id int32) error {
	if _, err := s.exec(ctx, "DELETE FROM book WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete book")
	}
	return nil
}

func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, "SELECT COUNT(*) FROM book").Scan(&count)
	return count, err
}

// ReplaceBookAuthors drops the existing author links and writes the given
// ones in order. The same author may appear more than once.
func (s *Store) ReplaceBookAuthors(ctx context.Context, bookID int32, links []model.BookAuthorInput) error {
	if _, err := s.exec(ctx, "DELETE FROM book_author WHERE book_id = ?", bookID); err != nil {
		return errors.Wrap(err, "failed to clear book authors")
	}
	for i, link := range links {
		if link.AuthorID == 0 {
			continue
		}
		if _, err := s.exec(ctx,
			"INSERT INTO book_author (book_id, author_id, role, position) VALUES (?, ?, ?, ?)",
			bookID, link.AuthorID, nullString(link.Role), i,
		); err != nil {
			return errors.Wrapf(err, "failed to link author %d", link.AuthorID)
		}
	}
	return nil
}

// ReplaceBookGenres sets the genre set of a book. Repeated ids are ignored.
func (s *Store) ReplaceBookGenres(ctx context.Context, bookID int32, genreIDs []int32) error {
	if _, err := s.exec(ctx, "DELETE FROM book_genre WHERE book_id = ?", bookID); err != nil {
		return errors.Wrap(err, "failed to clear book genres")
	}
	for _, genreID := range genreIDs {
		if genreID == 0 {
			continue
		}
		if _, err := s.exec(ctx, "INSERT OR IGNORE INTO book_genre (book_id, genre_id) VALUES (?, ?)", bookID, genreID); err != nil {
			return errors.Wrapf(err, "failed to link genre %d", genreID)
		}
	}
	return nil
}

// ReplaceBookWorks drops the existing work links and writes the given ones.
// A link naming a title instead of an id gets or creates the work first.
// Listing the same work twice is an error.
func (s *Store) ReplaceBookWorks(ctx context.Context, bookID int32, links []model.BookWorkInput) error {
	if _, err := s.exec(ctx, "DELETE FROM book_work WHERE book_id = ?", bookID); err != nil {
		return errors.Wrap(err, "failed to clear book works")
	}
	for _, link := range links {
		workID := link.WorkID
		if workID == 0 {
			title := strings.TrimSpace(link.Title)
			if title == "" {
				continue
			}
			work, err := s.GetOrCreateWork(ctx, title)
			if err != nil {
				return err
			}
			workID = work.ID
		}
		if _, err := s.exec(ctx,
			"INSERT INTO book_work (book_id, work_id, ordre, pages) VALUES (?, ?, ?, ?)",
			bookID, workID, nullInt32(link.Order), nullString(link.Pages),
		); err != nil {
			return errors.Wrapf(err, "failed to link work %d", workID)
		}
	}
	return nil
}

func scanBook(row rowScanner) (*model.Book, error) {
	var book model.Book
	var publisherID, languageID, seriesID, seriesNumber, locationID sql.NullInt32
	var cover sql.NullString
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&publisherID,
		&languageID,
		&seriesID,
		&seriesNumber,
		&locationID,
		&cover,
		&book.CreatedTs,
		&book.UpdatedTs,
	); err != nil {
		return nil, err
	}
	book.PublisherID = publisherID.Int32
	book.LanguageID = languageID.Int32
	book.SeriesID = seriesID.Int32
	book.SeriesNumber = seriesNumber.Int32
	book.LocationID = locationID.Int32
	book.Cover = cover.String
	book.Authors = []*model.BookAuthor{}
	book.Genres = []*model.Reference{}
	book.Works = []*model.BookWork{}
	return &book, nil
}
