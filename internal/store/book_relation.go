package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
)

// Keeps IN lists well below sqlite's bound variable limit.
const relationBatchSize = 500

// loadRelations fills the references and link collections of books with one
// query per relation and batch, instead of one per book.
func (s *Store) loadRelations(ctx context.Context, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[int32]*model.Book, len(books))
	bookIDs := make([]int32, 0, len(books))
	publisherIDs, languageIDs, seriesIDs, locationIDs := idSet{}, idSet{}, idSet{}, idSet{}
	for _, book := range books {
		byID[book.ID] = book
		bookIDs = append(bookIDs, book.ID)
		publisherIDs.add(book.PublisherID)
		languageIDs.add(book.LanguageID)
		seriesIDs.add(book.SeriesID)
		locationIDs.add(book.LocationID)
	}

	publishers, err := s.referencesByID(ctx, model.KindPublisher, publisherIDs.slice())
	if err != nil {
		return err
	}
	languages, err := s.referencesByID(ctx, model.KindLanguage, languageIDs.slice())
	if err != nil {
		return err
	}
	series, err := s.referencesByID(ctx, model.KindSeries, seriesIDs.slice())
	if err != nil {
		return err
	}
	locations, err := s.locationsByID(ctx, locationIDs.slice())
	if err != nil {
		return err
	}
	for _, book := range books {
		book.Publisher = publishers[book.PublisherID]
		book.Language = languages[book.LanguageID]
		book.Series = series[book.SeriesID]
		book.Location = locations[book.LocationID]
	}

	for _, batch := range chunk(bookIDs, relationBatchSize) {
		if err := s.loadAuthors(ctx, byID, batch); err != nil {
			return err
		}
		if err := s.loadGenres(ctx, byID, batch); err != nil {
			return err
		}
		if err := s.loadWorks(ctx, byID, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadAuthors(ctx context.Context, byID map[int32]*model.Book, bookIDs []int32) error {
	placeholders, args := inClause(bookIDs)
	query := `
		SELECT ba.book_id, ba.role, a.id, a.last_name, a.first_name, a.alias
		FROM book_author ba JOIN author a ON a.id = ba.author_id
		WHERE ba.book_id IN (` + placeholders + `)
		ORDER BY ba.book_id, ba.position, ba.id`
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to load book authors")
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int32
		var role, firstName, alias sql.NullString
		author := &model.Author{}
		if err := rows.Scan(&bookID, &role, &author.ID, &author.LastName, &firstName, &alias); err != nil {
			return err
		}
		author.FirstName = firstName.String
		author.Alias = alias.String
		if book := byID[bookID]; book != nil {
			book.Authors = append(book.Authors, &model.BookAuthor{Author: author, Role: role.String})
		}
	}
	return rows.Err()
}

func (s *Store) loadGenres(ctx context.Context, byID map[int32]*model.Book, bookIDs []int32) error {
	placeholders, args := inClause(bookIDs)
	query := `
		SELECT bg.book_id, g.id, g.name
		FROM book_genre bg JOIN genre g ON g.id = bg.genre_id
		WHERE bg.book_id IN (` + placeholders + `)
		ORDER BY bg.book_id, bg.rowid`
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to load book genres")
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int32
		genre := &model.Reference{}
		if err := rows.Scan(&bookID, &genre.ID, &genre.Name); err != nil {
			return err
		}
		if book := byID[bookID]; book != nil {
			book.Genres = append(book.Genres, genre)
		}
	}
	return rows.Err()
}

func (s *Store) loadWorks(ctx context.Context, byID map[int32]*model.Book, bookIDs []int32) error {
	placeholders, args := inClause(bookIDs)
	query := `
		SELECT bw.book_id, bw.ordre, bw.pages, w.id, w.title, w.summary, w.notes
		FROM book_work bw JOIN work w ON w.id = bw.work_id
		WHERE bw.book_id IN (` + placeholders + `)
		ORDER BY bw.book_id, COALESCE(bw.ordre, 0), bw.rowid`
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "failed to load book works")
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int32
		var order sql.NullInt32
		var pages, summary, notes sql.NullString
		work := &model.Work{}
		if err := rows.Scan(&bookID, &order, &pages, &work.ID, &work.Title, &summary, &notes); err != nil {
			return err
		}
		work.Summary = summary.String
		work.Notes = notes.String
		if book := byID[bookID]; book != nil {
			book.Works = append(book.Works, &model.BookWork{Work: work, Order: order.Int32, Pages: pages.String})
		}
	}
	return rows.Err()
}

func (s *Store) referencesByID(ctx context.Context, kind model.ReferenceKind, ids []int32) (map[int32]*model.Reference, error) {
	result := make(map[int32]*model.Reference, len(ids))
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	for _, batch := range chunk(ids, relationBatchSize) {
		placeholders, args := inClause(batch)
		rows, err := s.query(ctx, "SELECT id, name FROM "+table+" WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", kind)
		}
		for rows.Next() {
			ref := &model.Reference{}
			if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
				rows.Close()
				return nil, err
			}
			result[ref.ID] = ref
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) locationsByID(ctx context.Context, ids []int32) (map[int32]*model.Location, error) {
	result := make(map[int32]*model.Location, len(ids))
	for _, batch := range chunk(ids, relationBatchSize) {
		placeholders, args := inClause(batch)
		rows, err := s.query(ctx, "SELECT "+locationColumns+" FROM location WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load locations")
		}
		for rows.Next() {
			location, err := scanLocation(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result[location.ID] = location
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// idSet collects distinct non-zero ids.
type idSet map[int32]struct{}

func (s idSet) add(id int32) {
	if id != 0 {
		s[id] = struct{}{}
	}
}

func (s idSet) slice() []int32 {
	list := make([]int32, 0, len(s))
	for id := range s {
		list = append(list, id)
	}
	return list
}

func chunk(ids []int32, size int) [][]int32 {
	var batches [][]int32
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

func inClause(ids []int32) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
