package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/util"
)

// row gives access to the cells of one record by column name. Missing
// columns read as empty.
type row struct {
	header map[string]int
	record []string
}

func (r row) get(column string) string {
	i, ok := r.header[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// Import reads a CSV file shaped like Export and creates or updates one book
// per row. Rows are isolated: a failing row is rolled back, counted as
// skipped and reported, and the next row goes on. Everything else commits
// once at the end, and a failed commit is returned as an error.
func Import(ctx context.Context, s *store.Store, r io.Reader) (*model.ImportResult, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1

	result := &model.ImportResult{Errors: []string{}}

	headerRecord, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}
	header := make(map[string]int, len(headerRecord))
	for i, name := range headerRecord {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := header[name]; !seen {
			header[name] = i
		}
	}

	err = s.WithTx(ctx, func(tx *store.Store) error {
		for index := 1; ; index++ {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			line := index + 1
			if err != nil {
				var parseErr *csv.ParseError
				if errors.As(err, &parseErr) {
					result.Skipped++
					result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", parseErr.StartLine, parseErr.Err))
					continue
				}
				return errors.Wrap(err, "failed to read csv")
			}
			if l, _ := reader.FieldPos(0); l > 0 {
				line = l
			}

			current := row{header: header, record: record}
			if current.get("titre") == "" {
				result.Skipped++
				continue
			}

			var created bool
			if err := tx.Savepoint(ctx, fmt.Sprintf("row_%d", index), func() error {
				var err error
				created, err = importRow(ctx, tx, current)
				return err
			}); err != nil {
				log.Debug("Import row failed", zap.Int("row", line), zap.Error(err))
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info("CSV import done",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// importRow writes one row and reports whether the book was created.
func importRow(ctx context.Context, tx *store.Store, r row) (bool, error) {
	title := r.get("titre")

	publisherID, err := getOrCreateReferenceID(ctx, tx, model.KindPublisher, r.get("editeur"))
	if err != nil {
		return false, err
	}
	languageID, err := getOrCreateReferenceID(ctx, tx, model.KindLanguage, r.get("langue"))
	if err != nil {
		return false, err
	}
	seriesID, err := getOrCreateReferenceID(ctx, tx, model.KindSeries, r.get("serie"))
	if err != nil {
		return false, err
	}
	var seriesNumber int32
	if v := r.get("numero_serie"); util.IsDigits(v) {
		seriesNumber = util.OptionalInt32(v)
	}
	var locationID int32
	if zone, column, floor, ok := parseLocation(r.get("emplacement")); ok {
		location, err := tx.GetOrCreateLocation(ctx, zone, column, floor)
		if err != nil {
			return false, err
		}
		locationID = location.ID
	}

	// Parse every list before writing the book, a malformed cell fails early.
	authors := []model.BookAuthorInput{}
	for _, segment := range splitList(r.get("auteurs"), ";") {
		parsed, err := parseAuthorSegment(segment)
		if err != nil {
			return false, err
		}
		author, err := tx.GetOrCreateAuthor(ctx, parsed.LastName, parsed.FirstName)
		if err != nil {
			return false, err
		}
		authors = append(authors, model.BookAuthorInput{AuthorID: author.ID, Role: parsed.Role})
	}
	works := []model.BookWorkInput{}
	for _, segment := range splitList(r.get("oeuvres"), ";") {
		parsed, err := parseWorkSegment(segment)
		if err != nil {
			return false, err
		}
		works = append(works, model.BookWorkInput{Title: parsed.Title, Order: parsed.Order, Pages: parsed.Pages})
	}
	genreIDs := []int32{}
	for _, name := range splitList(r.get("genres"), ",") {
		genre, err := tx.GetOrCreateReference(ctx, model.KindGenre, name)
		if err != nil {
			return false, err
		}
		genreIDs = append(genreIDs, genre.ID)
	}

	book, err := tx.FindBookByTitle(ctx, title)
	if err != nil {
		return false, err
	}
	created := book == nil
	if created {
		book, err = tx.CreateBook(ctx, &model.Book{Title: title})
		if err != nil {
			return false, err
		}
	}
	book.PublisherID = publisherID
	book.LanguageID = languageID
	book.SeriesID = seriesID
	book.SeriesNumber = seriesNumber
	book.LocationID = locationID
	if err := tx.UpdateBook(ctx, book); err != nil {
		return false, err
	}

	if err := tx.ReplaceBookGenres(ctx, book.ID, genreIDs); err != nil {
		return false, err
	}
	if err := tx.ReplaceBookAuthors(ctx, book.ID, authors); err != nil {
		return false, err
	}
	if err := tx.ReplaceBookWorks(ctx, book.ID, works); err != nil {
		return false, err
	}
	return created, nil
}

func getOrCreateReferenceID(ctx context.Context, tx *store.Store, kind model.ReferenceKind, name string) (int32, error) {
	if name == "" {
		return 0, nil
	}
	ref, err := tx.GetOrCreateReference(ctx, kind, name)
	if err != nil {
		return 0, err
	}
	return ref.ID, nil
}
