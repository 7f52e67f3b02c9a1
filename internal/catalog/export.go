package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
)

// Header is the column row written by Export. Import accepts any subset.
var Header = []string{"id", "titre", "editeur", "langue", "serie", "numero_serie", "emplacement", "auteurs", "genres", "oeuvres"}

// Export writes the whole catalog as CSV, one row per book by id.
func Export(ctx context.Context, s *store.Store, w io.Writer) error {
	books, err := s.ListAllBooks(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list books")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, book := range books {
		if err := writer.Write(bookRecord(book)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func bookRecord(book *model.Book) []string {
	seriesNumber := ""
	if book.SeriesNumber != 0 {
		seriesNumber = strconv.Itoa(int(book.SeriesNumber))
	}

	authors := make([]string, 0, len(book.Authors))
	for _, link := range book.Authors {
		authors = append(authors, formatAuthorSegment(link))
	}
	genres := make([]string, 0, len(book.Genres))
	for _, genre := range book.Genres {
		genres = append(genres, genre.Name)
	}
	works := make([]*model.BookWork, len(book.Works))
	copy(works, book.Works)
	sort.SliceStable(works, func(i, j int) bool { return works[i].Order < works[j].Order })
	workSegments := make([]string, 0, len(works))
	for _, link := range works {
		workSegments = append(workSegments, formatWorkSegment(link))
	}

	return []string{
		strconv.Itoa(int(book.ID)),
		book.Title,
		referenceName(book.Publisher),
		referenceName(book.Language),
		referenceName(book.Series),
		seriesNumber,
		formatLocation(book.Location),
		strings.Join(authors, "; "),
		strings.Join(genres, ", "),
		strings.Join(workSegments, "; "),
	}
}

func referenceName(ref *model.Reference) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
