package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Xunop/library-tracker/internal/model"
)

func createTestBook(t *testing.T, s *Store, book *model.Book) *model.Book {
	t.Helper()
	created, err := s.CreateBook(context.Background(), book)
	if err != nil {
		t.Fatalf("Failed to create book %q: %v", book.Title, err)
	}
	return created
}

func TestCreateAndGetBook(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	publisher, _ := s.GetOrCreateReference(ctx, model.KindPublisher, "Pocket")
	series, _ := s.GetOrCreateReference(ctx, model.KindSeries, "Dune")
	location, _ := s.GetOrCreateLocation(ctx, "Salon", 25, "B")
	herbert, _ := s.GetOrCreateAuthor(ctx, "Herbert", "Frank")
	sf, _ := s.GetOrCreateReference(ctx, model.KindGenre, "Science-Fiction")

	book := createTestBook(t, s, &model.Book{
		Title:        "Dune",
		PublisherID:  publisher.ID,
		SeriesID:     series.ID,
		SeriesNumber: 1,
		LocationID:   location.ID,
	})
	if err := s.ReplaceBookAuthors(ctx, book.ID, []model.BookAuthorInput{{AuthorID: herbert.ID, Role: "auteur"}}); err != nil {
		t.Fatalf("Failed to link authors: %v", err)
	}
	if err := s.ReplaceBookGenres(ctx, book.ID, []int32{sf.ID, sf.ID}); err != nil {
		t.Fatalf("Failed to link genres: %v", err)
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got.Publisher == nil || got.Publisher.Name != "Pocket" {
		t.Errorf("Unexpected publisher %+v", got.Publisher)
	}
	if got.Language != nil {
		t.Errorf("Expected no language, got %+v", got.Language)
	}
	if got.Location == nil || got.Location.Zone != "Salon" {
		t.Errorf("Unexpected location %+v", got.Location)
	}
	if len(got.Authors) != 1 || got.Authors[0].Author.LastName != "Herbert" || got.Authors[0].Role != "auteur" {
		t.Errorf("Unexpected authors %+v", got.Authors)
	}
	if len(got.Genres) != 1 {
		t.Errorf("Expected one genre, got %d", len(got.Genres))
	}

	missing, err := s.GetBook(ctx, book.ID+100)
	if err != nil || missing != nil {
		t.Errorf("Expected nil for a missing book, got %+v, %v", missing, err)
	}
}

func TestUpdateBookClearsReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	publisher, _ := s.GetOrCreateReference(ctx, model.KindPublisher, "Pocket")
	book := createTestBook(t, s, &model.Book{Title: "Dune", PublisherID: publisher.ID, SeriesNumber: 3})

	book.PublisherID = 0
	book.SeriesNumber = 0
	book.Title = "Dune Messiah"
	if err := s.UpdateBook(ctx, book); err != nil {
		t.Fatalf("Failed to update book: %v", err)
	}
	got, _ := s.GetBook(ctx, book.ID)
	if got.Title != "Dune Messiah" || got.PublisherID != 0 || got.Publisher != nil || got.SeriesNumber != 0 {
		t.Errorf("Unexpected book after update: %+v", got)
	}
}

func TestReplaceBookAuthorsKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	author, _ := s.GetOrCreateAuthor(ctx, "Dupont", "Jean")
	book := createTestBook(t, s, &model.Book{Title: "Recueil"})
	links := []model.BookAuthorInput{
		{AuthorID: author.ID, Role: "auteur"},
		{AuthorID: author.ID, Role: "traducteur"},
	}
	if err := s.ReplaceBookAuthors(ctx, book.ID, links); err != nil {
		t.Fatalf("Failed to link authors: %v", err)
	}
	got, _ := s.GetBook(ctx, book.ID)
	if len(got.Authors) != 2 || got.Authors[0].Role != "auteur" || got.Authors[1].Role != "traducteur" {
		t.Fatalf("Unexpected authors %+v", got.Authors)
	}

	// Replacing discards the previous links.
	if err := s.ReplaceBookAuthors(ctx, book.ID, links[1:]); err != nil {
		t.Fatalf("Failed to replace authors: %v", err)
	}
	got, _ = s.GetBook(ctx, book.ID)
	if len(got.Authors) != 1 || got.Authors[0].Role != "traducteur" {
		t.Errorf("Unexpected authors after replace %+v", got.Authors)
	}
}

func TestReplaceBookWorks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	book := createTestBook(t, s, &model.Book{Title: "Kinsman (Recueil)"})
	err := s.ReplaceBookWorks(ctx, book.ID, []model.BookWorkInput{
		{Title: "L'héritage de Kinsman", Order: 2, Pages: "121-240"},
		{Title: "La stratégie de Kinsman", Order: 1, Pages: "1-120"},
		{Title: "Postface"},
	})
	if err != nil {
		t.Fatalf("Failed to link works: %v", err)
	}
	got, _ := s.GetBook(ctx, book.ID)
	if len(got.Works) != 3 {
		t.Fatalf("Expected 3 works, got %d", len(got.Works))
	}
	// Unordered works sort as order 0.
	if got.Works[0].Work.Title != "Postface" || got.Works[1].Order != 1 || got.Works[2].Pages != "121-240" {
		t.Errorf("Unexpected work order: %s, %d, %s", got.Works[0].Work.Title, got.Works[1].Order, got.Works[2].Pages)
	}

	// The same work twice in one book is rejected.
	work, _ := s.GetOrCreateWork(ctx, "Postface")
	err = s.ReplaceBookWorks(ctx, book.ID, []model.BookWorkInput{{WorkID: work.ID}, {Title: "Postface"}})
	if err == nil {
		t.Errorf("Expected an error for a repeated work")
	}
}

func TestDeleteBookCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	author, _ := s.GetOrCreateAuthor(ctx, "Kerr", "Poul")
	book := createTestBook(t, s, &model.Book{Title: "Kinsman"})
	_ = s.ReplaceBookAuthors(ctx, book.ID, []model.BookAuthorInput{{AuthorID: author.ID}})
	_ = s.ReplaceBookWorks(ctx, book.ID, []model.BookWorkInput{{Title: "Kinsman", Order: 1}})

	if err := s.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("Failed to delete book: %v", err)
	}
	var links int
	if err := s.db.QueryRow("SELECT (SELECT COUNT(*) FROM book_author) + (SELECT COUNT(*) FROM book_work)").Scan(&links); err != nil {
		t.Fatalf("Failed to count links: %v", err)
	}
	if links != 0 {
		t.Errorf("Expected links to cascade, %d left", links)
	}
	// Referenced entities stay.
	if n, _ := s.CountAuthors(ctx); n != 1 {
		t.Errorf("Expected the author to survive, got %d", n)
	}
}

func TestListBooksPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 1; i <= 25; i++ {
		createTestBook(t, s, &model.Book{Title: fmt.Sprintf("Livre %02d", i)})
	}

	first, err := s.ListBooks(ctx, &model.FindBook{Page: 0, Sort: model.SortTitleAsc})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if first.Page != 1 || first.Total != 25 || first.Pages != 2 || len(first.Books) != model.BookPageSize {
		t.Fatalf("Unexpected first page: page=%d total=%d pages=%d len=%d", first.Page, first.Total, first.Pages, len(first.Books))
	}
	if first.Books[0].Title != "Livre 01" {
		t.Errorf("Expected title ascending order, got %s", first.Books[0].Title)
	}

	second, _ := s.ListBooks(ctx, &model.FindBook{Page: 2, Sort: model.SortTitleAsc})
	if len(second.Books) != 5 || second.Books[4].Title != "Livre 25" {
		t.Errorf("Unexpected second page of %d books", len(second.Books))
	}

	beyond, err := s.ListBooks(ctx, &model.FindBook{Page: 9})
	if err != nil {
		t.Fatalf("A page past the end should not fail: %v", err)
	}
	if len(beyond.Books) != 0 || beyond.Total != 25 {
		t.Errorf("Expected an empty page with total 25, got %d books, total %d", len(beyond.Books), beyond.Total)
	}

	// Newest first by default: same second, so the id breaks the tie.
	latest, _ := s.ListBooks(ctx, &model.FindBook{})
	if latest.Books[0].Title != "Livre 25" {
		t.Errorf("Expected the newest book first, got %s", latest.Books[0].Title)
	}
}

func TestListBooksFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	roman, _ := s.GetOrCreateReference(ctx, model.KindGenre, "Roman")
	sf, _ := s.GetOrCreateReference(ctx, model.KindGenre, "Science-Fiction")
	pocket, _ := s.GetOrCreateReference(ctx, model.KindPublisher, "Pocket")
	simmons, _ := s.GetOrCreateAuthor(ctx, "Simmons", "Dan")
	salon, _ := s.GetOrCreateLocation(ctx, "Grand Salon", 12, "A")

	hyperion := createTestBook(t, s, &model.Book{Title: "Hypérion", PublisherID: pocket.ID, LocationID: salon.ID})
	_ = s.ReplaceBookGenres(ctx, hyperion.ID, []int32{roman.ID, sf.ID})
	_ = s.ReplaceBookAuthors(ctx, hyperion.ID, []model.BookAuthorInput{
		{AuthorID: simmons.ID, Role: "auteur"},
		{AuthorID: simmons.ID, Role: "préface"},
	})
	createTestBook(t, s, &model.Book{Title: "La Chute d'Hypérion"})
	createTestBook(t, s, &model.Book{Title: "Dune", PublisherID: pocket.ID})

	column := int32(12)
	cases := []struct {
		name string
		find model.FindBook
		want []string
	}{
		{"title ignores case", model.FindBook{Title: "HYPÉRION", Sort: model.SortTitleAsc}, []string{"Hypérion", "La Chute d'Hypérion"}},
		{"genre", model.FindBook{GenreID: sf.ID}, []string{"Hypérion"}},
		{"publisher", model.FindBook{PublisherID: pocket.ID, Sort: model.SortTitleDesc}, []string{"Hypérion", "Dune"}},
		{"author first name", model.FindBook{Author: "dan"}, []string{"Hypérion"}},
		{"zone substring", model.FindBook{Zone: "salon"}, []string{"Hypérion"}},
		{"column and floor", model.FindBook{Column: &column, Floor: "A"}, []string{"Hypérion"}},
		{"wrong floor", model.FindBook{Column: &column, Floor: "B"}, []string{}},
		{"conjunction", model.FindBook{Title: "Dune", GenreID: sf.ID}, []string{}},
	}
	for _, c := range cases {
		page, err := s.ListBooks(ctx, &c.find)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		got := make([]string, 0, len(page.Books))
		for _, b := range page.Books {
			got = append(got, b.Title)
		}
		if strings.Join(got, "|") != strings.Join(c.want, "|") {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
		if page.Total != len(c.want) {
			t.Errorf("%s: total %d, want %d", c.name, page.Total, len(c.want))
		}
	}
}

func TestFindPotentialDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 12; i++ {
		createTestBook(t, s, &model.Book{Title: fmt.Sprintf("Tome %d de l'Été", i)})
	}
	other := createTestBook(t, s, &model.Book{Title: "Autre chose"})

	list, err := s.FindPotentialDuplicates(ctx, "été", 0)
	if err != nil {
		t.Fatalf("Failed to find duplicates: %v", err)
	}
	if len(list) != DuplicateLimit {
		t.Errorf("Expected %d books, got %d", DuplicateLimit, len(list))
	}
	for _, b := range list {
		if !strings.Contains(strings.ToLower(b.Title), "été") {
			t.Errorf("Unexpected match %q", b.Title)
		}
	}

	empty, err := s.FindPotentialDuplicates(ctx, "  ", 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("An empty title should match nothing, got %d, %v", len(empty), err)
	}

	self, _ := s.FindPotentialDuplicates(ctx, "Autre chose", other.ID)
	if len(self) != 0 {
		t.Errorf("The excluded book should not be reported")
	}
}
