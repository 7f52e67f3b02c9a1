package catalog

import (
	"context"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
)

type demoBook struct {
	title        string
	publisher    string
	series       string
	seriesNumber int32
	location     *model.Location
	genres       []string
	authors      []demoAuthor
	works        []model.BookWorkInput
}

type demoAuthor struct {
	lastName, firstName, role string
}

// SeedDemo fills an empty catalog with a few books to click around. Books
// already present by title are left alone.
func SeedDemo(ctx context.Context, s *store.Store) error {
	salon := &model.Location{Zone: "Salon", Column: 25, Floor: "B"}
	bureau := &model.Location{Zone: "Bureau", Column: 12, Floor: "A"}
	books := []demoBook{
		{
			title: "Dune", publisher: "Pocket", series: "Dune", seriesNumber: 1, location: salon,
			genres:  []string{"Science-Fiction"},
			authors: []demoAuthor{{"Herbert", "Frank", "auteur"}},
		},
		{
			title: "Hypérion", publisher: "Gallimard", location: bureau,
			genres:  []string{"Science-Fiction"},
			authors: []demoAuthor{{"Simmons", "Dan", "auteur"}},
		},
		{
			title: "Kinsman (Recueil)", publisher: "LEHA", series: "Kinsman", seriesNumber: 1, location: salon,
			genres:  []string{"Science-Fiction", "Roman"},
			authors: []demoAuthor{{"Kerr", "Poul", "auteur"}, {"Dupont", "Jean", "traducteur"}},
			works: []model.BookWorkInput{
				{Title: "La stratégie de Kinsman", Order: 1, Pages: "1-120"},
				{Title: "L'héritage de Kinsman", Order: 2, Pages: "121-240"},
			},
		},
	}

	return s.WithTx(ctx, func(tx *store.Store) error {
		for _, name := range []string{"Français", "Anglais"} {
			if _, err := tx.GetOrCreateReference(ctx, model.KindLanguage, name); err != nil {
				return err
			}
		}
		for _, name := range []string{"Roman", "Science-Fiction", "Fantasy", "Essai"} {
			if _, err := tx.GetOrCreateReference(ctx, model.KindGenre, name); err != nil {
				return err
			}
		}
		french, err := tx.FindReferenceByName(ctx, model.KindLanguage, "Français")
		if err != nil {
			return err
		}

		for _, demo := range books {
			existing, err := tx.FindBookByTitle(ctx, demo.title)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := createDemoBook(ctx, tx, demo, french.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func createDemoBook(ctx context.Context, tx *store.Store, demo demoBook, languageID int32) error {
	book := &model.Book{Title: demo.title, LanguageID: languageID, SeriesNumber: demo.seriesNumber}
	var err error
	if book.PublisherID, err = getOrCreateReferenceID(ctx, tx, model.KindPublisher, demo.publisher); err != nil {
		return err
	}
	if book.SeriesID, err = getOrCreateReferenceID(ctx, tx, model.KindSeries, demo.series); err != nil {
		return err
	}
	location, err := tx.GetOrCreateLocation(ctx, demo.location.Zone, demo.location.Column, demo.location.Floor)
	if err != nil {
		return err
	}
	book.LocationID = location.ID

	created, err := tx.CreateBook(ctx, book)
	if err != nil {
		return err
	}

	genreIDs := []int32{}
	for _, name := range demo.genres {
		genre, err := tx.GetOrCreateReference(ctx, model.KindGenre, name)
		if err != nil {
			return err
		}
		genreIDs = append(genreIDs, genre.ID)
	}
	if err := tx.ReplaceBookGenres(ctx, created.ID, genreIDs); err != nil {
		return err
	}

	authors := []model.BookAuthorInput{}
	for _, a := range demo.authors {
		author, err := tx.GetOrCreateAuthor(ctx, a.lastName, a.firstName)
		if err != nil {
			return err
		}
		authors = append(authors, model.BookAuthorInput{AuthorID: author.ID, Role: a.role})
	}
	if err := tx.ReplaceBookAuthors(ctx, created.ID, authors); err != nil {
		return err
	}
	return tx.ReplaceBookWorks(ctx, created.ID, demo.works)
}
