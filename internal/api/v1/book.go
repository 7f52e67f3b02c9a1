package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/storage"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/validator"
)

// bookForm is a submitted book. The author and work fields are parallel
// lists: author_id[i] goes with author_role[i], and so on.
type bookForm struct {
	Title        string   `json:"title"`
	PublisherID  int32    `json:"publisher_id"`
	LanguageID   int32    `json:"language_id"`
	SeriesID     int32    `json:"series_id"`
	SeriesNumber int32    `json:"series_number"`
	LocationID   int32    `json:"location_id"`
	GenreIDs     []int32  `json:"genre_id"`
	AuthorIDs    []int32  `json:"author_id"`
	AuthorRoles  []string `json:"author_role"`
	WorkIDs      []int32  `json:"work_id"`
	WorkTitles   []string `json:"work_title"`
	WorkOrders   []int32  `json:"work_order"`
	WorkPages    []string `json:"work_pages"`
}

func (f *bookForm) book() *model.Book {
	return &model.Book{
		Title:        strings.TrimSpace(f.Title),
		PublisherID:  f.PublisherID,
		LanguageID:   f.LanguageID,
		SeriesID:     f.SeriesID,
		SeriesNumber: f.SeriesNumber,
		LocationID:   f.LocationID,
	}
}

// genreIDs drops the empty selections a form may submit.
func (f *bookForm) genreIDs() []int32 {
	ids := make([]int32, 0, len(f.GenreIDs))
	for _, id := range f.GenreIDs {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func (f *bookForm) authorLinks() []model.BookAuthorInput {
	return authorLinks(f.AuthorIDs, f.AuthorRoles)
}

func authorLinks(ids []int32, roles []string) []model.BookAuthorInput {
	links := make([]model.BookAuthorInput, 0, len(ids))
	for i, id := range ids {
		if id == 0 {
			continue
		}
		links = append(links, model.BookAuthorInput{AuthorID: id, Role: strings.TrimSpace(at(roles, i))})
	}
	return links
}

// workLinks drops the rows that name neither an existing work nor a title.
func (f *bookForm) workLinks() []model.BookWorkInput {
	n := max(len(f.WorkIDs), len(f.WorkTitles))
	links := make([]model.BookWorkInput, 0, n)
	for i := 0; i < n; i++ {
		link := model.BookWorkInput{
			WorkID: at(f.WorkIDs, i),
			Title:  strings.TrimSpace(at(f.WorkTitles, i)),
			Order:  at(f.WorkOrders, i),
			Pages:  strings.TrimSpace(at(f.WorkPages, i)),
		}
		if link.WorkID == 0 && link.Title == "" {
			continue
		}
		links = append(links, link)
	}
	return links
}

func at[T any](list []T, i int) T {
	var zero T
	if i < len(list) {
		return list[i]
	}
	return zero
}

type bookResponse struct {
	*model.Book
	// Warnings lists existing books with a similar title. They never block
	// the submission.
	Warnings []string `json:"warnings,omitempty"`
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBook{
		Title:       request.QueryStringParam(r, "title"),
		GenreID:     request.QueryIntParam(r, "genre", 0),
		PublisherID: request.QueryIntParam(r, "publisher", 0),
		SeriesID:    request.QueryIntParam(r, "series", 0),
		Author:      request.QueryStringParam(r, "author"),
		Zone:        request.QueryStringParam(r, "zone"),
		Column:      request.QueryOptionalIntParam(r, "column"),
		Floor:       request.QueryStringParam(r, "floor"),
		Sort:        model.ParseBookSort(request.QueryStringParam(r, "sort")),
		Page:        int(request.QueryIntParam(r, "page", 1)),
	}

	page, err := h.store.ListBooks(r.Context(), find)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, page)
}

func (h *Handler) findDuplicates(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.FindPotentialDuplicates(r.Context(),
		request.QueryStringParam(r, "title"),
		request.QueryIntParam(r, "exclude", 0),
	)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.store.GetBook(r.Context(), request.RouteIntParam(r, "id"))
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, book, ok := h.readBookForm(w, r)
	if !ok {
		return
	}

	duplicates, err := h.store.FindPotentialDuplicates(ctx, book.Title, 0)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}

	cover, err := h.saveCover(r)
	if err != nil {
		coverError(w, r, err)
		return
	}
	book.Cover = cover

	var created *model.Book
	err = h.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		if created, err = tx.CreateBook(ctx, book); err != nil {
			return err
		}
		return replaceBookLinks(ctx, tx, created.ID, form)
	})
	if err != nil {
		h.covers.Delete(cover)
		response.ServerError(w, r, err)
		return
	}

	full, err := h.store.GetBook(ctx, created.ID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Info("Book created", zap.Int32("book_id", full.ID), zap.String("title", full.Title))
	response.Created(w, r, &bookResponse{Book: full, Warnings: duplicateWarnings(duplicates)})
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := request.RouteIntParam(r, "id")
	existing, err := h.store.GetBook(ctx, id)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if existing == nil {
		response.NotFound(w, r)
		return
	}

	form, book, ok := h.readBookForm(w, r)
	if !ok {
		return
	}

	var duplicates []*model.Book
	if book.Title != existing.Title {
		if duplicates, err = h.store.FindPotentialDuplicates(ctx, book.Title, id); err != nil {
			response.ServerError(w, r, err)
			return
		}
	}

	cover, err := h.saveCover(r)
	if err != nil {
		coverError(w, r, err)
		return
	}
	book.ID = id
	book.Cover = existing.Cover
	if cover != "" {
		book.Cover = cover
	}

	err = h.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.UpdateBook(ctx, book); err != nil {
			return err
		}
		return replaceBookLinks(ctx, tx, id, form)
	})
	if err != nil {
		h.covers.Delete(cover)
		response.ServerError(w, r, err)
		return
	}
	if cover != "" && existing.Cover != "" {
		h.covers.Delete(existing.Cover)
	}

	full, err := h.store.GetBook(ctx, id)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, &bookResponse{Book: full, Warnings: duplicateWarnings(duplicates)})
}

// replaceBookAuthors rewrites the author links alone.
func (h *Handler) replaceBookAuthors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := request.RouteIntParam(r, "id")
	book, err := h.store.GetBook(ctx, id)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	var form bookForm
	if err := h.bind(w, r, &form); err != nil {
		badInput(w, r, err)
		return
	}
	links := form.authorLinks()
	if err := validator.ValidateBookLinks(links, nil); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	if err := h.checkAuthors(ctx, form.AuthorIDs); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	if err := h.store.ReplaceBookAuthors(ctx, id, links); err != nil {
		response.ServerError(w, r, err)
		return
	}

	if book, err = h.store.GetBook(ctx, id); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, book)
}

// deleteBook removes the cover files first. Their removal is best effort.
func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	book, err := h.store.GetBook(ctx, request.RouteIntParam(r, "id"))
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	if book.Cover != "" {
		h.covers.Delete(book.Cover)
	}
	if err := h.store.DeleteBook(ctx, book.ID); err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Info("Book deleted", zap.Int32("book_id", book.ID), zap.String("title", book.Title))
	response.NoContent(w, r)
}

// readBookForm binds and validates a submitted book. It writes the error
// response itself and reports false on failure.
func (h *Handler) readBookForm(w http.ResponseWriter, r *http.Request) (*bookForm, *model.Book, bool) {
	var form bookForm
	if err := h.bind(w, r, &form); err != nil {
		badInput(w, r, err)
		return nil, nil, false
	}
	book := form.book()
	if err := validator.ValidateBook(book); err != nil {
		response.BadRequest(w, r, err)
		return nil, nil, false
	}
	if err := validator.ValidateBookLinks(form.authorLinks(), form.workLinks()); err != nil {
		response.BadRequest(w, r, err)
		return nil, nil, false
	}
	if err := h.checkBookReferences(r.Context(), &form); err != nil {
		response.BadRequest(w, r, err)
		return nil, nil, false
	}
	return &form, book, true
}

func replaceBookLinks(ctx context.Context, tx *store.Store, bookID int32, form *bookForm) error {
	if err := tx.ReplaceBookGenres(ctx, bookID, form.genreIDs()); err != nil {
		return err
	}
	if err := tx.ReplaceBookAuthors(ctx, bookID, form.authorLinks()); err != nil {
		return err
	}
	return tx.ReplaceBookWorks(ctx, bookID, form.workLinks())
}

type referenceID struct {
	kind model.ReferenceKind
	id   int32
}

// checkBookReferences turns unknown ids into a readable error instead of a
// foreign key failure.
func (h *Handler) checkBookReferences(ctx context.Context, form *bookForm) error {
	references := []referenceID{
		{model.KindPublisher, form.PublisherID},
		{model.KindLanguage, form.LanguageID},
		{model.KindSeries, form.SeriesID},
	}
	for _, genreID := range form.genreIDs() {
		references = append(references, referenceID{model.KindGenre, genreID})
	}
	for _, ref := range references {
		if ref.id == 0 {
			continue
		}
		found, err := h.store.GetReference(ctx, ref.kind, ref.id)
		if err != nil {
			return err
		}
		if found == nil {
			return errors.Errorf("%s %d does not exist", ref.kind, ref.id)
		}
	}

	if form.LocationID != 0 {
		location, err := h.store.GetLocation(ctx, form.LocationID)
		if err != nil {
			return err
		}
		if location == nil {
			return errors.Errorf("location %d does not exist", form.LocationID)
		}
	}
	if err := h.checkAuthors(ctx, form.AuthorIDs); err != nil {
		return err
	}
	for _, workID := range form.WorkIDs {
		if workID == 0 {
			continue
		}
		work, err := h.store.GetWork(ctx, workID)
		if err != nil {
			return err
		}
		if work == nil {
			return errors.Errorf("work %d does not exist", workID)
		}
	}
	return nil
}

func (h *Handler) checkAuthors(ctx context.Context, ids []int32) error {
	for _, id := range ids {
		if id == 0 {
			continue
		}
		author, err := h.store.GetAuthor(ctx, &store.FindAuthor{ID: &id})
		if err != nil {
			return err
		}
		if author == nil {
			return errors.Errorf("author %d does not exist", id)
		}
	}
	return nil
}

// saveCover stores the "cover" upload if the request carries one and
// returns its generated name.
func (h *Handler) saveCover(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("cover")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.covers.Save(header.Filename, file)
}

func coverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrUnsupportedImage) {
		response.BadRequest(w, r, err)
		return
	}
	response.ServerError(w, r, err)
}

func duplicateWarnings(books []*model.Book) []string {
	warnings := make([]string, 0, len(books))
	for _, book := range books {
		warnings = append(warnings, fmt.Sprintf("a similar title already exists: %q (id %d)", book.Title, book.ID))
	}
	return warnings
}
