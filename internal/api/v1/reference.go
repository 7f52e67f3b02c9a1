package v1

import (
	"net/http"
	"strings"

	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/validator"
)

// Besides the name-only reference kinds, /refs/{kind} serves these.
const (
	kindAuthor   = "author"
	kindLocation = "location"
	kindWork     = "work"
)

func (h *Handler) listReferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var list any
	var err error
	switch kind := request.RouteStringParam(r, "kind"); kind {
	case kindAuthor:
		list, err = h.store.ListAuthors(ctx, &store.FindAuthor{})
	case kindLocation:
		list, err = h.store.ListLocations(ctx)
	case kindWork:
		list, err = h.store.ListWorks(ctx)
	default:
		if !model.ReferenceKind(kind).Valid() {
			response.NotFound(w, r)
			return
		}
		list, err = h.store.ListReferences(ctx, model.ReferenceKind(kind))
	}
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, list)
}

// createReference always inserts. Hand entered names may repeat, only
// imports reuse existing rows.
func (h *Handler) createReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := request.RouteStringParam(r, "kind")
	if !isReferenceRoute(kind) {
		response.NotFound(w, r)
		return
	}

	var created any
	var err error
	switch kind {
	case kindAuthor:
		var author model.Author
		if err := h.bind(w, r, &author); err != nil {
			badInput(w, r, err)
			return
		}
		author = model.Author{
			LastName:  strings.TrimSpace(author.LastName),
			FirstName: strings.TrimSpace(author.FirstName),
			Alias:     strings.TrimSpace(author.Alias),
		}
		if err := validator.ValidateAuthor(&author); err != nil {
			response.BadRequest(w, r, err)
			return
		}
		created, err = h.store.CreateAuthor(ctx, &author)
	case kindLocation:
		var location model.Location
		if err := h.bind(w, r, &location); err != nil {
			badInput(w, r, err)
			return
		}
		location = model.Location{
			Column:      location.Column,
			Floor:       strings.TrimSpace(location.Floor),
			Zone:        strings.TrimSpace(location.Zone),
			Description: strings.TrimSpace(location.Description),
		}
		if err := validator.ValidateLocation(&location); err != nil {
			response.BadRequest(w, r, err)
			return
		}
		created, err = h.store.CreateLocation(ctx, &location)
	case kindWork:
		var work model.Work
		if err := h.bind(w, r, &work); err != nil {
			badInput(w, r, err)
			return
		}
		work = model.Work{
			Title:   strings.TrimSpace(work.Title),
			Summary: strings.TrimSpace(work.Summary),
			Notes:   strings.TrimSpace(work.Notes),
		}
		if err := validator.Struct(&work); err != nil {
			response.BadRequest(w, r, err)
			return
		}
		created, err = h.store.CreateWork(ctx, &work)
	default:
		var ref model.Reference
		if err := h.bind(w, r, &ref); err != nil {
			badInput(w, r, err)
			return
		}
		ref = model.Reference{Name: strings.TrimSpace(ref.Name)}
		if err := validator.ValidateReference(&ref); err != nil {
			response.BadRequest(w, r, err)
			return
		}
		created, err = h.store.CreateReference(ctx, model.ReferenceKind(kind), ref.Name)
	}
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, created)
}

// deleteReference leaves the books in place: their link to the deleted row
// is cleared.
func (h *Handler) deleteReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := request.RouteStringParam(r, "kind")
	id := request.RouteIntParam(r, "id")

	var found bool
	var err error
	switch kind {
	case kindAuthor:
		var author *model.Author
		author, err = h.store.GetAuthor(ctx, &store.FindAuthor{ID: &id})
		found = author != nil
	case kindLocation:
		var location *model.Location
		location, err = h.store.GetLocation(ctx, id)
		found = location != nil
	case kindWork:
		var work *model.Work
		work, err = h.store.GetWork(ctx, id)
		found = work != nil
	default:
		if !model.ReferenceKind(kind).Valid() {
			response.NotFound(w, r)
			return
		}
		var ref *model.Reference
		ref, err = h.store.GetReference(ctx, model.ReferenceKind(kind), id)
		found = ref != nil
	}
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if !found {
		response.NotFound(w, r)
		return
	}

	switch kind {
	case kindAuthor:
		err = h.store.DeleteAuthor(ctx, id)
	case kindLocation:
		err = h.store.DeleteLocation(ctx, id)
	case kindWork:
		err = h.store.DeleteWork(ctx, id)
	default:
		err = h.store.DeleteReference(ctx, model.ReferenceKind(kind), id)
	}
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func isReferenceRoute(kind string) bool {
	switch kind {
	case kindAuthor, kindLocation, kindWork:
		return true
	}
	return model.ReferenceKind(kind).Valid()
}
