package v1

import (
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
)

func (h *Handler) serveCover(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, h.covers.OriginalPath(request.RouteStringParam(r, "name")))
}

func (h *Handler) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, h.covers.ThumbPath(request.RouteStringParam(r, "name")))
}

// serveImage answers 404 for an empty path, which is what the storage returns
// for names that could leave its directories.
func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, path string) {
	if path == "" {
		response.NotFound(w, r)
		return
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		response.NotFound(w, r)
		return
	}
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.Image(w, r, mimetype.Detect(data).String(), data)
}
