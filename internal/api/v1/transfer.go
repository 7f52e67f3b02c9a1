package v1

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/catalog"
	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
)

// importBooks accepts a multipart "file" field or a raw text/csv body.
func (h *Handler) importBooks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())

	var input io.Reader
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		input = r.Body
	} else {
		if err := r.ParseMultipartForm(h.maxBodyBytes()); err != nil {
			badInput(w, r, err)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			response.BadRequest(w, r, errors.New("a CSV file is required"))
			return
		}
		defer file.Close()
		input = file
	}

	log.Info("CSV import requested", zap.String("username", request.User(r).Username))
	result, err := catalog.Import(r.Context(), h.store, input)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, r)
			return
		}
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, result)
}

func (h *Handler) exportBooks(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := catalog.Export(r.Context(), h.store, &buf); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.CSV(w, r, "catalogue.csv", buf.Bytes())
}
