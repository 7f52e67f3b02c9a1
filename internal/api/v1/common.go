package v1

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/model"
)

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func (h *Handler) maxBodyBytes() int64 {
	return h.opts.MaxUploadSize << 20
}

// bind decodes a JSON body, or else the form values, into v. Form fields use
// the json names of v, and repeated fields fill slices.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return errors.Wrap(err, "invalid JSON body")
		}
		return nil
	}

	// ParseMultipartForm parses url-encoded bodies too before reporting
	// they are not multipart.
	if err := r.ParseMultipartForm(h.maxBodyBytes()); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return errors.Wrap(err, "invalid form")
	}
	return decodeForm(r.Form, v)
}

func decodeForm(values url.Values, v any) error {
	input := make(map[string]any, len(values))
	for key, list := range values {
		key = strings.TrimSuffix(key, "[]")
		if len(list) == 1 {
			input[key] = list[0]
		} else {
			input[key] = list
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return errors.Wrap(err, "invalid form")
	}
	return nil
}

// badInput answers 413 for oversized bodies and 400 otherwise.
func badInput(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.TooLarge(w, r)
		return
	}
	response.BadRequest(w, r, err)
}

// isLocalPath accepts "/x" but not "//host/x", so redirects stay on this site.
func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.HasPrefix(path, "/\\")
}

type userResponse struct {
	*model.User
	Roles []model.Role `json:"roles"`
}

func newUserResponse(user *model.User) *userResponse {
	return &userResponse{User: user, Roles: user.Roles.Slice()}
}

func newUserListResponse(users []*model.User) []*userResponse {
	list := make([]*userResponse, 0, len(users))
	for _, user := range users {
		list = append(list, newUserResponse(user))
	}
	return list
}
