package v1

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/api/auth"
	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
)

const loginPath = "/auth/login"

// AuthInterceptor resolves the session of every request. It never rejects a
// request itself: routes declare what they need with requireCapability.
type AuthInterceptor struct {
	store  *store.Store
	secret []byte
}

func NewAuthInterceptor(store *store.Store, secret []byte) *AuthInterceptor {
	return &AuthInterceptor{store: store, secret: secret}
}

func (m *AuthInterceptor) AuthenticationInterceptor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isUnauthorizeAllowed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		accessToken := getAccessToken(r)
		if accessToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authenticate(r.Context(), accessToken)
		if err != nil {
			log.Debug("Failed to authenticate user",
				zap.String("client_ip", request.ClientIP(r)),
				zap.String("user_agent", r.UserAgent()),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
	})
}

func (m *AuthInterceptor) authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := auth.ParseAccessToken(accessToken, m.secret)
	if err != nil {
		return nil, err
	}
	user, err := m.store.GetUser(ctx, &model.FindUser{ID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, errors.Errorf("user not found with ID: %d", userID)
	}
	if user.RowStatus == model.Archived {
		return nil, errors.Errorf("user is archived with ID: %d", userID)
	}
	return user, nil
}

// requireCapability guards a route. Anonymous page loads are sent to the
// login page, other anonymous requests get 401 and users lacking the
// capability get 403.
func (h *Handler) requireCapability(c model.Capability) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			err := model.Authorize(request.User(r), c.AcceptedRoles()...)
			switch {
			case err == nil:
				next(w, r)
			case errors.Is(err, model.ErrNotAuthenticated):
				if r.Method == http.MethodGet {
					response.Redirect(w, r, loginPath+"?next="+url.QueryEscape(r.URL.RequestURI()))
					return
				}
				response.Unauthorized(w, r)
			default:
				response.Forbidden(w, r)
			}
		}
	}
}

func getAccessToken(r *http.Request) string {
	// Check the HTTP Authorization header first
	authorizationHeaders := r.Header.Get("Authorization")
	// Check bearer token
	if authorizationHeaders != "" {
		splitToken := strings.Split(authorizationHeaders, "Bearer ")
		if len(splitToken) == 2 {
			return splitToken[1]
		}
	}

	// Check the cookie header
	cookie, err := r.Cookie(auth.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
