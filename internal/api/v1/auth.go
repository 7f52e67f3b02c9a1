package v1

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/api/auth"
	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
)

var errInvalidCredentials = errors.New("invalid username or password")

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Connexion</title></head>
<body>
<form method="post" action="/auth/login">
<input type="hidden" name="next" value="{{.Next}}">
<label>Utilisateur <input name="username" autocomplete="username" required></label>
<label>Mot de passe <input name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Se connecter</button>
</form>
</body>
</html>
`))

type signInForm struct {
	model.UserSigninRequest
	Next string `json:"next"`
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	next := request.QueryStringParam(r, "next")
	if !isLocalPath(next) {
		next = "/"
	}
	if request.User(r) != nil {
		response.Redirect(w, r, next)
		return
	}

	var page strings.Builder
	if err := loginTemplate.Execute(&page, struct{ Next string }{next}); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.HTML(w, r, page.String())
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var signin signInForm
	if err := h.bind(w, r, &signin); err != nil {
		badInput(w, r, err)
		return
	}
	username := strings.TrimSpace(signin.Username)

	user, err := h.store.GetUser(r.Context(), &model.FindUser{Username: &username})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if user == nil || user.RowStatus == model.Archived || !auth.CheckPassword(user.PasswordHash, signin.Password) {
		log.Warn("Failed login attempt",
			zap.String("client_ip", request.ClientIP(r)),
			zap.String("username", username),
		)
		response.BadRequest(w, r, errInvalidCredentials)
		return
	}

	expireTime := time.Now().Add(h.opts.SessionDuration)
	accessToken, err := auth.GenerateAccessToken(user.Username, user.ID, expireTime, h.secret)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if err := h.store.SetLastLogin(r.Context(), user.ID); err != nil {
		log.Warn("Failed to record last login", zap.Int32("user_id", user.ID), zap.Error(err))
	}
	http.SetCookie(w, buildAccessTokenCookie(r, accessToken, expireTime))
	log.Info("User signed in", zap.String("username", user.Username), zap.String("client_ip", request.ClientIP(r)))

	if !isJSONRequest(r) && isLocalPath(signin.Next) {
		response.Redirect(w, r, signin.Next)
		return
	}
	response.OK(w, r, newUserResponse(user))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, buildAccessTokenCookie(r, "", time.Time{}))
	if r.Method == http.MethodGet {
		response.Redirect(w, r, loginPath)
		return
	}
	response.NoContent(w, r)
}

// buildAccessTokenCookie returns an expired cookie when expireTime is zero.
func buildAccessTokenCookie(r *http.Request, accessToken string, expireTime time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     auth.AccessTokenCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	}
	if expireTime.IsZero() {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	} else {
		cookie.Expires = expireTime
	}
	return cookie
}
