package v1 // import "github.com/Xunop/library-tracker/internal/api/v1"

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Xunop/library-tracker/internal/config"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/storage"
	"github.com/Xunop/library-tracker/internal/store"
)

type Handler struct {
	store  *store.Store
	covers *storage.CoverStorage
	opts   *config.Options
	// secret signs the session tokens.
	secret []byte
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(store *store.Store, covers *storage.CoverStorage, opts *config.Options, secret string) *Handler {
	return &Handler{
		store:  store,
		covers: covers,
		opts:   opts,
		secret: []byte(secret),
	}
}

func Server(router *mux.Router, handler *Handler) {
	router.Use(NewAuthInterceptor(handler.store, handler.secret).AuthenticationInterceptor)

	read := handler.requireCapability(model.CapReadCatalog)
	edit := handler.requireCapability(model.CapEditCatalog)
	admin := handler.requireCapability(model.CapManageUsers)

	router.HandleFunc("/auth/login", handler.loginPage).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", handler.signIn).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", handler.signOut).Methods(http.MethodGet, http.MethodPost)

	router.HandleFunc("/", read(handler.listBooks)).Methods(http.MethodGet)
	router.HandleFunc("/books/duplicates", read(handler.findDuplicates)).Methods(http.MethodGet)
	router.HandleFunc("/books", edit(handler.createBook)).Methods(http.MethodPost)
	router.HandleFunc("/books/{id:[0-9]+}", read(handler.getBook)).Methods(http.MethodGet)
	router.HandleFunc("/books/{id:[0-9]+}", edit(handler.updateBook)).Methods(http.MethodPost, http.MethodPut)
	router.HandleFunc("/books/{id:[0-9]+}", edit(handler.deleteBook)).Methods(http.MethodDelete)
	router.HandleFunc("/books/{id:[0-9]+}/delete", edit(handler.deleteBook)).Methods(http.MethodPost)
	router.HandleFunc("/books/{id:[0-9]+}/authors", edit(handler.replaceBookAuthors)).Methods(http.MethodPost)

	router.HandleFunc("/import", edit(handler.importBooks)).Methods(http.MethodPost)
	router.HandleFunc("/export.csv", read(handler.exportBooks)).Methods(http.MethodGet)

	router.HandleFunc("/refs/{kind}", read(handler.listReferences)).Methods(http.MethodGet)
	router.HandleFunc("/refs/{kind}", edit(handler.createReference)).Methods(http.MethodPost)
	router.HandleFunc("/refs/{kind}/{id:[0-9]+}", edit(handler.deleteReference)).Methods(http.MethodDelete)
	router.HandleFunc("/refs/{kind}/{id:[0-9]+}/delete", edit(handler.deleteReference)).Methods(http.MethodPost)

	router.HandleFunc("/admin/roles", admin(handler.listRoles)).Methods(http.MethodGet)
	router.HandleFunc("/admin/users", admin(handler.listUsers)).Methods(http.MethodGet)
	router.HandleFunc("/admin/users", admin(handler.createUser)).Methods(http.MethodPost)
	router.HandleFunc("/admin/users/{id:[0-9]+}/roles", admin(handler.setUserRoles)).Methods(http.MethodPost)
	router.HandleFunc("/admin/users/{id:[0-9]+}/password", admin(handler.resetPassword)).Methods(http.MethodPost)

	router.HandleFunc("/covers/{name}", handler.serveCover).Methods(http.MethodGet)
	router.HandleFunc("/thumbs/{name}", handler.serveThumbnail).Methods(http.MethodGet)
}
