package response

import (
	"net/http"
	"time"
)

// HTML writes a HTML page with a 200 status code.
func HTML(w http.ResponseWriter, r *http.Request, body string) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", "text/html; charset=utf-8")
	builder.WithHeader("Cache-Control", "no-cache, max-age=0, must-revalidate, no-store")
	builder.WithBody(body)
	builder.Write()
}

// Text writes a plain text body with a 200 status code.
func Text(w http.ResponseWriter, r *http.Request, body string) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", "text/plain; charset=utf-8")
	builder.WithBody(body)
	builder.Write()
}

// CSV sends data as a downloadable CSV file.
func CSV(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", "text/csv; charset=utf-8")
	builder.WithAttachment(filename)
	builder.WithBody(data)
	builder.Write()
}

// Redirect redirects the user to another location.
func Redirect(w http.ResponseWriter, r *http.Request, uri string) {
	http.Redirect(w, r, uri, http.StatusFound)
}

// Image serves a stored image file with long caching. The files are
// immutable since every upload gets a fresh name.
func Image(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", contentType)
	builder.WithCaching(30 * 24 * time.Hour)
	builder.WithoutCompression()
	builder.WithBody(data)
	builder.Write()
}
