package request

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// RouteIntParam returns an URL route parameter as int32, or 0 when it is
// missing or not a positive number.
func RouteIntParam(r *http.Request, param string) int32 {
	vars := mux.Vars(r)
	value, err := strconv.ParseInt(vars[param], 10, 32)
	if err != nil {
		return 0
	}

	if value < 0 {
		return 0
	}

	return int32(value)
}

// RouteStringParam returns a URL route parameter as string.
func RouteStringParam(r *http.Request, param string) string {
	vars := mux.Vars(r)
	return vars[param]
}

// QueryStringParam returns a trimmed query string parameter.
func QueryStringParam(r *http.Request, param string) string {
	return strings.TrimSpace(r.URL.Query().Get(param))
}

// QueryIntParam returns a query string parameter as int32, or defaultValue
// when it is absent or malformed.
func QueryIntParam(r *http.Request, param string, defaultValue int32) int32 {
	value, err := strconv.ParseInt(QueryStringParam(r, param), 10, 32)
	if err != nil {
		return defaultValue
	}
	return int32(value)
}

// QueryOptionalIntParam returns nil when the parameter is absent or malformed.
func QueryOptionalIntParam(r *http.Request, param string) *int32 {
	value, err := strconv.ParseInt(QueryStringParam(r, param), 10, 32)
	if err != nil {
		return nil
	}
	v := int32(value)
	return &v
}
