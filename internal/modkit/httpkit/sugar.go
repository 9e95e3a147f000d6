package httpkit

import (
	"net/http"

	phttp "storeuptime/internal/platform/net/http"
)

// Get mounts a body-less GET handler through the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post mounts a body-less POST handler through the envelope adapter
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// GetQuery mounts a GET handler whose query string binds and validates into T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) Response) {
	phttp.GetQuery(r, path, h)
}

// PostJSON mounts a JSON body handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}
