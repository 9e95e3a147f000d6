package httpkit

import (
	"net/http"

	pstrings "storeuptime/internal/platform/strings"
)

// MountUnder mounts a subrouter at prefix and applies per module middleware
// an empty prefix mounts in a group at the current level
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	attach := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if prefix == "" || prefix == "/" {
		r.Group(attach)
		return
	}
	r.Route(pstrings.MustPrefix(prefix), attach)
}
