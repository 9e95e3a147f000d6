// Package module holds the module contract and the bootstrap port registry
package module

import (
	phttp "storeuptime/internal/platform/net/http"
)

// Module mirrors modkit.Module without importing modkit, so port consumers avoid cycles
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
