// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains the web form served at the root route.
//
//go:embed web
var Files embed.FS
