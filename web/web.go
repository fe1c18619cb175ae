// Package web bundles the browser client and the default catalog.
package web

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

//go:embed data.json
var defaultCatalog []byte

// Handler serves the client assets from the site root.
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}

	return http.FileServerFS(sub)
}

// DefaultCatalog returns the catalog bundled with the binary.
func DefaultCatalog() io.Reader {
	return bytes.NewReader(defaultCatalog)
}
