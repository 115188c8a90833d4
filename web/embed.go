package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

// Templates returns the embedded page templates.
func Templates() (fs.FS, error) {
	return fs.Sub(templatesFS, "templates")
}
