package vanilla

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-paramform/pkg/renderers/vanilla/components"
)

var (
	//go:embed templates
	templateBundle embed.FS

	//go:embed assets
	assetBundle embed.FS
	assets, _   = fs.Sub(assetBundle, "assets")
)

// Names of the runtime files every page links.
const (
	StylesheetName    = components.Stylesheet
	RuntimeScriptName = components.RuntimeScript
)

// TemplatesFS returns the built-in templates, rooted so that names start with
// "templates/".
func TemplatesFS() fs.FS {
	return templateBundle
}

// AssetsFS returns paramform.js and paramform.css at its root, ready to be
// served under the renderer's asset base.
func AssetsFS() fs.FS {
	return assets
}
