// Package template holds the seam HTML renderers execute markup through. The
// pongo2 implementation lives in the gotemplate subpackage.
package template
