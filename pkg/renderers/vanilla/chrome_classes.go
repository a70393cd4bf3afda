package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "paramform-form"
	ClassField    ChromeClass = "paramform-field"
	ClassLabel    ChromeClass = "paramform-label"
	ClassErrors   ChromeClass = "paramform-errors"
	ClassPage     ChromeClass = "paramform-page"
	ClassDatasets ChromeClass = "paramform-datasets"
	ClassActions  ChromeClass = "paramform-actions"
)
