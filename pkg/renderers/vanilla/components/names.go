package components

// Canonical component names used by the vanilla renderer and default registry.
// They match the kind names carried by form controls.
const (
	NameDate        = "date"
	NameNumber      = "number"
	NameSelect      = "single-select"
	NameMultiSelect = "multi-select"
)

// Runtime asset names shared by every default component.
const (
	Stylesheet    = "paramform.css"
	RuntimeScript = "paramform.js"
)
