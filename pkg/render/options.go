package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form.
type RenderOptions struct {
	// ChangeEndpoint is the URL prefix committed changes are posted to. The
	// parameter name is appended as the last path segment.
	ChangeEndpoint string
	// SlideEndpoint receives live slider positions. Empty keeps readouts
	// purely client side.
	SlideEndpoint string
	// Errors surfaces server-side feedback keyed by parameter name.
	Errors map[string][]string
}
