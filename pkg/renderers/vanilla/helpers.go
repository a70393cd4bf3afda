package vanilla

import (
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// labelPolicy cleans labels, which the backend may send as HTML fragments.
var labelPolicy = bluemonday.UGCPolicy()

func sanitizeLabel(label string) string {
	return labelPolicy.Sanitize(label)
}

// filterSanitizeLabel exposes sanitizeLabel to templates as "sanitize_label".
func filterSanitizeLabel(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(sanitizeLabel(in.String())), nil
}

func componentControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "pf-" + strings.Join(strings.Fields(trimmed), "-")
}

func componentLabelID(name string) string {
	controlID := componentControlID(name)
	if controlID == "" {
		return ""
	}
	return controlID + "-label"
}
