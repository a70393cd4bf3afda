// Package results renders dataset result sets as HTML tables and exports the
// rendered table as tab-separated text or a workbook.
package results

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-paramform/pkg/backend"
)

// Table is a result set flattened to display strings. Header follows the
// schema field order; every row has one cell per header column.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Build flattens fields and rows into a Table. Keys missing from a row
// become empty cells and keys outside fields are ignored.
func Build(fields []string, rows []map[string]any) Table {
	table := Table{
		Header: append([]string(nil), fields...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]string, len(fields))
		for i, field := range fields {
			value, ok := row[field]
			if !ok {
				continue
			}
			cells[i] = FormatCell(value)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// FromResultSet is Build over a decoded backend response.
func FromResultSet(set backend.ResultSet) Table {
	return Build(set.FieldNames(), set.Rows)
}

// FormatCell renders a decoded JSON value as cell text. Numbers decoded as
// json.Number keep the literal text the backend sent.
func FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// HTML renders the table markup. Cell text is escaped.
func (t Table) HTML() string {
	var builder strings.Builder
	builder.WriteString(`<table class="paramform-results">`)
	builder.WriteString("<thead><tr>")
	for _, name := range t.Header {
		builder.WriteString("<th>")
		builder.WriteString(html.EscapeString(name))
		builder.WriteString("</th>")
	}
	builder.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		builder.WriteString("<tr>")
		for _, cell := range row {
			builder.WriteString("<td>")
			builder.WriteString(html.EscapeString(cell))
			builder.WriteString("</td>")
		}
		builder.WriteString("</tr>")
	}
	builder.WriteString("</tbody></table>")
	return builder.String()
}
