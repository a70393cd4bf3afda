// Package query turns parameter state into the canonical query encoding sent
// to the backend and parses it back.
package query

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-paramform/pkg/params"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// multiSeparator joins multi select ids into a single query value. Ids are
// not escaped, so an id that itself contains a comma comes back from Decode
// split in two. Backends are expected to use comma-free option ids.
const multiSeparator = ","

// Pair is one name/value entry of the canonical encoding.
type Pair struct {
	Name  string
	Value string
}

// Params is the ordered, unescaped name to value mapping derived from a
// store. Order follows the store's insertion order.
type Params []Pair

// FromStore serialises the store. Date, number and single select values are
// included verbatim when non-empty; multi selects are comma-joined and left
// out when nothing is selected; range widgets are never included.
func FromStore(store *params.Store) Params {
	if store == nil {
		return nil
	}
	out := make(Params, 0, store.Len())
	for _, entry := range store.Entries() {
		value, ok := encodeValue(entry.Spec.Kind, entry.Value)
		if !ok {
			continue
		}
		out = append(out, Pair{Name: entry.Spec.Name, Value: value})
	}
	return out
}

func encodeValue(kind widget.Kind, value widget.Value) (string, bool) {
	switch kind {
	case widget.KindDate, widget.KindNumber, widget.KindSingleSelect:
		return value.Text, value.Text != ""
	case widget.KindMultiSelect:
		joined := strings.Join(value.IDs, multiSeparator)
		return joined, joined != ""
	case widget.KindRange:
		return "", false
	default:
		return "", false
	}
}

// Get returns the value for name.
func (p Params) Get(name string) (string, bool) {
	for _, pair := range p {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// Values converts the pairs into url.Values. Use Encode when key order
// matters; url.Values.Encode sorts keys.
func (p Params) Values() url.Values {
	out := make(url.Values, len(p))
	for _, pair := range p {
		out.Add(pair.Name, pair.Value)
	}
	return out
}

// Encode percent-encodes the pairs in order.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var builder strings.Builder
	for idx, pair := range p {
		if idx > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(url.QueryEscape(pair.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(pair.Value))
	}
	return builder.String()
}

// String implements fmt.Stringer using Encode.
func (p Params) String() string {
	return p.Encode()
}

// Parse reads an encoded query string back into ordered pairs. A leading "?"
// is ignored.
func Parse(raw string) (Params, error) {
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return nil, nil
	}
	var out Params
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		decodedName, err := url.QueryUnescape(name)
		if err != nil {
			return nil, err
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Name: decodedName, Value: decodedValue})
	}
	return out, nil
}

// Decode recovers typed values from pairs using the specs registered in the
// store. Names without a pair, or not present in the store, are absent from
// the result.
func Decode(p Params, store *params.Store) map[string]widget.Value {
	out := make(map[string]widget.Value)
	if store == nil {
		return out
	}
	for _, entry := range store.Entries() {
		raw, ok := p.Get(entry.Spec.Name)
		if !ok {
			continue
		}
		switch entry.Spec.Kind {
		case widget.KindDate, widget.KindNumber, widget.KindSingleSelect:
			out[entry.Spec.Name] = widget.Value{Kind: entry.Spec.Kind, Text: raw}
		case widget.KindMultiSelect:
			out[entry.Spec.Name] = widget.Value{Kind: widget.KindMultiSelect, IDs: strings.Split(raw, multiSeparator)}
		}
	}
	return out
}
