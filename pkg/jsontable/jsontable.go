// Package jsontable renders JSON records as a Bootstrap HTML table.
package jsontable

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Labels used for boolean cells.
var (
	TrueLabel  = "Yes"
	FalseLabel = "No"
)

const emptyHTML = `<div class="alert alert-info">No data to display</div>`

// Convert renders raw as an HTML table. An array is used as-is; an object
// contributes its first array-valued property. Columns come from the keys of
// the first record in document order. Convert never fails: problems are
// rendered as an error alert.
func Convert(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return errorHTML("invalid JSON input")
	}

	records := recordsOf(gjson.ParseBytes(raw))
	if len(records) == 0 {
		return emptyHTML
	}
	if !records[0].IsObject() {
		return errorHTML(fmt.Sprintf("expected records to be objects, got %s", kind(records[0])))
	}

	columns := keysOf(records[0])

	var b strings.Builder
	b.WriteString(`<div class="table-responsive">`)
	b.WriteString(`<table class="table table-hover table-striped">`)
	b.WriteString(`<thead><tr>`)
	for _, col := range columns {
		b.WriteString(`<th class="table-primary text-white">`)
		b.WriteString(html.EscapeString(col))
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)

	for i, rec := range records {
		rowClass := "table-light"
		if i%2 == 1 {
			rowClass = "table-white"
		}
		b.WriteString(`<tr class="` + rowClass + `">`)
		values := valuesOf(rec)
		for _, col := range columns {
			b.WriteString(`<td>`)
			b.WriteString(cell(values[col]))
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}

	b.WriteString(`</tbody></table></div>`)
	fmt.Fprintf(&b, `<div class="mt-3 text-muted"><small>Total: %d records, %d columns</small></div>`,
		len(records), len(columns))
	return b.String()
}

func recordsOf(v gjson.Result) []gjson.Result {
	switch {
	case v.IsArray():
		return v.Array()
	case v.IsObject():
		var found []gjson.Result
		v.ForEach(func(_, prop gjson.Result) bool {
			if prop.IsArray() {
				found = prop.Array()
				return false
			}
			return true
		})
		return found
	}
	return nil
}

func keysOf(rec gjson.Result) []string {
	var keys []string
	seen := map[string]bool{}
	rec.ForEach(func(k, _ gjson.Result) bool {
		if name := k.String(); !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
		return true
	})
	return keys
}

// valuesOf indexes a record by key. Records that are not objects have no
// values, so every cell renders as missing.
func valuesOf(rec gjson.Result) map[string]gjson.Result {
	values := map[string]gjson.Result{}
	if !rec.IsObject() {
		return values
	}
	rec.ForEach(func(k, v gjson.Result) bool {
		values[k.String()] = v
		return true
	})
	return values
}

func cell(v gjson.Result) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return `<span class="text-muted">-</span>`
	case v.Type == gjson.True:
		return `<span class="badge bg-success">` + html.EscapeString(TrueLabel) + `</span>`
	case v.Type == gjson.False:
		return `<span class="badge bg-secondary">` + html.EscapeString(FalseLabel) + `</span>`
	case v.Type == gjson.Number:
		return `<span class="text-primary">` + html.EscapeString(v.Raw) + `</span>`
	case v.Type == gjson.String:
		s := html.EscapeString(v.Str)
		if strings.Contains(v.Str, "@") && strings.Contains(v.Str, ".") {
			return `<a href="mailto:` + s + `" class="text-primary">` + s + `</a>`
		}
		if strings.HasPrefix(v.Str, "http") {
			return `<a href="` + s + `" target="_blank" class="text-info">` + s + `</a>`
		}
		return s
	case v.IsArray():
		return `<span class="badge bg-secondary">` + strconv.Itoa(len(v.Array())) + ` items</span>`
	}
	return html.EscapeString(v.Get("@ugly").Raw)
}

func kind(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	}
	return "null"
}

func errorHTML(msg string) string {
	return `<div class="alert alert-danger">Error: ` + html.EscapeString(msg) + `</div>`
}
