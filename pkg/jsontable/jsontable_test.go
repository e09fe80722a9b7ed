package jsontable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_NullAndBoolean(t *testing.T) {
	out := Convert([]byte(`[{"a":1,"b":null},{"a":2,"b":true}]`))

	assert.Equal(t, 2, strings.Count(out, "<th "), "one header per column")
	assert.Contains(t, out, `<th class="table-primary text-white">a</th><th class="table-primary text-white">b</th>`)
	assert.Contains(t, out, `<span class="text-muted">-</span>`)
	assert.Contains(t, out, `<span class="badge bg-success">Yes</span>`)
	assert.Contains(t, out, `<span class="text-primary">1</span>`)
	assert.Contains(t, out, `<tr class="table-light">`)
	assert.Contains(t, out, `<tr class="table-white">`)
	assert.Contains(t, out, "Total: 2 records, 2 columns")
}

func TestConvert_ColumnsKeepDocumentOrder(t *testing.T) {
	out := Convert([]byte(`[{"zeta":1,"alpha":2,"mid":3}]`))

	z := strings.Index(out, ">zeta<")
	a := strings.Index(out, ">alpha<")
	m := strings.Index(out, ">mid<")
	require.True(t, z >= 0 && a >= 0 && m >= 0)
	assert.Less(t, z, a)
	assert.Less(t, a, m)
}

func TestConvert_ObjectUsesFirstArrayProperty(t *testing.T) {
	out := Convert([]byte(`{"meta":{"page":1},"rows":[{"x":"hi"}],"other":[{"y":1}]}`))

	assert.Contains(t, out, ">x</th>")
	assert.NotContains(t, out, ">y</th>")
	assert.Contains(t, out, "Total: 1 records, 1 columns")
}

func TestConvert_Empty(t *testing.T) {
	for _, in := range []string{`[]`, `null`, `{}`, `{"a":1}`, `""`} {
		assert.Equal(t, emptyHTML, Convert([]byte(in)), "input %s", in)
	}
}

func TestConvert_Errors(t *testing.T) {
	out := Convert([]byte(`[{"a":1}`))
	assert.True(t, strings.HasPrefix(out, `<div class="alert alert-danger">Error: `), out)

	out = Convert([]byte(`[1,2,3]`))
	assert.Contains(t, out, "alert-danger")
	assert.Contains(t, out, "number")
}

func TestConvert_CellFormats(t *testing.T) {
	out := Convert([]byte(`[{
		"email":"ana@example.com",
		"site":"https://example.com/a?b=1&c=2",
		"tags":["x","y","z"],
		"flag":false,
		"nested":{"k": [1, 2]},
		"text":"<b>bold</b>"
	}]`))

	assert.Contains(t, out, `<a href="mailto:ana@example.com" class="text-primary">ana@example.com</a>`)
	assert.Contains(t, out, `<a href="https://example.com/a?b=1&amp;c=2" target="_blank" class="text-info">`)
	assert.Contains(t, out, `<span class="badge bg-secondary">3 items</span>`)
	assert.Contains(t, out, `<span class="badge bg-secondary">No</span>`)
	assert.Contains(t, out, `{&#34;k&#34;:[1,2]}`)
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	assert.NotContains(t, out, "<b>bold</b>")
}

func TestConvert_MissingKeysRenderPlaceholder(t *testing.T) {
	out := Convert([]byte(`[{"a":1,"b":2},{"a":3}]`))
	assert.Equal(t, 1, strings.Count(out, `<span class="text-muted">-</span>`))
}

func TestConvert_EscapesHeaders(t *testing.T) {
	out := Convert([]byte(`[{"<script>":1}]`))
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}
