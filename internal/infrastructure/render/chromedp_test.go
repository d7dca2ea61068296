package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCompleteHTML(t *testing.T) {
	r := &ChromedpRenderer{}

	t.Run("wraps fragment in a document", func(t *testing.T) {
		out := r.buildCompleteHTML(&RenderRequest{
			HTML:  "<p>Привет</p>",
			Title: "СЧ-20240301-001",
		})
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, `<meta charset="UTF-8">`)
		assert.Contains(t, out, "<title>СЧ-20240301-001</title>")
		assert.Contains(t, out, "<body><p>Привет</p></body>")
	})

	t.Run("complete document passes through unchanged", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>done</body></html>"
		assert.Equal(t, doc, r.buildCompleteHTML(&RenderRequest{HTML: doc}))
	})

	t.Run("empty title omits the tag", func(t *testing.T) {
		out := r.buildCompleteHTML(&RenderRequest{HTML: "<p>x</p>"})
		assert.NotContains(t, out, "<title>")
	})

	t.Run("title markup is escaped", func(t *testing.T) {
		out := r.buildCompleteHTML(&RenderRequest{
			HTML:  "<p>x</p>",
			Title: `</title><script>alert(1)</script>`,
		})
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	})
}
