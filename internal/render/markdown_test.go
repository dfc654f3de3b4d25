package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	t.Run("Renders basic formatting", func(t *testing.T) {
		out := string(Markdown("**bold** and _italic_"))
		assert.Contains(t, out, "<strong>bold</strong>")
		assert.Contains(t, out, "<em>italic</em>")
	})

	t.Run("Strips scripts", func(t *testing.T) {
		out := string(Markdown("hi <script>alert(1)</script>"))
		assert.NotContains(t, out, "<script")
		assert.NotContains(t, out, "alert(1)</script>")
	})

	t.Run("External links open in a new tab without referrer", func(t *testing.T) {
		out := string(Markdown("[site](https://example.com)"))
		assert.Contains(t, out, `href="https://example.com"`)
		assert.Contains(t, out, `target="_blank"`)
		assert.Contains(t, out, "noreferrer")
	})

	t.Run("Javascript links are removed", func(t *testing.T) {
		out := string(Markdown("[x](javascript:alert(1))"))
		assert.NotContains(t, out, "javascript:")
	})

	t.Run("GFM strikethrough is supported", func(t *testing.T) {
		out := string(Markdown("~~gone~~"))
		assert.Contains(t, out, "<del>gone</del>")
	})
}
