package templates

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/core"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestVendorIndex(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		html := renderString(t, VendorIndex(nil))
		assert.Contains(t, html, "<!doctype html>")
		assert.Contains(t, html, "<title>Vendors</title>")
		assert.Contains(t, html, "<p>No vendors yet.</p>")
		assert.NotContains(t, html, "<ul>")
	})

	t.Run("links", func(t *testing.T) {
		html := renderString(t, VendorIndex([]catalog.Vendor{
			{Name: "Acme", FullName: "Acme Corp"},
			{Name: "B&B Tools", FullName: "<i>B</i>"},
		}))
		assert.Contains(t, html, `<li><a href="/vendors/Acme">Acme</a> Acme Corp</li>`)
		assert.Contains(t, html, `href="/vendors/B&amp;B%20Tools">B&amp;B Tools</a>`)
		assert.Contains(t, html, "&lt;i&gt;B&lt;/i&gt;")
		assert.NotContains(t, html, "<i>B</i>")
	})
}

func TestSKUTable(t *testing.T) {
	rows := []core.Row{
		{VendorName: "Acme", SKU: "A-1", SKUType: "vendor", SKUStatus: "current", OldSKU: "NA"},
		{VendorName: "Acme", SKU: "<b>A-0</b>", SKUType: "vendor", SKUStatus: "discontinued", OldSKU: "NA"},
	}
	html := renderString(t, SKUTable(catalog.Vendor{Name: "Acme"}, rows))

	assert.Contains(t, html, "<title>Acme SKUs</title>")
	assert.Contains(t, html, "<p>2 SKUs &middot; ")
	assert.Contains(t, html, `href="/api/vendors/Acme/export?format=xlsx"`)
	assert.Contains(t, html, `href="/api/vendors/Acme/export?format=csv"`)
	assert.Contains(t, html, "<th>old_sku</th>")
	assert.NotContains(t, html, "<th>report</th>")
	assert.Contains(t, html, `<tr data-status="current"><td>Acme</td><td>A-1</td>`)
	assert.Contains(t, html, `<tr data-status="discontinued">`)
	assert.Contains(t, html, "&lt;b&gt;A-0&lt;/b&gt;")
}

func TestErrorAlert(t *testing.T) {
	html := renderString(t, ErrorAlert("Vendor <x> not found", "Create it first", "SKU006"))
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, "<strong>Vendor &lt;x&gt; not found</strong>")
	assert.Contains(t, html, "<p>Create it first</p>")
	assert.Contains(t, html, "<small>Code: SKU006</small>")

	html = renderString(t, ErrorAlert("Something went wrong", "", "ERR000"))
	assert.NotContains(t, html, "<p>")
}

func TestPage_RendersChildren(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<main>hi</main>")
		return err
	})
	var buf bytes.Buffer
	require.NoError(t, Page("a < b").Render(templ.WithChildren(context.Background(), body), &buf))

	html := buf.String()
	assert.Contains(t, html, "<title>a &lt; b</title>")
	assert.Contains(t, html, "<body><main>hi</main></body></html>")
}
