package http

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Sin WithUnsafe goldmark omite el HTML crudo y filtra URLs peligrosas,
// así que su salida se puede marcar como template.HTML.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// renderMarkdown convierte el contenido de un turno en HTML. Si falla, se
// devuelve el texto escapado.
func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}
