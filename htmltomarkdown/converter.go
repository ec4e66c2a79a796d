package htmltomarkdown

import (
	"html"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/fwojciec/docsearch"
	xhtml "golang.org/x/net/html"
)

// Ensure Converter implements docsearch.Converter at compile time.
var _ docsearch.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to render the text content of a page.
// Only the base plugin is installed, so no markdown syntax is produced:
// links render as their text and block elements as paragraphs.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			&plainTextPlugin{},
		),
		converter.WithEscapeMode(converter.EscapeModeDisabled),
	)
	return &Converter{conv: conv}
}

// Convert renders the text content of html.
func (c *Converter) Convert(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(input)
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "failed to convert HTML: %v", err)
	}

	// The base plugin re-encodes angle brackets in text nodes.
	return html.UnescapeString(result), nil
}

// plainTextPlugin drops media and form controls and keeps line breaks.
type plainTextPlugin struct{}

func (p *plainTextPlugin) Name() string {
	return "plaintext"
}

func (p *plainTextPlugin) Init(conv *converter.Converter) error {
	for _, tag := range []string{"img", "svg", "picture", "video", "audio", "canvas", "object", "embed", "button", "select", "template"} {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	conv.Register.RendererFor("br", converter.TagTypeInline, renderLineBreak, converter.PriorityStandard)
	return nil
}

func renderLineBreak(_ converter.Context, w converter.Writer, _ *xhtml.Node) converter.RenderStatus {
	w.WriteRune('\n')
	return converter.RenderSuccess
}
