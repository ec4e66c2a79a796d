package solr

import (
	"context"
	"net/http"

	"github.com/fwojciec/docsearch"
	solrgo "github.com/stevenferrer/solr-go"
)

// SchemaFields are the full-text fields the core must define. The remaining
// fields rely on the default dynamic field rules (*_s, *_b, *_ss, *_t).
var SchemaFields = []solrgo.Field{
	{Name: docsearch.FieldTitle, Type: "text_en", Stored: true, Indexed: true},
	{Name: docsearch.FieldIndexedBody, Type: "text_en", Stored: true, Indexed: true},
	{Name: docsearch.FieldSearchSnippet, Type: "text_en", Stored: true, Indexed: true},
	{Name: docsearch.FieldKeywords, Type: "text_en", Stored: true, Indexed: true, MultiValued: true},
}

// SetupSchema adds the fields of SchemaFields the core does not define yet
// and returns the names of the added fields.
func (c *Client) SetupSchema(ctx context.Context) ([]string, error) {
	var resp struct {
		Fields []solrgo.Field `json:"fields"`
	}
	if err := c.send(ctx, http.MethodGet, "/schema/fields?wt=json", nil, &resp); err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(resp.Fields))
	for _, f := range resp.Fields {
		existing[f.Name] = true
	}

	var missing []solrgo.Field
	for _, f := range SchemaFields {
		if !existing[f.Name] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	if err := c.solr.AddFields(ctx, c.core, missing...); err != nil {
		return nil, classify("/schema", err)
	}

	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, f.Name)
	}
	return names, nil
}
