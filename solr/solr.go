// Package solr implements docsearch.Index against an Apache Solr core.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
	solrgo "github.com/stevenferrer/solr-go"
)

// Connection defaults.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 8983
	DefaultCore    = "neurone"
	DefaultTimeout = 15 * time.Second
)

// Ensure Client implements docsearch.Index at compile time.
var _ docsearch.Index = (*Client)(nil)

// HostURL returns the base URL of a Solr instance.
func HostURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Client talks to one Solr core over its JSON API.
type Client struct {
	solr    *solrgo.JSONClient
	sender  solrgo.RequestSender
	baseURL string
	core    string
	client  *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithTimeout sets the timeout of one request.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// NewClient creates a client for core on the instance at baseURL, for
// example http://localhost:8983.
func NewClient(baseURL, core string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		core:    url.PathEscape(core),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	c.sender = solrgo.NewDefaultRequestSender().WithHTTPClient(c.client)
	c.solr = solrgo.NewJSONClient(c.baseURL).WithRequestSender(c.sender)
	return c
}

// Ping checks that the core answers its ping handler.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.send(ctx, http.MethodGet, "/admin/ping?wt=json", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != "OK" {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "solr ping status %q", resp.Status)
	}
	return nil
}

// Add posts entries to the update handler. They become searchable after
// Commit.
func (c *Client) Add(ctx context.Context, entries []*docsearch.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return c.update(ctx, entries)
}

// DeleteAll deletes every document of the core.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.update(ctx, solrgo.M{"delete": solrgo.M{"query": "*:*"}})
}

// Commit makes pending updates visible.
func (c *Client) Commit(ctx context.Context) error {
	// JSONClient.Commit drops the error body of a failed commit.
	return c.update(ctx, solrgo.M{"commit": solrgo.M{}})
}

// Search posts q to the JSON query handler.
func (c *Client) Search(ctx context.Context, q *docsearch.Query) (*docsearch.IndexResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(NewQuery(q).BuildQuery())
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINTERNAL, "encoding solr query: %v", err)
	}

	// solrgo.QueryResponse omits the highlighting section.
	var resp selectResponse
	if err := c.send(ctx, http.MethodPost, "/query", body, &resp); err != nil {
		return nil, err
	}

	out := &docsearch.IndexResponse{
		NumFound:     resp.Response.NumFound,
		Entries:      make([]*docsearch.IndexEntry, 0, len(resp.Response.Docs)),
		Highlighting: make(map[string]map[string][]string, len(resp.Highlighting)),
	}
	for _, d := range resp.Response.Docs {
		out.Entries = append(out.Entries, d.entry())
	}
	for id, fields := range resp.Highlighting {
		hl := make(map[string][]string, len(fields))
		for field, snippets := range fields {
			hl[field] = []string(snippets)
		}
		out.Highlighting[id] = hl
	}
	return out, nil
}

func (c *Client) update(ctx context.Context, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return docsearch.Errorf(docsearch.EINTERNAL, "encoding solr update: %v", err)
	}
	resp, err := c.solr.Update(ctx, c.core, solrgo.JSON, bytes.NewReader(buf))
	if err != nil {
		return classify("/update", err)
	}
	if resp.BaseResponse != nil && resp.Error != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "solr /update: %s", resp.Error.Msg)
	}
	return nil
}

// send issues a request below the core URL through the client's request
// sender and decodes the JSON answer into v when v is not nil.
func (c *Client) send(ctx context.Context, method, path string, body []byte, v any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	resp, err := c.sender.SendRequest(ctx, method, c.coreURL()+path, solrgo.JSON.String(), r)
	if err != nil {
		return classify(path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "solr %s: HTTP %d: %s", path, resp.StatusCode, errorMessage(data))
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "decoding solr %s response: %v", path, err)
	}
	return nil
}

func (c *Client) coreURL() string {
	return c.baseURL + "/solr/" + c.core
}

// errorMessage extracts the message of a Solr error body.
func errorMessage(data []byte) string {
	var body struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error.Msg != "" {
		return body.Error.Msg
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func classify(path string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return docsearch.Errorf(docsearch.ETIMEOUT, "solr %s timed out", path)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return docsearch.Errorf(docsearch.ETIMEOUT, "solr %s timed out", path)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return docsearch.Errorf(docsearch.EUNAVAILABLE, "solr %s: %v", path, err)
}

type selectResponse struct {
	Response struct {
		NumFound int       `json:"numFound"`
		Docs     []solrDoc `json:"docs"`
	} `json:"response"`
	Highlighting map[string]map[string]values `json:"highlighting"`
}

// solrDoc mirrors IndexEntry but tolerates schemas that return single
// valued fields as arrays.
type solrDoc struct {
	ID            value  `json:"id"`
	DocID         value  `json:"docId_s"`
	Locale        value  `json:"locale_s"`
	Relevant      flag   `json:"relevant_b"`
	Title         value  `json:"title_t"`
	SearchSnippet value  `json:"searchSnippet_t"`
	IndexedBody   value  `json:"indexedBody_t"`
	Keywords      values `json:"keywords_t"`
	Tags          values `json:"tags_ss"`
	URL           value  `json:"url_t"`
	MaskedURL     value  `json:"maskedUrl_s"`
	Type          value  `json:"type_s"`
}

func (d solrDoc) entry() *docsearch.IndexEntry {
	return &docsearch.IndexEntry{
		ID:            string(d.ID),
		DocID:         string(d.DocID),
		Locale:        string(d.Locale),
		Relevant:      bool(d.Relevant),
		Title:         string(d.Title),
		SearchSnippet: string(d.SearchSnippet),
		IndexedBody:   string(d.IndexedBody),
		Keywords:      append([]string{}, d.Keywords...),
		Tags:          append([]string{}, d.Tags...),
		URL:           string(d.URL),
		MaskedURL:     string(d.MaskedURL),
		Type:          string(d.Type),
	}
}

// value decodes a string or the first element of a string array.
type value string

func (v *value) UnmarshalJSON(b []byte) error {
	var vs values
	if err := vs.UnmarshalJSON(b); err != nil {
		return err
	}
	if len(vs) > 0 {
		*v = value(vs[0])
	}
	return nil
}

// values decodes a string array or a single string.
type values []string

func (v *values) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*v = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected string or string array: %w", err)
	}
	*v = values{one}
	return nil
}

// flag decodes a bool or the first element of a bool array.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var many []bool
	if err := json.Unmarshal(b, &many); err == nil {
		if len(many) > 0 {
			*f = flag(many[0])
		}
		return nil
	}
	var one bool
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected bool or bool array: %w", err)
	}
	*f = flag(one)
	return nil
}
