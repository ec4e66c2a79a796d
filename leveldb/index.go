// Package leveldb implements an embedded docsearch.Index on goleveldb, used
// when no Solr core is configured.
package leveldb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fwojciec/docsearch"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key layout: entries under "d:<id>", postings under "t:<term>\x00<id>"
// holding the weighted term frequency.
var (
	entryPrefix   = []byte("d:")
	postingPrefix = []byte("t:")
)

// Ensure Index implements docsearch.Index at compile time.
var _ docsearch.Index = (*Index)(nil)

// Index is an inverted index stored in LevelDB. Adds and DeleteAll are held
// in memory until Commit writes them in one batch.
type Index struct {
	db *leveldb.DB

	mu       sync.Mutex
	pending  []*docsearch.IndexEntry
	clearAll bool
}

// Open opens or creates the index stored in dir.
func Open(dir string) (*Index, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return &Index{db: db}, nil
}

// OpenMemory creates an index that lives in memory only.
func OpenMemory() (*Index, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database. Uncommitted changes are lost.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Ping checks that the database is open.
func (idx *Index) Ping(ctx context.Context) error {
	if _, err := idx.db.GetProperty("leveldb.stats"); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "index unavailable: %v", err)
	}
	return nil
}

// Add stages entries until the next Commit.
func (idx *Index) Add(ctx context.Context, entries []*docsearch.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entries {
		if e == nil || e.ID == "" {
			return docsearch.Errorf(docsearch.EINVALID, "index entry id required")
		}
		cp := *e
		idx.pending = append(idx.pending, &cp)
	}
	return nil
}

// DeleteAll stages removal of every entry, including entries added before
// the call but not yet committed.
func (idx *Index) DeleteAll(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pending = nil
	idx.clearAll = true
	return nil
}

// Commit writes staged changes atomically.
func (idx *Index) Commit(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	batch := new(leveldb.Batch)
	if idx.clearAll {
		iter := idx.db.NewIterator(nil, nil)
		for iter.Next() {
			batch.Delete(slices.Clone(iter.Key()))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return docsearch.Errorf(docsearch.EUNAVAILABLE, "reading index: %v", err)
		}
	}

	// Later adds of the same id win.
	latest := make(map[string]*docsearch.IndexEntry, len(idx.pending))
	var order []string
	for _, e := range idx.pending {
		if _, ok := latest[e.ID]; !ok {
			order = append(order, e.ID)
		}
		latest[e.ID] = e
	}

	for _, id := range order {
		e := latest[id]
		if !idx.clearAll {
			old, err := idx.entry(id)
			if err != nil {
				return err
			}
			if old != nil {
				for t := range weightedTerms(fieldsOf(old)) {
					batch.Delete(postingKey(t, id))
				}
			}
		}

		data, err := json.Marshal(e)
		if err != nil {
			return docsearch.Errorf(docsearch.EINTERNAL, "encoding index entry %s: %v", id, err)
		}
		batch.Put(entryKey(id), data)
		for t, w := range weightedTerms(fieldsOf(e)) {
			batch.Put(postingKey(t, id), []byte(strconv.Itoa(w)))
		}
	}

	if err := idx.db.Write(batch, nil); err != nil {
		return docsearch.Errorf(docsearch.EUNAVAILABLE, "writing index: %v", err)
	}
	idx.pending = nil
	idx.clearAll = false
	return nil
}

// Search scores committed entries by the weighted frequency of the query
// terms, filters them by locale and tags and returns the requested page.
func (idx *Index) Search(ctx context.Context, q *docsearch.Query) (*docsearch.IndexResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	resp := &docsearch.IndexResponse{
		Entries:      []*docsearch.IndexEntry{},
		Highlighting: map[string]map[string][]string{},
	}

	query := make(map[string]bool)
	for t := range terms(q.Query) {
		query[t] = true
	}
	if len(query) == 0 {
		return resp, nil
	}

	scores := make(map[string]int)
	for t := range query {
		prefix := postingKey(t, "")
		iter := idx.db.NewIterator(util.BytesPrefix(prefix), nil)
		for iter.Next() {
			id := string(iter.Key()[len(prefix):])
			w, _ := strconv.Atoi(string(iter.Value()))
			scores[id] += w
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "reading index: %v", err)
		}
	}

	type hit struct {
		entry *docsearch.IndexEntry
		score int
	}
	hits := make([]hit, 0, len(scores))
	for id, score := range scores {
		e, err := idx.entry(id)
		if err != nil {
			return nil, err
		}
		if e == nil || !matches(e, q) {
			continue
		}
		hits = append(hits, hit{entry: e, score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].entry.ID < hits[j].entry.ID
	})

	resp.NumFound = len(hits)
	start := min(q.Start(), len(hits))
	end := min(start+q.Rows(), len(hits))
	for _, h := range hits[start:end] {
		resp.Entries = append(resp.Entries, h.entry)
		if snippets := highlight(h.entry.IndexedBody, query); len(snippets) > 0 {
			resp.Highlighting[h.entry.ID] = map[string][]string{docsearch.FieldIndexedBody: snippets}
		} else {
			resp.Highlighting[h.entry.ID] = map[string][]string{}
		}
	}
	return resp, nil
}

// entry loads a committed entry, returning nil if absent.
func (idx *Index) entry(id string) (*docsearch.IndexEntry, error) {
	data, err := idx.db.Get(entryKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "reading index entry %s: %v", id, err)
	}
	var e docsearch.IndexEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, docsearch.Errorf(docsearch.EINTERNAL, "decoding index entry %s: %v", id, err)
	}
	return &e, nil
}

// matches reports whether e passes the locale and tag filters of q.
func matches(e *docsearch.IndexEntry, q *docsearch.Query) bool {
	if q.Locale != "" && e.Locale != q.Locale {
		return false
	}
	for _, tag := range q.Tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(e.Tags, tag) {
			return false
		}
	}
	return true
}

func fieldsOf(e *docsearch.IndexEntry) entryFields {
	return entryFields{title: e.Title, keywords: e.Keywords, body: e.IndexedBody}
}

func entryKey(id string) []byte {
	return append(slices.Clone(entryPrefix), id...)
}

func postingKey(term, id string) []byte {
	var b bytes.Buffer
	b.Write(postingPrefix)
	b.WriteString(term)
	b.WriteByte(0)
	b.WriteString(id)
	return b.Bytes()
}
