package docsearch

// Reorder defaults used when post-processing search results.
const (
	DefaultInsertions = 3
	DefaultOffset     = 2
)

// Reorder promotes one relevant entry into the top of hits and returns the
// reordered copy; hits is not modified.
//
// When the first of at least two hits is relevant, the first non-relevant hit
// is moved to the front before anything else happens. If any of the first
// insertions hits is then relevant the list is returned as is. Otherwise the
// first relevant hit is moved to the one-based position offset, capped to the
// list length. A non-positive offset counts back from the end of the list.
// At most one promotion happens per call.
func Reorder(hits []*IndexEntry, insertions, offset int) []*IndexEntry {
	out := append([]*IndexEntry(nil), hits...)
	n := len(out)
	if n == 0 {
		return out
	}
	insertions = min(insertions, n)
	offset = min(offset, n)

	if n >= 2 && out[0].Relevant {
		for k := range out {
			if !out[k].Relevant {
				move(out, k, 0)
				break
			}
		}
	}

	for i := 0; i < insertions; i++ {
		if out[i].Relevant {
			return out
		}
	}

	for j := range out {
		if out[j].Relevant {
			move(out, j, offset-1)
			return out
		}
	}
	return out
}

// move relocates s[from] so that it ends up at index to, shifting the
// elements in between. Negative indices count from the end.
func move(s []*IndexEntry, from, to int) {
	n := len(s)
	for from < 0 {
		from += n
	}
	for to < 0 {
		to += n
	}
	if to >= n {
		to = n - 1
	}
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
}
