// Package docsearch acquires web pages on demand, neutralizes their active
// content, stores normalized metadata about them and keeps a full-text index
// of the stored pages queryable with a relevance-reordering pass tuned for
// educational search result pages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, solr/).
package docsearch
