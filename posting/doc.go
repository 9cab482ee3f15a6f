// Package posting defines the raw (docId, weight) posting entry and
// sorted-merge iterators that combine ascending postings from several
// sources (spec.md §4.6). The merge package does not use the iterators:
// merge.GetMergedPostingForATerm concatenates input postings unsorted.
package posting
