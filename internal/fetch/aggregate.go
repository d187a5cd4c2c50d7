package fetch

import (
	"sort"

	"paperfetcher/internal/domain"
)

// Merge flattens per-partition sequences into one slice with uniqueness on ID.
// The first occurrence of an ID wins; later duplicates are dropped silently.
// Output order is input order of the surviving papers; callers wanting recency
// order must sort explicitly.
func Merge(sequences ...[]domain.Paper) []domain.Paper {
	seen := map[string]struct{}{}
	var merged []domain.Paper

	for _, seq := range sequences {
		for _, paper := range seq {
			if _, ok := seen[paper.ID]; ok {
				continue
			}
			seen[paper.ID] = struct{}{}
			merged = append(merged, paper)
		}
	}

	return merged
}

// SortByUpdatedDesc orders papers newest-first by their update timestamp.
// Ties keep their relative order.
func SortByUpdatedDesc(papers []domain.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].UpdatedAt.After(papers[j].UpdatedAt)
	})
}
