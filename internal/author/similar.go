package author

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/matsen/pubdb/internal/reference"
)

// DefaultSimilarityThreshold is the Jaro-Winkler score above which two
// distinct authors are reported as possible duplicates.
const DefaultSimilarityThreshold = 0.92

// SimilarPair is a pair of distinct stored authors with close names.
type SimilarPair struct {
	A     reference.Author `json:"a"`
	B     reference.Author `json:"b"`
	Score float32          `json:"score"`
}

// FindSimilar reports author pairs whose full names are at least threshold
// similar under Jaro-Winkler. Such pairs escaped the import equivalence
// rules (e.g. "Jon Doe" vs "John Doe") and are candidates for a manual merge.
// Pairs are sorted by decreasing score.
func FindSimilar(authors []reference.Author, threshold float32) ([]SimilarPair, error) {
	keys := make([]string, len(authors))
	for i, a := range authors {
		keys[i] = strings.ToLower(a.FullName())
	}

	var pairs []SimilarPair
	for i := 0; i < len(authors); i++ {
		for j := i + 1; j < len(authors); j++ {
			if keys[i] == "" || keys[j] == "" {
				continue
			}
			score, err := edlib.StringsSimilarity(keys[i], keys[j], edlib.JaroWinkler)
			if err != nil {
				return nil, fmt.Errorf("comparing %q and %q: %w", keys[i], keys[j], err)
			}
			if score >= threshold {
				pairs = append(pairs, SimilarPair{A: authors[i], B: authors[j], Score: score})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs, nil
}
