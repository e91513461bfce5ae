package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// MinSearchScore is the Jaro-Winkler similarity below which a cached item
// is not considered a match.
const MinSearchScore = 0.70

var nonAlphaNumRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// SearchResult pairs a cached item with its similarity score.
type SearchResult struct {
	CachedItem
	Score float64
}

// Search ranks the connection's cached items against a free-text query by
// Jaro-Winkler similarity over normalized names. Results are sorted by
// descending score; exact matches rank first.
func (s *Store) Search(connectionID int64, query string, limit int) ([]SearchResult, error) {
	normalized := normalizeTitle(query)
	if normalized == "" {
		return nil, nil
	}

	items, err := s.allCached(connectionID)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, item := range items {
		candidate := normalizeTitle(item.Name())
		if candidate == "" {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(normalized, candidate))
		if score < MinSearchScore {
			continue
		}
		results = append(results, SearchResult{CachedItem: item, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// allCached streams every cached row for a connection. Rows that fail to
// decode are skipped; search is best-effort over whatever is readable.
func (s *Store) allCached(connectionID int64) ([]CachedItem, error) {
	var out []CachedItem

	rows, err := s.db.Query(`
		SELECT parent_id, cached_data FROM libraries WHERE connection_id = ?`,
		connectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("scan libraries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanLibrary(rows)
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := s.db.Query(`
		SELECT parent_id, sort_key, status, cached_data FROM contents WHERE connection_id = ?`,
		connectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("scan contents: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		item, err := scanContent(crows)
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, crows.Err()
}

// normalizeTitle lowercases and strips punctuation so "The Matrix!" and
// "the matrix" compare equal.
func normalizeTitle(title string) string {
	lowered := strings.ToLower(title)
	cleaned := nonAlphaNumRegex.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
