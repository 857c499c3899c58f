package catalog

import "strings"

const MaxSearchResults = 8

// Search is a stable case-insensitive substring filter over name, location
// and category. A blank query yields nothing rather than the whole catalog.
func (c *Catalog) Search(query string) []SearchableEntity {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return []SearchableEntity{}
	}
	out := make([]SearchableEntity, 0, MaxSearchResults)
	for _, it := range c.items {
		if matches(it, q) {
			out = append(out, it)
			if len(out) == MaxSearchResults {
				break
			}
		}
	}
	return out
}

func matches(it SearchableEntity, q string) bool {
	if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Location), q) {
		return true
	}
	return it.Category != nil && strings.Contains(strings.ToLower(*it.Category), q)
}
