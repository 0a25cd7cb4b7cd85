package models

import (
	"sort"
	"strings"
)

// Option is a select choice.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Search filters models by a case-insensitive substring. Prefix matches sort
// first, then names alphabetically.
func Search(models []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		if len(models) <= limit {
			return append([]string{}, models...)
		}
		return append([]string{}, models[:limit]...)
	}

	q := strings.ToLower(query)
	matches := make([]match, 0, len(models))
	for _, name := range models {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, q) {
			continue
		}
		matches = append(matches, match{name: name, isPrefix: strings.HasPrefix(lower, q)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

// SearchOptions wraps Search results as options.
func SearchOptions(models []string, query string, limit int, opts Options) []Option {
	results := Search(models, query, limit, opts)
	if len(results) == 0 {
		return nil
	}

	out := make([]Option, 0, len(results))
	for _, name := range results {
		out = append(out, Option{Value: name, Label: name})
	}
	return out
}

type match struct {
	name     string
	isPrefix bool
}
