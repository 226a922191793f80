package internal

import (
	"slices"
	"strings"
	"time"
)

// Entry is one cached exchange. It is never mutated after creation; an
// upsert replaces it with a new Entry.
type Entry struct {
	Query     string
	Embedding []float32
	Response  string
	Entities  []string
	CreatedAt time.Time
}

func NewEntry(query, response string, entities []string, embedding []float32, createdAt time.Time) *Entry {
	return &Entry{
		Query:     query,
		Embedding: slices.Clone(embedding),
		Response:  response,
		Entities:  normalizeEntities(entities),
		CreatedAt: createdAt,
	}
}

func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrInvalidQuery
	}
	return nil
}

// normalizeEntities applies set semantics: blanks dropped, duplicates removed,
// result sorted.
func normalizeEntities(entities []string) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if strings.TrimSpace(e) == "" {
			continue
		}
		out = append(out, e)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Match is an entry returned from a similarity search with its L2 distance
// to the query.
type Match struct {
	*Entry
	Distance float64
}
