package tools

import (
	"context"

	"github.com/example/linkscout/internal/automation"
	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/models"
)

// SearchOutcome is the people-search response.
type SearchOutcome struct {
	Query   string              `json:"query"`
	Count   int                 `json:"count"`
	Results []automation.Person `json:"results"`
}

// SearchPeople runs a people search and caches every harvested result for
// later lookup. Cache write failures are logged, never fatal; the results
// are already in hand.
func (t *Tools) SearchPeople(ctx context.Context, keywords string, limit int) (SearchOutcome, error) {
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}

	var people []automation.Person
	if err := t.session.With(func(d browser.Driver) error {
		var err error
		people, err = t.searchPeople(ctx, d, keywords, limit)
		return err
	}); err != nil {
		return SearchOutcome{}, err
	}

	for i := range people {
		p := &people[i]
		entry := &models.SearchResult{
			URL:        p.ProfileURL,
			Name:       p.Name,
			ResultType: "person",
		}
		if p.Headline != "" {
			entry.Title = &p.Headline
		}
		if p.Location != "" {
			entry.Location = &p.Location
		}
		q := keywords
		entry.SearchQuery = &q
		if err := t.store.CacheSearchResult(ctx, entry); err != nil {
			t.log.Debug("failed to cache search result", "url", p.ProfileURL, "error", err)
		}
	}

	return SearchOutcome{Query: keywords, Count: len(people), Results: people}, nil
}
