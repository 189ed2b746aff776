package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/example/linkscout/internal/browser"
)

// Person is one harvested people-search result.
type Person struct {
	Name       string `json:"name"`
	ProfileURL string `json:"url"`
	Headline   string `json:"headline,omitempty"`
	Location   string `json:"location,omitempty"`
}

// PeopleSearch drives the people-search results page and harvests result
// cards. Card data comes out of one in-page evaluation rather than
// per-field element lookups; the cards lazy-render and individual lookups
// race the virtual list.
type PeopleSearch struct {
	log *slog.Logger
	pacing
}

func NewPeopleSearch(log *slog.Logger) *PeopleSearch {
	return &PeopleSearch{log: log.With("module", "automation"), pacing: defaultPacing()}
}

const harvestCardsJS = `() => {
	const cards = document.querySelectorAll('li.reusable-search__result-container');
	const out = [];
	for (const card of cards) {
		const link = card.querySelector("a.app-aware-link[href*='/in/']");
		if (!link || !link.href) continue;
		const name = card.querySelector("span.entity-result__title-text a span[aria-hidden='true']");
		if (!name || !name.innerText.trim()) continue;
		const headline = card.querySelector('div.entity-result__primary-subtitle');
		const location = card.querySelector('div.entity-result__secondary-subtitle');
		out.push({
			url: link.href.split('?')[0],
			name: name.innerText.trim(),
			headline: headline ? headline.innerText.trim() : '',
			location: location ? location.innerText.trim() : '',
		});
	}
	return JSON.stringify(out);
}`

// maxSearchPages bounds pagination so a generous limit cannot turn into an
// unbounded crawl.
const maxSearchPages = 5

// Execute runs a people search and returns up to limit results across
// paginated result pages.
func (s *PeopleSearch) Execute(ctx context.Context, d browser.Driver, keywords string, limit int) ([]Person, error) {
	if limit <= 0 {
		limit = 25
	}
	searchURL := peopleSearchBaseURL + "?keywords=" + url.QueryEscape(keywords)
	s.log.Info("searching people", "url", searchURL)

	if err := d.Navigate(ctx, searchURL); err != nil {
		return nil, &NavigationError{URL: searchURL, Err: err}
	}
	if d.IsVisible(rateLimitPageSel, 2*time.Second) {
		return nil, fmt.Errorf("LinkedIn rate limit page detected on people search")
	}

	var results []Person
	for page := 0; page < maxSearchPages && len(results) < limit; page++ {
		if page > 0 {
			if !s.nextPage(ctx, d) {
				break
			}
		}
		batch, err := s.harvest(d)
		if err != nil {
			s.log.Warn("result harvest failed", "page", page+1, "error", err)
			break
		}
		if len(batch) == 0 {
			break
		}
		results = append(results, batch...)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *PeopleSearch) harvest(d browser.Driver) ([]Person, error) {
	if err := d.WaitSelector(peopleResultsSel, 10*time.Second); err != nil {
		s.log.Warn("no search results container found")
		return nil, nil
	}
	raw, err := d.EvalString(harvestCardsJS)
	if err != nil {
		return nil, err
	}
	var out []Person
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode search cards: %w", err)
	}
	return out, nil
}

func (s *PeopleSearch) nextPage(ctx context.Context, d browser.Driver) bool {
	if err := d.Click(nextPageSel, 3*time.Second); err != nil {
		return false
	}
	s.randomDelay(ctx, time.Second, 2*time.Second)
	return true
}
