package scrape

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
)

// ScrapeResult is returned fresh per scrape call. Sections maps section
// name to cleaned text in visit order; PagesVisited records every URL
// attempted whether or not it produced content.
type ScrapeResult struct {
	URL               string            `json:"url"`
	Sections          map[string]string `json:"sections"`
	PagesVisited      []string          `json:"pages_visited"`
	SectionsRequested []string          `json:"sections_requested"`
}

// pageExtractor is what the scraper needs from the extraction engine.
type pageExtractor interface {
	ExtractPage(ctx context.Context, url string) (Extraction, error)
	ExtractOverlay(ctx context.Context, url string) (Extraction, error)
}

// Scraper maps section requests to ordered page visits with per-section
// failure isolation.
type Scraper struct {
	ex  pageExtractor
	log *slog.Logger
}

func NewScraper(ex pageExtractor, log *slog.Logger) *Scraper {
	return &Scraper{ex: ex, log: log.With("module", "scrape")}
}

// ScrapePerson visits the selected profile pages for a username. One
// failing section never aborts its siblings.
func (s *Scraper) ScrapePerson(ctx context.Context, username string, flags PersonSections) (*ScrapeResult, error) {
	flags |= PersonBasicInfo
	base := "https://www.linkedin.com/in/" + username
	res := &ScrapeResult{
		URL:      base + "/",
		Sections: map[string]string{},
	}
	for _, p := range personPages {
		if flags&p.flag == 0 {
			continue
		}
		res.SectionsRequested = append(res.SectionsRequested, p.name)
		pageURL := base + p.suffix
		var ext Extraction
		var err error
		if p.overlay {
			ext, err = s.ex.ExtractOverlay(ctx, pageURL)
		} else {
			ext, err = s.ex.ExtractPage(ctx, pageURL)
		}
		res.PagesVisited = append(res.PagesVisited, pageURL)
		if err != nil {
			if ctxDone(err) {
				return nil, err
			}
			s.log.Warn("section scrape failed", "section", p.name, "url", pageURL, "error", err)
			continue
		}
		if ext.Outcome != OutcomeEmpty {
			res.Sections[p.name] = ext.Text
		}
	}
	return res, nil
}

// ScrapeCompany visits the selected company pages.
func (s *Scraper) ScrapeCompany(ctx context.Context, companyName string, flags CompanySections) (*ScrapeResult, error) {
	flags |= CompanyAbout
	base := "https://www.linkedin.com/company/" + companyName
	res := &ScrapeResult{
		URL:      base + "/",
		Sections: map[string]string{},
	}
	for _, p := range companyPages {
		if flags&p.flag == 0 {
			continue
		}
		res.SectionsRequested = append(res.SectionsRequested, p.name)
		pageURL := base + p.suffix
		ext, err := s.ex.ExtractPage(ctx, pageURL)
		res.PagesVisited = append(res.PagesVisited, pageURL)
		if err != nil {
			if ctxDone(err) {
				return nil, err
			}
			s.log.Warn("section scrape failed", "section", p.name, "url", pageURL, "error", err)
			continue
		}
		if ext.Outcome != OutcomeEmpty {
			res.Sections[p.name] = ext.Text
		}
	}
	return res, nil
}

// ScrapeJob extracts a single job posting. With no sibling sections to
// protect, a RateLimitError propagates.
func (s *Scraper) ScrapeJob(ctx context.Context, jobID string) (*ScrapeResult, error) {
	jobURL := "https://www.linkedin.com/jobs/view/" + jobID + "/"
	ext, err := s.ex.ExtractPage(ctx, jobURL)
	if err != nil {
		return nil, err
	}
	res := &ScrapeResult{
		URL:               jobURL,
		Sections:          map[string]string{},
		PagesVisited:      []string{jobURL},
		SectionsRequested: []string{"job_posting"},
	}
	if ext.Outcome != OutcomeEmpty {
		res.Sections["job_posting"] = ext.Text
	}
	return res, nil
}

// SearchJobs extracts a job search results page.
func (s *Scraper) SearchJobs(ctx context.Context, keywords, location string) (*ScrapeResult, error) {
	params := "keywords=" + url.QueryEscape(keywords)
	if location != "" {
		params += "&location=" + url.QueryEscape(location)
	}
	searchURL := "https://www.linkedin.com/jobs/search/?" + params
	ext, err := s.ex.ExtractPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	res := &ScrapeResult{
		URL:               searchURL,
		Sections:          map[string]string{},
		PagesVisited:      []string{searchURL},
		SectionsRequested: []string{"search_results"},
	}
	if ext.Outcome != OutcomeEmpty {
		res.Sections["search_results"] = ext.Text
	}
	return res, nil
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
