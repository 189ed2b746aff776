package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linkscout/internal/logging"
)

// fakeExtractor serves canned extractions keyed by URL.
type fakeExtractor struct {
	pages    map[string]Extraction
	errs     map[string]error
	overlays []string
}

func (f *fakeExtractor) ExtractPage(ctx context.Context, url string) (Extraction, error) {
	if err := f.errs[url]; err != nil {
		return Extraction{}, err
	}
	return f.pages[url], nil
}

func (f *fakeExtractor) ExtractOverlay(ctx context.Context, url string) (Extraction, error) {
	f.overlays = append(f.overlays, url)
	if err := f.errs[url]; err != nil {
		return Extraction{}, err
	}
	return f.pages[url], nil
}

func TestScrapePersonVisitsRequestedPages(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{pages: map[string]Extraction{
		base + "/":                    {Outcome: OutcomeContent, Text: "Jane Doe\nEngineer"},
		base + "/details/experience/": {Outcome: OutcomeContent, Text: "Acme Corp"},
		base + "/details/education/":  {Outcome: OutcomeContent, Text: "State University"},
	}}
	s := NewScraper(ex, logging.Discard())

	flags, _ := ParsePersonSections("experience,education")
	res, err := s.ScrapePerson(context.Background(), "janedoe", flags)
	require.NoError(t, err)

	assert.Equal(t, base+"/", res.URL)
	assert.Equal(t, []string{"main_profile", "experience", "education"}, res.SectionsRequested)
	assert.Equal(t, []string{
		base + "/",
		base + "/details/experience/",
		base + "/details/education/",
	}, res.PagesVisited)
	assert.Equal(t, "Jane Doe\nEngineer", res.Sections["main_profile"])
	assert.Equal(t, "Acme Corp", res.Sections["experience"])
	assert.Equal(t, "State University", res.Sections["education"])
}

func TestScrapePersonSectionFailureIsIsolated(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{
		pages: map[string]Extraction{
			base + "/":                   {Outcome: OutcomeContent, Text: "Jane Doe"},
			base + "/details/education/": {Outcome: OutcomeContent, Text: "State University"},
		},
		errs: map[string]error{
			base + "/details/experience/": errors.New("element lookup failed"),
		},
	}
	s := NewScraper(ex, logging.Discard())

	flags, _ := ParsePersonSections("experience,education")
	res, err := s.ScrapePerson(context.Background(), "janedoe", flags)
	require.NoError(t, err)

	assert.Len(t, res.PagesVisited, 3)
	assert.Contains(t, res.Sections, "main_profile")
	assert.Contains(t, res.Sections, "education")
	assert.NotContains(t, res.Sections, "experience")
}

func TestScrapePersonBlockedSectionCarriesMarker(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{pages: map[string]Extraction{
		base + "/": {Outcome: OutcomeBlocked, Text: RateLimitedText},
	}}
	s := NewScraper(ex, logging.Discard())

	res, err := s.ScrapePerson(context.Background(), "janedoe", 0)
	require.NoError(t, err)
	assert.Equal(t, RateLimitedText, res.Sections["main_profile"])
}

func TestScrapePersonEmptyOutcomeOmitsSection(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{pages: map[string]Extraction{
		base + "/": {Outcome: OutcomeEmpty},
	}}
	s := NewScraper(ex, logging.Discard())

	res, err := s.ScrapePerson(context.Background(), "janedoe", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.Equal(t, []string{base + "/"}, res.PagesVisited)
}

func TestScrapePersonContactInfoUsesOverlay(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{pages: map[string]Extraction{
		base + "/":                      {Outcome: OutcomeContent, Text: "Jane Doe"},
		base + "/overlay/contact-info/": {Outcome: OutcomeContent, Text: "jane@example.com"},
	}}
	s := NewScraper(ex, logging.Discard())

	flags, _ := ParsePersonSections("contact_info")
	res, err := s.ScrapePerson(context.Background(), "janedoe", flags)
	require.NoError(t, err)

	assert.Equal(t, []string{base + "/overlay/contact-info/"}, ex.overlays)
	assert.Equal(t, "jane@example.com", res.Sections["contact_info"])
}

func TestScrapePersonContextCancellationAborts(t *testing.T) {
	base := "https://www.linkedin.com/in/janedoe"
	ex := &fakeExtractor{errs: map[string]error{
		base + "/": context.Canceled,
	}}
	s := NewScraper(ex, logging.Discard())

	_, err := s.ScrapePerson(context.Background(), "janedoe", PersonExperience)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScrapeCompanyDefaultsToAbout(t *testing.T) {
	base := "https://www.linkedin.com/company/acme"
	ex := &fakeExtractor{pages: map[string]Extraction{
		base + "/about/": {Outcome: OutcomeContent, Text: "Acme builds anvils"},
	}}
	s := NewScraper(ex, logging.Discard())

	res, err := s.ScrapeCompany(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"about"}, res.SectionsRequested)
	assert.Equal(t, "Acme builds anvils", res.Sections["about"])
}

func TestScrapeJobPropagatesRateLimit(t *testing.T) {
	jobURL := "https://www.linkedin.com/jobs/view/12345/"
	ex := &fakeExtractor{errs: map[string]error{
		jobURL: &RateLimitError{Kind: KindCheckpoint, Reason: "checkpoint"},
	}}
	s := NewScraper(ex, logging.Discard())

	_, err := s.ScrapeJob(context.Background(), "12345")
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
}

func TestSearchJobsEncodesQuery(t *testing.T) {
	searchURL := "https://www.linkedin.com/jobs/search/?keywords=site+reliability&location=New+York"
	ex := &fakeExtractor{pages: map[string]Extraction{
		searchURL: {Outcome: OutcomeContent, Text: "10 results"},
	}}
	s := NewScraper(ex, logging.Discard())

	res, err := s.SearchJobs(context.Background(), "site reliability", "New York")
	require.NoError(t, err)
	assert.Equal(t, searchURL, res.URL)
	assert.Equal(t, "10 results", res.Sections["search_results"])
}
