package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/linkscout/internal/auth"
	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/config"
	"github.com/example/linkscout/internal/logging"
	"github.com/example/linkscout/internal/safety"
	"github.com/example/linkscout/internal/scrape"
	"github.com/example/linkscout/internal/store"
	"github.com/example/linkscout/internal/tools"
)

// app holds the wired layers. The store and rate limiter come up for every
// command; the browser only when a command actually touches LinkedIn.
type app struct {
	cfgPath string

	cfg *config.Config
	log *slog.Logger
	st  *store.Store
	rl  *safety.RateLimiter

	br   *browser.Browser
	sess *browser.Session
	tl   *tools.Tools
	scr  *scrape.Scraper
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "linkscout",
		Short:         "LinkedIn scraping and rate-limited outreach automation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		a.scrapePersonCmd(),
		a.scrapeCompanyCmd(),
		a.scrapeJobCmd(),
		a.searchJobsCmd(),
		a.searchPeopleCmd(),
		a.connectCmd(),
		a.connectBulkCmd(),
		a.followCmd(),
		a.followPersonCmd(),
		a.followBulkCmd(),
		a.pauseCmd(),
		a.resumeCmd(),
		a.statusCmd(),
		a.reportCmd(),
		a.historyCmd(),
	)

	err := root.ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Logging.Level, cfg.Logging.File)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("migrate database: %w", err)
	}
	a.st = st
	a.rl = safety.NewRateLimiter(safety.LimitsFromConfig(cfg), st, a.log)
	a.tl = tools.New(a.st, a.rl, nil, a.log)
	return nil
}

// openBrowser launches the browser, authenticates the session and rebuilds
// the layers that need a live page.
func (a *app) openBrowser(ctx context.Context) error {
	br, err := browser.New(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	page, err := br.NewPage()
	if err != nil {
		br.Close()
		return fmt.Errorf("open page: %w", err)
	}
	if err := auth.New(br, a.cfg, a.log).EnsureAuthenticated(ctx, page); err != nil {
		br.Close()
		return err
	}
	a.br = br
	a.sess = browser.NewSession(page)
	a.tl = tools.New(a.st, a.rl, a.sess, a.log)
	a.scr = scrape.NewScraper(scrape.NewExtractor(page, a.cfg, a.log), a.log)
	return nil
}

func (a *app) close() {
	if a.br != nil {
		a.br.Close()
	}
	if a.st != nil {
		a.st.Close()
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) scrapePersonCmd() *cobra.Command {
	var sections string
	cmd := &cobra.Command{
		Use:   "scrape-person <username>",
		Short: "Scrape a profile and print the cleaned sections as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			flags, unknown := scrape.ParsePersonSections(sections)
			for _, name := range unknown {
				a.log.Warn("ignoring unknown section", "section", name)
			}
			res, err := a.scr.ScrapePerson(ctx, args[0], flags)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&sections, "sections", "",
		"comma-separated sections (experience,education,interests,honors,languages,contact_info)")
	return cmd
}

func (a *app) scrapeCompanyCmd() *cobra.Command {
	var sections string
	cmd := &cobra.Command{
		Use:   "scrape-company <name>",
		Short: "Scrape a company page and print the cleaned sections as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			flags, unknown := scrape.ParseCompanySections(sections)
			for _, name := range unknown {
				a.log.Warn("ignoring unknown section", "section", name)
			}
			res, err := a.scr.ScrapeCompany(ctx, args[0], flags)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&sections, "sections", "", "comma-separated sections (posts,jobs)")
	return cmd
}

func (a *app) scrapeJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-job <job-id>",
		Short: "Scrape a job posting and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			res, err := a.scr.ScrapeJob(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func (a *app) searchJobsCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "search-jobs <keywords>",
		Short: "Search job postings and print the results page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			res, err := a.scr.SearchJobs(ctx, args[0], location)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "location filter")
	return cmd
}

func (a *app) searchPeopleCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search-people <keywords>",
		Short: "Search people, cache the results and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			res, err := a.tl.SearchPeople(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum results (max 100)")
	return cmd
}

func (a *app) connectCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "connect <profile-url>",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			out, err := a.tl.SendConnectionRequest(ctx, args[0], message)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "personalized note (max 300 characters)")
	return cmd
}

func (a *app) connectBulkCmd() *cobra.Command {
	var message string
	var stopOnLimit bool
	cmd := &cobra.Command{
		Use:   "connect-bulk <profile-url>...",
		Short: "Send connection requests to multiple profiles with pacing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			out, err := a.tl.SendBulkConnectionRequests(ctx, args, message, stopOnLimit)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "personalized note for all requests")
	cmd.Flags().BoolVar(&stopOnLimit, "stop-on-limit", true, "stop when the daily limit is reached")
	return cmd
}

func (a *app) followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <company-url>",
		Short: "Follow a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			out, err := a.tl.FollowCompany(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func (a *app) followPersonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow-person <profile-url>",
		Short: "Follow a profile without connecting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			out, err := a.tl.FollowPerson(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func (a *app) followBulkCmd() *cobra.Command {
	var stopOnLimit bool
	cmd := &cobra.Command{
		Use:   "follow-bulk <company-url>...",
		Short: "Follow multiple companies with pacing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openBrowser(ctx); err != nil {
				return err
			}
			out, err := a.tl.FollowBulkCompanies(ctx, args, stopOnLimit)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().BoolVar(&stopOnLimit, "stop-on-limit", true, "stop when the daily limit is reached")
	return cmd
}

func (a *app) pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause all outreach automation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.tl.PauseOutreach(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func (a *app) resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume outreach automation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.tl.ResumeOutreach(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rate limit quotas, batch progress and backoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.tl.RateLimitStatus(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func (a *app) reportCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show outreach statistics for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch period {
			case "day":
				out, err := a.tl.TodayReport(ctx)
				if err != nil {
					return err
				}
				return printJSON(out)
			case "week":
				out, err := a.tl.WeeklyReport(ctx)
				if err != nil {
					return err
				}
				return printJSON(out)
			case "month":
				out, err := a.tl.MonthlyReport(ctx)
				if err != nil {
					return err
				}
				return printJSON(out)
			default:
				return fmt.Errorf("unknown period %q (want day, week or month)", period)
			}
		},
	}
	cmd.Flags().StringVar(&period, "period", "day", "reporting period: day, week or month")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	q := tools.HistoryQuery{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past outreach actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.tl.OutreachHistory(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&q.ActionType, "type", "all",
		"filter by action type (connection_request, follow_company, follow_person, message_sent)")
	cmd.Flags().StringVar(&q.Status, "status", "all",
		"filter by status (pending, success, failed, rate_limited, skipped)")
	cmd.Flags().IntVar(&q.Days, "days", 7, "number of days to look back")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "maximum results (max 200)")
	return cmd
}
