package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/crawler"
	"github.com/user/offer-scraper/internal/domain"
)

var runOpts struct {
	portal     string
	categories []string
	quota      int
	yearFrom   int
	yearTo     int
	save       bool
	provider   string
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.portal, "portal", "", "Portal to scrape: allegro, olx, otomoto or autoscout24.")
	f.StringSliceVar(&runOpts.categories, "category", nil, "Vehicle category to scrape, repeatable. Defaults to every configured category.")
	f.IntVar(&runOpts.quota, "quota", 0, "Maximum number of offers per category, 0 for no limit.")
	f.IntVar(&runOpts.yearFrom, "year-from", 2000, "First registration year (autoscout24 only).")
	f.IntVar(&runOpts.yearTo, "year-to", 2001, "Last registration year (autoscout24 only).")
	f.BoolVar(&runOpts.save, "save", false, "Keep raw listing and offer documents.")
	f.StringVar(&runOpts.provider, "provider", "", "Document provider: portal or file. Overrides PROVIDER.")
	_ = runCmd.MarkFlagRequired("portal")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run --portal <portal> [--category <name>]... [--quota <n>]",
	Short: "Runs one campaign against a portal and stores the extracted offers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := domain.ParsePortal(runOpts.portal)
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if runOpts.save {
			a.cfg.SaveDocuments = true
		}
		if runOpts.provider != "" {
			a.cfg.Provider = runOpts.provider
		}

		categories := runOpts.categories
		if len(categories) == 0 {
			for name := range a.categories[p] {
				categories = append(categories, name)
			}
			sort.Strings(categories)
		}
		if len(categories) == 0 {
			return fmt.Errorf("no categories configured for %s", p)
		}

		c, err := a.newCampaign(ctx, p)
		if err != nil {
			return err
		}
		if err := c.Prepare(ctx); err != nil {
			return err
		}

		q := crawler.Query{Quota: runOpts.quota, YearFrom: runOpts.yearFrom, YearTo: runOpts.yearTo}
		for _, category := range categories {
			report, err := c.Process(ctx, category, q)
			if err != nil {
				return err
			}
			if report.Aborted != nil {
				a.logger.Error("batch aborted, continuing with next category",
					zap.String("category", category),
					zap.Int("links", report.Links),
					zap.Int("stored", report.Stored),
					zap.Error(report.Aborted))
				continue
			}
			a.logger.Info("category done", zap.String("category", category), zap.Int("stored", report.Stored))
		}
		return nil
	},
}
