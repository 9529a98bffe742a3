package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/clients"
	"github.com/deksmo/deksmo/internal/ingest"
	"github.com/deksmo/deksmo/internal/model"
)

const prefetchWorkers = 8

func newGrabCmd() *cobra.Command {
	var selector string
	var attr string

	cmd := &cobra.Command{
		Use:   "grab <page-url>",
		Short: "Collect the images of a web page into one chapter and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL := args[0]

			rules, err := clients.LoadSiteRules(envOr("DEKSMO_SITES", ""))
			if err != nil {
				return err
			}
			if selector != "" || attr != "" {
				rules = append([]clients.SiteRule{{
					Hostname:      hostOf(pageURL),
					ImageSelector: selector,
					ImageAttr:     attr,
				}}, rules...)
			}

			p, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer p.close()

			grabber := clients.NewGrabber(clients.DefaultHTTPOptions(), rules)
			defer grabber.Close()

			links, err := grabber.CollectImageLinks(cmd.Context(), pageURL)
			if err != nil {
				return err
			}
			if len(links) == 0 {
				return ErrNoChapters
			}

			title, err := clients.PageTitle(pageURL)
			if err != nil {
				return err
			}

			sources := make([]ingest.Source, 0, len(links))
			for i, link := range links {
				name := clients.FilenameFromURL(link)
				if name == "" {
					name = fmt.Sprintf("image_%03d.jpg", i+1)
				}
				sources = append(sources, ingest.Source{
					Name:         name,
					RelativePath: title + "/" + name,
					URL:          link,
				})
			}

			chapters := ingest.Ingest(sources)
			if len(chapters) == 0 {
				return ErrNoChapters
			}
			p.store.AddChapters(chapters...)

			prefetch(cmd, p, chapters)

			return p.exportAll(cmd)
		},
	}

	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector for image elements (default from site rules, else img)")
	cmd.Flags().StringVar(&attr, "attr", "", "Attribute holding the image URL (default from site rules, else src)")
	return cmd
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// prefetch resolves every image concurrently to warm the resolver cache;
// the sequential export pass then mostly reads memory. Failures are left
// for the export to report.
func prefetch(cmd *cobra.Command, p *pipeline, chapters []*model.Chapter) {
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(prefetchWorkers)

	for _, chapter := range chapters {
		for _, img := range chapter.Images {
			img := img
			g.Go(func() error {
				if _, err := p.resolver.Resolve(ctx, img.Source); err != nil {
					internal.DebugLog("Prefetch of %s failed: %s", img.Name, err.Error())
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}
