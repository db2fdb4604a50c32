package agent

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/chromedp/chromedp"

	"dossier/internal/identity"
)

// BrowserSearch is the web-search-class invoker backed by a headless
// browser, for engines that only render results client-side. It honors the
// uniform contract: one Invoke per query, WebData out, errors isolated to
// the one task.
type BrowserSearch struct {
	// SearchURL is a template with %s substituted by the escaped query.
	SearchURL string
	// MaxResults caps how many hits are extracted per query.
	MaxResults int
	// Headless disables the visible browser window; tests keep it true.
	Headless bool
}

// NewBrowserSearch returns a headless invoker against the given results-page
// template, e.g. "https://html.duckduckgo.com/html/?q=%s".
func NewBrowserSearch(searchURL string) *BrowserSearch {
	return &BrowserSearch{SearchURL: searchURL, MaxResults: 20, Headless: true}
}

// extractHitsJS collects anchor-based result rows. Engines differ in markup;
// the selector set below covers the common "result with title link and
// snippet" layouts without engine-specific branches.
const extractHitsJS = `
(() => {
  const rows = [];
  const anchors = document.querySelectorAll('a.result__a, h2 a, h3 a');
  for (const a of anchors) {
    const container = a.closest('.result, .result__body, article, li, div');
    let snippet = '';
    if (container) {
      const sn = container.querySelector('.result__snippet, .snippet, p');
      if (sn) snippet = sn.textContent.trim();
    }
    rows.push({title: a.textContent.trim(), link: a.href, snippet});
  }
  return rows;
})()
`

type browserHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Invoke runs one rendered search. The context deadline set by the
// dispatcher bounds the whole navigation.
func (b *BrowserSearch) Invoke(ctx context.Context, task Task) (*Result, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	target := fmt.Sprintf(b.SearchURL, url.QueryEscape(task.Target))

	var hits []browserHit
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(extractHitsJS, &hits),
	)
	if err != nil {
		return nil, fmt.Errorf("rendered search %q: %w", task.Target, err)
	}

	raw := make([]RawHit, 0, len(hits))
	for _, h := range hits {
		if h.Link == "" || strings.HasPrefix(h.Link, "javascript:") {
			continue
		}
		raw = append(raw, RawHit{Title: h.Title, Link: h.Link, Snippet: h.Snippet})
		if b.MaxResults > 0 && len(raw) >= b.MaxResults {
			break
		}
	}

	params := identity.SearchParameters{}
	if task.Context != nil {
		params = *task.Context
	}
	return &Result{Web: BuildWebData(raw, task.Target, params), Source: "web"}, nil
}
