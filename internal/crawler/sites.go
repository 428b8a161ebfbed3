package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/offer-scraper/internal/domain"
)

// Autoscout24 listings expose no page count; a fixed number of pages is walked.
const autoscout24Pages = 20

const (
	defaultYearFrom = 2000
	defaultYearTo   = 2001
)

// site holds the listing layout of one portal.
type site struct {
	base   string
	prefix string
	// fixedPages replaces pageCount when the listing has no page counter.
	fixedPages int
	listingURL func(base string, q Query, page int) string
	pageCount  func(doc *goquery.Document) (int, error)
	offerID    func(link string, doc *goquery.Document) (string, error)
}

func newSite(p domain.Portal, base string) (site, error) {
	switch p {
	case domain.Otomoto:
		return site{
			base:   base,
			prefix: base + "oferta/",
			listingURL: func(base string, q Query, page int) string {
				if page == 1 {
					return fmt.Sprintf("%sosobowe/%s/", base, q.Category)
				}
				return fmt.Sprintf("%sosobowe/%s/?page=%d", base, q.Category, page)
			},
			pageCount: maxPageNumber(".om-pager.rel", "span.page"),
			offerID:   attrID("span.seller-phones__button", "data-id_raw"),
		}, nil
	case domain.Allegro:
		return site{
			base:   base,
			prefix: base + "ogloszenie",
			listingURL: func(base string, q Query, page int) string {
				return fmt.Sprintf("%skategoria/%s?order=m&p=%d", base, q.Category, page)
			},
			pageCount: allegroPageCount,
			offerID: func(link string, _ *goquery.Document) (string, error) {
				return link[strings.LastIndex(link, "-")+1:], nil
			},
		}, nil
	case domain.Olx:
		return site{
			base:   base,
			prefix: base + "oferta/",
			listingURL: func(base string, q Query, page int) string {
				if page == 1 {
					return fmt.Sprintf("%smotoryzacja/samochody/%s/", base, q.Category)
				}
				return fmt.Sprintf("%smotoryzacja/samochody/%s/?page=%d", base, q.Category, page)
			},
			pageCount: maxPageNumber(".pager.rel.clr", "span.item.fleft"),
			offerID:   attrID("div.clm-samurai", "data-item"),
		}, nil
	case domain.AutoScout24:
		return site{
			base: base,
			// Listing links are bare paths, unlike the absolute URLs of the other portals.
			prefix:     "/oferta/",
			fixedPages: autoscout24Pages,
			listingURL: func(base string, q Query, page int) string {
				from, to := q.YearFrom, q.YearTo
				if from == 0 {
					from = defaultYearFrom
				}
				if to == 0 {
					to = defaultYearTo
				}
				return fmt.Sprintf("%slst/%s?fregfrom=%d&fregto=%d&page=%d", base, q.Category, from, to, page)
			},
			offerID: attrID(`input[name="classifiedGuid"]`, "value"),
		}, nil
	}
	return site{}, fmt.Errorf("%w: %d", domain.ErrUnknownPortal, p)
}

// offerURL resolves a collected link against the portal base URL.
// Absolute links are returned unchanged.
func (s site) offerURL(link string) (string, error) {
	base, err := url.Parse(s.base)
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", s.base, err)
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing offer link %q: %w", link, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func listingFileName(category string, page int) string {
	return fmt.Sprintf("listing_%s_%d.html", strings.ReplaceAll(category, "/", "_"), page)
}

func offerFileName(id string) string {
	return "offer_" + id + ".html"
}

// maxPageNumber reads the highest numeric item inside a pager container.
func maxPageNumber(container, item string) func(doc *goquery.Document) (int, error) {
	return func(doc *goquery.Document) (int, error) {
		pager := doc.Find(container).First()
		if pager.Length() == 0 {
			return 0, domain.Structural(container)
		}
		highest, found := 0, false
		pager.Find(item).Each(func(_ int, s *goquery.Selection) {
			n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
			if err != nil {
				return
			}
			found = true
			if n > highest {
				highest = n
			}
		})
		if !found {
			return 0, domain.Structural(container + " " + item)
		}
		return highest, nil
	}
}

func allegroPageCount(doc *goquery.Document) (int, error) {
	s := doc.Find(".m-pagination__text").First()
	if s.Length() == 0 {
		return 0, domain.Structural(".m-pagination__text")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
	if err != nil {
		return 0, fmt.Errorf("%w: page count %q", domain.ErrStructural, s.Text())
	}
	return n, nil
}

func attrID(selector, attr string) func(string, *goquery.Document) (string, error) {
	return func(_ string, doc *goquery.Document) (string, error) {
		v, ok := doc.Find(selector).First().Attr(attr)
		if !ok || strings.TrimSpace(v) == "" {
			return "", domain.Structural(selector + "[" + attr + "]")
		}
		return strings.TrimSpace(v), nil
	}
}
