package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Selectors are CSS selector groups used to read an article page. An empty
// selector skips that field.
type Selectors struct {
	Headline  string
	Author    string
	Location  string
	Published string
	Content   string
}

// Page is what could be read from an article page. Zero fields were not found.
type Page struct {
	Headline  string
	Author    string
	Location  string
	Published time.Time
	Content   string
}

// PageScraper fetches article pages and extracts their fields.
type PageScraper struct {
	client    *http.Client
	selectors Selectors
}

// NewPageScraper creates a scraper with the given per-request timeout.
func NewPageScraper(sel Selectors, timeout time.Duration) *PageScraper {
	return &PageScraper{
		client:    &http.Client{Timeout: timeout},
		selectors: sel,
	}
}

// Scrape fetches url and extracts the configured fields.
func (s *PageScraper) Scrape(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch article %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch article %s: status %d", url, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse article HTML: %w", err)
	}
	return s.extract(doc), nil
}

func (s *PageScraper) extract(doc *goquery.Document) *Page {
	p := &Page{
		Headline: firstText(doc, s.selectors.Headline),
		Author:   firstText(doc, s.selectors.Author),
		Location: strings.TrimSpace(strings.TrimPrefix(firstText(doc, s.selectors.Location), "Location:")),
	}

	if s.selectors.Published != "" {
		if sel := doc.Find(s.selectors.Published).First(); sel.Length() > 0 {
			raw, ok := sel.Attr("datetime")
			if !ok {
				raw = collapse(sel.Text())
			}
			if t, ok := ParsePublished(raw); ok {
				p.Published = t
			}
		}
	}

	if s.selectors.Content != "" {
		var paras []string
		doc.Find(s.selectors.Content).Each(func(_ int, sel *goquery.Selection) {
			if text := collapse(sel.Text()); text != "" {
				paras = append(paras, text)
			}
		})
		p.Content = strings.Join(paras, "\n")
	}
	return p
}

func firstText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return collapse(doc.Find(selector).First().Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var bengaliDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
	"\u09df", "\u09af\u09bc", // precomposed য় as used in some month names
)

var bengaliMonths = map[string]time.Month{
	"জানুয়ারি": time.January, "ফেব্রুয়ারি": time.February, "মার্চ": time.March,
	"এপ্রিল": time.April, "মে": time.May, "জুন": time.June,
	"জুলাই": time.July, "আগস্ট": time.August, "সেপ্টেম্বর": time.September,
	"অক্টোবর": time.October, "নভেম্বর": time.November, "ডিসেম্বর": time.December,
}

// dhaka is Bangladesh Standard Time; Bengali page dates carry no zone.
var dhaka = time.FixedZone("BST", 6*60*60)

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePublished reads a page's publish date: RFC 3339 and similar ISO forms,
// or Bengali "১৮ অক্টোবর ২০২৫, ১০:৩০" with an optional "প্রকাশ:" label.
func ParsePublished(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return parseBengaliDate(raw)
}

func parseBengaliDate(raw string) (time.Time, bool) {
	// Drop a leading label such as "প্রকাশ:"; the clock's colon follows digits.
	if label, rest, ok := strings.Cut(raw, ":"); ok && !strings.ContainsAny(label, "০১২৩৪৫৬৭৮৯0123456789") {
		raw = strings.TrimSpace(rest)
	}
	datePart, timePart, ok := strings.Cut(raw, ",")
	if !ok {
		return time.Time{}, false
	}
	fields := strings.Fields(bengaliDigits.Replace(datePart))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	month, ok := bengaliMonths[fields[1]]
	if !ok {
		return time.Time{}, false
	}
	clock := strings.ReplaceAll(bengaliDigits.Replace(timePart), " ", "")
	t, err := time.ParseInLocation("2 2006 15:04", fields[0]+" "+fields[2]+" "+clock, dhaka)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), month, t.Day(), t.Hour(), t.Minute(), 0, 0, dhaka), true
}
