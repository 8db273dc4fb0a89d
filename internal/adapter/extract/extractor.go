package extract

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/normalize"
	"github.com/user/speedsale-scraper/pkg/utils"
)

var currencyAmount = regexp.MustCompile(`[£$€]\s*\d`)

// Parse builds a goquery document from raw HTML.
func Parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Products reads every product container on the page and returns the valid
// normalized products in document order.
func Products(doc *goquery.Document, profile *entity.RetailerProfile, pageURL, category string) []entity.ScrapedProduct {
	base, err := url.Parse(profile.BaseURL)
	if err != nil {
		base = nil
	}

	var products []entity.ScrapedProduct
	doc.Find(profile.Selectors.Container).Each(func(i int, s *goquery.Selection) {
		raw := RawProduct(s, profile.Selectors)
		p := normalize.Product(raw, base, category)
		if profile.PostProcess != nil {
			profile.PostProcess(&p, pageURL)
		}
		if !normalize.IsValid(&p) {
			slog.Debug("Skipping product element", "retailer_id", profile.ID, "index", i, "name", raw.Name, "price", raw.PriceText)
			return
		}
		products = append(products, p)
	})
	return products
}

// RawProduct reads the text and links of one container.
func RawProduct(s *goquery.Selection, sel entity.Selectors) entity.RawProduct {
	raw := entity.RawProduct{
		Name:      joinedText(s.Find(sel.Name)),
		PriceText: priceText(s.Find(sel.Price)),
		ImageURL:  imageSource(s.Find(sel.Image).First()),
	}
	if sel.OriginalPrice != "" {
		raw.OriginalPriceText = strings.TrimSpace(s.Find(sel.OriginalPrice).First().Text())
	}

	link := s.Find(sel.Link).First()
	if link.Length() == 0 && goquery.NodeName(s) == "a" {
		link = s
	}
	raw.ProductURL, _ = link.Attr("href")
	return raw
}

// NextLinks returns the absolute, de-duplicated hrefs matched by selector.
func NextLinks(doc *goquery.Document, selector, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{pageURL: {}}
	var links []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

func joinedText(s *goquery.Selection) string {
	parts := make([]string, 0, s.Length())
	s.Each(func(_ int, n *goquery.Selection) {
		if t := strings.TrimSpace(n.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// priceText prefers the first match that shows a currency amount.
func priceText(s *goquery.Selection) string {
	var text string
	s.EachWithBreak(func(_ int, n *goquery.Selection) bool {
		t := strings.TrimSpace(n.Text())
		if currencyAmount.MatchString(t) {
			text = t
			return false
		}
		return true
	})
	if text == "" {
		text = strings.TrimSpace(s.First().Text())
	}
	return text
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return strings.TrimSpace(v)
		}
	}
	if srcset, ok := img.Attr("srcset"); ok {
		if fields := strings.Fields(srcset); len(fields) > 0 {
			return strings.TrimSuffix(fields[0], ",")
		}
	}
	return ""
}
