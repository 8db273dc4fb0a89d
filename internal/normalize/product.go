package normalize

import (
	"net/url"
	"strings"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/utils"
)

// Product turns the raw text of one product card into a ScrapedProduct.
// Relative links are resolved against base when it is non-nil.
func Product(raw entity.RawProduct, base *url.URL, category string) entity.ScrapedProduct {
	name := CleanName(raw.Name)
	brand := InferBrand(name)

	price := ParsePrice(raw.PriceText)
	original := ParsePrice(raw.OriginalPriceText)
	if original == 0 {
		original = ListPriceFromName(raw.Name)
	}

	p := entity.ScrapedProduct{
		Name:       name,
		Brand:      brand,
		Model:      Model(name, brand),
		Price:      price,
		ImageURL:   resolve(base, raw.ImageURL),
		ProductURL: resolve(base, raw.ProductURL),
		InStock:    true,
		Category:   category,
		Slug:       Slug(name),
	}
	if original > 0 {
		p.OriginalPrice = &original
		p.DiscountPercentage = Discount(price, p.OriginalPrice)
	}
	return p
}

// IsValid reports whether p carries name, brand, a positive price and a product URL.
func IsValid(p *entity.ScrapedProduct) bool {
	return p.Name != "" && p.Brand != "" && p.Price > 0 && p.ProductURL != ""
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	abs, err := utils.ToAbsoluteURL(base, ref)
	if err != nil {
		return ref
	}
	return abs
}
