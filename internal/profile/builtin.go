package profile

import (
	"strings"

	"github.com/user/speedsale-scraper/internal/entity"
)

const (
	genderMale   = "male"
	genderFemale = "female"
	genderUnisex = "unisex"
)

var hooks = map[string]entity.PostProcessFunc{
	"sportsshoes": sportsShoesPostProcess,
}

// Hook resolves a named post-process hook.
func Hook(name string) (entity.PostProcessFunc, bool) {
	h, ok := hooks[name]
	return h, ok
}

// BuiltIn returns fresh copies of the profiles compiled into the binary.
func BuiltIn() []*entity.RetailerProfile {
	return []*entity.RetailerProfile{sportsShoes()}
}

func sportsShoes() *entity.RetailerProfile {
	return &entity.RetailerProfile{
		ID:       "sportsshoes",
		Name:     "SportsShoes",
		BaseURL:  "https://www.sportsshoes.com",
		Enabled:  true,
		Strategy: entity.StrategyDynamic,
		Selectors: entity.Selectors{
			Container:     `[class*="css-1n4"]`,
			Name:          `p[class*="chakra-text"]`,
			Price:         "span",
			OriginalPrice: ".was-price, .original-price, .rrp",
			Image:         "img",
			Link:          "a",
		},
		Pagination: entity.Pagination{Kind: entity.PaginationNumbered, MaxPages: 10},
		RateLimit:  entity.RateLimit{DelayMs: 200, MaxConcurrent: 3},
		Categories: map[string]string{
			"running": "/products/mens/running/shoes",
			"women":   "/products/womens/running/shoes",
		},
		DefaultCategory: "running",
		PostProcessName: "sportsshoes",
		PostProcess:     sportsShoesPostProcess,
	}
}

// sportsShoesPostProcess infers gender from the category path of the page.
func sportsShoesPostProcess(p *entity.ScrapedProduct, pageURL string) {
	u := strings.ToLower(pageURL)
	switch {
	case strings.Contains(u, "/womens/"):
		p.Gender = genderFemale
	case strings.Contains(u, "/mens/"):
		p.Gender = genderMale
	default:
		p.Gender = genderUnisex
	}
}
