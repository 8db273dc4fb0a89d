package normalize

import (
	"regexp"
	"strings"
)

// UnknownBrand is reported when no known brand starts the name.
const UnknownBrand = "Unknown"

var knownBrands = []string{
	"Under Armour", "Topo Athletic", "New Balance", "Salomon", "Skechers",
	"Nike", "Adidas", "Asics", "Puma", "Reebok", "Saucony", "Brooks", "Hoka",
	"On", "Mizuno", "Altra", "Newton", "Inov8", "Scarpa", "True Motion",
	"Merrell", "Scott", "NNormal", "La Sportiva", "VJ Sport", "Norda",
	"The North Face", "Veja", "Vibram", "RonHill", "OOFOS",
}

var (
	deliveryPrefix = regexp.MustCompile(`(?i)^\s*free(?:\s+\w+)?\s+delivery\s*[:\-]?\s*`)
	currencyTail   = regexp.MustCompile(`\s*[£$€].*$`)
	promoTail      = regexp.MustCompile(`(?i)\s+(?:rrp|was|now)\s*:?\s*$`)
	trailingPhrase = regexp.MustCompile(`(?i)\s+(?:(?:mens?|womens?|kids?)(?:['’]s?)?\s+)?` +
		`(?:(?:trail running shoes|running shoes|(?:running|sprint|cross country|distance|multi[\s-]?event)\s+spikes|` +
		`throwing shoes|training shoes|walking boots?)\b.*|spikes\s*)$`)
	seasonCode = regexp.MustCompile(`(?i)\s*-\s*(?:AW|FA|SS)\d{2}\s*$`)
	spaces     = regexp.MustCompile(`\s+`)
)

// CleanName strips delivery promotions, prices, trailing category phrases
// and season codes from a raw product title.
func CleanName(raw string) string {
	s := spaces.ReplaceAllString(raw, " ")
	s = deliveryPrefix.ReplaceAllString(s, "")
	s = currencyTail.ReplaceAllString(s, "")
	s = promoTail.ReplaceAllString(s, "")
	s = trailingPhrase.ReplaceAllString(s, "")
	s = seasonCode.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "-"))
}

// InferBrand returns the longest known brand the name starts with.
func InferBrand(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	best := ""
	for _, brand := range knownBrands {
		b := strings.ToLower(brand)
		if lower != b && !strings.HasPrefix(lower, b+" ") {
			continue
		}
		if len(brand) > len(best) {
			best = brand
		}
	}
	if best == "" {
		return UnknownBrand
	}
	return best
}

// Model is the cleaned name without its leading brand.
func Model(cleaned, brand string) string {
	if brand == "" || brand == UnknownBrand || len(cleaned) < len(brand) {
		return cleaned
	}
	if !strings.EqualFold(cleaned[:len(brand)], brand) {
		return cleaned
	}
	return strings.TrimSpace(cleaned[len(brand):])
}

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slug derives the catalog key from cleaned brand and model text.
func Slug(text string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(text), "")
	s = spaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
