package chromedp_strategy

import (
	"encoding/json"
	"fmt"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/utils"
)

const (
	scrollHeightJS   = `document.body.scrollHeight`
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`

	// Clicks visible buttons labelled Accept, Close or No Thanks, or whose
	// class mentions accept or close. Returns the number clicked.
	dismissPopupsJS = `(() => {
  const labels = ['accept', 'close', 'no thanks'];
  let clicked = 0;
  document.querySelectorAll('button, [role="button"]').forEach((el) => {
    const text = (el.innerText || '').trim().toLowerCase();
    const cls = (typeof el.className === 'string' ? el.className : '').toLowerCase();
    const match = labels.includes(text) || cls.includes('accept') || cls.includes('close');
    if (match && el.offsetParent !== null) {
      try { el.click(); clicked++; } catch (e) {}
    }
  });
  return clicked;
})()`
)

func elementPresentJS(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// collector accumulates products across pagination steps. Each snapshot
// contains the whole DOM, so products are keyed by their URL.
type collector struct {
	seen     map[string]struct{}
	products []entity.ScrapedProduct
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

// add appends unseen products and returns how many were new.
func (c *collector) add(products []entity.ScrapedProduct) int {
	added := 0
	for _, p := range products {
		key := utils.HashURL(p.ProductURL)
		if _, ok := c.seen[key]; ok {
			continue
		}
		c.seen[key] = struct{}{}
		c.products = append(c.products, p)
		added++
	}
	return added
}
