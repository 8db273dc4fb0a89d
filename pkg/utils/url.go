package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// HashURL creates a SHA256 hash of a URL string.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

var pageParam = regexp.MustCompile(`([?&])page=\d+`)

// WithPage rewrites the page query parameter of rawURL, appending it when
// absent.
func WithPage(rawURL string, page int) string {
	n := strconv.Itoa(page)
	if pageParam.MatchString(rawURL) {
		return pageParam.ReplaceAllString(rawURL, "${1}page="+n)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Sprintf("%s?page=%d", rawURL, page)
	}
	q := u.Query()
	q.Set("page", n)
	u.RawQuery = q.Encode()
	return u.String()
}
