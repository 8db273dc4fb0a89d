package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://www.sportsshoes.com/p/1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashURL("https://www.sportsshoes.com/p/1"))
	assert.NotEqual(t, a, HashURL("https://www.sportsshoes.com/p/2"))
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/sale/shoes?page=2")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/product/42")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/product/42", abs)

	abs, err = ToAbsoluteURL(base, "https://cdn.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", abs)
}

func TestWithPage(t *testing.T) {
	assert.Equal(t, "https://x.com/shoes?page=3", WithPage("https://x.com/shoes?page=2", 3))
	assert.Equal(t, "https://x.com/shoes?sort=new&page=4", WithPage("https://x.com/shoes?sort=new&page=1", 4))
	assert.Equal(t, "https://x.com/shoes?page=2", WithPage("https://x.com/shoes", 2))
	assert.Equal(t, "https://x.com/shoes?page=2&sort=new", WithPage("https://x.com/shoes?sort=new", 2))
}
