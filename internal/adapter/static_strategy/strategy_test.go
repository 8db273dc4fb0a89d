package static_strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/adapter/httpfetch"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// endlessCatalog serves pages that always link to the next two pages.
func endlessCatalog(hits *int32, failFrom int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if failFrom > 0 && page >= failFrom {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `<html><body>
<div class="card"><a href="/p/%[1]d"><h3>Nike Pegasus %[1]d</h3><b>£%[1]d0.00</b></a></div>
<div class="pagination"><a href="/sale?page=%[2]d">next</a><a href="/sale?page=%[3]d">more</a></div>
</body></html>`, page, page+1, page+2)
	}
}

func staticProfile(baseURL string, maxPages int) *entity.RetailerProfile {
	return &entity.RetailerProfile{
		ID:       "teststore",
		BaseURL:  baseURL,
		Strategy: entity.StrategyStatic,
		Selectors: entity.Selectors{
			Container: ".card",
			Name:      "h3",
			Price:     "b",
			Image:     "img",
			Link:      "a",
		},
		Pagination: entity.Pagination{Kind: entity.PaginationNumbered, MaxPages: maxPages},
		Categories: map[string]string{"running": "/sale"},
	}
}

func newStrategy() *Strategy {
	return New(httpfetch.New(httpfetch.Options{RetryBackoff: time.Millisecond}), 5*time.Second)
}

func TestExtractHonoursPageLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(endlessCatalog(&hits, 0))
	defer srv.Close()

	products, err := newStrategy().Extract(context.Background(), staticProfile(srv.URL, 3), "running")
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	require.Len(t, products, 3)
	assert.Equal(t, "Nike Pegasus 1", products[0].Name)
	assert.Equal(t, srv.URL+"/p/3", products[2].ProductURL)
	assert.InDelta(t, 30, products[2].Price, 0.001)
}

func TestExtractKeepsProductsWhenLaterPageFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(endlessCatalog(&hits, 3))
	defer srv.Close()

	products, err := newStrategy().Extract(context.Background(), staticProfile(srv.URL, 10), "running")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "pagination stops at the first failed page")
}

func TestExtractWithoutPaginationFetchesOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(endlessCatalog(&hits, 0))
	defer srv.Close()

	profile := staticProfile(srv.URL, 10)
	profile.Pagination.Kind = entity.PaginationInfinite

	products, err := newStrategy().Extract(context.Background(), profile, "running")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestExtractFirstPageFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(endlessCatalog(&hits, 1))
	defer srv.Close()

	products, err := newStrategy().Extract(context.Background(), staticProfile(srv.URL, 3), "running")
	require.Error(t, err)
	assert.Nil(t, products)
}

func TestKind(t *testing.T) {
	assert.Equal(t, entity.StrategyStatic, newStrategy().Kind())
}
