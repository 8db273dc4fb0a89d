package normalize

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/speedsale-scraper/internal/entity"
)

func PtrTo[T any](v T) *T {
	return &v
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"£89.99", 89.99},
		{"  £ 120 ", 120},
		{"£1,299.99", 1299.99},
		{"1.299,99 €", 1299.99},
		{"89,99", 89.99},
		{"1,299", 1299},
		{"£89.99 RRP £129.99", 89.99},
		{"£89.", 89},
		{"£0.00", 0},
		{"Sold out", 0},
		{"", 0},
		{"-5.00", 0},
		{"£-12.50", 0},
		{"£ 1 299,99", 1299.99},
		{"1\u00a0299.00 €", 1299},
		{"2 for £30", 2},
		{"£95 £120", 95},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParsePrice(tt.in), 0.0001)
		})
	}
}

func TestListPriceFromName(t *testing.T) {
	assert.InDelta(t, 129.99, ListPriceFromName("Nike Air Zoom Pegasus 40 £89.99 RRP £129.99"), 0.0001)
	assert.InDelta(t, 150, ListPriceFromName("Hoka Clifton 9 Was: £150"), 0.0001)
	assert.Zero(t, ListPriceFromName("Hoka Clifton 9"))
}

func TestDiscount(t *testing.T) {
	d := Discount(89.99, PtrTo(129.99))
	require.NotNil(t, d)
	assert.InDelta(t, 30.77, *d, 0.01)

	assert.Nil(t, Discount(100, PtrTo(100.0)), "equal prices have no discount")
	assert.Nil(t, Discount(120, PtrTo(100.0)))
	assert.Nil(t, Discount(100, nil))
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nike Air Zoom Pegasus 40 £89.99 RRP £129.99", "Nike Air Zoom Pegasus 40"},
		{"Free UK Delivery Nike Pegasus 40", "Nike Pegasus 40"},
		{"Free Delivery Brooks Ghost 15", "Brooks Ghost 15"},
		{"Hoka Speedgoat 5 Mens Trail Running Shoes - AW23 Black", "Hoka Speedgoat 5"},
		{"Adidas Adizero SL Women's Running Shoes", "Adidas Adizero SL"},
		{"Asics Gel Nimbus 25 - SS24", "Asics Gel Nimbus 25"},
		{"Nike Zoom Rival Sprint Spikes", "Nike Zoom Rival"},
		{"Nike Zoom Rival Spikes", "Nike Zoom Rival"},
		{"Saucony Endorphin Spikes Pro", "Saucony Endorphin Spikes Pro"},
		{"Salomon X Ultra 4 Walking Boots", "Salomon X Ultra 4"},
		{"Brooks Ghost 15 RRP £140", "Brooks Ghost 15"},
		{"  Saucony   Endorphin   Speed 4 ", "Saucony Endorphin Speed 4"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestInferBrand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nike Air Zoom Pegasus 40", "Nike"},
		{"new balance 1080v13", "New Balance"},
		{"The North Face Vectiv Enduris", "The North Face"},
		{"On Cloudmonster", "On"},
		{"Onyx Runner", UnknownBrand},
		{"Pegasus by Nike", UnknownBrand},
		{"", UnknownBrand},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, InferBrand(tt.in))
		})
	}
}

func TestModel(t *testing.T) {
	assert.Equal(t, "Air Zoom Pegasus 40", Model("Nike Air Zoom Pegasus 40", "Nike"))
	assert.Equal(t, "1080v13", Model("new balance 1080v13", "New Balance"))
	assert.Equal(t, "Mystery Trainer", Model("Mystery Trainer", UnknownBrand))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "nike-air-zoom-pegasus-40", Slug("Nike Air Zoom Pegasus 40"))
	assert.Equal(t, "hoka-clifton-9", Slug("  Hoka -- Clifton 9! "))
	assert.Equal(t, "asics-gel-kayano-30", Slug("ASICS Gel-Kayano 30"))
	assert.Equal(t, Slug(CleanName("Nike Pegasus 40 Running Shoes")), Slug(CleanName("Free UK Delivery Nike Pegasus 40 £99")))
}

func TestProduct(t *testing.T) {
	base, err := url.Parse("https://www.sportsshoes.com")
	require.NoError(t, err)

	p := Product(entity.RawProduct{
		Name:       "Nike Air Zoom Pegasus 40 £89.99 RRP £129.99",
		PriceText:  "£89.99",
		ImageURL:   "/img/pegasus.jpg",
		ProductURL: "/product/nike-pegasus-40",
	}, base, "running")

	assert.Equal(t, "Nike Air Zoom Pegasus 40", p.Name)
	assert.Equal(t, "Nike", p.Brand)
	assert.Equal(t, "Air Zoom Pegasus 40", p.Model)
	assert.InDelta(t, 89.99, p.Price, 0.0001)
	require.NotNil(t, p.OriginalPrice)
	assert.InDelta(t, 129.99, *p.OriginalPrice, 0.0001)
	require.NotNil(t, p.DiscountPercentage)
	assert.InDelta(t, 30.8, *p.DiscountPercentage, 0.05)
	assert.Equal(t, "nike-air-zoom-pegasus-40", p.Slug)
	assert.Equal(t, "https://www.sportsshoes.com/product/nike-pegasus-40", p.ProductURL)
	assert.Equal(t, "https://www.sportsshoes.com/img/pegasus.jpg", p.ImageURL)
	assert.Equal(t, "running", p.Category)
	assert.True(t, IsValid(&p))
}

func TestProductOriginalPriceElementWins(t *testing.T) {
	p := Product(entity.RawProduct{
		Name:              "Brooks Ghost 15 RRP £140",
		PriceText:         "£100",
		OriginalPriceText: "£120",
		ProductURL:        "https://example.com/ghost",
	}, nil, "")

	require.NotNil(t, p.OriginalPrice)
	assert.InDelta(t, 120, *p.OriginalPrice, 0.0001)
	assert.InDelta(t, 120, p.ListPrice(), 0.0001)
}

func TestIsValid(t *testing.T) {
	valid := entity.ScrapedProduct{Name: "Nike Pegasus", Brand: "Nike", Price: 10, ProductURL: "https://x/p"}
	assert.True(t, IsValid(&valid))

	noURL := valid
	noURL.ProductURL = ""
	assert.False(t, IsValid(&noURL))

	zeroPrice := valid
	zeroPrice.Price = 0
	assert.False(t, IsValid(&zeroPrice))

	noName := valid
	noName.Name = ""
	assert.False(t, IsValid(&noName))
}
