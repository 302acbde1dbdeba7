package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/internal/models"
)

func loadDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const steamFullPricePage = `<html><body>
<div class="apphub_AppName">Half-Life 2</div>
<div class="game_area_purchase_game">
  <h1>Buy Half-Life 2</h1>
  <div class="game_purchase_action"><div class="price">₴299.99</div></div>
</div>
</body></html>`

const steamSalePage = `<html><body>
<div class="apphub_AppName">Cyberpunk 2077</div>
<div class="glance_tags popular_tags"><a href="/tags/rpg">  RPG </a><a href="/tags/open">Open World</a></div>
<div class="game_area_purchase_game">
  <div class="discount_block">
    <div class="discount_pct">-40%</div>
    <div class="discount_prices">
      <div class="discount_original_price">1 299,00₴</div>
      <div class="discount_final_price">779,40₴</div>
    </div>
  </div>
</div>
</body></html>`

const steamFreePage = `<html><body>
<div id="appHubAppName">Dota 2</div>
<div class="details_block"><a href="https://store.steampowered.com/genre/Strategy/">Strategy</a></div>
<div class="game_area_purchase_game_wrapper">
  <div class="game_area_purchase_game">
    <div class="game_purchase_price price">Безкоштовно</div>
  </div>
</div>
</body></html>`

func TestSteamFullPrice(t *testing.T) {
	details := SteamProfile().Extract(loadDoc(t, steamFullPricePage))

	assert.Equal(t, models.ProductDetails{
		ProductName: "Half-Life 2",
		Category:    "Game",
		Price:       299.99,
		Status:      models.StatusFullPrice,
	}, details)
}

func TestSteamSale(t *testing.T) {
	details := SteamProfile().Extract(loadDoc(t, steamSalePage))

	assert.Equal(t, "Cyberpunk 2077", details.ProductName)
	assert.Equal(t, "RPG", details.Category)
	assert.Equal(t, models.StatusSale, details.Status)
	assert.InDelta(t, 1299.0, details.Price, 1e-9)
	require.NotNil(t, details.SalePrice)
	require.NotNil(t, details.SalePercent)
	assert.InDelta(t, 779.40, *details.SalePrice, 1e-9)
	assert.Equal(t, 40, *details.SalePercent)
}

func TestSteamEmptyDiscountIsNotSale(t *testing.T) {
	page := `<div class="discount_pct">  </div><div class="game_purchase_price price">₴150</div>`
	details := SteamProfile().Extract(loadDoc(t, page))

	assert.Equal(t, models.StatusFullPrice, details.Status)
	assert.InDelta(t, 150.0, details.Price, 1e-9)
	assert.Nil(t, details.SalePrice)
	assert.Nil(t, details.SalePercent)
}

func TestSteamFree(t *testing.T) {
	details := SteamProfile().Extract(loadDoc(t, steamFreePage))

	assert.Equal(t, "Dota 2", details.ProductName)
	assert.Equal(t, "Strategy", details.Category)
	assert.Equal(t, models.StatusFree, details.Status)
	assert.Zero(t, details.Price)
	assert.Nil(t, details.SalePrice)
	assert.Nil(t, details.SalePercent)
}

func TestSteamFreeOverridesSale(t *testing.T) {
	page := `<div class="game_area_purchase_game">Free to Play
	<div class="discount_pct">-100%</div>
	<div class="discount_original_price">₴100</div>
	<div class="discount_final_price">₴0</div></div>`
	details := SteamProfile().Extract(loadDoc(t, page))

	assert.Equal(t, models.StatusFree, details.Status)
	assert.Zero(t, details.Price)
	assert.Nil(t, details.SalePrice)
}

func TestSteamRegularPriceSkipsFreeLabel(t *testing.T) {
	page := `<div class="price">Free DLC included</div><div class="your_price"><span class="price">₴80</span></div>`
	details := SteamProfile().Extract(loadDoc(t, page))

	assert.Equal(t, models.StatusFullPrice, details.Status)
	assert.InDelta(t, 80.0, details.Price, 1e-9)
}

func TestSteamPurchasePriceFreeLabel(t *testing.T) {
	page := `<div class="game_purchase_price">Free Weekend</div><div class="your_price"><span class="price">₴80</span></div>`
	details := SteamProfile().Extract(loadDoc(t, page))

	assert.Equal(t, models.StatusFree, details.Status)
	assert.Zero(t, details.Price)
}

func TestSteamDefaults(t *testing.T) {
	details := SteamProfile().Extract(loadDoc(t, `<html><body><p>nothing here</p></body></html>`))

	assert.Equal(t, "Unknown Steam Game", details.ProductName)
	assert.Equal(t, "Game", details.Category)
	assert.Zero(t, details.Price)
	assert.Equal(t, models.StatusFullPrice, details.Status)
}

const comfySalePage = `<html><body>
<div class="breadcrumbs">
  <a href="/">Головна</a><a href="/smartfony">Смартфони</a><a href="/item">Samsung Galaxy S24</a>
</div>
<div class="gen-tab__name">Samsung Galaxy S24 8/256GB</div>
<div class="price">
  <div class="price__old-price">42 999 ₴</div>
  <div class="price__current">36 999 ₴</div>
  <div class="price__percent-discount">-14%</div>
</div>
</body></html>`

func TestComfySaleWithExplicitPercent(t *testing.T) {
	details := ComfyProfile().Extract(loadDoc(t, comfySalePage))

	assert.Equal(t, "Samsung Galaxy S24 8/256GB", details.ProductName)
	assert.Equal(t, "Смартфони", details.Category)
	assert.Equal(t, models.StatusSale, details.Status)
	assert.InDelta(t, 42999.0, details.Price, 1e-9)
	require.NotNil(t, details.SalePrice)
	assert.InDelta(t, 36999.0, *details.SalePrice, 1e-9)
	require.NotNil(t, details.SalePercent)
	assert.Equal(t, 14, *details.SalePercent)
}

func TestComfySaleComputesPercent(t *testing.T) {
	page := `<div class="price__old-price">2000</div><div class="price__current">1500</div>`
	details := ComfyProfile().Extract(loadDoc(t, page))

	require.NotNil(t, details.SalePercent)
	assert.Equal(t, 25, *details.SalePercent)
	assert.Equal(t, "Unknown Comfy Product", details.ProductName)
	assert.Equal(t, "Electronics", details.Category)
}

func TestComfyFullPrice(t *testing.T) {
	page := `<div class="product__heading-container"><h1>Навушники Sony</h1></div>
	<div class="breadcrumbs"><a>Головна</a></div>
	<div class="price__current">3 499 ₴</div>`
	details := ComfyProfile().Extract(loadDoc(t, page))

	assert.Equal(t, "Навушники Sony", details.ProductName)
	assert.Equal(t, "Electronics", details.Category, "a single breadcrumb has no category entry")
	assert.InDelta(t, 3499.0, details.Price, 1e-9)
	assert.Equal(t, models.StatusFullPrice, details.Status)
	assert.Nil(t, details.SalePrice)
	assert.Nil(t, details.SalePercent)
}

func TestRozetkaSaleComputesPercent(t *testing.T) {
	page := `<html><body>
	<ul class="breadcrumbs">
	  <li class="breadcrumbs__item">Ноутбуки та комп'ютери</li>
	  <li class="breadcrumbs__item">Ноутбуки</li>
	  <li class="breadcrumbs__item">Lenovo IdeaPad</li>
	</ul>
	<h1 class="title__font">Lenovo IdeaPad 3</h1>
	<h1 class="title__font">Lenovo IdeaPad 3</h1>
	<p class="product-price__small">₴1000</p>
	<p class="product-price__big product-price__big-color-red">₴800</p>
	</body></html>`
	details := RozetkaProfile().Extract(loadDoc(t, page))

	assert.Equal(t, "Lenovo IdeaPad 3", details.ProductName, "duplicated titles use the first")
	assert.Equal(t, "Ноутбуки", details.Category)
	assert.Equal(t, models.StatusSale, details.Status)
	assert.InDelta(t, 1000.0, details.Price, 1e-9)
	require.NotNil(t, details.SalePrice)
	assert.InDelta(t, 800.0, *details.SalePrice, 1e-9)
	require.NotNil(t, details.SalePercent)
	assert.Equal(t, 20, *details.SalePercent)
}

func TestRozetkaSaleWithExplicitPercent(t *testing.T) {
	page := `<p class="product-price__small">₴1000</p>
	<p class="product-price__big product-price__big-color-red">₴800</p>
	<span class="product-price__discount">-21%</span>`
	details := RozetkaProfile().Extract(loadDoc(t, page))

	require.NotNil(t, details.SalePercent)
	assert.Equal(t, 21, *details.SalePercent)
}

func TestRozetkaFullPrice(t *testing.T) {
	page := `<h1 itemprop="name">Кавоварка DeLonghi</h1>
	<p class="product-price__small">₴9999</p>
	<p class="product-price__big">8 499₴</p>`
	details := RozetkaProfile().Extract(loadDoc(t, page))

	assert.Equal(t, "Кавоварка DeLonghi", details.ProductName)
	assert.Equal(t, models.StatusFullPrice, details.Status, "an old price without a red price is not a sale")
	assert.InDelta(t, 8499.0, details.Price, 1e-9)
	assert.Nil(t, details.SalePrice)
	assert.Nil(t, details.SalePercent)
}

func TestSaleFieldsOnlyOnSale(t *testing.T) {
	cases := []struct {
		profile Profile
		page    string
	}{
		{SteamProfile(), steamFullPricePage},
		{SteamProfile(), steamSalePage},
		{SteamProfile(), steamFreePage},
		{ComfyProfile(), comfySalePage},
		{ComfyProfile(), `<div class="price__current">10</div>`},
		{RozetkaProfile(), `<p class="product-price__big">5</p>`},
		{RozetkaProfile(), ``},
	}

	for _, c := range cases {
		details := c.profile.Extract(loadDoc(t, c.page))
		if details.Status != models.StatusSale {
			assert.Nil(t, details.SalePrice, c.page)
			assert.Nil(t, details.SalePercent, c.page)
		} else {
			assert.NotNil(t, details.SalePrice, c.page)
			assert.NotNil(t, details.SalePercent, c.page)
		}
		assert.GreaterOrEqual(t, details.Price, 0.0)
	}
}

func TestFirstNonEmptyPrecedence(t *testing.T) {
	doc := loadDoc(t, `<h2 class="b">second</h2><h1 class="a"> </h1><h3 class="c">third</h3>`)

	assert.Equal(t, "second", FirstNonEmpty(doc, []string{".a", ".b", ".c"}))
	assert.Equal(t, "third", FirstNonEmpty(doc, []string{".missing", ".c", ".b"}))
	assert.Equal(t, "", FirstNonEmpty(doc, []string{".missing"}))
}
