package scraper

import "price-tracker/internal/models"

// RozetkaProfile reads rozetka.com.ua product pages. A discounted price is rendered red next to
// a small struck-through original, so both must be present for a sale.
func RozetkaProfile() Profile {
	return Profile{
		Platform:        models.PlatformRozetka,
		DefaultName:     "Unknown Rozetka Product",
		DefaultCategory: "Electronics",
		Headers: map[string]string{
			"User-Agent":                chromeUserAgent,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7",
			"Referer":                   "https://rozetka.com.ua/",
			"Upgrade-Insecure-Requests": "1",
		},
		Name: []string{
			".title__font",
			`h1[itemprop="name"]`,
			".product__title-left h1",
		},
		Breadcrumbs: ".breadcrumbs__item",
		SaleMarkers: []string{
			".product-price__small",
			".product-price__big.product-price__big-color-red",
		},
		OriginalPrice: []string{".product-price__small"},
		SalePrice:     []string{".product-price__big.product-price__big-color-red"},
		Discount:      []string{".product-price__discount"},
		RegularPrice:  []string{".product-price__big:not(.product-price__big-color-red)"},
	}
}

func NewRozetkaScraper(fetcher *Fetcher) *SiteScraper {
	return NewSiteScraper(RozetkaProfile(), fetcher)
}
