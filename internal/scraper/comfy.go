package scraper

import "price-tracker/internal/models"

// ComfyProfile reads comfy.ua product pages.
// Accept-Encoding is not set, the transport negotiates gzip itself.
func ComfyProfile() Profile {
	return Profile{
		Platform:        models.PlatformComfy,
		DefaultName:     "Unknown Comfy Product",
		DefaultCategory: "Electronics",
		Headers: map[string]string{
			"User-Agent":                chromeUserAgent,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
			"Accept-Language":           "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7",
			"Referer":                   "https://comfy.ua/",
			"Cache-Control":             "max-age=0",
			"Sec-Ch-Ua":                 `"Chromium";v="98", " Not A;Brand";v="99"`,
			"Sec-Ch-Ua-Mobile":          "?0",
			"Sec-Ch-Ua-Platform":        `"Windows"`,
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "same-origin",
			"Sec-Fetch-User":            "?1",
			"Upgrade-Insecure-Requests": "1",
		},
		Name: []string{
			".gen-tab__name",
			".product__heading-container h1",
			".product-card__name",
			".product-header__title",
		},
		Breadcrumbs:   ".breadcrumbs a",
		SaleMarkers:   []string{".price__old-price"},
		OriginalPrice: []string{".price__old-price"},
		SalePrice:     []string{".price__current"},
		Discount:      []string{".price__percent-discount"},
		RegularPrice:  []string{".price__current"},
	}
}

func NewComfyScraper(fetcher *Fetcher) *SiteScraper {
	return NewSiteScraper(ComfyProfile(), fetcher)
}
