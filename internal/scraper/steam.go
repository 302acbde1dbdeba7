package scraper

import "price-tracker/internal/models"

// SteamProfile reads Steam store pages. Prices are forced to hryvnia with cc=UA and the age
// gate is skipped with a pre-filled birth date cookie.
func SteamProfile() Profile {
	return Profile{
		Platform:        models.PlatformSteam,
		DefaultName:     "Unknown Steam Game",
		DefaultCategory: "Game",
		Headers: map[string]string{
			"Accept-Language": "uk-UA,uk;q=0.9",
			"Cookie":          "birthtime=315532800; lastagecheckage=1-0-1980; mature_content=1; wants_mature_content=1",
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Query: "cc=UA&l=ukrainian",
		Name: []string{
			".apphub_AppName",
			"div.page_title_area h2.pageheader",
			"#appHubAppName",
			".game_title_area .game_name",
		},
		Category: []string{
			`.details_block a[href*="genre"]`,
			`.game_details_elements a[href*="genre"]`,
			".glance_tags.popular_tags a",
		},
		SaleMarkers:         []string{".discount_pct, .discount_block .discount_pct"},
		SaleMarkerNeedsText: true,
		OriginalPrice: []string{
			".discount_original_price",
			".discount_prices .discount_original_price",
		},
		SalePrice: []string{
			".discount_final_price",
			".discount_prices .discount_final_price",
		},
		Discount: []string{
			".discount_pct",
			".discount_block .discount_pct",
		},
		RegularPrice: []string{
			".game_purchase_price.price",
			".game_purchase_price",
			".price",
			".your_price .price",
		},
		RegularPriceExclude: "Free",
		FreeAreas: []string{
			".game_area_purchase_game_wrapper",
			".game_area_purchase_game",
			".game_purchase_price",
		},
		FreeMarkers: []string{"free", "безкоштовно"},
	}
}

func NewSteamScraper(fetcher *Fetcher) *SiteScraper {
	return NewSiteScraper(SteamProfile(), fetcher)
}
