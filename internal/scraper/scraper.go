package scraper

import (
	"context"

	"github.com/sirupsen/logrus"

	"price-tracker/internal/apperrors"
	"price-tracker/internal/models"
)

// Scraper defines the interface for store-specific product page extractors
type Scraper interface {
	Platform() models.Platform
	CanHandle(url string) bool
	Parse(ctx context.Context, url string) (models.ProductDetails, error)
}

// SiteScraper fetches a page with the profile's locale forcing and extracts it with the
// profile's selector chains
type SiteScraper struct {
	profile Profile
	fetcher *Fetcher
}

func NewSiteScraper(profile Profile, fetcher *Fetcher) *SiteScraper {
	return &SiteScraper{profile: profile, fetcher: fetcher}
}

func (s *SiteScraper) Platform() models.Platform {
	return s.profile.Platform
}

func (s *SiteScraper) CanHandle(url string) bool {
	platform, ok := DetectPlatform(url)
	return ok && platform == s.profile.Platform
}

// Parse fetches url and extracts product details. Only a failed fetch or an unreadable
// document is an error.
func (s *SiteScraper) Parse(ctx context.Context, url string) (models.ProductDetails, error) {
	pageURL := withQuery(cleanURL(url), s.profile.Query)
	log := logrus.WithFields(logrus.Fields{
		"platform": s.profile.Platform,
		"url":      pageURL,
	})

	doc, err := s.fetcher.Document(ctx, pageURL, s.profile.Headers)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch product page")
		return models.ProductDetails{}, apperrors.Scrape(s.profile.Platform.DisplayName(), err)
	}

	details := s.profile.Extract(doc)
	log.WithFields(logrus.Fields{
		"name":   details.ProductName,
		"price":  details.Price,
		"status": details.Status,
	}).Info("Parsed product page")
	return details, nil
}

// Registry keeps all available scrapers
type Registry struct {
	scrapers []Scraper
}

// NewRegistry registers the Steam, Comfy and Rozetka scrapers on a shared fetcher
func NewRegistry(fetcher *Fetcher) *Registry {
	return NewRegistryWith(
		NewSteamScraper(fetcher),
		NewComfyScraper(fetcher),
		NewRozetkaScraper(fetcher),
	)
}

func NewRegistryWith(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// FindScraper returns the scraper for a URL, or nil
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}

// Parse routes url to its platform scraper. Unsupported sites fail before any request is made.
func (r *Registry) Parse(ctx context.Context, url string) (models.ProductDetails, error) {
	scraper := r.FindScraper(url)
	if scraper == nil {
		return models.ProductDetails{}, apperrors.UnsupportedSite()
	}
	return scraper.Parse(ctx, url)
}
