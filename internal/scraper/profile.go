package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"price-tracker/internal/models"
)

// Profile describes how to read one storefront. Every selector list is ordered and the first
// selector yielding non-empty text wins, so a markup change on the site usually means adding a
// selector here rather than touching extraction code.
type Profile struct {
	Platform        models.Platform
	DefaultName     string
	DefaultCategory string

	// request shaping
	Headers map[string]string
	Query   string

	Name []string

	// Breadcrumbs selects the trail entries; the second-to-last entry is the category
	// because the last one is the product itself.
	Breadcrumbs string
	Category    []string

	// SaleMarkers must all match for the page to count as discounted. With
	// SaleMarkerNeedsText the matches must also carry text.
	SaleMarkers         []string
	SaleMarkerNeedsText bool
	OriginalPrice       []string
	SalePrice           []string
	Discount            []string

	RegularPrice []string
	// RegularPriceExclude skips a regular price candidate whose text contains it
	RegularPriceExclude string

	// a product is free when the lowercased text of any FreeAreas selector contains a FreeMarkers entry
	FreeAreas   []string
	FreeMarkers []string
}

// Extract reads ProductDetails from a loaded page. It never fails: missing fields fall back to
// the profile defaults and unreadable prices to zero.
func (p Profile) Extract(doc *goquery.Document) models.ProductDetails {
	name := FirstNonEmpty(doc, p.Name)
	if name == "" {
		name = p.DefaultName
	}

	var (
		price     float64
		salePrice float64
		percent   int
		status    = models.StatusFullPrice
	)

	if p.onSale(doc) {
		status = models.StatusSale
		price = ParsePrice(FirstNonEmpty(doc, p.OriginalPrice))
		salePrice = ParsePrice(FirstNonEmpty(doc, p.SalePrice))
		percent = ReconcilePercent(ParsePercent(FirstNonEmpty(doc, p.Discount)), price, salePrice)
	} else {
		price = ParsePrice(firstNonEmptyExcluding(doc, p.RegularPrice, p.RegularPriceExclude))
	}

	if p.isFree(doc) {
		status = models.StatusFree
		price = 0
	}

	details := models.ProductDetails{
		ProductName: name,
		Category:    p.category(doc),
		Price:       price,
		Status:      status,
	}
	if status == models.StatusSale {
		details.SalePrice = &salePrice
		details.SalePercent = &percent
	}
	return details
}

func (p Profile) category(doc *goquery.Document) string {
	if p.Breadcrumbs != "" {
		if c := SecondToLast(doc, p.Breadcrumbs); c != "" {
			return c
		}
	}
	if c := FirstNonEmpty(doc, p.Category); c != "" {
		return c
	}
	return p.DefaultCategory
}

func (p Profile) onSale(doc *goquery.Document) bool {
	if len(p.SaleMarkers) == 0 {
		return false
	}
	for _, selector := range p.SaleMarkers {
		found := doc.Find(selector)
		if found.Length() == 0 {
			return false
		}
		if p.SaleMarkerNeedsText && strings.TrimSpace(found.Text()) == "" {
			return false
		}
	}
	return true
}

func (p Profile) isFree(doc *goquery.Document) bool {
	for _, selector := range p.FreeAreas {
		text := strings.ToLower(doc.Find(selector).Text())
		for _, marker := range p.FreeMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}

// FirstNonEmpty returns the trimmed text of the first element of the first selector that has
// any text.
func FirstNonEmpty(doc *goquery.Document, selectors []string) string {
	return firstNonEmptyExcluding(doc, selectors, "")
}

func firstNonEmptyExcluding(doc *goquery.Document, selectors []string, exclude string) string {
	for _, selector := range selectors {
		text := normalizeSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if exclude != "" && strings.Contains(text, exclude) {
			continue
		}
		return text
	}
	return ""
}

// SecondToLast returns the text of the second-to-last element matched by selector, or ""
// when fewer than two elements match.
func SecondToLast(doc *goquery.Document, selector string) string {
	items := doc.Find(selector)
	if items.Length() < 2 {
		return ""
	}
	return normalizeSpace(items.Eq(items.Length() - 2).Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
