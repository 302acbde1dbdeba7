package models

import "time"

// Status is the price state of a product at scrape time
type Status string

const (
	StatusFullPrice Status = "fullprice"
	StatusSale      Status = "sale"
	StatusFree      Status = "free"
)

// Platform identifies a supported storefront
type Platform string

const (
	PlatformSteam   Platform = "steam"
	PlatformRozetka Platform = "rozetka"
	PlatformComfy   Platform = "comfy"
)

// Currency returns the currency symbol prices of the platform are scraped in.
// Every storefront is requested with a Ukrainian locale, so all of them report hryvnia.
func (p Platform) Currency() string {
	return "₴"
}

// DisplayName returns a human readable platform name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformSteam:
		return "Steam"
	case PlatformRozetka:
		return "Rozetka"
	case PlatformComfy:
		return "Comfy"
	default:
		return "Unknown"
	}
}

// ProductDetails is what an extractor reads from a product page
type ProductDetails struct {
	ProductName string   `json:"productName"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice"`
	SalePercent *int     `json:"salePercent"`
	Status      Status   `json:"status"`
}

// OnSale reports whether the details describe a discounted product
func (d ProductDetails) OnSale() bool {
	return d.Status == StatusSale
}

// TrackedProduct is a product a user monitors
type TrackedProduct struct {
	ID          string    `json:"id" firestore:"id"`
	UserID      string    `json:"userId" firestore:"userId"`
	ProductID   string    `json:"productId" firestore:"productId"`
	NativeID    string    `json:"nativeId" firestore:"nativeId"`
	URL         string    `json:"url" firestore:"url"`
	ProductName string    `json:"productName" firestore:"productName"`
	Category    string    `json:"category" firestore:"category"`
	Price       float64   `json:"price" firestore:"price"`
	SalePrice   *float64  `json:"salePrice" firestore:"salePrice"`
	SalePercent *int      `json:"salePercent" firestore:"salePercent"`
	Status      Status    `json:"status" firestore:"status"`
	Platform    Platform  `json:"platform" firestore:"platform"`
	Currency    string    `json:"currency" firestore:"currency"`
	DateAdded   time.Time `json:"dateAdded" firestore:"dateAdded"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ApplyDetails copies freshly scraped fields onto the record
func (p *TrackedProduct) ApplyDetails(d ProductDetails) {
	p.ProductName = d.ProductName
	p.Category = d.Category
	p.Price = d.Price
	p.SalePrice = d.SalePrice
	p.SalePercent = d.SalePercent
	p.Status = d.Status
}

// EffectivePrice is the price the user would pay right now
func (p TrackedProduct) EffectivePrice() float64 {
	if p.Status == StatusSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// Matches reports whether identifier names this record by storage id, product id or native id
func (p TrackedProduct) Matches(identifier string) bool {
	return identifier != "" && (p.ID == identifier || p.ProductID == identifier || p.NativeID == identifier)
}

// SaleDetails summarizes a discount for the user
type SaleDetails struct {
	OriginalPrice float64 `json:"originalPrice"`
	SalePrice     float64 `json:"salePrice"`
	SalePercent   int     `json:"salePercent"`
	ProductName   string  `json:"productName"`
}

// SaleNotice is returned instead of tracking a product that is already discounted
type SaleNotice struct {
	AlreadyOnSale bool        `json:"alreadyOnSale"`
	Message       string      `json:"message"`
	SaleDetails   SaleDetails `json:"saleDetails"`
}

// NewSaleNotice builds the notice for an on-sale product
func NewSaleNotice(d ProductDetails) *SaleNotice {
	details := SaleDetails{
		OriginalPrice: d.Price,
		ProductName:   d.ProductName,
	}
	if d.SalePrice != nil {
		details.SalePrice = *d.SalePrice
	}
	if d.SalePercent != nil {
		details.SalePercent = *d.SalePercent
	}
	return &SaleNotice{
		AlreadyOnSale: true,
		Message:       "Product is already on sale!",
		SaleDetails:   details,
	}
}
