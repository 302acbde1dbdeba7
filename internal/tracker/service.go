package tracker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moby/locker"
	"github.com/sirupsen/logrus"

	"price-tracker/internal/apperrors"
	"price-tracker/internal/models"
	"price-tracker/internal/scraper"
)

// Repository persists tracked products. (UserID, ProductID) is unique and Upsert must be atomic
// for it.
type Repository interface {
	FindByProduct(ctx context.Context, userID, productID string) (*models.TrackedProduct, error)
	FindByIdentifier(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error)
	Upsert(ctx context.Context, p *models.TrackedProduct) (*models.TrackedProduct, bool, error)
	Delete(ctx context.Context, userID, identifier string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.TrackedProduct, error)
	ListAll(ctx context.Context) ([]models.TrackedProduct, error)
}

// Extractor turns a product URL into details. *scraper.Registry is the production one.
type Extractor interface {
	Parse(ctx context.Context, url string) (models.ProductDetails, error)
}

// AddResult is either a stored product or, for a first submission of a discounted product, a
// sale notice with nothing written
type AddResult struct {
	Product    *models.TrackedProduct `json:"product,omitempty"`
	Created    bool                   `json:"created"`
	SaleNotice *models.SaleNotice     `json:"-"`
}

type Service struct {
	repo      Repository
	extractor Extractor
	locks     *locker.Locker
	now       func() time.Time
	newID     func() string
}

func NewService(repo Repository, extractor Extractor) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		locks:     locker.New(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Add tracks url for userID. A product that is on sale and not yet tracked by the user is not
// stored; the result carries a SaleNotice instead.
func (s *Service) Add(ctx context.Context, userID, url string) (*AddResult, error) {
	return s.add(ctx, userID, url, true)
}

// ForceAdd tracks url for userID regardless of its sale status
func (s *Service) ForceAdd(ctx context.Context, userID, url string) (*AddResult, error) {
	return s.add(ctx, userID, url, false)
}

// lock serializes every write to one user's record of one product
func (s *Service) lock(userID, productID string) func() {
	key := userID + "\x00" + productID
	s.locks.Lock(key)
	return func() {
		_ = s.locks.Unlock(key)
	}
}

func (s *Service) add(ctx context.Context, userID, url string, saleGate bool) (*AddResult, error) {
	req := AddRequest{UserID: strings.TrimSpace(userID), URL: strings.TrimSpace(url)}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	platform, ok := scraper.DetectPlatform(req.URL)
	if !ok {
		return nil, apperrors.UnsupportedSite()
	}

	details, err := s.extractor.Parse(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	productID := scraper.GenerateProductID(req.URL)
	log := logrus.WithFields(logrus.Fields{
		"user_id":    req.UserID,
		"product_id": productID,
		"platform":   platform,
	})

	unlock := s.lock(req.UserID, productID)
	defer unlock()

	existing, err := s.repo.FindByProduct(ctx, req.UserID, productID)
	if err != nil {
		return nil, apperrors.Persistence("Failed to look up tracked product", err)
	}

	if saleGate && existing == nil && details.OnSale() {
		log.Info("Product already on sale, asking for confirmation")
		return &AddResult{SaleNotice: models.NewSaleNotice(details)}, nil
	}

	now := s.now()
	record := &models.TrackedProduct{
		ID:        s.newID(),
		UserID:    req.UserID,
		ProductID: productID,
		NativeID:  scraper.NativeID(productID),
		URL:       req.URL,
		Platform:  platform,
		Currency:  platform.Currency(),
		DateAdded: now,
		UpdatedAt: now,
	}
	record.ApplyDetails(details)

	stored, created, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, apperrors.Persistence("Failed to save tracked product", err)
	}

	log.WithFields(logrus.Fields{
		"created": created,
		"status":  stored.Status,
		"price":   stored.Price,
	}).Info("Tracked product saved")
	return &AddResult{Product: stored, Created: created}, nil
}

// Remove deletes the user's record named by storage id, product id or native id
func (s *Service) Remove(ctx context.Context, userID, identifier string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InputValidation("userId is required", nil)
	}
	if strings.TrimSpace(identifier) == "" {
		return apperrors.InputValidation("id is required", nil)
	}

	existing, err := s.Get(ctx, userID, identifier)
	if err != nil {
		return err
	}

	unlock := s.lock(existing.UserID, existing.ProductID)
	defer unlock()

	deleted, err := s.repo.Delete(ctx, userID, existing.ID)
	if err != nil {
		return apperrors.Persistence("Failed to remove tracked product", err)
	}
	if !deleted {
		return apperrors.NotFound("Tracked product")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": existing.ProductID,
	}).Info("Tracked product removed")
	return nil
}

// Get returns the user's record named by storage id, product id or native id
func (s *Service) Get(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.InputValidation("userId is required", nil)
	}

	existing, err := s.repo.FindByIdentifier(ctx, userID, identifier)
	if err != nil {
		return nil, apperrors.Persistence("Failed to look up tracked product", err)
	}
	if existing == nil {
		return nil, apperrors.NotFound("Tracked product")
	}
	return existing, nil
}

// Refresh scrapes a tracked product again and updates it in place. It never creates a record:
// a product removed while its page was being scraped stays removed.
func (s *Service) Refresh(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error) {
	existing, err := s.Get(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}

	details, err := s.extractor.Parse(ctx, existing.URL)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(existing.UserID, existing.ProductID)
	defer unlock()

	current, err := s.repo.FindByProduct(ctx, existing.UserID, existing.ProductID)
	if err != nil {
		return nil, apperrors.Persistence("Failed to look up tracked product", err)
	}
	if current == nil {
		return nil, apperrors.NotFound("Tracked product")
	}

	current.ApplyDetails(details)
	current.UpdatedAt = s.now()

	stored, _, err := s.repo.Upsert(ctx, current)
	if err != nil {
		return nil, apperrors.Persistence("Failed to save tracked product", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    stored.UserID,
		"product_id": stored.ProductID,
		"status":     stored.Status,
		"price":      stored.Price,
	}).Info("Tracked product refreshed")
	return stored, nil
}

// SortField names a column tracked products can be ordered by
type SortField string

const (
	SortDateAdded   SortField = "dateAdded"
	SortPrice       SortField = "price"
	SortSalePercent SortField = "salePercent"
)

// ListOptions filters and orders a user's products. The zero value lists everything newest
// first.
type ListOptions struct {
	Platform   models.Platform
	SaleOnly   bool
	SortField  SortField
	Descending bool
}

// ParseSort reads "<field>_<asc|desc>". Unknown input falls back to dateAdded_desc.
func ParseSort(value string) (SortField, bool) {
	field, order, _ := strings.Cut(value, "_")
	switch SortField(field) {
	case SortDateAdded, SortPrice, SortSalePercent:
		return SortField(field), order != "asc"
	default:
		return SortDateAdded, true
	}
}

// List returns the user's products after applying opts. It never returns nil.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]models.TrackedProduct, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.InputValidation("userId is required", nil)
	}

	products, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("Failed to list tracked products", err)
	}

	filtered := make([]models.TrackedProduct, 0, len(products))
	for _, p := range products {
		if opts.Platform != "" && p.Platform != opts.Platform {
			continue
		}
		if opts.SaleOnly && p.Status != models.StatusSale {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, opts)
	return filtered, nil
}

// All returns every tracked product of every user
func (s *Service) All(ctx context.Context) ([]models.TrackedProduct, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Persistence("Failed to list tracked products", err)
	}
	return products, nil
}

func sortProducts(products []models.TrackedProduct, opts ListOptions) {
	field := opts.SortField
	descending := opts.Descending
	if field == "" {
		field, descending = SortDateAdded, true
	}

	less := func(a, b models.TrackedProduct) bool {
		switch field {
		case SortPrice:
			return a.EffectivePrice() < b.EffectivePrice()
		case SortSalePercent:
			return salePercent(a) < salePercent(b)
		default:
			return a.DateAdded.Before(b.DateAdded)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		if descending {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func salePercent(p models.TrackedProduct) int {
	if p.SalePercent == nil {
		return 0
	}
	return *p.SalePercent
}
