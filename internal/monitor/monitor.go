package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"price-tracker/internal/models"
)

// Refresher is the part of the tracking service the monitor drives
type Refresher interface {
	All(ctx context.Context) ([]models.TrackedProduct, error)
	Refresh(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error)
}

// Notifier tells a user that a tracked product got cheaper
type Notifier interface {
	NotifySale(userID string, previous models.TrackedProduct, current *models.TrackedProduct) error
}

// Monitor periodically re-scrapes every tracked product
type Monitor struct {
	service  Refresher
	notifier Notifier
	interval time.Duration
	delay    time.Duration
}

// New creates a monitor. notifier may be nil, in which case price changes are only logged.
func New(service Refresher, notifier Notifier, interval time.Duration) *Monitor {
	return &Monitor{
		service:  service,
		notifier: notifier,
		interval: interval,
		delay:    2 * time.Second,
	}
}

// Start checks all products right away and then on every tick until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	logrus.WithField("interval", m.interval).Info("Monitor started")

	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Monitor stopped")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll refreshes every tracked product and returns how many were refreshed
func (m *Monitor) CheckAll(ctx context.Context) int {
	products, err := m.service.All(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load tracked products")
		return 0
	}

	refreshed := 0
	for i, product := range products {
		if i > 0 && m.delay > 0 {
			// small pause between requests so the stores are not hammered
			select {
			case <-ctx.Done():
				return refreshed
			case <-time.After(m.delay):
			}
		}
		if m.checkProduct(ctx, product) {
			refreshed++
		}
	}
	return refreshed
}

func (m *Monitor) checkProduct(ctx context.Context, product models.TrackedProduct) bool {
	log := logrus.WithFields(logrus.Fields{
		"user_id":    product.UserID,
		"product_id": product.ProductID,
	})

	current, err := m.service.Refresh(ctx, product.UserID, product.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to refresh product")
		return false
	}

	if !becameCheaper(product, current) {
		return true
	}

	log.WithFields(logrus.Fields{
		"previous": product.EffectivePrice(),
		"current":  current.EffectivePrice(),
	}).Info("Sale detected")

	if m.notifier != nil {
		if err := m.notifier.NotifySale(product.UserID, product, current); err != nil {
			log.WithError(err).Warn("Failed to send sale notification")
		}
	}
	return true
}

// becameCheaper is true when a product went on sale or its sale price dropped further
func becameCheaper(previous models.TrackedProduct, current *models.TrackedProduct) bool {
	if current.Status != models.StatusSale {
		return false
	}
	if previous.Status != models.StatusSale {
		return true
	}
	return current.EffectivePrice() < previous.EffectivePrice()
}
