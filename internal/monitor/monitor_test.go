package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/internal/models"
)

type fakeRefresher struct {
	products []models.TrackedProduct
	next     map[string]*models.TrackedProduct
	failing  map[string]bool
	listErr  error
}

func (f *fakeRefresher) All(context.Context) ([]models.TrackedProduct, error) {
	return f.products, f.listErr
}

func (f *fakeRefresher) Refresh(_ context.Context, _, identifier string) (*models.TrackedProduct, error) {
	if f.failing[identifier] {
		return nil, errors.New("scrape failed")
	}
	return f.next[identifier], nil
}

type sale struct {
	userID   string
	previous models.TrackedProduct
	current  *models.TrackedProduct
}

type fakeNotifier struct {
	sent []sale
}

func (f *fakeNotifier) NotifySale(userID string, previous models.TrackedProduct, current *models.TrackedProduct) error {
	f.sent = append(f.sent, sale{userID, previous, current})
	return nil
}

func product(id string, status models.Status, price float64, salePrice *float64) models.TrackedProduct {
	return models.TrackedProduct{ID: id, UserID: "42", ProductID: "steam_" + id, Status: status, Price: price, SalePrice: salePrice}
}

func ptr(v float64) *float64 { return &v }

func TestCheckAllNotifiesOnSale(t *testing.T) {
	wentOnSale := product("1", models.StatusSale, 100, ptr(50))
	deeperSale := product("2", models.StatusSale, 100, ptr(30))
	sameSale := product("3", models.StatusSale, 100, ptr(50))
	stillFull := product("4", models.StatusFullPrice, 90, nil)

	refresher := &fakeRefresher{
		products: []models.TrackedProduct{
			product("1", models.StatusFullPrice, 100, nil),
			product("2", models.StatusSale, 100, ptr(50)),
			product("3", models.StatusSale, 100, ptr(50)),
			product("4", models.StatusFullPrice, 100, nil),
			product("5", models.StatusFullPrice, 100, nil),
		},
		next: map[string]*models.TrackedProduct{
			"1": &wentOnSale,
			"2": &deeperSale,
			"3": &sameSale,
			"4": &stillFull,
		},
		failing: map[string]bool{"5": true},
	}
	notifier := &fakeNotifier{}
	m := New(refresher, notifier, 0)
	m.delay = 0

	refreshed := m.CheckAll(context.Background())

	assert.Equal(t, 4, refreshed)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "1", notifier.sent[0].current.ID)
	assert.Equal(t, "2", notifier.sent[1].current.ID)
	assert.Equal(t, "42", notifier.sent[0].userID)
}

func TestCheckAllWithoutNotifier(t *testing.T) {
	onSale := product("1", models.StatusSale, 100, ptr(50))
	refresher := &fakeRefresher{
		products: []models.TrackedProduct{product("1", models.StatusFullPrice, 100, nil)},
		next:     map[string]*models.TrackedProduct{"1": &onSale},
	}
	m := New(refresher, nil, 0)
	m.delay = 0

	assert.Equal(t, 1, m.CheckAll(context.Background()))
}

func TestCheckAllListFailure(t *testing.T) {
	m := New(&fakeRefresher{listErr: errors.New("db down")}, nil, 0)

	assert.Zero(t, m.CheckAll(context.Background()))
}
