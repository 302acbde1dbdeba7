package database

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"price-tracker/internal/models"
)

const trackedCollection = "trackedProducts"

// FirestoreDB stores tracked products as Firestore documents keyed by "<userId>_<productId>"
type FirestoreDB struct {
	client *firestore.Client
}

// NewFirestore connects to the project. An empty credentialsFile uses application default
// credentials.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreDB, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	logrus.WithField("project", projectID).Info("Firestore initialized")
	return &FirestoreDB{client: client}, nil
}

func (r *FirestoreDB) Close() error {
	return r.client.Close()
}

func docID(userID, productID string) string {
	return fmt.Sprintf("%s_%s", userID, productID)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (r *FirestoreDB) FindByProduct(ctx context.Context, userID, productID string) (*models.TrackedProduct, error) {
	doc, err := r.client.Collection(trackedCollection).Doc(docID(userID, productID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var p models.TrackedProduct
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FirestoreDB) FindByIdentifier(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error) {
	if p, err := r.FindByProduct(ctx, userID, identifier); err != nil || p != nil {
		return p, err
	}

	for _, field := range []string{"id", "nativeId"} {
		docs, err := r.client.Collection(trackedCollection).
			Where("userId", "==", userID).
			Where(field, "==", identifier).
			Limit(1).
			Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			var p models.TrackedProduct
			if err := docs[0].DataTo(&p); err != nil {
				return nil, err
			}
			return &p, nil
		}
	}
	return nil, nil
}

// Upsert writes p inside a transaction so concurrent submissions of the same product cannot
// both create it. An existing document keeps its id and dateAdded.
func (r *FirestoreDB) Upsert(ctx context.Context, p *models.TrackedProduct) (*models.TrackedProduct, bool, error) {
	ref := r.client.Collection(trackedCollection).Doc(docID(p.UserID, p.ProductID))

	var stored models.TrackedProduct
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored = *p
		created = true

		snap, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil && snap.Exists() {
			var existing models.TrackedProduct
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			stored.ID = existing.ID
			stored.DateAdded = existing.DateAdded
			created = false
		}

		return tx.Set(ref, stored)
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (r *FirestoreDB) Delete(ctx context.Context, userID, identifier string) (bool, error) {
	p, err := r.FindByIdentifier(ctx, userID, identifier)
	if err != nil || p == nil {
		return false, err
	}

	if _, err := r.client.Collection(trackedCollection).Doc(docID(userID, p.ProductID)).Delete(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's records newest first. Sorting happens here to avoid a
// composite index on (userId, dateAdded).
func (r *FirestoreDB) ListByUser(ctx context.Context, userID string) ([]models.TrackedProduct, error) {
	products, err := readAll(r.client.Collection(trackedCollection).Where("userId", "==", userID).Documents(ctx))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DateAdded.After(products[j].DateAdded)
	})
	return products, nil
}

// ListAll returns every record, oldest first
func (r *FirestoreDB) ListAll(ctx context.Context) ([]models.TrackedProduct, error) {
	return readAll(r.client.Collection(trackedCollection).OrderBy("dateAdded", firestore.Asc).Documents(ctx))
}

func readAll(iter *firestore.DocumentIterator) ([]models.TrackedProduct, error) {
	defer iter.Stop()

	products := []models.TrackedProduct{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var p models.TrackedProduct
		if err := doc.DataTo(&p); err != nil {
			logrus.WithError(err).WithField("doc", doc.Ref.ID).Warn("Skipping unreadable tracked product")
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *FirestoreDB) Ping(ctx context.Context) error {
	_, err := r.client.Collection(trackedCollection).Limit(1).Documents(ctx).GetAll()
	return err
}
