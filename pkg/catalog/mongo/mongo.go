// Package mongo persists products in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/catalog"
)

// CollectionName is the collection products are stored in.
const CollectionName = "products"

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	Image       string               `bson:"image"`
	Stock       int                  `bson:"stock"`
	Rating      float64              `bson:"rating"`
	NumReviews  int                  `bson:"num_reviews"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func toDoc(p catalog.Product) (productDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, fmt.Errorf("encoding price: %w", err)
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    string(p.Category),
		Image:       p.Image,
		Stock:       p.Stock,
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func (d productDoc) product() (catalog.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return catalog.Product{}, fmt.Errorf("decoding price of %s: %w", d.ID, err)
	}
	return catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    catalog.Category(d.Category),
		Image:       d.Image,
		Stock:       d.Stock,
		Rating:      d.Rating,
		NumReviews:  d.NumReviews,
		CreatedAt:   d.CreatedAt,
	}, nil
}

// Repository implements catalog.Repository on MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// New creates a repository over db's products collection.
func New(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the indexes listing queries rely on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, p catalog.Product) error {
	doc, err := toDoc(p)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	return doc.product()
}

// List fetches products matching q.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sortFor(q.Sort)))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func sortFor(s string) bson.D {
	switch s {
	case catalog.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case catalog.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case catalog.SortRating:
		return bson.D{{Key: "rating", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

// Patch $sets the supplied fields and returns the updated document.
func (r *Repository) Patch(ctx context.Context, id string, in catalog.Input) (catalog.Product, error) {
	set, err := setFields(in)
	if err != nil {
		return catalog.Product{}, err
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	var doc productDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	return doc.product()
}

func setFields(in catalog.Input) (bson.D, error) {
	var set bson.D
	if in.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *in.Name})
	}
	if in.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *in.Description})
	}
	if in.Price != nil {
		price, err := primitive.ParseDecimal128(in.Price.String())
		if err != nil {
			return nil, fmt.Errorf("encoding price: %w", err)
		}
		set = append(set, bson.E{Key: "price", Value: price})
	}
	if in.Category != nil {
		set = append(set, bson.E{Key: "category", Value: string(*in.Category)})
	}
	if in.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *in.Image})
	}
	if in.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *in.Stock})
	}
	return set, nil
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DecrementStock applies a guarded $inc: the filter only matches when at
// least qty units remain.
func (r *Repository) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return catalog.ErrInsufficientStock
}

// IncrementStock adds qty units.
func (r *Repository) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
