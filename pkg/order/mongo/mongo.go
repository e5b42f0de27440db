// Package mongo persists orders as MongoDB documents with embedded line items.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/order"
)

// CollectionName is the collection orders are stored in.
const CollectionName = "orders"

type lineItemDoc struct {
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

type addressDoc struct {
	Address    string `bson:"address"`
	City       string `bson:"city"`
	PostalCode string `bson:"postal_code"`
	Country    string `bson:"country"`
}

type orderDoc struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"user"`
	Items           []lineItemDoc        `bson:"items"`
	ShippingAddress addressDoc           `bson:"shipping_address"`
	PaymentMethod   string               `bson:"payment_method"`
	TotalPrice      primitive.Decimal128 `bson:"total_price"`
	Status          string               `bson:"status"`
	CreatedAt       time.Time            `bson:"created_at"`
	DeliveredAt     *time.Time           `bson:"delivered_at,omitempty"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encoding %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func toDoc(o order.Order) (orderDoc, error) {
	total, err := toDecimal128(o.TotalPrice)
	if err != nil {
		return orderDoc{}, err
	}
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return orderDoc{}, err
		}
		items = append(items, lineItemDoc{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: price})
	}
	return orderDoc{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: addressDoc{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: string(o.PaymentMethod),
		TotalPrice:    total,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		DeliveredAt:   o.DeliveredAt,
	}, nil
}

func (d orderDoc) order() (order.Order, error) {
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return order.Order{}, fmt.Errorf("decoding total of %s: %w", d.ID, err)
	}
	items := make([]order.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := fromDecimal128(it.Price)
		if err != nil {
			return order.Order{}, fmt.Errorf("decoding line price of %s: %w", d.ID, err)
		}
		items = append(items, order.LineItem{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: price})
	}
	return order.Order{
		ID:     d.ID,
		UserID: d.UserID,
		Items:  items,
		ShippingAddress: order.ShippingAddress{
			Address:    d.ShippingAddress.Address,
			City:       d.ShippingAddress.City,
			PostalCode: d.ShippingAddress.PostalCode,
			Country:    d.ShippingAddress.Country,
		},
		PaymentMethod: order.PaymentMethod(d.PaymentMethod),
		TotalPrice:    total,
		Status:        order.Status(d.Status),
		CreatedAt:     d.CreatedAt,
		DeliveredAt:   d.DeliveredAt,
	}, nil
}

// Repository implements order.Repository on MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// New creates a repository over db's orders collection.
func New(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the index behind per-user listings.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	doc, err := toDoc(o)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	var doc orderDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	return doc.order()
}

// ListByUser returns userID's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *Repository) find(ctx context.Context, filter bson.M) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.order()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Update writes the mutable fields of an order: status and delivery time.
func (r *Repository) Update(ctx context.Context, o order.Order) error {
	set := bson.M{"status": string(o.Status)}
	if o.DeliveredAt != nil {
		set["delivered_at"] = *o.DeliveredAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": o.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}
