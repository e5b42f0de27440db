// Package mongo persists accounts, carts embedded, in MongoDB.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/account"
)

// CollectionName is the collection accounts are stored in.
const CollectionName = "accounts"

type cartItemDoc struct {
	ID        string `bson:"_id"`
	ProductID string `bson:"product"`
	Quantity  int    `bson:"quantity"`
}

type accountDoc struct {
	ID           string        `bson:"_id"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Role         string        `bson:"role"`
	Cart         []cartItemDoc `bson:"cart"`
	CreatedAt    time.Time     `bson:"created_at"`
}

func toDoc(a account.Account) accountDoc {
	cart := make([]cartItemDoc, 0, len(a.Cart))
	for _, it := range a.Cart {
		cart = append(cart, cartItemDoc{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return accountDoc{
		ID:           a.ID,
		Name:         a.Name,
		Email:        account.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		Cart:         cart,
		CreatedAt:    a.CreatedAt,
	}
}

func (d accountDoc) account() account.Account {
	cart := make([]account.CartItem, 0, len(d.Cart))
	for _, it := range d.Cart {
		cart = append(cart, account.CartItem{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return account.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         account.Role(d.Role),
		Cart:         cart,
		CreatedAt:    d.CreatedAt,
	}
}

// Repository implements account.Repository on MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// New creates a repository over db's accounts collection.
func New(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, a account.Account) error {
	_, err := r.coll.InsertOne(ctx, toDoc(a))
	if mongo.IsDuplicateKeyError(err) {
		return account.ErrEmailTaken
	}
	return err
}

// Get retrieves an account by ID.
func (r *Repository) Get(ctx context.Context, id string) (account.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves an account by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return r.findOne(ctx, bson.M{"email": account.NormalizeEmail(email)})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (account.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}
	return doc.account(), nil
}

// Save replaces the stored account document.
func (r *Repository) Save(ctx context.Context, a account.Account) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, toDoc(a))
	if mongo.IsDuplicateKeyError(err) {
		return account.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return account.ErrNotFound
	}
	return nil
}

// ClearCart sets the embedded cart to an empty array.
func (r *Repository) ClearCart(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"cart": bson.A{}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return account.ErrNotFound
	}
	return nil
}
