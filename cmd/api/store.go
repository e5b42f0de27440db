package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/account"
	accountmem "storefront/pkg/account/memory"
	accountmongo "storefront/pkg/account/mongo"
	accountpg "storefront/pkg/account/postgres"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	catalogmongo "storefront/pkg/catalog/mongo"
	catalogpg "storefront/pkg/catalog/postgres"
	"storefront/pkg/config"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	ordermongo "storefront/pkg/order/mongo"
	orderpg "storefront/pkg/order/postgres"
)

// stores bundles the repositories of one storage driver.
type stores struct {
	products catalog.Repository
	accounts account.Repository
	orders   order.Repository
	close    func(context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return stores{
			products: catalogmem.New(),
			accounts: accountmem.New(),
			orders:   ordermem.New(),
			close:    func(context.Context) error { return nil },
		}, nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseURL)
	}
	return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
}

func openMongo(ctx context.Context, uri, database string) (stores, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return stores{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return stores{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(database)

	products := catalogmongo.New(db)
	accounts := accountmongo.New(db)
	orders := ordermongo.New(db)
	for name, ensure := range map[string]func(context.Context) error{
		"products": products.EnsureIndexes,
		"accounts": accounts.EnsureIndexes,
		"orders":   orders.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			client.Disconnect(ctx)
			return stores{}, fmt.Errorf("indexes on %s: %w", name, err)
		}
	}
	return stores{products: products, accounts: accounts, orders: orders, close: client.Disconnect}, nil
}

func openPostgres(ctx context.Context, dsn string) (stores, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return stores{}, fmt.Errorf("db ping: %w", err)
	}

	products := catalogpg.New(db)
	accounts := accountpg.New(db)
	orders := orderpg.New(db)
	for _, migrate := range []func(context.Context) error{products.Migrate, accounts.Migrate, orders.Migrate} {
		if err := migrate(ctx); err != nil {
			db.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
	}
	return stores{
		products: products,
		accounts: accounts,
		orders:   orders,
		close:    func(context.Context) error { return db.Close() },
	}, nil
}
