// README: Catalog store backed by PostgreSQL with a Redis read cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"breeze/internal/types"
)

const (
	productKeyPrefix = "catalog:product:"
	listKey          = "catalog:products"
	cacheTTL         = 5 * time.Minute
)

// Store is the read boundary for product master data. Order processing never
// mutates the catalog.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id types.ID) (*Product, error)
}

type pgStore struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) Store {
	return &pgStore{db: db, redis: redis}
}

func (s *pgStore) List(ctx context.Context) ([]Product, error) {
	if cached, err := s.redis.Get(ctx, listKey).Bytes(); err == nil {
		var out []Product
		if json.Unmarshal(cached, &out) == nil {
			return out, nil
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, category, brand, featured_image, price, currency, featured
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand,
			&p.FeaturedImage, &p.Price.Amount, &p.Price.Currency, &p.Featured,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadVariants(ctx, &out[i]); err != nil {
			return nil, err
		}
	}

	if body, err := json.Marshal(out); err == nil {
		_ = s.redis.Set(ctx, listKey, body, cacheTTL).Err()
	}
	return out, nil
}

func (s *pgStore) Get(ctx context.Context, id types.ID) (*Product, error) {
	key := productKeyPrefix + string(id)
	if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var p Product
		if json.Unmarshal(cached, &p) == nil {
			return &p, nil
		}
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, category, brand, featured_image, price, currency, featured
		FROM products
		WHERE id = $1`, string(id))

	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand,
		&p.FeaturedImage, &p.Price.Amount, &p.Price.Currency, &p.Featured,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadVariants(ctx, &p); err != nil {
		return nil, err
	}

	if body, err := json.Marshal(&p); err == nil {
		_ = s.redis.Set(ctx, key, body, cacheTTL).Err()
	}
	return &p, nil
}

func (s *pgStore) loadVariants(ctx context.Context, p *Product) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, color, size, price, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id`, string(p.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.Color, &v.Size, &v.Price.Amount, &v.Stock); err != nil {
			return err
		}
		v.Price.Currency = p.Price.Currency
		p.Variants = append(p.Variants, v)
	}
	return rows.Err()
}
