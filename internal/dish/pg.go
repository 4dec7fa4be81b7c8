package dish

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listByBusinessSQL = `
SELECT id, business_id, name, description, price_cents, available
FROM dishes
WHERE business_id = $1
ORDER BY name`

const getByIDSQL = `
SELECT id, business_id, name, description, price_cents, available
FROM dishes
WHERE id = $1`

// PGQueries resolves dishes from Postgres.
type PGQueries struct {
	Pool *pgxpool.Pool
}

// ListByBusiness returns all dishes for a business, available or not.
func (q PGQueries) ListByBusiness(ctx context.Context, businessID string) ([]Dish, error) {
	rows, err := q.Pool.Query(ctx, listByBusinessSQL, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.BusinessID, &d.Name, &d.Description, &d.PriceCents, &d.Available); err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

// GetByID returns a single dish.
func (q PGQueries) GetByID(ctx context.Context, id string) (Dish, error) {
	var d Dish
	row := q.Pool.QueryRow(ctx, getByIDSQL, id)
	err := row.Scan(&d.ID, &d.BusinessID, &d.Name, &d.Description, &d.PriceCents, &d.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dish{}, ErrNotFound
		}
		return Dish{}, err
	}
	return d, nil
}
