package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

type MySQLCatalogRepo struct{ db *sql.DB }

func NewMySQLCatalogRepo(db *sql.DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

func (r *MySQLCatalogRepo) Get(ctx context.Context, plantID int64) (*domain.Plant, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name FROM plants WHERE id=? AND active=1`, plantID)
	var p domain.Plant
	if err := row.Scan(&p.ID, &p.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &usecase.NotFoundError{Kind: "plant", ID: plantID}
		}
		return nil, err
	}
	return &p, nil
}

func (r *MySQLCatalogRepo) List(ctx context.Context) ([]*domain.Plant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name FROM plants WHERE active=1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Plant
	for rows.Next() {
		var p domain.Plant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

var _ usecase.Catalog = (*MySQLCatalogRepo)(nil)
