package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

type MySQLInventoryRepo struct{ db *sql.DB }

func NewMySQLInventoryRepo(db *sql.DB) *MySQLInventoryRepo { return &MySQLInventoryRepo{db: db} }

func (r *MySQLInventoryRepo) Get(ctx context.Context, itemID int64) (*domain.StockEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, quantity_on_hand, reorder_level
FROM inventory WHERE id=?`, itemID)
	var e domain.StockEntry
	if err := row.Scan(&e.ID, &e.Name, &e.QuantityOnHand, &e.ReorderLevel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &usecase.NotFoundError{Kind: "inventory item", ID: itemID}
		}
		return nil, err
	}
	return &e, nil
}

func (r *MySQLInventoryRepo) List(ctx context.Context) ([]*domain.StockEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, quantity_on_hand, reorder_level
FROM inventory ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StockEntry
	for rows.Next() {
		var e domain.StockEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.QuantityOnHand, &e.ReorderLevel); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Decrement re-checks sufficiency in the UPDATE guard; a zero row count
// means the write would have driven the entry negative and is rejected.
func (r *MySQLInventoryRepo) Decrement(ctx context.Context, itemID int64, amount int) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE inventory
        SET quantity_on_hand = quantity_on_hand - ?
        WHERE id = ? AND quantity_on_hand >= ?`,
		amount, itemID, amount,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	entry, err := r.Get(ctx, itemID)
	if err != nil {
		return err
	}
	return &usecase.InsufficientStockError{Issues: []usecase.StockIssue{
		{Name: entry.Name, Available: entry.QuantityOnHand, Required: amount},
	}}
}

func (r *MySQLInventoryRepo) Increment(ctx context.Context, itemID int64, amount int) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE inventory
        SET quantity_on_hand = quantity_on_hand + ?
        WHERE id = ?`,
		amount, itemID,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &usecase.NotFoundError{Kind: "inventory item", ID: itemID}
	}
	return nil
}

var _ usecase.InventoryLedger = (*MySQLInventoryRepo)(nil)
