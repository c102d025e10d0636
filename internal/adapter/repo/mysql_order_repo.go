package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `id, status, total_amount, placed_at, updated_at, delivery_date, complaint, delay_reason, compensation_note`

func (r *MySQLOrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+`
FROM orders WHERE id=?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &usecase.NotFoundError{Kind: "order", ID: id}
		}
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+orderColumns+`
FROM orders ORDER BY placed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *MySQLOrderRepo) SetStatus(ctx context.Context, id int64, to domain.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = ?
        WHERE id = ?`,
		string(to), at, id,
	)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *MySQLOrderRepo) SetDeliveryDate(ctx context.Context, id int64, date time.Time, note string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET delivery_date = ?, delay_reason = ?, updated_at = ?
        WHERE id = ?`,
		date, note, at, id,
	)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *MySQLOrderRepo) SetTotal(ctx context.Context, id int64, total decimal.Decimal, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET total_amount = ?, updated_at = ?
        WHERE id = ?`,
		total.String(), at, id,
	)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *MySQLOrderRepo) SetCompensationNote(ctx context.Context, id int64, note string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET compensation_note = ?, updated_at = ?
        WHERE id = ?`,
		note, at, id,
	)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *MySQLOrderRepo) SetAnnotations(ctx context.Context, id int64, complaint, delayReason string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET complaint = IF(? = '', complaint, ?),
            delay_reason = IF(? = '', delay_reason, ?),
            updated_at = ?
        WHERE id = ?`,
		complaint, complaint, delayReason, delayReason, at, id,
	)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

// ApproveAndDecrement writes the approved status and applies every stock
// decrement in one transaction. The status UPDATE carries a status = pending
// guard, so a racing approval of the same order locks the row first and the
// loser sees zero rows instead of decrementing twice. Each inventory UPDATE
// carries a quantity_on_hand >= ? guard; a zero row count means the entry is
// short (or gone) and the whole transaction rolls back, so status and ledger
// never diverge.
func (r *MySQLOrderRepo) ApproveAndDecrement(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = ?
        WHERE id = ? AND status = ?`,
		string(domain.StatusApproved), at, orderID, string(domain.StatusPending),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return r.statusConflict(ctx, tx, orderID, domain.StatusApproved)
	}

	var issues []usecase.StockIssue
	for _, m := range moves {
		res, err := tx.ExecContext(ctx, `
            UPDATE inventory
            SET quantity_on_hand = quantity_on_hand - ?
            WHERE id = ? AND quantity_on_hand >= ?`,
			m.Qty, m.ItemID, m.Qty,
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			issue, err := r.shortIssue(ctx, tx, m)
			if err != nil {
				return err
			}
			issues = append(issues, issue)
		}
	}
	if len(issues) > 0 {
		return &usecase.InsufficientStockError{Issues: issues}
	}

	return tx.Commit()
}

// CancelAndRestock writes the cancelled status and returns the given
// quantities to the ledger, in one transaction. The status guard keeps two
// racing cancels from restocking the same order twice.
func (r *MySQLOrderRepo) CancelAndRestock(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = ?
        WHERE id = ? AND status IN (?, ?)`,
		string(domain.StatusCancelled), at, orderID,
		string(domain.StatusApproved), string(domain.StatusPreparing),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return r.statusConflict(ctx, tx, orderID, domain.StatusCancelled)
	}

	for _, m := range moves {
		if _, err := tx.ExecContext(ctx, `
            UPDATE inventory
            SET quantity_on_hand = quantity_on_hand + ?
            WHERE id = ?`,
			m.Qty, m.ItemID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// statusConflict explains a zero-row status CAS: the order is gone, the
// target was already applied (idempotent success), or the order moved to a
// state the operation no longer fits.
func (r *MySQLOrderRepo) statusConflict(ctx context.Context, tx *sql.Tx, orderID int64, target domain.Status) error {
	var cur string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id=?`, orderID).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return &usecase.NotFoundError{Kind: "order", ID: orderID}
	}
	if err != nil {
		return err
	}
	if domain.Status(cur) == target {
		return nil
	}
	return &usecase.ValidationError{
		Field: "status",
		Msg:   "cannot transition " + cur + " order to " + string(target),
	}
}

func (r *MySQLOrderRepo) shortIssue(ctx context.Context, tx *sql.Tx, m domain.StockMove) (usecase.StockIssue, error) {
	var onHand int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity_on_hand FROM inventory WHERE id=?`, m.ItemID).Scan(&onHand)
	if errors.Is(err, sql.ErrNoRows) {
		return usecase.StockIssue{Name: m.Name, Required: m.Qty, Missing: true}, nil
	}
	if err != nil {
		return usecase.StockIssue{}, err
	}
	return usecase.StockIssue{Name: m.Name, Available: onHand, Required: m.Qty}, nil
}

func (r *MySQLOrderRepo) loadLines(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT inventory_item_id, item_name, quantity, unit_price
FROM order_lines WHERE order_id=? ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.Line
		var price string
		if err := rows.Scan(&l.InventoryItemID, &l.Name, &l.Quantity, &price); err != nil {
			return err
		}
		l.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, l)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status, total string
	var delivery sql.NullTime
	var complaint, delay, note sql.NullString
	if err := row.Scan(&o.ID, &status, &total, &o.PlacedAt, &o.UpdatedAt, &delivery, &complaint, &delay, &note); err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	var err error
	o.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	if delivery.Valid {
		d := delivery.Time
		o.DeliveryDate = &d
	}
	o.Complaint = complaint.String
	o.DelayReason = delay.String
	o.CompensationNote = note.String
	return &o, nil
}

func checkFound(res sql.Result, id int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	return nil
}

var (
	_ usecase.OrderStore     = (*MySQLOrderRepo)(nil)
	_ usecase.LifecycleStore = (*MySQLOrderRepo)(nil)
)
