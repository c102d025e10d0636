package domain

// StockEntry is a stocked item's on-hand quantity record. The ledger is the
// single owner of QuantityOnHand; orders reference entries by id only.
type StockEntry struct {
	ID             int64
	Name           string
	QuantityOnHand int
	ReorderLevel   int
}

// BelowReorder reports whether the entry needs a supplier restock.
func (e *StockEntry) BelowReorder() bool {
	return e.QuantityOnHand < e.ReorderLevel
}

// Plant is a catalog {id, name} pair, used for gift selection.
type Plant struct {
	ID   int64
	Name string
}

// StockMove is one decrement (or restock) against a ledger entry.
type StockMove struct {
	ItemID int64
	Name   string
	Qty    int
}

// MovesFor builds the stock movements an approval of o would apply.
func MovesFor(o *Order) []StockMove {
	moves := make([]StockMove, 0, len(o.Items))
	for _, l := range o.Items {
		moves = append(moves, StockMove{ItemID: l.InventoryItemID, Name: l.Name, Qty: l.Quantity})
	}
	return moves
}
