package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Earning   Kind = "earning"
	Deduction Kind = "deduction"
)

type (
	// Kind names one of the two ledgers of a slip.
	Kind string

	// LineItem is a named pay component. Amount holds the raw text as
	// entered; it is parsed only when totals are computed.
	LineItem struct {
		ID     int    `json:"id" yaml:"id"`
		Title  string `json:"title" yaml:"title"`
		Amount string `json:"amount" yaml:"amount"`
	}

	// Ledger is an ordered, immutable collection of line items. Every
	// mutating method returns a new Ledger and leaves the receiver intact.
	Ledger struct {
		items  []LineItem
		lastID int
	}
)

// IsValid reports whether k is one of the known ledger kinds.
func (k Kind) IsValid() bool {
	return k == Earning || k == Deduction
}

// NewLedger builds a ledger with one item per title, ids starting at 1.
// Blank titles are skipped.
func NewLedger(titles ...string) Ledger {
	var l Ledger
	for _, t := range titles {
		l, _, _ = l.Add(t)
	}
	return l
}

// Items returns a copy of the items in display order.
func (l Ledger) Items() []LineItem {
	return append([]LineItem(nil), l.items...)
}

func (l Ledger) Len() int {
	return len(l.items)
}

// Get returns the item with the given id.
func (l Ledger) Get(id int) (LineItem, bool) {
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	return LineItem{}, false
}

// Add appends a new item with an empty amount. A blank title is ignored
// and reported through ok.
func (l Ledger) Add(title string) (next Ledger, item LineItem, ok bool) {
	if strings.TrimSpace(title) == "" {
		return l, LineItem{}, false
	}
	id := l.lastID
	for _, it := range l.items {
		if it.ID > id {
			id = it.ID
		}
	}
	id++
	item = LineItem{ID: id, Title: title}
	items := make([]LineItem, len(l.items), len(l.items)+1)
	copy(items, l.items)
	return Ledger{items: append(items, item), lastID: id}, item, true
}

// Remove drops the item with the given id. Unknown ids are ignored.
func (l Ledger) Remove(id int) Ledger {
	i := l.index(id)
	if i < 0 {
		return l
	}
	items := make([]LineItem, 0, len(l.items)-1)
	items = append(items, l.items[:i]...)
	items = append(items, l.items[i+1:]...)
	return Ledger{items: items, lastID: l.lastID}
}

// Rename replaces the title of an item, keeping its id and amount.
func (l Ledger) Rename(id int, title string) Ledger {
	if strings.TrimSpace(title) == "" {
		return l
	}
	return l.update(id, func(it *LineItem) { it.Title = title })
}

// SetAmount stores raw as the item's amount without parsing it.
func (l Ledger) SetAmount(id int, raw string) Ledger {
	return l.update(id, func(it *LineItem) { it.Amount = raw })
}

// Total sums the parsed amounts of all items.
func (l Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		total = total.Add(ParseAmount(it.Amount))
	}
	return total
}

func (l Ledger) update(id int, fn func(*LineItem)) Ledger {
	i := l.index(id)
	if i < 0 {
		return l
	}
	items := l.Items()
	fn(&items[i])
	return Ledger{items: items, lastID: l.lastID}
}

func (l Ledger) index(id int) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
