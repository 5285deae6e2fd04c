package domain

import "strings"

type Status string

const (
	StatusInStock    Status = "in-stock"
	StatusOutOfStock Status = "out-of-stock"
	StatusAbsent     Status = ""
)

type Slot int

const (
	SlotNotFound Slot = iota
	Slot1
	Slot2
)

func (s Slot) String() string {
	switch s {
	case Slot1:
		return "slot1"
	case Slot2:
		return "slot2"
	default:
		return "not-found"
	}
}

// Item is an article stored at up to two locations. Status fields are
// derived from stock and are only ever written by NewItem, WithStock and
// Normalize.
type Item struct {
	ID        string
	Article   string
	Location1 string
	Location2 string
	Stock1    int
	Stock2    int
	Status1   Status
	Status2   Status
	Barcode   string
}

func NewItem(id, article, location1 string, stock1 int, location2 string, stock2 int, barcode string) Item {
	item := Item{
		ID:        id,
		Article:   article,
		Location1: location1,
		Location2: location2,
		Stock1:    stock1,
		Stock2:    stock2,
		Barcode:   barcode,
	}
	return item.Normalize()
}

// DeriveStatus is the only rule mapping a stock count to a status.
func DeriveStatus(stock int) Status {
	if stock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

// ResolveLocationSlot matches label against the item's locations by exact
// string equality. No case folding or trimming is applied.
func ResolveLocationSlot(item Item, label string) Slot {
	if label == "" {
		return SlotNotFound
	}
	if label == item.Location1 {
		return Slot1
	}
	if item.HasLocation2() && label == item.Location2 {
		return Slot2
	}
	return SlotNotFound
}

// IsEmpty reports whether at least one assigned location holds zero stock.
func IsEmpty(item Item) bool {
	if item.Location1 != "" && item.Stock1 == 0 {
		return true
	}
	return item.HasLocation2() && item.Stock2 == 0
}

func (i Item) HasLocation2() bool {
	return strings.TrimSpace(i.Location2) != ""
}

func (i Item) Stock(slot Slot) int {
	switch slot {
	case Slot1:
		return i.Stock1
	case Slot2:
		return i.Stock2
	default:
		return 0
	}
}

func (i Item) Location(slot Slot) string {
	switch slot {
	case Slot1:
		return i.Location1
	case Slot2:
		return i.Location2
	default:
		return ""
	}
}

// WithStock returns a copy of the item with the slot's stock replaced,
// clamped at zero, and its status re-derived.
func (i Item) WithStock(slot Slot, stock int) Item {
	if stock < 0 {
		stock = 0
	}
	switch slot {
	case Slot1:
		i.Stock1 = stock
	case Slot2:
		i.Stock2 = stock
	}
	return i.Normalize()
}

// Normalize re-derives both statuses. A blank second location clears the
// second slot entirely.
func (i Item) Normalize() Item {
	if i.Stock1 < 0 {
		i.Stock1 = 0
	}
	if i.Stock2 < 0 {
		i.Stock2 = 0
	}
	i.Status1 = DeriveStatus(i.Stock1)
	if i.HasLocation2() {
		i.Status2 = DeriveStatus(i.Stock2)
	} else {
		i.Location2 = ""
		i.Stock2 = 0
		i.Status2 = StatusAbsent
	}
	return i
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrInvalidItem("empty id")
	}
	if strings.TrimSpace(i.Article) == "" {
		return ErrInvalidItem("empty article")
	}
	if strings.TrimSpace(i.Location1) == "" {
		return ErrInvalidItem("empty location1")
	}
	if i.Stock1 < 0 || i.Stock2 < 0 {
		return ErrInvalidItem("negative stock")
	}
	return nil
}
