// Package catalog defines the fixed set of bookable time slots and
// their prices.
package catalog

import "fmt"

// Slot is a bookable time-of-day interval.
type Slot struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Price int    `yaml:"price" json:"price"`
}

// Catalog is an ordered, immutable collection of slots.
type Catalog struct {
	slots []Slot
	index map[string]int
}

// New builds a catalog from the given slots, preserving order.
func New(slots []Slot) (*Catalog, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots defined")
	}

	index := make(map[string]int, len(slots))
	for i, s := range slots {
		if s.ID == "" {
			return nil, fmt.Errorf("slot[%d]: id is required", i)
		}
		if _, ok := index[s.ID]; ok {
			return nil, fmt.Errorf("slot[%d]: duplicate id '%s'", i, s.ID)
		}
		if s.Label == "" {
			return nil, fmt.Errorf("slot[%d]: label is required", i)
		}
		if s.Price < 0 {
			return nil, fmt.Errorf("slot[%d]: price cannot be negative", i)
		}
		index[s.ID] = i
	}

	return &Catalog{slots: append([]Slot(nil), slots...), index: index}, nil
}

// Default returns the standard working-day catalog: hourly slots from
// 9 AM to 6 PM, with midday hours priced higher.
func Default() *Catalog {
	c, err := New([]Slot{
		{ID: "09-10", Label: "9:00 AM - 10:00 AM", Price: 25},
		{ID: "10-11", Label: "10:00 AM - 11:00 AM", Price: 25},
		{ID: "11-12", Label: "11:00 AM - 12:00 PM", Price: 25},
		{ID: "12-13", Label: "12:00 PM - 1:00 PM", Price: 30},
		{ID: "13-14", Label: "1:00 PM - 2:00 PM", Price: 30},
		{ID: "14-15", Label: "2:00 PM - 3:00 PM", Price: 30},
		{ID: "15-16", Label: "3:00 PM - 4:00 PM", Price: 25},
		{ID: "16-17", Label: "4:00 PM - 5:00 PM", Price: 25},
		{ID: "17-18", Label: "5:00 PM - 6:00 PM", Price: 25},
	})
	if err != nil {
		panic(err) // built-in catalog is always valid
	}
	return c
}

// Slots returns the slots in catalog order.
func (c *Catalog) Slots() []Slot {
	return append([]Slot(nil), c.slots...)
}

// Get returns the slot with the given id.
func (c *Catalog) Get(id string) (Slot, bool) {
	i, ok := c.index[id]
	if !ok {
		return Slot{}, false
	}
	return c.slots[i], true
}

// PriceOf returns the price of a slot. Unknown ids price at 0; slot
// ids are never user-supplied, so this path only guards against
// catalog drift.
func (c *Catalog) PriceOf(id string) int {
	i, ok := c.index[id]
	if !ok {
		return 0
	}
	return c.slots[i].Price
}

// Total sums the prices of the given slot ids.
func (c *Catalog) Total(ids []string) int {
	total := 0
	for _, id := range ids {
		total += c.PriceOf(id)
	}
	return total
}

// Len returns the number of slots.
func (c *Catalog) Len() int {
	return len(c.slots)
}
