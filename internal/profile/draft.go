// Package profile defines the business profile draft built up during a
// voice intake session, and the operations the review/edit flow performs
// on it.
package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase identifies which data-collection stage an extraction result
// belongs to. Each phase has its own recording control and endpoint.
type Phase string

const (
	// PhaseBusiness collects the business scalar fields.
	PhaseBusiness Phase = "business"
	// PhaseProducts collects the product list.
	PhaseProducts Phase = "products"
)

// ErrIndexOutOfRange is returned when a product operation addresses an
// index outside the current product list.
var ErrIndexOutOfRange = errors.New("product index out of range")

// ErrUnknownField is returned when a field name does not exist on the draft.
var ErrUnknownField = errors.New("unknown profile field")

// Product is a single entry in the draft's product list. Products have no
// identity beyond their position; edits and removals are by index.
type Product struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
}

// Draft is the in-memory business profile under construction. A session
// owns a single mutable instance, filled in by extraction results and by
// manual edits, and eventually persisted under a session filename.
type Draft struct {
	PersonName      string    `json:"personName"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Pincode         string    `json:"pincode"`
	GSTNumber       string    `json:"gstNumber"`
	Category        string    `json:"category"`
	Subcategory     string    `json:"subcategory"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Website         string    `json:"website"`
	EstablishedYear string    `json:"establishedYear"`
	Products        []Product `json:"products"`

	// SourceFilename is set once the draft has been persisted or loaded.
	// Empty means "not yet saved". Never part of the persisted record.
	SourceFilename string `json:"-"`
}

// NewDraft creates an empty draft. Products is always non-nil; an empty
// list represents absence.
func NewDraft() *Draft {
	return &Draft{Products: []Product{}}
}

// Normalize repairs invariants after decoding from the wire: a nil product
// list becomes an empty one.
func (d *Draft) Normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
}

// ApplyExtraction merges an extraction result into the draft. The business
// phase overwrites the scalar fields and leaves the product list untouched;
// the products phase replaces the product list wholesale.
func (d *Draft) ApplyExtraction(fields *Draft, phase Phase) {
	switch phase {
	case PhaseBusiness:
		products := d.Products
		scalars := *fields
		scalars.Products = products
		scalars.SourceFilename = d.SourceFilename
		*d = scalars
		d.Normalize()
	case PhaseProducts:
		d.Products = append([]Product{}, fields.Products...)
	}
}

// SetField sets a scalar field by its wire name.
func (d *Draft) SetField(name, value string) error {
	switch name {
	case "personName":
		d.PersonName = value
	case "name":
		d.Name = value
	case "address":
		d.Address = value
	case "city":
		d.City = value
	case "state":
		d.State = value
	case "pincode":
		d.Pincode = value
	case "gstNumber":
		d.GSTNumber = value
	case "category":
		d.Category = value
	case "subcategory":
		d.Subcategory = value
	case "email":
		d.Email = value
	case "phone":
		d.Phone = value
	case "website":
		d.Website = value
	case "establishedYear":
		d.EstablishedYear = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	return nil
}

// Field returns a scalar field's value by its wire name.
func (d *Draft) Field(name string) (string, error) {
	switch name {
	case "personName":
		return d.PersonName, nil
	case "name":
		return d.Name, nil
	case "address":
		return d.Address, nil
	case "city":
		return d.City, nil
	case "state":
		return d.State, nil
	case "pincode":
		return d.Pincode, nil
	case "gstNumber":
		return d.GSTNumber, nil
	case "category":
		return d.Category, nil
	case "subcategory":
		return d.Subcategory, nil
	case "email":
		return d.Email, nil
	case "phone":
		return d.Phone, nil
	case "website":
		return d.Website, nil
	case "establishedYear":
		return d.EstablishedYear, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
}

// AddProduct appends a blank product and returns its index.
func (d *Draft) AddProduct() int {
	d.Products = append(d.Products, Product{})

	return len(d.Products) - 1
}

// UpdateProductField sets one field of the product at the given index.
// An index past the end of the list grows the list with blank products
// rather than failing. Price values that fail to parse as a non-negative
// number default to 0.
func (d *Draft) UpdateProductField(index int, field, value string) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	for len(d.Products) <= index {
		d.Products = append(d.Products, Product{})
	}

	p := &d.Products[index]
	switch field {
	case "name":
		p.Name = strings.TrimSpace(value)
	case "unit":
		p.Unit = strings.TrimSpace(value)
	case "price":
		p.Price = ParsePrice(value)
	case "category":
		p.Category = strings.TrimSpace(value)
	case "description":
		p.Description = value
	case "quantity":
		qty, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || qty < 0 {
			qty = 0
		}
		p.Quantity = qty
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	return nil
}

// RemoveProduct removes the product at the given index, shifting the
// products after it down by one. Open edits on higher indices become
// stale and must be refreshed by the caller.
func (d *Draft) RemoveProduct(index int) error {
	if index < 0 || index >= len(d.Products) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(d.Products))
	}

	d.Products = append(d.Products[:index], d.Products[index+1:]...)

	return nil
}

// SummaryText returns a display-ready comma-joined list of product names,
// or "No products" when the list is empty or has no named entries.
func (d *Draft) SummaryText() string {
	names := make([]string, 0, len(d.Products))
	for _, p := range d.Products {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}

	if len(names) == 0 {
		return "No products"
	}

	return strings.Join(names, ", ")
}

// DisplayName returns the business name or a placeholder for untitled drafts.
func (d *Draft) DisplayName() string {
	if d.Name == "" {
		return "Untitled Business"
	}

	return d.Name
}

// ParsePrice parses a price permissively: anything that does not parse as
// a non-negative number becomes 0.
func ParsePrice(value string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || price < 0 {
		return 0
	}

	return price
}
