package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle = errors.New("title is required")
	ErrNotNumeric = errors.New("not a number")
)

// Item is one collected product record.
// Never mutated after creation; there is no edit operation.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"` // data URI or empty
	Description string `json:"description"`
	Price       Amount `json:"price"`
	Stock       Amount `json:"stock"`
	Remarks     string `json:"remarks"`
	CreatedAt   int64  `json:"createdAt"` // epoch milliseconds
}

// Created returns CreatedAt as a time.Time.
func (it Item) Created() time.Time { return time.UnixMilli(it.CreatedAt) }

// Amount holds a price or stock value exactly as the user typed it.
// Older data may carry a JSON number here; it decodes to its literal text.
type Amount string

func (a Amount) String() string { return string(a) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Draft is the collection form before it becomes an Item.
type Draft struct {
	Title       string
	Image       string
	Description string
	Price       string
	Stock       string
	Remarks     string
}

// Validate checks the fields a save depends on.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Price != "" && !LooksNumeric(d.Price) {
		return fmt.Errorf("price %q: %w", d.Price, ErrNotNumeric)
	}
	if d.Stock != "" && !LooksNumeric(d.Stock) {
		return fmt.Errorf("stock %q: %w", d.Stock, ErrNotNumeric)
	}
	return nil
}

// NewItem turns a valid draft into an Item with a fresh id.
func NewItem(d Draft, now time.Time) (Item, error) {
	if err := d.Validate(); err != nil {
		return Item{}, err
	}
	return Item{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Image:       d.Image,
		Description: d.Description,
		Price:       Amount(d.Price),
		Stock:       Amount(d.Stock),
		Remarks:     d.Remarks,
		CreatedAt:   now.UnixMilli(),
	}, nil
}

// LooksNumeric reports whether s parses as a decimal number.
func LooksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
