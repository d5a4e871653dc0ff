// Package cart holds the client-side cart and shared order session state.
// Multiple devices at a table work against the same 5-digit order session
// number before any server-side order exists; the cart itself lives in
// whatever key-value storage the caller injects.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync"
)

const (
	cartStorageKey        = "dynetap_cart"
	orderNumberStorageKey = "dynetap_order_number"
)

var orderNumberPattern = regexp.MustCompile(`^\d{5}$`)

var ErrInvalidOrderNumber = errors.New("order number must be 5 digits")

// Item is one cart line. Price is a display hint only; the server reprices
// every item from the database at checkout.
type Item struct {
	DishID       uint   `json:"dish_id"`
	Name         string `json:"name"`
	PriceInCents int64  `json:"price_in_cents"`
	Quantity     int64  `json:"quantity"`
	PictureURL   string `json:"picture_url,omitempty"`
}

// Storage is the key-value port the session persists through.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// Session is the explicit cart/session object. No globals: each UI surface
// gets its own session wired to shared storage.
type Session struct {
	mu          sync.Mutex
	storage     Storage
	items       []Item
	orderNumber string
}

// NewSession loads any previously persisted cart and order number.
func NewSession(storage Storage) *Session {
	s := &Session{storage: storage}

	if saved, ok := storage.Get(cartStorageKey); ok {
		if err := json.Unmarshal(saved, &s.items); err != nil {
			s.items = nil
		}
	}
	if saved, ok := storage.Get(orderNumberStorageKey); ok {
		s.orderNumber = string(saved)
	}

	return s
}

// AddItem appends a dish to the cart, merging quantity with an existing line.
func (s *Session) AddItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].DishID == item.DishID {
			s.items[i].Quantity++
			s.persistCart()
			return
		}
	}

	item.Quantity = 1
	s.items = append(s.items, item)
	s.persistCart()
}

func (s *Session) RemoveItem(dishID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeItemLocked(dishID)
	s.persistCart()
}

// UpdateQuantity sets the quantity for a line; zero or less removes it.
func (s *Session) UpdateQuantity(dishID uint, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeItemLocked(dishID)
		s.persistCart()
		return
	}

	for i := range s.items {
		if s.items[i].DishID == dishID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persistCart()
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistCart()
}

// Items returns a copy of the cart lines.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Session) TotalInCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64 = 0
	for _, item := range s.items {
		total += item.PriceInCents * item.Quantity
	}
	return total
}

func (s *Session) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64 = 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// OrderNumber returns the current shared session number, empty if none.
func (s *Session) OrderNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderNumber
}

// CreateNewOrder generates a fresh 5-digit order session number. Uniqueness
// against other in-flight sessions is not checked; only the format is
// guaranteed.
func (s *Session) CreateNewOrder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderNumber = fmt.Sprintf("%d", 10000+rand.Intn(90000))
	s.persistOrderNumber()
	return s.orderNumber
}

// JoinExistingOrder adopts a session number created on another device.
func (s *Session) JoinExistingOrder(orderNumber string) error {
	if !orderNumberPattern.MatchString(orderNumber) {
		return ErrInvalidOrderNumber
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderNumber = orderNumber
	s.persistOrderNumber()
	return nil
}

func (s *Session) ClearOrderSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderNumber = ""
	s.persistOrderNumber()
}

func (s *Session) removeItemLocked(dishID uint) {
	filtered := s.items[:0]
	for _, item := range s.items {
		if item.DishID != dishID {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
}

func (s *Session) persistCart() {
	encoded, err := json.Marshal(s.items)
	if err != nil {
		return
	}
	s.storage.Set(cartStorageKey, encoded)
}

func (s *Session) persistOrderNumber() {
	if s.orderNumber == "" {
		s.storage.Delete(orderNumberStorageKey)
		return
	}
	s.storage.Set(orderNumberStorageKey, []byte(s.orderNumber))
}
