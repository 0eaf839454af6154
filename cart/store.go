// Package cart owns the per-user collection of cart lines. Line identity
// (product + size + customization + add-ons) decides whether an add merges
// into an existing line or appends a new one. The whole cart is persisted as
// one serialized snapshot row per user, last write wins.
package cart

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/craftloom/storefront-api/models"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Lines loads the user's current cart. A missing or corrupt snapshot is an
// empty cart, never an error surfaced to the caller.
func (s *Store) Lines(userID string) ([]models.CartLine, error) {
	var snap models.CartSnapshot
	err := s.db.Where("user_id = ?", userID).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(snap.Payload), &lines); err != nil {
		s.log.Warn("discarding corrupt cart snapshot",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return lines, nil
}

// Add merges quantity into the line matching identity, or appends a new line
// with the unit price snapshotted from the product at this instant.
func (s *Store) Add(userID string, product models.Product, quantity int, size string, cust *models.Customization, addOns *models.AddOns) ([]models.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	lines, err := s.Lines(userID)
	if err != nil {
		return nil, err
	}

	line := models.CartLine{
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductImage:  product.Image,
		Size:          size,
		Quantity:      quantity,
		UnitPrice:     product.Price,
		Customization: cust,
		AddOns:        addOns,
		AddedAt:       time.Now(),
	}
	lines = mergeAdd(lines, line)

	if err := s.save(userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Decrease lowers the matching line's quantity by one, floored at 1. Removal
// is only ever explicit via Remove.
func (s *Store) Decrease(userID string, productID uint, size string, cust *models.Customization, addOns *models.AddOns) ([]models.CartLine, error) {
	lines, err := s.Lines(userID)
	if err != nil {
		return nil, err
	}
	lines = decreaseLine(lines, identity(productID, size, cust, addOns))
	if err := s.save(userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Remove drops the line matching identity exactly. No-op if absent.
func (s *Store) Remove(userID string, productID uint, size string, cust *models.Customization, addOns *models.AddOns) ([]models.CartLine, error) {
	lines, err := s.Lines(userID)
	if err != nil {
		return nil, err
	}
	lines = removeLine(lines, identity(productID, size, cust, addOns))
	if err := s.save(userID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Clear empties the cart. Called exactly once per successful placement.
func (s *Store) Clear(userID string) error {
	return s.save(userID, nil)
}

func (s *Store) save(userID string, lines []models.CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	snap := models.CartSnapshot{
		UserID:    userID,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snap).Error
}

func identity(productID uint, size string, cust *models.Customization, addOns *models.AddOns) models.CartLine {
	return models.CartLine{
		ProductID:     productID,
		Size:          size,
		Customization: cust,
		AddOns:        addOns,
	}
}

// mergeAdd implements the merge-or-append rule over an in-memory line list.
func mergeAdd(lines []models.CartLine, line models.CartLine) []models.CartLine {
	for i := range lines {
		if lines[i].SameIdentity(line) {
			lines[i].Quantity += line.Quantity
			return lines
		}
	}
	return append(lines, line)
}

func decreaseLine(lines []models.CartLine, id models.CartLine) []models.CartLine {
	for i := range lines {
		if lines[i].SameIdentity(id) {
			if lines[i].Quantity > 1 {
				lines[i].Quantity--
			}
			return lines
		}
	}
	return lines
}

func removeLine(lines []models.CartLine, id models.CartLine) []models.CartLine {
	for i := range lines {
		if lines[i].SameIdentity(id) {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}
