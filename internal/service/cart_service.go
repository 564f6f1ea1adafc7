package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"jewelshop/internal/domain"
	"jewelshop/internal/repository"

	"github.com/google/uuid"
)

const (
	// MinCartQuantity / MaxCartQuantity bound a single cart line.
	MinCartQuantity = 1
	MaxCartQuantity = 10
)

var ErrQuantityOutOfRange = errors.New("quantity out of range")

// InsufficientInventoryError reports a stock shortfall. CurrentInCart is
// zero unless the failure happened while merging into an existing line.
type InsufficientInventoryError struct {
	Available     int
	CurrentInCart int
}

func (e *InsufficientInventoryError) Error() string {
	if e.CurrentInCart > 0 {
		return fmt.Sprintf("insufficient inventory for total quantity: %d available, %d already in cart",
			e.Available, e.CurrentInCart)
	}
	return fmt.Sprintf("insufficient inventory: %d available", e.Available)
}

// CartService defines the interface for cart reconciliation logic
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	// UpdateItem overwrites the line's quantity; quantity zero removes the
	// line and reports removed=true.
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (item *domain.CartItem, removed bool, err error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

// roundCents rounds a money amount to 2 decimal places.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// shortfall reports whether the product cannot cover the requested total.
// Stock is only enforced when the product tracks inventory and does not
// allow backorders.
func shortfall(p *domain.Product, requested int) bool {
	return p.TrackInventory && !p.AllowBackorder && p.InventoryQuantity < requested
}

// GetCart returns the user's cart lines with totals. Tax and shipping stay
// zero until checkout exists.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	items, err := s.cartRepo.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundCents(subtotal)

	return &domain.Cart{
		Items:    items,
		Subtotal: subtotal,
		Tax:      0,
		Shipping: 0,
		Total:    subtotal,
	}, nil
}

// AddItem transitions the (user, product) pair from absent to present, or
// merges quantities when a line already exists. The product read and the
// write share one transaction so concurrent adds cannot both pass the
// inventory check.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return nil, ErrQuantityOutOfRange
	}

	var result *domain.CartItem

	err := s.cartRepo.InTx(ctx, func(tx repository.CartTx) error {
		product, err := tx.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if shortfall(product, quantity) {
			return &InsufficientInventoryError{Available: product.InventoryQuantity}
		}

		existing, err := tx.ItemByProduct(ctx, userID, productID)
		if err != nil && !errors.Is(err, repository.ErrCartItemNotFound) {
			return err
		}

		if existing != nil {
			newQuantity := existing.Quantity + quantity
			if shortfall(product, newQuantity) {
				return &InsufficientInventoryError{
					Available:     product.InventoryQuantity,
					CurrentInCart: existing.Quantity,
				}
			}
			if err := tx.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
				return err
			}
			existing.Quantity = newQuantity
			result = existing
			return nil
		}

		item := &domain.CartItem{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		}
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateItem overwrites a line's quantity after re-validating ownership and
// inventory. Quantity zero deletes the line; that path is idempotent and
// succeeds even when nothing matched.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, bool, error) {
	if quantity < 0 || quantity > MaxCartQuantity {
		return nil, false, ErrQuantityOutOfRange
	}

	if quantity == 0 {
		if _, err := s.cartRepo.Remove(ctx, userID, itemID); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	var result *domain.CartItem

	err := s.cartRepo.InTx(ctx, func(tx repository.CartTx) error {
		item, err := tx.ItemByID(ctx, userID, itemID)
		if err != nil {
			return err
		}

		product, err := tx.ProductForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}

		if shortfall(product, quantity) {
			return &InsufficientInventoryError{Available: product.InventoryQuantity}
		}

		if err := tx.UpdateQuantity(ctx, item.ID, quantity); err != nil {
			return err
		}
		item.Quantity = quantity
		result = item
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, false, nil
}

// RemoveItem deletes one line; missing or foreign rows are not found.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	found, err := s.cartRepo.Remove(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !found {
		return repository.ErrCartItemNotFound
	}
	return nil
}

// ClearCart unconditionally empties the user's cart.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}
