package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jewelshop/internal/database"
	"jewelshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartTx is the scoped view of the store available inside a cart
// transaction. The product read takes a row lock on PostgreSQL so two
// concurrent check-then-write sequences for the same product serialize
// instead of both passing the inventory check.
type CartTx interface {
	ProductForUpdate(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	ItemByProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	ItemByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error)
	InsertItem(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
}

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Items(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	// InTx runs fn inside a single transaction; any error rolls back.
	InTx(ctx context.Context, fn func(tx CartTx) error) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db      *sqlx.DB
	dialect database.Dialect
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sqlx.DB, dialect database.Dialect) CartRepository {
	return &cartRepository{db: db, dialect: dialect}
}

// Items retrieves the user's cart joined to active products, newest first.
func (r *cartRepository) Items(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	query := r.db.Rebind(`
		SELECT
			ci.id, ci.quantity, ci.added_at,
			p.id AS product_id, p.name AS product_name, p.slug AS product_slug,
			p.price, p.sku, p.inventory_quantity, p.track_inventory,
			(SELECT pi.url FROM product_images pi
				WHERE pi.product_id = p.id AND pi.is_primary = TRUE
				ORDER BY pi.sort_order, pi.id LIMIT 1) AS image_url,
			(SELECT pi.alt_text FROM product_images pi
				WHERE pi.product_id = p.id AND pi.is_primary = TRUE
				ORDER BY pi.sort_order, pi.id LIMIT 1) AS alt_text
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = ? AND p.is_active = TRUE
		ORDER BY ci.added_at DESC
	`)

	items := []domain.CartLine{}
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	return items, nil
}

// InTx runs fn against a transaction-scoped CartTx, committing on success.
func (r *cartRepository) InTx(ctx context.Context, fn func(tx CartTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&cartTx{tx: tx, lock: r.dialect.RowLock()}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Remove deletes one item owned by the user, reporting whether a row existed.
func (r *cartRepository) Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	query := r.db.Rebind(`DELETE FROM cart_items WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Clear deletes all of the user's cart rows; a no-op when already empty.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM cart_items WHERE user_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

type cartTx struct {
	tx   *sqlx.Tx
	lock string
}

// ProductForUpdate retrieves one active product, holding its row lock for
// the remainder of the transaction.
func (t *cartTx) ProductForUpdate(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	query := t.tx.Rebind(`
		SELECT id, slug, name, description, short_description, sku, price,
			compare_at_price, material, metal_type, gemstone, inventory_quantity,
			track_inventory, allow_backorder, is_featured, is_active, created_at, updated_at
		FROM products
		WHERE id = ? AND is_active = TRUE` + t.lock)

	product := &domain.Product{}
	err := t.tx.GetContext(ctx, product, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product for update: %w", err)
	}

	return product, nil
}

func (t *cartTx) ItemByProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	query := t.tx.Rebind(`
		SELECT id, user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = ? AND product_id = ?
	`)

	item := &domain.CartItem{}
	err := t.tx.GetContext(ctx, item, query, userID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

func (t *cartTx) ItemByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	query := t.tx.Rebind(`
		SELECT id, user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE id = ? AND user_id = ?
	`)

	item := &domain.CartItem{}
	err := t.tx.GetContext(ctx, item, query, itemID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

func (t *cartTx) InsertItem(ctx context.Context, item *domain.CartItem) error {
	query := t.tx.Rebind(`
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := t.tx.ExecContext(ctx, query,
		item.ID, item.UserID, item.ProductID, item.Quantity, item.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

func (t *cartTx) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	query := t.tx.Rebind(`UPDATE cart_items SET quantity = ? WHERE id = ?`)

	result, err := t.tx.ExecContext(ctx, query, quantity, itemID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}
