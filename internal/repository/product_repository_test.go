package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func resetCatalog(t testing.TB) {
	t.Helper()
	for _, table := range []string{"cart_items", "product_images", "product_categories", "products", "categories"} {
		if _, err := testDB.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}

type productFixture struct {
	id       uuid.UUID
	slug     string
	name     string
	price    float64
	featured bool
	active   bool
}

func insertProduct(t testing.TB, f productFixture, createdAt time.Time) uuid.UUID {
	t.Helper()
	if f.id == uuid.Nil {
		f.id = uuid.New()
	}
	query := testDB.Rebind(`
		INSERT INTO products (id, slug, name, price, inventory_quantity, track_inventory,
			is_featured, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 10, TRUE, ?, ?, ?, ?)`)
	if _, err := testDB.Exec(query, f.id, f.slug, f.name, f.price, f.featured, f.active, createdAt, createdAt); err != nil {
		t.Fatalf("failed to insert product %s: %v", f.slug, err)
	}
	return f.id
}

func insertCategory(t testing.TB, slug, name string, sortOrder int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	query := testDB.Rebind(`
		INSERT INTO categories (id, slug, name, sort_order, is_active)
		VALUES (?, ?, ?, ?, TRUE)`)
	if _, err := testDB.Exec(query, id, slug, name, sortOrder); err != nil {
		t.Fatalf("failed to insert category %s: %v", slug, err)
	}
	return id
}

func linkCategory(t testing.TB, productID, categoryID uuid.UUID) {
	t.Helper()
	query := testDB.Rebind(`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)`)
	if _, err := testDB.Exec(query, productID, categoryID); err != nil {
		t.Fatalf("failed to link product to category: %v", err)
	}
}

func insertImage(t testing.TB, productID uuid.UUID, url string, sortOrder int, primary bool) {
	t.Helper()
	query := testDB.Rebind(`
		INSERT INTO product_images (id, product_id, url, alt_text, sort_order, is_primary)
		VALUES (?, ?, ?, '', ?, ?)`)
	if _, err := testDB.Exec(query, uuid.New(), productID, url, sortOrder, primary); err != nil {
		t.Fatalf("failed to insert image: %v", err)
	}
}

// Property: pages of any size partition the matching products exactly
func TestProperty_ListPaginationIsStable(t *testing.T) {
	resetCatalog(t)

	base := time.Now().Add(-time.Hour)
	const total = 23
	for i := 0; i < total; i++ {
		insertProduct(t, productFixture{
			slug:   fmt.Sprintf("prop-page-%02d", i),
			name:   fmt.Sprintf("Prop Page %02d", i),
			price:  float64(i),
			active: true,
		}, base.Add(time.Duration(i)*time.Second))
	}

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("concatenated pages cover every product exactly once", prop.ForAll(
		func(limit int, sortField string, order string) bool {
			seen := map[uuid.UUID]int{}

			for offset := 0; offset < total; offset += limit {
				page, count, err := repo.List(ctx, ListFilter{
					Sort:   ParseSortField(sortField),
					Order:  ParseSortOrder(order),
					Limit:  limit,
					Offset: offset,
				})
				if err != nil {
					t.Logf("FAIL: List failed: %v", err)
					return false
				}
				if count != total {
					t.Logf("FAIL: Expected count %d, got %d", total, count)
					return false
				}
				for _, p := range page {
					seen[p.ID]++
				}
			}

			if len(seen) != total {
				t.Logf("FAIL: Expected %d distinct products, got %d (limit=%d sort=%s order=%s)",
					total, len(seen), limit, sortField, order)
				return false
			}
			for _, n := range seen {
				if n != 1 {
					t.Logf("FAIL: A product appeared %d times", n)
					return false
				}
			}

			return true
		},
		gen.IntRange(1, 25),
		gen.OneConstOf("name", "price", "created_at", "updated_at"),
		gen.OneConstOf("asc", "desc"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestListFilters(t *testing.T) {
	resetCatalog(t)

	base := time.Now().Add(-time.Hour)
	goldID := insertCategory(t, "golden-hour", "Golden Hour", 1)
	silverID := insertCategory(t, "pacific-silver", "Pacific Silver", 2)

	ring := insertProduct(t, productFixture{slug: "gold-ring", name: "Gold Ring", price: 120, featured: true, active: true}, base)
	necklace := insertProduct(t, productFixture{slug: "gold-necklace", name: "Gold Necklace", price: 220, active: true}, base.Add(time.Second))
	bracelet := insertProduct(t, productFixture{slug: "silver-bracelet", name: "Silver Bracelet", price: 80, active: true}, base.Add(2*time.Second))
	insertProduct(t, productFixture{slug: "retired-pin", name: "Retired Pin", price: 15, active: false}, base.Add(3*time.Second))

	linkCategory(t, ring, goldID)
	linkCategory(t, necklace, goldID)
	linkCategory(t, bracelet, silverID)

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	// Inactive products never appear
	all, total, err := repo.List(ctx, ListFilter{Sort: SortByCreatedAt, Order: SortOrderDesc, Limit: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("Expected 3 active products, got total=%d len=%d", total, len(all))
	}

	// Category filter
	gold, total, err := repo.List(ctx, ListFilter{CategorySlug: "golden-hour", Sort: SortByPrice, Order: SortOrderAsc, Limit: 100})
	if err != nil {
		t.Fatalf("List by category failed: %v", err)
	}
	if total != 2 || len(gold) != 2 {
		t.Fatalf("Expected 2 gold products, got total=%d len=%d", total, len(gold))
	}
	if gold[0].Slug != "gold-ring" || gold[1].Slug != "gold-necklace" {
		t.Errorf("Price ascending order wrong: %s, %s", gold[0].Slug, gold[1].Slug)
	}

	// Featured filter
	featured, total, err := repo.List(ctx, ListFilter{FeaturedOnly: true, Sort: SortByCreatedAt, Order: SortOrderDesc, Limit: 100})
	if err != nil {
		t.Fatalf("List featured failed: %v", err)
	}
	if total != 1 || featured[0].Slug != "gold-ring" {
		t.Fatalf("Expected only the featured ring, got total=%d", total)
	}

	// Case-insensitive search on name
	found, total, err := repo.List(ctx, ListFilter{Search: "SILVER", Sort: SortByCreatedAt, Order: SortOrderDesc, Limit: 100})
	if err != nil {
		t.Fatalf("List search failed: %v", err)
	}
	if total != 1 || found[0].Slug != "silver-bracelet" {
		t.Fatalf("Expected the bracelet for search 'SILVER', got total=%d", total)
	}

	// Category metadata rides along on the summary
	if gold[0].CategoryName == nil || *gold[0].CategoryName != "Golden Hour" {
		t.Errorf("Expected category name on summary, got %v", gold[0].CategoryName)
	}
}

func TestListPrimaryImageIsDeterministic(t *testing.T) {
	resetCatalog(t)

	id := insertProduct(t, productFixture{slug: "imaged", name: "Imaged", price: 10, active: true}, time.Now())

	// Two rows claim is_primary; lowest sort_order must win
	insertImage(t, id, "https://cdn.example.com/second.jpg", 2, true)
	insertImage(t, id, "https://cdn.example.com/first.jpg", 1, true)
	insertImage(t, id, "https://cdn.example.com/gallery.jpg", 0, false)

	repo := NewProductRepository(testDB)
	products, _, err := repo.List(context.Background(), ListFilter{Sort: SortByCreatedAt, Order: SortOrderDesc, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(products))
	}
	if products[0].PrimaryImage == nil || *products[0].PrimaryImage != "https://cdn.example.com/first.jpg" {
		t.Errorf("Expected the lowest sort_order primary image, got %v", products[0].PrimaryImage)
	}
}

func TestFindBySlugAndDetailQueries(t *testing.T) {
	resetCatalog(t)

	base := time.Now().Add(-time.Hour)
	catID := insertCategory(t, "golden-hour", "Golden Hour", 1)

	ring := insertProduct(t, productFixture{slug: "gold-ring", name: "Gold Ring", price: 120, active: true}, base)
	necklace := insertProduct(t, productFixture{slug: "gold-necklace", name: "Gold Necklace", price: 220, active: true}, base.Add(time.Second))
	insertProduct(t, productFixture{slug: "lone-pin", name: "Lone Pin", price: 5, active: true}, base.Add(2*time.Second))

	linkCategory(t, ring, catID)
	linkCategory(t, necklace, catID)
	insertImage(t, ring, "https://cdn.example.com/ring.jpg", 0, true)

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product, err := repo.FindBySlug(ctx, "gold-ring")
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if product.ID != ring {
		t.Errorf("FindBySlug returned the wrong product")
	}

	if _, err := repo.FindBySlug(ctx, "no-such-product"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got: %v", err)
	}

	images, err := repo.Images(ctx, ring)
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if len(images) != 1 || images[0].URL != "https://cdn.example.com/ring.jpg" {
		t.Errorf("Unexpected images: %+v", images)
	}

	categories, err := repo.Categories(ctx, ring)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Slug != "golden-hour" {
		t.Errorf("Unexpected categories: %+v", categories)
	}

	// Related excludes the product itself and products sharing no category
	related, err := repo.Related(ctx, ring, 4)
	if err != nil {
		t.Fatalf("Related failed: %v", err)
	}
	if len(related) != 1 || related[0].ID != necklace {
		t.Fatalf("Expected only the necklace as related, got %d products", len(related))
	}
}

func TestFeaturedOrderedByUpdatedAt(t *testing.T) {
	resetCatalog(t)

	base := time.Now().Add(-time.Hour)
	older := insertProduct(t, productFixture{slug: "older-featured", name: "Older", price: 10, featured: true, active: true}, base)
	newer := insertProduct(t, productFixture{slug: "newer-featured", name: "Newer", price: 10, featured: true, active: true}, base.Add(time.Minute))
	insertProduct(t, productFixture{slug: "plain", name: "Plain", price: 10, active: true}, base.Add(2*time.Minute))

	repo := NewProductRepository(testDB)
	featured, err := repo.Featured(context.Background(), 4)
	if err != nil {
		t.Fatalf("Featured failed: %v", err)
	}

	if len(featured) != 2 {
		t.Fatalf("Expected 2 featured products, got %d", len(featured))
	}
	if featured[0].ID != newer || featured[1].ID != older {
		t.Errorf("Featured products not ordered by updated_at DESC")
	}
}

func TestCategoryRepository(t *testing.T) {
	resetCatalog(t)

	goldID := insertCategory(t, "golden-hour", "Golden Hour", 1)
	insertCategory(t, "pacific-silver", "Pacific Silver", 2)

	active := insertProduct(t, productFixture{slug: "counted", name: "Counted", price: 10, active: true}, time.Now())
	retired := insertProduct(t, productFixture{slug: "not-counted", name: "Not Counted", price: 10, active: false}, time.Now())
	linkCategory(t, active, goldID)
	linkCategory(t, retired, goldID)

	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	categories, err := repo.ListWithCounts(ctx)
	if err != nil {
		t.Fatalf("ListWithCounts failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}
	if categories[0].Slug != "golden-hour" || categories[1].Slug != "pacific-silver" {
		t.Errorf("Categories not ordered by sort_order: %s, %s", categories[0].Slug, categories[1].Slug)
	}
	if categories[0].ProductCount != 1 {
		t.Errorf("Inactive products must not count, got %d", categories[0].ProductCount)
	}

	category, err := repo.FindBySlug(ctx, "golden-hour")
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if category.Name != "Golden Hour" {
		t.Errorf("Unexpected category: %+v", category)
	}

	if _, err := repo.FindBySlug(ctx, "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound, got: %v", err)
	}
}
