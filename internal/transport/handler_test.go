package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"time"

	"jewelshop/internal/domain"
	"jewelshop/internal/middleware"
	"jewelshop/internal/repository"
	"jewelshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// Map-backed mocks shared by the handler tests.

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, phone *string) (*domain.User, error) {
	if firstName == nil && lastName == nil && phone == nil {
		return nil, repository.ErrNoFieldsToUpdate
	}
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if phone != nil {
		user.Phone = *phone
	}
	return user, nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

type mockCartStore struct {
	products map[uuid.UUID]*domain.Product
	items    map[uuid.UUID]*domain.CartItem
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{
		products: make(map[uuid.UUID]*domain.Product),
		items:    make(map[uuid.UUID]*domain.CartItem),
	}
}

func (m *mockCartStore) Items(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		product := m.products[item.ProductID]
		lines = append(lines, domain.CartLine{
			ID:          item.ID,
			Quantity:    item.Quantity,
			AddedAt:     item.AddedAt,
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSlug: product.Slug,
			Price:       product.Price,
		})
	}
	return lines, nil
}

func (m *mockCartStore) InTx(ctx context.Context, fn func(tx repository.CartTx) error) error {
	return fn(m)
}

func (m *mockCartStore) Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	item, ok := m.items[itemID]
	if !ok || item.UserID != userID {
		return false, nil
	}
	delete(m.items, itemID)
	return true, nil
}

func (m *mockCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	for id, item := range m.items {
		if item.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockCartStore) ProductForUpdate(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[productID]
	if !ok || !product.IsActive {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockCartStore) ItemByProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	for _, item := range m.items {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockCartStore) ItemByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	item, ok := m.items[itemID]
	if !ok || item.UserID != userID {
		return nil, repository.ErrCartItemNotFound
	}
	return item, nil
}

func (m *mockCartStore) InsertItem(ctx context.Context, item *domain.CartItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockCartStore) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := m.items[itemID]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

type mockProductRepository struct {
	products []domain.Product
	images   map[uuid.UUID][]domain.ProductImage
}

func (m *mockProductRepository) summaries() []domain.ProductSummary {
	out := make([]domain.ProductSummary, len(m.products))
	for i, p := range m.products {
		out[i] = domain.ProductSummary{
			ID: p.ID, Slug: p.Slug, Name: p.Name, Price: p.Price,
			IsFeatured: p.IsFeatured, InventoryQuantity: p.InventoryQuantity,
		}
	}
	return out
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.ProductSummary, int, error) {
	all := m.summaries()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Slug < all[j].Slug })

	total := len(all)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].Slug == slug && m.products[i].IsActive {
			return &m.products[i], nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) Images(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	return m.images[productID], nil
}

func (m *mockProductRepository) Categories(ctx context.Context, productID uuid.UUID) ([]domain.CategoryRef, error) {
	return []domain.CategoryRef{}, nil
}

func (m *mockProductRepository) Related(ctx context.Context, productID uuid.UUID, limit int) ([]domain.ProductSummary, error) {
	return []domain.ProductSummary{}, nil
}

func (m *mockProductRepository) Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	out := []domain.ProductSummary{}
	for _, s := range m.summaries() {
		if s.IsFeatured && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockCategoryRepository struct {
	categories []domain.Category
}

func (m *mockCategoryRepository) ListWithCounts(ctx context.Context) ([]domain.CategoryWithCount, error) {
	out := []domain.CategoryWithCount{}
	for _, c := range m.categories {
		out = append(out, domain.CategoryWithCount{Category: c})
	}
	return out, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for i := range m.categories {
		if m.categories[i].Slug == slug {
			return &m.categories[i], nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

// testEnv wires the full route table over the mocks.
type testEnv struct {
	router     chi.Router
	users      *mockUserRepository
	cart       *mockCartStore
	products   *mockProductRepository
	categories *mockCategoryRepository
	auth       service.AuthService
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()

	users := newMockUserRepository()
	cart := newMockCartStore()
	products := &mockProductRepository{images: map[uuid.UUID][]domain.ProductImage{}}
	categories := &mockCategoryRepository{}

	authService := service.NewAuthService(users, testSecret, 7)
	catalogService := service.NewCatalogService(products, categories)
	cartService := service.NewCartService(cart)

	router := chi.NewRouter()
	authMiddleware := middleware.AuthMiddleware(testSecret, logger)
	optionalAuth := middleware.OptionalAuthMiddleware(testSecret, logger)
	adminMiddleware := middleware.RequireAdmin(authService, logger)

	NewAuthHandler(authService, logger).RegisterRoutes(router, authMiddleware)
	NewCatalogHandler(catalogService, logger).RegisterRoutes(router)
	NewCartHandler(cartService, logger).RegisterRoutes(router, authMiddleware, optionalAuth)
	NewStubHandler().RegisterRoutes(router, authMiddleware, adminMiddleware)
	router.NotFound(middleware.NotFoundHandler)

	return &testEnv{
		router:     router,
		users:      users,
		cart:       cart,
		products:   products,
		categories: categories,
		auth:       authService,
	}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token and id.
func (e *testEnv) register(email string) (string, uuid.UUID) {
	w := e.do("POST", "/api/auth/register", "", map[string]any{
		"email":     email,
		"password":  "password123",
		"firstName": "Test",
		"lastName":  "User",
	})
	var resp AuthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	id, _ := uuid.Parse(resp.User.ID)
	return resp.Token, id
}

func (e *testEnv) addProduct(slug string, price float64, stock int) uuid.UUID {
	product := domain.Product{
		ID:                uuid.New(),
		Slug:              slug,
		Name:              slug,
		Price:             price,
		InventoryQuantity: stock,
		TrackInventory:    true,
		IsActive:          true,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	e.products.products = append(e.products.products, product)
	e.cart.products[product.ID] = &product
	return product.ID
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	return body
}
