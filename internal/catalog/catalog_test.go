package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	apperrors "topstore/internal/errors"
	"topstore/internal/model"
	"topstore/internal/store"
	"topstore/internal/validator"
)

// countingBackend считает записи поверх MemoryBackend
type countingBackend struct {
	*store.MemoryBackend
	mu     sync.Mutex
	writes int
}

func (b *countingBackend) Write(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	b.writes++
	b.mu.Unlock()
	return b.MemoryBackend.Write(ctx, key, data)
}

func (b *countingBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func newTestRepo(t *testing.T) (*Repository, *countingBackend) {
	t.Helper()
	backend := &countingBackend{MemoryBackend: store.NewMemoryBackend()}
	repo := New(context.Background(), store.New(backend, nil, nil), validator.New(), nil)
	return repo, backend
}

func fakeProduct(id string) model.Product {
	return model.Product{
		ID:          id,
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       gofakeit.IntRange(500, 20000),
		Category:    model.CategoryAccessories,
		Images:      []string{gofakeit.URL()},
		Sizes:       []string{"One Size"},
		Colors:      []string{gofakeit.Color()},
		InStock:     true,
		WeightKg:    gofakeit.Float64Range(0.1, 2),
	}
}

func TestNew_SeedsDefaultsWhenAbsent(t *testing.T) {
	repo, backend := newTestRepo(t)

	if repo.Count() != 4 {
		t.Fatalf("Expected 4 default products, got %d", repo.Count())
	}
	hoodie, ok := repo.Get("1")
	if !ok || hoodie.Price != 4500 || hoodie.Name != "TopStore Signature Hoodie" {
		t.Errorf("Unexpected default product: %+v", hoodie)
	}
	if backend.Writes() != 1 {
		t.Errorf("Expected seeded catalog to be saved once, got %d writes", backend.Writes())
	}
}

func TestNew_EmptyCollectionIsNotReseeded(t *testing.T) {
	backend := store.NewMemoryBackend()
	_ = backend.Write(context.Background(), store.CollectionProducts, []byte("[]"))

	repo := New(context.Background(), store.New(backend, nil, nil), validator.New(), nil)
	if repo.Count() != 0 {
		t.Errorf("Explicitly empty catalog must stay empty, got %d", repo.Count())
	}
}

func TestNew_CorruptCollectionLoadsEmpty(t *testing.T) {
	backend := store.NewMemoryBackend()
	_ = backend.Write(context.Background(), store.CollectionProducts, []byte("{{{"))

	repo := New(context.Background(), store.New(backend, nil, nil), validator.New(), nil)
	if repo.Count() != 0 {
		t.Errorf("Corrupt catalog should load empty, got %d", repo.Count())
	}
}

func TestAdd(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	p := fakeProduct("100")
	if err := repo.Add(ctx, p); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if repo.Count() != 5 {
		t.Errorf("Expected 5 products, got %d", repo.Count())
	}

	err := repo.Add(ctx, p)
	if !errors.Is(err, apperrors.ErrDuplicateProduct) {
		t.Errorf("Expected ErrDuplicateProduct, got %v", err)
	}

	invalid := fakeProduct("101")
	invalid.Price = 0
	if err := repo.Add(ctx, invalid); err == nil {
		t.Error("Expected validation error for zero price")
	}
	if repo.Count() != 5 {
		t.Errorf("Rejected products must not be added, got %d", repo.Count())
	}
}

func TestAdd_StoresCopy(t *testing.T) {
	repo, _ := newTestRepo(t)

	p := fakeProduct("100")
	_ = repo.Add(context.Background(), p)
	p.Sizes[0] = "mutated"

	got, _ := repo.Get("100")
	if got.Sizes[0] != "One Size" {
		t.Error("Catalog shares slices with caller")
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.now = func() time.Time { return time.UnixMilli(1700000000000) }

	p, err := repo.Create(context.Background(), Draft{Name: "Beanie", Price: 1200, Category: model.CategoryAccessories})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.ID != "1700000000000" {
		t.Errorf("Expected time based id, got %s", p.ID)
	}
	if p.PrimaryImage() != DefaultImage || p.WeightKg != DefaultWeightKg || !p.InStock {
		t.Errorf("Defaults not applied: %+v", p)
	}
	if len(p.Sizes) != 3 || p.Colors[0] != "Black" {
		t.Errorf("Unexpected default sizes/colors: %v %v", p.Sizes, p.Colors)
	}

	second, err := repo.Create(context.Background(), Draft{Name: "Scarf", Price: 900})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.ID == p.ID {
		t.Error("Expected unique ids within the same millisecond")
	}
	if second.Category != model.CategoryTShirts {
		t.Errorf("Expected default category T-Shirts, got %s", second.Category)
	}
}

func TestCreate_RequiresNameAndPrice(t *testing.T) {
	repo, _ := newTestRepo(t)

	if _, err := repo.Create(context.Background(), Draft{Price: 100}); err == nil {
		t.Error("Expected error without name")
	}
	if _, err := repo.Create(context.Background(), Draft{Name: "X"}); err == nil {
		t.Error("Expected error without price")
	}
}

func TestUpdate(t *testing.T) {
	repo, backend := newTestRepo(t)
	ctx := context.Background()

	tee, _ := repo.Get("3")
	tee.Price = 2100
	found, err := repo.Update(ctx, tee)
	if err != nil || !found {
		t.Fatalf("Update: found=%v err=%v", found, err)
	}
	if got, _ := repo.Get("3"); got.Price != 2100 {
		t.Errorf("Expected updated price, got %d", got.Price)
	}

	writes := backend.Writes()
	found, err = repo.Update(ctx, fakeProduct("missing"))
	if err != nil || found {
		t.Errorf("Expected silent no-op for missing id, got found=%v err=%v", found, err)
	}
	if backend.Writes() != writes {
		t.Error("No-op update must not write")
	}
}

func TestRemove_AbsentIDIsNoOp(t *testing.T) {
	repo, backend := newTestRepo(t)
	ctx := context.Background()

	before := repo.List(Filter{})
	writes := backend.Writes()

	if repo.Remove(ctx, "does-not-exist") {
		t.Error("Remove of absent id reported success")
	}

	after := repo.List(Filter{})
	if len(after) != len(before) {
		t.Fatalf("Collection changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("Order changed at %d: %s -> %s", i, before[i].ID, after[i].ID)
		}
	}
	if backend.Writes() != writes {
		t.Error("No-op remove must not write")
	}
}

func TestRemove(t *testing.T) {
	repo, _ := newTestRepo(t)

	if !repo.Remove(context.Background(), "2") {
		t.Fatal("Expected remove to succeed")
	}
	if _, ok := repo.Get("2"); ok {
		t.Error("Product 2 still present")
	}
	ids := []string{}
	for _, p := range repo.List(Filter{}) {
		ids = append(ids, p.ID)
	}
	if len(ids) != 3 || ids[0] != "1" || ids[1] != "3" || ids[2] != "4" {
		t.Errorf("Unexpected order after remove: %v", ids)
	}
}

func TestList_Filter(t *testing.T) {
	repo, _ := newTestRepo(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"1", "2", "3", "4"}},
		{"category All", Filter{Category: model.CategoryAll}, []string{"1", "2", "3", "4"}},
		{"hoodies", Filter{Category: model.CategoryHoodies}, []string{"1"}},
		{"search case insensitive", Filter{Search: "TEE"}, []string{"3"}},
		{"search and category", Filter{Category: model.CategoryPants, Search: "cargo"}, []string{"2"}},
		{"no match", Filter{Category: model.CategoryDresses, Search: "hoodie"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.List(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %d products", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	backend := store.NewMemoryBackend()
	s := store.New(backend, nil, nil)
	ctx := context.Background()

	repo := New(ctx, s, validator.New(), nil)
	_ = repo.Add(ctx, fakeProduct("200"))
	repo.Remove(ctx, "1")

	reloaded := New(ctx, s, validator.New(), nil)
	if reloaded.Count() != 4 {
		t.Errorf("Expected 4 products after reload, got %d", reloaded.Count())
	}
	if _, ok := reloaded.Get("200"); !ok {
		t.Error("Added product not persisted")
	}
	if _, ok := reloaded.Get("1"); ok {
		t.Error("Removed product came back")
	}
}

func TestPersistence_IgnoresCancelledRequest(t *testing.T) {
	backend := store.NewMemoryBackend()
	s := store.New(backend, nil, nil)
	repo := New(context.Background(), s, validator.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !repo.Remove(ctx, "1") {
		t.Fatal("Expected product 1 to be removed")
	}

	reloaded := New(context.Background(), s, validator.New(), nil)
	if _, ok := reloaded.Get("1"); ok {
		t.Error("Removal was not saved with a cancelled context")
	}
}
