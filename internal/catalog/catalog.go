package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "topstore/internal/errors"
	"topstore/internal/interfaces"
	"topstore/internal/logger"
	"topstore/internal/model"
	"topstore/internal/store"
)

// Значения по умолчанию для товара, созданного из админки
const (
	DefaultImage    = "https://picsum.photos/400/500"
	DefaultWeightKg = 0.5
)

var (
	defaultSizes  = []string{"S", "M", "L"}
	defaultColors = []string{"Black"}
)

// Filter параметры выборки витрины
type Filter struct {
	Category model.Category
	Search   string
}

// Draft товар из формы админки, незаполненные поля получают значения по умолчанию
type Draft struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       int            `json:"price"`
	Category    model.Category `json:"category"`
	Images      []string       `json:"images"`
	Sizes       []string       `json:"sizes"`
	Colors      []string       `json:"colors"`
	WeightKg    float64        `json:"weightKg"`
}

// Repository каталог товаров. Каждая мутация сразу сохраняет коллекцию.
type Repository struct {
	mu        sync.RWMutex
	products  []model.Product
	store     *store.Store
	validator interfaces.Validator
	log       *logrus.Entry
	now       func() time.Time
	lastID    int64
}

// New загружает каталог. Если коллекция еще не создавалась, каталог
// заполняется стартовым ассортиментом и сохраняется.
func New(ctx context.Context, s *store.Store, v interfaces.Validator, log *logger.Logger) *Repository {
	r := &Repository{
		store:     s,
		validator: v,
		log:       logger.OrDiscard(log).Component("catalog"),
		now:       time.Now,
	}

	products, existed := store.Load[model.Product](ctx, s, store.CollectionProducts)
	if !existed {
		products = DefaultProducts()
		store.Save(ctx, s, store.CollectionProducts, products)
		r.log.WithField("count", len(products)).Info("Catalog seeded with default products")
	}
	r.products = products

	return r
}

// Add добавляет товар в конец каталога
func (r *Repository) Add(ctx context.Context, p model.Product) error {
	if err := r.validator.ValidateProduct(&p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(p.ID) >= 0 {
		return apperrors.ErrDuplicateProduct.WithDetails("id " + p.ID)
	}
	r.products = append(r.products, p.Clone())
	r.persist(ctx)

	r.log.WithFields(logrus.Fields{"product_id": p.ID, "name": p.Name}).Info("Product added")
	return nil
}

// Create собирает товар из черновика и добавляет его с новым id
func (r *Repository) Create(ctx context.Context, d Draft) (model.Product, error) {
	if strings.TrimSpace(d.Name) == "" || d.Price <= 0 {
		return model.Product{}, apperrors.NewWithCode(apperrors.ErrorTypeValidation,
			"product name and price are required", "PRODUCT_DRAFT_INCOMPLETE")
	}

	p := model.Product{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Images:      d.Images,
		Sizes:       d.Sizes,
		Colors:      d.Colors,
		InStock:     true,
		WeightKg:    d.WeightKg,
	}
	if p.Category == "" {
		p.Category = model.CategoryTShirts
	}
	if len(p.Images) == 0 {
		p.Images = []string{DefaultImage}
	}
	if len(p.Sizes) == 0 {
		p.Sizes = append([]string(nil), defaultSizes...)
	}
	if len(p.Colors) == 0 {
		p.Colors = append([]string(nil), defaultColors...)
	}
	if p.WeightKg <= 0 {
		p.WeightKg = DefaultWeightKg
	}
	p.ID = r.nextID()

	if err := r.Add(ctx, p); err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}

// Update заменяет товар с тем же id. Отсутствующий id - не ошибка, found=false.
func (r *Repository) Update(ctx context.Context, p model.Product) (bool, error) {
	if err := r.validator.ValidateProduct(&p); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(p.ID)
	if idx < 0 {
		return false, nil
	}
	r.products[idx] = p.Clone()
	r.persist(ctx)

	r.log.WithField("product_id", p.ID).Info("Product updated")
	return true, nil
}

// Remove удаляет товар. Для отсутствующего id каталог и хранилище не меняются.
func (r *Repository) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	r.products = append(r.products[:idx:idx], r.products[idx+1:]...)
	r.persist(ctx)

	r.log.WithField("product_id", id).Info("Product removed")
	return true
}

// Get товар по id
func (r *Repository) Get(id string) (model.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return model.Product{}, false
	}
	return r.products[idx].Clone(), true
}

// List товары, подходящие под фильтр, в порядке каталога
func (r *Repository) List(f Filter) []model.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.Category != "" && f.Category != model.CategoryAll && p.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

func (r *Repository) indexOf(id string) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextID id на основе текущего времени в мс, строго возрастающий
func (r *Repository) nextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	for r.indexOf(strconv.FormatInt(id, 10)) >= 0 {
		id++
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}

// persist вызывается под r.mu
func (r *Repository) persist(ctx context.Context) {
	store.Save(context.WithoutCancel(ctx), r.store, store.CollectionProducts, r.products)
}
