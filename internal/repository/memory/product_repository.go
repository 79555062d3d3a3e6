package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postly/backend/internal/domain"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *ProductRepository) Create(product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *ProductRepository) GetByID(id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (r *ProductRepository) List(limit, offset int) ([]*domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Product
	for _, product := range r.products {
		copied := *product
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if limit <= 0 {
		limit = 20
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *ProductRepository) Update(product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return nil
	}
	stored.Name = product.Name
	stored.Description = product.Description
	stored.Price = product.Price
	stored.Cost = product.Cost
	stored.Status = product.Status
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}
