package usecase

import (
	"github.com/google/uuid"

	"github.com/postly/backend/internal/authz"
	"github.com/postly/backend/internal/domain"
)

type ProductUsecase struct {
	productRepo domain.ProductRepository
}

func NewProductUsecase(productRepo domain.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type CreateProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Cost        string `json:"cost"`
	Status      *bool  `json:"status"`
}

func (u *ProductUsecase) Create(subject authz.Subject, input CreateProductInput) (*domain.Product, error) {
	if authz.Decide(subject, authz.ActionWrite, subject.ID) == authz.Deny {
		return nil, ErrForbidden
	}
	if input.Name == "" {
		return nil, domain.NewValidationError("name", "this field is required")
	}
	if input.Price == "" {
		return nil, domain.NewValidationError("price", "this field is required")
	}

	status := true
	if input.Status != nil {
		status = *input.Status
	}
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Cost:        input.Cost,
		Status:      status,
		CreatedBy:   subject.ID,
	}
	if err := u.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (u *ProductUsecase) Get(id uuid.UUID) (*domain.Product, error) {
	product, err := u.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (u *ProductUsecase) List(limit, offset int) ([]*domain.Product, int, error) {
	return u.productRepo.List(limit, offset)
}

type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Cost        *string `json:"cost"`
	Status      *bool   `json:"status"`
}

func (u *ProductUsecase) Update(subject authz.Subject, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := u.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if authz.Decide(subject, authz.ActionWrite, product.CreatedBy) == authz.Deny {
		return nil, ErrForbidden
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if input.Status != nil {
		product.Status = *input.Status
	}

	if err := u.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (u *ProductUsecase) Delete(subject authz.Subject, id uuid.UUID) error {
	product, err := u.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if authz.Decide(subject, authz.ActionWrite, product.CreatedBy) == authz.Deny {
		return ErrForbidden
	}
	return u.productRepo.Delete(id)
}
