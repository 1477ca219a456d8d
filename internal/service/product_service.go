package service

import (
	"context"
	"errors"

	"airportpos/internal/dto"
	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService is the read-only catalog lookup used by the till.
// Stock is never cached: the cashier must see what the ledger holds now.
type ProductService interface {
	// List returns the products of shopID, or of the cashier's own shop when shopID is nil.
	List(ctx context.Context, p Principal, shopID *uuid.UUID) ([]dto.ProductResponse, error)
	Get(ctx context.Context, p Principal, id uuid.UUID) (*dto.ProductResponse, error)
}

type productService struct {
	products repository.ProductRepository
	shops    repository.ShopRepository
}

func NewProductService(products repository.ProductRepository, shops repository.ShopRepository) ProductService {
	return &productService{products: products, shops: shops}
}

func (s *productService) List(ctx context.Context, p Principal, shopID *uuid.UUID) ([]dto.ProductResponse, error) {
	target := shopID
	if target == nil {
		target = p.ShopID
	}
	if target == nil {
		return nil, ErrShopNotFound
	}
	if err := s.authorize(ctx, p, *target); err != nil {
		return nil, err
	}

	products, err := s.products.ListByShop(ctx, *target)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, len(products))
	for i := range products {
		out[i] = productToResponse(&products[i])
	}
	return out, nil
}

func (s *productService) Get(ctx context.Context, p Principal, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, product.ShopID); err != nil {
		return nil, err
	}
	resp := productToResponse(product)
	return &resp, nil
}

// authorize checks that p may read the catalog of shopID.
func (s *productService) authorize(ctx context.Context, p Principal, shopID uuid.UUID) error {
	switch p.Role {
	case model.RoleCashier:
		if p.ShopID == nil || *p.ShopID != shopID {
			return ErrShopAccessDenied
		}
		return nil
	case model.RoleVendor:
		shop, err := s.shops.FindByID(ctx, shopID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShopNotFound
		}
		if err != nil {
			return err
		}
		if shop.VendorID != p.ID {
			return ErrShopAccessDenied
		}
		return nil
	case model.RoleAdmin:
		return nil
	}
	return ErrShopAccessDenied
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Price:             p.Price,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.Quantity <= p.LowStockThreshold,
		ShopID:            p.ShopID.String(),
	}
}
