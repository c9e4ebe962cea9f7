package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/store"
)

// ProductService manages the catalog. Every product belongs to a seller.
type ProductService interface {
	// Create returns ErrCustomerNotFound for an unknown seller and ErrSellerRequired when it is not a seller.
	Create(ctx context.Context, in ProductCreateDto) (*ProductDto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)
	FindAll(ctx context.Context, filter store.ProductFilter) ([]ProductDto, error)
	Update(ctx context.Context, id uuid.UUID, in ProductCreateDto) (*ProductDto, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductDto struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Preco        float64   `json:"preco"`
	ImagemURL    string    `json:"imagem_url,omitempty"`
	Categoria    string    `json:"categoria,omitempty"`
	Tags         string    `json:"tags,omitempty"`
	Descricao    string    `json:"descricao,omitempty"`
	VendedorID   uuid.UUID `json:"vendedor_id"`
	VendedorNome string    `json:"vendedor_nome,omitempty"`
	CriadoEm     string    `json:"criado_em"`
}

type ProductCreateDto struct {
	Nome       string    `json:"nome" validate:"required,min=2,max=150"`
	Preco      float64   `json:"preco" validate:"required,gt=0"`
	ImagemURL  string    `json:"imagem_url" validate:"max=255"`
	Categoria  string    `json:"categoria" validate:"max=100"`
	Tags       string    `json:"tags" validate:"max=255"`
	Descricao  string    `json:"descricao"`
	VendedorID uuid.UUID `json:"vendedor_id" validate:"required"`
}

type productService struct {
	store store.Store
}

func NewProductService(s store.Store) ProductService {
	return &productService{store: s}
}

func (s *productService) Create(ctx context.Context, in ProductCreateDto) (*ProductDto, error) {
	seller, err := s.seller(ctx, in.VendedorID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.CreateProduct(ctx, toProduct(uuid.Nil, in))
	if err != nil {
		return nil, err
	}
	return toProductDto(p, seller.Name), nil
}

func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	p, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDto(p, s.sellerName(ctx, p.SellerID)), nil
}

func (s *productService) FindAll(ctx context.Context, filter store.ProductFilter) ([]ProductDto, error) {
	list, err := s.store.FindProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string)
	dtos := make([]ProductDto, len(list))
	for i := range list {
		name, ok := names[list[i].SellerID]
		if !ok {
			name = s.sellerName(ctx, list[i].SellerID)
			names[list[i].SellerID] = name
		}
		dtos[i] = *toProductDto(&list[i], name)
	}
	return dtos, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductCreateDto) (*ProductDto, error) {
	if _, err := s.store.FindProductByID(ctx, id); err != nil {
		return nil, err
	}
	seller, err := s.seller(ctx, in.VendedorID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProduct(ctx, toProduct(id, in))
	if err != nil {
		return nil, err
	}
	return toProductDto(p, seller.Name), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteProduct(ctx, id)
}

// seller loads the customer and checks it may own products.
func (s *productService) seller(ctx context.Context, id uuid.UUID) (*store.Customer, error) {
	c, err := s.store.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Kind != store.KindSeller {
		return nil, apperrors.ErrSellerRequired
	}
	return c, nil
}

func (s *productService) sellerName(ctx context.Context, id uuid.UUID) string {
	c, err := s.store.FindCustomerByID(ctx, id)
	if err != nil {
		return ""
	}
	return c.Name
}

func toProduct(id uuid.UUID, in ProductCreateDto) store.Product {
	return store.Product{
		ID:          id,
		Name:        in.Nome,
		Price:       in.Preco,
		ImageURL:    in.ImagemURL,
		Category:    in.Categoria,
		Tags:        in.Tags,
		Description: in.Descricao,
		SellerID:    in.VendedorID,
	}
}

func toProductDto(p *store.Product, sellerName string) *ProductDto {
	return &ProductDto{
		ID:           p.ID,
		Nome:         p.Name,
		Preco:        p.Price,
		ImagemURL:    p.ImageURL,
		Categoria:    p.Category,
		Tags:         p.Tags,
		Descricao:    p.Description,
		VendedorID:   p.SellerID,
		VendedorNome: sellerName,
		CriadoEm:     p.CreatedAt.Format(time.RFC3339),
	}
}
