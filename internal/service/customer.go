package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/store"
)

// CustomerService manages buyers, sellers and administrators.
type CustomerService interface {
	Create(ctx context.Context, in CustomerCreateDto) (*CustomerDto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerDto, error)
	FindByEmail(ctx context.Context, email string) (*CustomerDto, error)
	// FindAll lists customers ordered by name. A nil kind lists all of them.
	FindAll(ctx context.Context, kind *store.CustomerKind) ([]CustomerDto, error)
	Update(ctx context.Context, id uuid.UUID, in CustomerCreateDto) (*CustomerDto, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerDto struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Email    string    `json:"email"`
	Tipo     string    `json:"tipo_cliente"`
	CriadoEm string    `json:"criado_em"`
}

// CustomerCreateDto is the body of customer create and update requests.
type CustomerCreateDto struct {
	Nome  string `json:"nome" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email,max=150"`
	Tipo  string `json:"tipo_cliente" validate:"required,oneof=BUYER SELLER ADMIN"`
}

type customerService struct {
	customers store.CustomerStore
}

func NewCustomerService(customers store.CustomerStore) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) Create(ctx context.Context, in CustomerCreateDto) (*CustomerDto, error) {
	c, err := s.customers.CreateCustomer(ctx, store.Customer{
		Name:  in.Nome,
		Email: in.Email,
		Kind:  store.CustomerKind(in.Tipo),
	})
	if err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *customerService) FindByID(ctx context.Context, id uuid.UUID) (*CustomerDto, error) {
	c, err := s.customers.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *customerService) FindByEmail(ctx context.Context, email string) (*CustomerDto, error) {
	c, err := s.customers.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *customerService) FindAll(ctx context.Context, kind *store.CustomerKind) ([]CustomerDto, error) {
	list, err := s.customers.FindCustomers(ctx, kind)
	if err != nil {
		return nil, err
	}
	dtos := make([]CustomerDto, len(list))
	for i := range list {
		dtos[i] = *toCustomerDto(&list[i])
	}
	return dtos, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, in CustomerCreateDto) (*CustomerDto, error) {
	c, err := s.customers.UpdateCustomer(ctx, store.Customer{
		ID:    id,
		Name:  in.Nome,
		Email: in.Email,
		Kind:  store.CustomerKind(in.Tipo),
	})
	if err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.customers.DeleteCustomer(ctx, id)
}

func toCustomerDto(c *store.Customer) *CustomerDto {
	return &CustomerDto{
		ID:       c.ID,
		Nome:     c.Name,
		Email:    c.Email,
		Tipo:     string(c.Kind),
		CriadoEm: c.CreatedAt.Format(time.RFC3339),
	}
}
