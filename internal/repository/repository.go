package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_petshop/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrPetNotFound     = errors.New("pet not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidID       = errors.New("invalid object id")
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, owner string) (*domain.Cart, error)
	AddItem(ctx context.Context, owner string, item domain.CartItem) (domain.AddResult, error)
	ReplaceItems(ctx context.Context, owner string, items []domain.CartItem) (domain.WriteAck, error)
	RemoveItem(ctx context.Context, owner, petID string) (domain.WriteAck, error)
	DeleteCarts(ctx context.Context, owner string) (int64, error)
}

type PaymentRepository interface {
	InsertPayment(ctx context.Context, payment *domain.Payment) (string, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	ListPaymentsByEmail(ctx context.Context, email string) ([]domain.Payment, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	DeletePayment(ctx context.Context, id string) error
}

// ListingRepository stores free-form catalog entries such as products and
// breeds. A limit of zero lists everything.
type ListingRepository interface {
	InsertListing(ctx context.Context, listing *domain.Listing) (string, error)
	ListListings(ctx context.Context, limit int64) ([]domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
}

// PetQuery filters the pet catalog. Zero values mean no filter.
type PetQuery struct {
	Status      domain.PetStatus
	NewestFirst bool
	Limit       int64
}

type PetRepository interface {
	InsertPet(ctx context.Context, pet *domain.Pet) (string, error)
	ListPets(ctx context.Context, q PetQuery) ([]domain.Pet, error)
	ReviewPet(ctx context.Context, id string, review domain.PetReview) (domain.WriteAck, error)
	DeletePet(ctx context.Context, id string) error
}

type UserRepository interface {
	InsertUser(ctx context.Context, user *domain.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) (domain.WriteAck, error)
	DeleteUser(ctx context.Context, id string) error
}
