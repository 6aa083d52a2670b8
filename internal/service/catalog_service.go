package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/repository"
)

const (
	homepageProducts = 9
	newArrivals      = 6
)

type CatalogService struct {
	products repository.ListingRepository
	breeds   repository.ListingRepository
	pets     repository.PetRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewCatalogService(products, breeds repository.ListingRepository, pets repository.PetRepository, log *logger.Logger) *CatalogService {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogService{
		products: products,
		breeds:   breeds,
		pets:     pets,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *CatalogService) AddProduct(ctx context.Context, product *domain.Listing) (string, error) {
	return s.addListing(ctx, s.products, "product", product)
}

// HomepageProducts returns the first products in insertion order.
func (s *CatalogService) HomepageProducts(ctx context.Context) ([]domain.Listing, error) {
	return s.listListings(ctx, s.products, "product", homepageProducts)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Listing, error) {
	return s.listListings(ctx, s.products, "product", 0)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.products.DeleteListing(ctx, id)
	return s.mapEntityError(ctx, "delete product", "product", id, err, repository.ErrListingNotFound)
}

func (s *CatalogService) AddBreed(ctx context.Context, breed *domain.Listing) (string, error) {
	return s.addListing(ctx, s.breeds, "breed", breed)
}

func (s *CatalogService) ListBreeds(ctx context.Context) ([]domain.Listing, error) {
	return s.listListings(ctx, s.breeds, "breed", 0)
}

// AddPet files a new pet for review. Whatever review state the client sent
// is discarded.
func (s *CatalogService) AddPet(ctx context.Context, pet *domain.Pet) (string, error) {
	if pet == nil || len(pet.Fields) == 0 {
		return "", fmt.Errorf("%w: pet details are required", domain.ErrInvalidRequest)
	}
	pet.ID = ""
	pet.Status = domain.PetPending
	pet.RejectReason = ""
	pet.ApprovedAt, pet.RejectedAt = nil, nil

	id, err := s.pets.InsertPet(ctx, pet)
	if err != nil {
		return "", s.storeFailure(ctx, "add pet", err)
	}
	s.log.Debug(ctx, "pet "+id+" awaiting review")
	return id, nil
}

// ApprovedPets is the public catalog.
func (s *CatalogService) ApprovedPets(ctx context.Context) ([]domain.Pet, error) {
	return s.listPets(ctx, repository.PetQuery{Status: domain.PetApproved})
}

func (s *CatalogService) AllPets(ctx context.Context) ([]domain.Pet, error) {
	return s.listPets(ctx, repository.PetQuery{})
}

// NewArrivals returns the most recently listed approved pets.
func (s *CatalogService) NewArrivals(ctx context.Context) ([]domain.Pet, error) {
	return s.listPets(ctx, repository.PetQuery{
		Status:      domain.PetApproved,
		NewestFirst: true,
		Limit:       newArrivals,
	})
}

func (s *CatalogService) ApprovePet(ctx context.Context, id string) (domain.WriteAck, error) {
	return s.reviewPet(ctx, id, domain.ApprovePet(s.now()))
}

func (s *CatalogService) RejectPet(ctx context.Context, id, reason string) (domain.WriteAck, error) {
	return s.reviewPet(ctx, id, domain.RejectPet(strings.TrimSpace(reason), s.now()))
}

func (s *CatalogService) DeletePet(ctx context.Context, id string) error {
	return s.mapEntityError(ctx, "delete pet", "pet", id, s.pets.DeletePet(ctx, id), repository.ErrPetNotFound)
}

func (s *CatalogService) reviewPet(ctx context.Context, id string, review domain.PetReview) (domain.WriteAck, error) {
	if err := review.Validate(); err != nil {
		return domain.WriteAck{}, err
	}
	ack, err := s.pets.ReviewPet(ctx, id, review)
	if err != nil {
		return domain.WriteAck{}, s.mapEntityError(ctx, "review pet", "pet", id, err, repository.ErrPetNotFound)
	}
	s.log.Info(ctx, fmt.Sprintf("pet %s %s", id, review.Status))
	return ack, nil
}

func (s *CatalogService) listPets(ctx context.Context, q repository.PetQuery) ([]domain.Pet, error) {
	pets, err := s.pets.ListPets(ctx, q)
	if err != nil {
		return nil, s.storeFailure(ctx, "list pets", err)
	}
	return pets, nil
}

func (s *CatalogService) addListing(ctx context.Context, repo repository.ListingRepository, kind string, l *domain.Listing) (string, error) {
	if l == nil || len(l.Fields) == 0 {
		return "", fmt.Errorf("%w: %s details are required", domain.ErrInvalidRequest, kind)
	}
	l.ID = ""
	id, err := repo.InsertListing(ctx, l)
	if err != nil {
		return "", s.storeFailure(ctx, "add "+kind, err)
	}
	return id, nil
}

func (s *CatalogService) listListings(ctx context.Context, repo repository.ListingRepository, kind string, limit int64) ([]domain.Listing, error) {
	listings, err := repo.ListListings(ctx, limit)
	if err != nil {
		return nil, s.storeFailure(ctx, "list "+kind+"s", err)
	}
	return listings, nil
}

func (s *CatalogService) mapEntityError(ctx context.Context, op, kind, id string, err, notFound error) error {
	return mapEntityError(ctx, s.log, op, kind, id, err, notFound)
}

func (s *CatalogService) storeFailure(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", err)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
}

// mapEntityError turns repository errors for a single document into domain
// error kinds.
func mapEntityError(ctx context.Context, log *logger.Logger, op, kind, id string, err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInvalidID):
		return fmt.Errorf("%w: invalid %s id %q", domain.ErrInvalidRequest, kind, id)
	case errors.Is(err, notFound):
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	default:
		log.Error(ctx, op+" failed", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
	}
}
