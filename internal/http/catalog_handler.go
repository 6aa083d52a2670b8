package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	AddProduct(ctx context.Context, product *domain.Listing) (string, error)
	HomepageProducts(ctx context.Context) ([]domain.Listing, error)
	ListProducts(ctx context.Context) ([]domain.Listing, error)
	DeleteProduct(ctx context.Context, id string) error

	AddBreed(ctx context.Context, breed *domain.Listing) (string, error)
	ListBreeds(ctx context.Context) ([]domain.Listing, error)

	AddPet(ctx context.Context, pet *domain.Pet) (string, error)
	ApprovedPets(ctx context.Context) ([]domain.Pet, error)
	AllPets(ctx context.Context) ([]domain.Pet, error)
	NewArrivals(ctx context.Context) ([]domain.Pet, error)
	ApprovePet(ctx context.Context, id string) (domain.WriteAck, error)
	RejectPet(ctx context.Context, id, reason string) (domain.WriteAck, error)
	DeletePet(ctx context.Context, id string) error
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type RejectPetRequestDTO struct {
	RejectReason string `json:"rejectReason" validate:"required"`
}

// POST /add-product
func (h *CatalogHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	h.addListing(w, r, h.catalog.AddProduct)
}

// GET /homepage/products
func (h *CatalogHandler) HomepageProducts(w http.ResponseWriter, r *http.Request) {
	h.listListings(w, r, h.catalog.HomepageProducts)
}

// GET /products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listListings(w, r, h.catalog.ListProducts)
}

// DELETE /admin/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.catalog.DeleteProduct)
}

// POST /add-breeds
func (h *CatalogHandler) AddBreed(w http.ResponseWriter, r *http.Request) {
	h.addListing(w, r, h.catalog.AddBreed)
}

// GET /breeds
func (h *CatalogHandler) ListBreeds(w http.ResponseWriter, r *http.Request) {
	h.listListings(w, r, h.catalog.ListBreeds)
}

// POST /add-pet
func (h *CatalogHandler) AddPet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var pet domain.Pet
	if err := decodeJSON(r, &pet); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := h.catalog.AddPet(ctx, &pet)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.InsertAck{Acknowledged: true, InsertedID: id})
}

// GET /pets
func (h *CatalogHandler) ApprovedPets(w http.ResponseWriter, r *http.Request) {
	h.listPets(w, r, h.catalog.ApprovedPets)
}

// GET /admin/pets
func (h *CatalogHandler) AllPets(w http.ResponseWriter, r *http.Request) {
	h.listPets(w, r, h.catalog.AllPets)
}

// GET /pets/new-arrivals
func (h *CatalogHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	h.listPets(w, r, h.catalog.NewArrivals)
}

// PATCH /admin/pets/{id}/approve
func (h *CatalogHandler) ApprovePet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ack, err := h.catalog.ApprovePet(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ack)
}

// PATCH /admin/pets/{id}/reject
func (h *CatalogHandler) RejectPet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RejectPetRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	ack, err := h.catalog.RejectPet(ctx, chi.URLParam(r, "id"), req.RejectReason)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ack)
}

// DELETE /admin/pets/{id}
func (h *CatalogHandler) DeletePet(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.catalog.DeletePet)
}

func (h *CatalogHandler) addListing(w http.ResponseWriter, r *http.Request, add func(context.Context, *domain.Listing) (string, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var listing domain.Listing
	if err := decodeJSON(r, &listing); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := add(ctx, &listing)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.InsertAck{Acknowledged: true, InsertedID: id})
}

func (h *CatalogHandler) listListings(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]domain.Listing, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listings, err := list(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	respondJSON(w, http.StatusOK, listings)
}

func (h *CatalogHandler) listPets(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]domain.Pet, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	pets, err := list(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if pets == nil {
		pets = []domain.Pet{}
	}

	respondJSON(w, http.StatusOK, pets)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := del(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.DeleteAck{Acknowledged: true, DeletedCount: 1})
}
