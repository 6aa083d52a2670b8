package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CartServiceMock struct {
	cart   *domain.Cart
	result domain.AddResult
	ack    domain.WriteAck
	count  int64
	err    error

	gotOwner string
	gotPetID string
	gotItems []domain.CartItem
}

func (c *CartServiceMock) GetCart(_ context.Context, owner string) (*domain.Cart, error) {
	c.gotOwner = owner
	if c.err != nil {
		return nil, c.err
	}
	return c.cart, nil
}

func (c *CartServiceMock) AddItem(_ context.Context, owner string, item domain.CartItem) (domain.AddResult, error) {
	c.gotOwner, c.gotPetID = owner, item.PetID
	return c.result, c.err
}

func (c *CartServiceMock) ReplaceCart(_ context.Context, owner string, items []domain.CartItem) (domain.WriteAck, error) {
	c.gotOwner, c.gotItems = owner, items
	return c.ack, c.err
}

func (c *CartServiceMock) RemoveItem(_ context.Context, owner, petID string) (domain.WriteAck, error) {
	c.gotOwner, c.gotPetID = owner, petID
	return c.ack, c.err
}

func (c *CartServiceMock) ClearCart(_ context.Context, owner string) (int64, error) {
	c.gotOwner = owner
	return c.count, c.err
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func petItem(id, name string) domain.CartItem {
	return domain.CartItem{PetID: id, Fields: map[string]any{"name": name}}
}

func TestAddItem_Created(t *testing.T) {
	mock := &CartServiceMock{result: domain.AddResult{
		Outcome: domain.OutcomeAdded,
		Items:   []domain.CartItem{petItem("p1", "Rex")},
	}}
	handler := NewCartHandler(mock, 5*time.Second)

	body := `{"owner":"a@x.com","item":{"petId":"p1","name":"Rex","price":120}}`
	rec := httptest.NewRecorder()
	handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a@x.com", mock.gotOwner)
	assert.Equal(t, "p1", mock.gotPetID)

	var resp struct {
		Status string           `json:"status"`
		Items  []map[string]any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "added", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0]["petId"])
	assert.Equal(t, "Rex", resp.Items[0]["name"])
}

func TestAddItem_AlreadyExists(t *testing.T) {
	mock := &CartServiceMock{result: domain.AddResult{
		Outcome: domain.OutcomeAlreadyExists,
		Items:   []domain.CartItem{petItem("p1", "Rex")},
	}}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/cart",
		bytes.NewBufferString(`{"owner":"a@x.com","item":{"petId":"p1"}}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"exists"`)
}

func TestAddItem_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"owner":`},
		{name: "missing owner", body: `{"item":{"petId":"p1"}}`},
		{name: "missing item", body: `{"owner":"a@x.com"}`},
		{name: "non string petId", body: `{"owner":"a@x.com","item":{"petId":7}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &CartServiceMock{}
			handler := NewCartHandler(mock, 5*time.Second)

			rec := httptest.NewRecorder()
			handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString(tt.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decodeError(t, rec).Code)
			assert.Empty(t, mock.gotOwner, "service must not be called")
		})
	}
}

func TestAddItem_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid", fmt.Errorf("%w: petId is required", domain.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{"store", fmt.Errorf("%w: add item: boom", domain.ErrStoreFailure), http.StatusInternalServerError, "store_failure"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"unknown", fmt.Errorf("weird"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCartHandler(&CartServiceMock{err: tt.err}, 5*time.Second)

			rec := httptest.NewRecorder()
			handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/cart",
				bytes.NewBufferString(`{"owner":"a@x.com","item":{"petId":"p1"}}`)))

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "boom", "store details must not leak")
		})
	}
}

func TestReplaceCart_Success(t *testing.T) {
	mock := &CartServiceMock{ack: domain.WriteAck{UpsertedCount: 1, UpsertedID: "abc"}}
	handler := NewCartHandler(mock, 5*time.Second)

	body := `{"owner":"a@x.com","items":[{"petId":"p3"},{"petId":"p4"}]}`
	rec := httptest.NewRecorder()
	handler.ReplaceCart(rec, httptest.NewRequest(http.MethodPost, "/carts", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mock.gotItems, 2)
	assert.Equal(t, "p3", mock.gotItems[0].PetID)
	assert.Equal(t, "p4", mock.gotItems[1].PetID)

	var ack map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ack))
	assert.Equal(t, float64(1), ack["upsertedCount"])
	assert.Equal(t, "abc", ack["upsertedId"])
}

func TestGetCart_Success(t *testing.T) {
	mock := &CartServiceMock{cart: &domain.Cart{Owner: "a@x.com", Items: []domain.CartItem{petItem("p1", "Rex")}}}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, httptest.NewRequest(http.MethodGet, "/carts?owner=a@x.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0]["petId"])
}

func TestGetCart_EmailAliasAndEmptyCart(t *testing.T) {
	mock := &CartServiceMock{cart: &domain.Cart{Owner: "b@x.com"}}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, httptest.NewRequest(http.MethodGet, "/carts?email=b@x.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b@x.com", mock.gotOwner)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetCart_MissingOwner(t *testing.T) {
	handler := NewCartHandler(&CartServiceMock{}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, httptest.NewRequest(http.MethodGet, "/carts", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItem_Success(t *testing.T) {
	mock := &CartServiceMock{ack: domain.WriteAck{MatchedCount: 1, ModifiedCount: 1}}
	handler := NewCartHandler(mock, 5*time.Second)

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/carts/a@x.com/p1", nil), "owner", "a@x.com", "petId", "p1")
	rec := httptest.NewRecorder()
	handler.RemoveItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", mock.gotOwner)
	assert.Equal(t, "p1", mock.gotPetID)
	assert.Contains(t, rec.Body.String(), `"modifiedCount":1`)
}

func TestClearCart_Success(t *testing.T) {
	mock := &CartServiceMock{count: 1}
	handler := NewCartHandler(mock, 5*time.Second)

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/cart/clear/a@x.com", nil), "owner", "a@x.com")
	rec := httptest.NewRecorder()
	handler.ClearCart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ClearCartResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.DeletedCount)
}
