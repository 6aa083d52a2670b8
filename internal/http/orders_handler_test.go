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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type OrderServiceMock struct {
	payments []domain.Payment
	count    int64
	err      error

	recorded  *domain.Payment
	gotEmail  string
	gotID     string
	gotStatus domain.OrderStatus
}

func (o *OrderServiceMock) RecordPayment(_ context.Context, p *domain.Payment) (string, error) {
	o.recorded = p
	if o.err != nil {
		return "", o.err
	}
	return "665f1c2e8b3e4a0012345678", nil
}

func (o *OrderServiceMock) ListOrders(context.Context) ([]domain.Payment, error) {
	return o.payments, o.err
}

func (o *OrderServiceMock) OrdersFor(_ context.Context, email string) ([]domain.Payment, error) {
	o.gotEmail = email
	return o.payments, o.err
}

func (o *OrderServiceMock) CountOrders(_ context.Context, email string) (int64, error) {
	o.gotEmail = email
	return o.count, o.err
}

func (o *OrderServiceMock) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	o.gotID, o.gotStatus = id, status
	return o.err
}

func (o *OrderServiceMock) DeleteOrder(_ context.Context, id string) error {
	o.gotID = id
	return o.err
}

const orderID = "665f1c2e8b3e4a0012345678"

func TestRecordPayment_Created(t *testing.T) {
	mock := &OrderServiceMock{}
	handler := NewOrdersHandler(mock, 5*time.Second)

	body := `{"email":"a@x.com","price":42.5,"transactionId":"pi_1","_id":"ignored"}`
	rec := httptest.NewRecorder()
	handler.RecordPayment(rec, httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, mock.recorded)
	assert.Equal(t, "a@x.com", mock.recorded.Email)
	assert.Empty(t, mock.recorded.ID)
	assert.Equal(t, 42.5, mock.recorded.Fields["price"])
	assert.Equal(t, "pi_1", mock.recorded.Fields["transactionId"])

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, orderID, resp["insertedId"])
}

func TestRecordPayment_InvalidStatus(t *testing.T) {
	mock := &OrderServiceMock{}
	handler := NewOrdersHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.RecordPayment(rec, httptest.NewRequest(http.MethodPost, "/payments",
		bytes.NewBufferString(`{"email":"a@x.com","orderStatus":"Lost"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, mock.recorded)
}

func TestListOrders_Empty(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/payments/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestOrdersFor_Success(t *testing.T) {
	mock := &OrderServiceMock{payments: []domain.Payment{
		{ID: orderID, Email: "a@x.com", OrderStatus: domain.OrderShipped, Fields: map[string]any{"price": 10}},
	}}
	handler := NewOrdersHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.OrdersFor(rec, httptest.NewRequest(http.MethodGet, "/payments/specific/order?email=a@x.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", mock.gotEmail)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, orderID, got[0]["_id"])
	assert.Equal(t, "Shipped", got[0]["orderStatus"])
}

func TestOrdersFor_MissingEmail(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.OrdersFor(rec, httptest.NewRequest(http.MethodGet, "/payments/specific/order", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountOrders(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{count: 3}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.CountOrders(rec, httptest.NewRequest(http.MethodGet, "/users/orders/count?email=a@x.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalOrders":3}`, rec.Body.String())
}

func TestUpdateStatus_Success(t *testing.T) {
	mock := &OrderServiceMock{}
	handler := NewOrdersHandler(mock, 5*time.Second)

	req := withURLParams(httptest.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status",
		bytes.NewBufferString(`{"status":"Delivered"}`)), "id", orderID)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orderID, mock.gotID)
	assert.Equal(t, domain.OrderDelivered, mock.gotStatus)
	assert.JSONEq(t, `{"message":"Order status updated successfully","status":"Delivered"}`, rec.Body.String())
}

func TestUpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "invalid status", body: `{"status":"Lost"}`, wantStatus: http.StatusBadRequest},
		{name: "missing status", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "not found", body: `{"status":"Shipped"}`, err: fmt.Errorf("%w: order", domain.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "bad id", body: `{"status":"Shipped"}`, err: fmt.Errorf("%w: invalid order id", domain.ErrInvalidRequest), wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrdersHandler(&OrderServiceMock{err: tt.err}, 5*time.Second)

			req := withURLParams(httptest.NewRequest(http.MethodPatch, "/orders/x/status",
				bytes.NewBufferString(tt.body)), "id", orderID)
			rec := httptest.NewRecorder()
			handler.UpdateStatus(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestDeleteOrder(t *testing.T) {
	handler := NewOrdersHandler(&OrderServiceMock{}, 5*time.Second)
	rec := httptest.NewRecorder()
	handler.DeleteOrder(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/orders/"+orderID, nil), "id", orderID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Order deleted successfully"}`, rec.Body.String())

	handler = NewOrdersHandler(&OrderServiceMock{err: domain.ErrNotFound}, 5*time.Second)
	rec = httptest.NewRecorder()
	handler.DeleteOrder(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/orders/"+orderID, nil), "id", orderID))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}
