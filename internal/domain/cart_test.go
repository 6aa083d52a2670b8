package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_UnmarshalKeepsExtraFields(t *testing.T) {
	var item CartItem
	err := json.Unmarshal([]byte(`{"petId":"p1","name":"Rex","price":120,"weight":4.5,"tags":["dog",1]}`), &item)
	require.NoError(t, err)

	assert.Equal(t, "p1", item.PetID)
	assert.NotContains(t, item.Fields, "petId")
	assert.Equal(t, "Rex", item.Fields["name"])
	assert.Equal(t, int64(120), item.Fields["price"])
	assert.Equal(t, 4.5, item.Fields["weight"])
	assert.Equal(t, []any{"dog", int64(1)}, item.Fields["tags"])
}

func TestCartItem_MarshalIsFlat(t *testing.T) {
	item := CartItem{PetID: "p1", Fields: map[string]any{"name": "Rex", "petId": "shadowed"}}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"petId":"p1","name":"Rex"}`, string(data))
}

func TestCartItem_UnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "numeric petId", in: `{"petId":7}`},
		{name: "null", in: `null`},
		{name: "array", in: `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item CartItem
			require.ErrorIs(t, json.Unmarshal([]byte(tt.in), &item), ErrInvalidRequest)
		})
	}
}

func TestCartItem_MissingPetIDIsEmpty(t *testing.T) {
	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Rex"}`), &item))
	assert.Empty(t, item.PetID)
}

func TestCart_HasItem(t *testing.T) {
	cart := &Cart{Items: []CartItem{{PetID: "p1"}, {PetID: "p2"}}}
	assert.True(t, cart.HasItem("p2"))
	assert.False(t, cart.HasItem("p3"))

	var nilCart *Cart
	assert.False(t, nilCart.HasItem("p1"))
}

func TestPayment_JSON(t *testing.T) {
	var p Payment
	err := json.Unmarshal([]byte(`{"_id":"client-set","email":"a@x.com","orderStatus":"Shipped","price":9.99}`), &p)
	require.NoError(t, err)
	assert.Empty(t, p.ID)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, OrderShipped, p.OrderStatus)
	assert.Equal(t, map[string]any{"price": 9.99}, p.Fields)

	p.ID = "665f1c2e8b3e4a0012345678"
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"665f1c2e8b3e4a0012345678","email":"a@x.com","orderStatus":"Shipped","price":9.99}`, string(data))
}

func TestPayment_UnknownStatus(t *testing.T) {
	var p Payment
	err := json.Unmarshal([]byte(`{"email":"a@x.com","orderStatus":"Lost"}`), &p)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderReceived, OrderProcessing, OrderShipped, OrderDelivered} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("received").Valid())
	assert.False(t, OrderStatus("").Valid())
}
