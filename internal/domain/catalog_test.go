package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_RoundTripKeepsFieldsAndDropsClientID(t *testing.T) {
	var l Listing
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"forged","name":"Chew toy","price":12}`), &l))
	assert.Empty(t, l.ID)
	assert.Equal(t, map[string]any{"name": "Chew toy", "price": int64(12)}, l.Fields)

	l.ID = "665f1c2e8b3e4a0012345678"
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"665f1c2e8b3e4a0012345678","name":"Chew toy","price":12}`, string(data))
}

func TestPet_UnmarshalIgnoresReviewFields(t *testing.T) {
	var p Pet
	err := json.Unmarshal([]byte(`{"name":"Rex","status":"approved","approvedAt":"2024-01-01T00:00:00Z","rejectReason":"x"}`), &p)
	require.NoError(t, err)

	assert.Empty(t, p.Status)
	assert.Nil(t, p.ApprovedAt)
	assert.Empty(t, p.RejectReason)
	assert.Equal(t, map[string]any{"name": "Rex"}, p.Fields)
}

func TestPet_MarshalIncludesReview(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := Pet{ID: "abc", Status: PetRejected, RejectReason: "blurry photo", RejectedAt: &at, Fields: map[string]any{"name": "Rex"}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"abc","status":"rejected","rejectReason":"blurry photo","rejectedAt":"2024-05-01T10:00:00Z","name":"Rex"}`, string(data))
}

func TestPetReview_Validate(t *testing.T) {
	now := time.Now()
	assert.NoError(t, ApprovePet(now).Validate())
	assert.NoError(t, RejectPet("", now).Validate())
	assert.ErrorIs(t, PetReview{Status: PetPending}.Validate(), ErrInvalidRequest)
}

func TestUser_UnmarshalDropsRole(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@x.com","name":"Ann","role":"admin"}`), &u))
	assert.Equal(t, "a@x.com", u.Email)
	assert.Empty(t, u.Role)
	assert.Equal(t, RoleUser, u.EffectiveRole())
	assert.Equal(t, map[string]any{"name": "Ann"}, u.Fields)
}

func TestUser_UnmarshalRejectsNonStringEmail(t *testing.T) {
	var u User
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"email":42}`), &u), ErrInvalidRequest)
}

func TestUser_EffectiveRole(t *testing.T) {
	var missing *User
	assert.Equal(t, RoleUser, missing.EffectiveRole())
	assert.Equal(t, RoleAdmin, (&User{Role: RoleAdmin}).EffectiveRole())
}
