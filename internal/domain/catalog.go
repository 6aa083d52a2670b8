package domain

import (
	"fmt"
	"time"
)

// Listing is a product or breed entry. The shop stores whatever the admin
// panel sends; only _id is assigned by the store.
type Listing struct {
	ID     string         `bson:"_id,omitempty" json:"-"`
	Fields map[string]any `bson:",inline" json:"-"`
}

func (l Listing) MarshalJSON() ([]byte, error) {
	fixed := map[string]any{}
	if l.ID != "" {
		fixed["_id"] = l.ID
	}
	return marshalDocument(l.Fields, fixed)
}

func (l *Listing) UnmarshalJSON(data []byte) error {
	fields, err := unmarshalDocument(data)
	if err != nil {
		return err
	}
	delete(fields, "_id")
	l.Fields = fields
	return nil
}

type PetStatus string

const (
	PetPending  PetStatus = "pending"
	PetApproved PetStatus = "approved"
	PetRejected PetStatus = "rejected"
)

// Pet is a listing submitted for adoption. It stays hidden from the public
// catalog until an admin approves it.
type Pet struct {
	ID           string         `bson:"_id,omitempty" json:"-"`
	Status       PetStatus      `bson:"status" json:"-"`
	RejectReason string         `bson:"rejectReason,omitempty" json:"-"`
	ApprovedAt   *time.Time     `bson:"approvedAt,omitempty" json:"-"`
	RejectedAt   *time.Time     `bson:"rejectedAt,omitempty" json:"-"`
	Fields       map[string]any `bson:",inline" json:"-"`
}

// review fields are written by the approve and reject calls only
var petReviewFields = []string{"_id", "status", "rejectReason", "approvedAt", "rejectedAt"}

func (p Pet) MarshalJSON() ([]byte, error) {
	fixed := map[string]any{"status": p.Status}
	if p.ID != "" {
		fixed["_id"] = p.ID
	}
	if p.RejectReason != "" {
		fixed["rejectReason"] = p.RejectReason
	}
	if p.ApprovedAt != nil {
		fixed["approvedAt"] = p.ApprovedAt
	}
	if p.RejectedAt != nil {
		fixed["rejectedAt"] = p.RejectedAt
	}
	return marshalDocument(p.Fields, fixed)
}

func (p *Pet) UnmarshalJSON(data []byte) error {
	fields, err := unmarshalDocument(data)
	if err != nil {
		return err
	}
	for _, key := range petReviewFields {
		delete(fields, key)
	}
	p.Fields = fields
	return nil
}

// PetReview is an admin decision on a submitted pet.
type PetReview struct {
	Status PetStatus
	Reason string
	At     time.Time
}

func ApprovePet(at time.Time) PetReview {
	return PetReview{Status: PetApproved, At: at}
}

func RejectPet(reason string, at time.Time) PetReview {
	return PetReview{Status: PetRejected, Reason: reason, At: at}
}

func (r PetReview) Validate() error {
	switch r.Status {
	case PetApproved, PetRejected:
		return nil
	}
	return fmt.Errorf("%w: pet cannot be moved to %q", ErrInvalidRequest, r.Status)
}

// InsertAck mirrors the acknowledgement MongoDB returns for an insert.
type InsertAck struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// DeleteAck mirrors the acknowledgement MongoDB returns for a delete.
type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
