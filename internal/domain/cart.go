package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	Owner     string     `bson:"owner" json:"owner"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// HasItem reports whether the cart already holds an item for petID.
func (c *Cart) HasItem(petID string) bool {
	if c == nil {
		return false
	}
	for _, item := range c.Items {
		if item.PetID == petID {
			return true
		}
	}
	return false
}

// CartItem is a pet listing placed in a cart. PetID is the dedup key; every
// other field the client sends is kept in Fields and stored inline.
type CartItem struct {
	PetID  string         `bson:"petId" json:"petId"`
	Fields map[string]any `bson:",inline" json:"-"`
}

const petIDField = "petId"

func (i CartItem) MarshalJSON() ([]byte, error) {
	return marshalDocument(i.Fields, map[string]any{petIDField: i.PetID})
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	fields, err := unmarshalDocument(data)
	if err != nil {
		return err
	}
	petID, err := takeString(fields, petIDField)
	if err != nil {
		return err
	}
	i.PetID = petID
	i.Fields = fields
	return nil
}

// AddOutcome is the result of merging one item into a cart.
type AddOutcome string

const (
	OutcomeAdded         AddOutcome = "added"
	OutcomeAlreadyExists AddOutcome = "exists"
)

type AddResult struct {
	Outcome AddOutcome
	Items   []CartItem
}

// WriteAck mirrors the acknowledgement MongoDB returns for an update.
type WriteAck struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId,omitempty"`
}
