package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a shop account. Email is unique; role is granted by admins and
// never taken from the sign-up payload.
type User struct {
	ID     string         `bson:"_id,omitempty" json:"-"`
	Email  string         `bson:"email" json:"-"`
	Role   Role           `bson:"role,omitempty" json:"-"`
	Fields map[string]any `bson:",inline" json:"-"`
}

// EffectiveRole treats accounts without a stored role as plain users.
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == "" {
		return RoleUser
	}
	return u.Role
}

func (u User) MarshalJSON() ([]byte, error) {
	fixed := map[string]any{"email": u.Email}
	if u.ID != "" {
		fixed["_id"] = u.ID
	}
	if u.Role != "" {
		fixed["role"] = u.Role
	}
	return marshalDocument(u.Fields, fixed)
}

func (u *User) UnmarshalJSON(data []byte) error {
	fields, err := unmarshalDocument(data)
	if err != nil {
		return err
	}
	delete(fields, "_id")
	delete(fields, "role")
	email, err := takeString(fields, "email")
	if err != nil {
		return err
	}
	u.Email = email
	u.Fields = fields
	return nil
}
