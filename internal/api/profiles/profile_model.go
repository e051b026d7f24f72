package profiles

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional is a JSON field that distinguishes "key absent" from "key present
// with null". An absent key leaves the stored value untouched; an explicit
// null clears it.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns the value as a nullable pointer: nil when the field was absent
// or explicitly null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// UpdateProfileParams carries a partial profile update. A field with
// Set=false is left untouched; Set=true with Valid=false writes NULL.
type UpdateProfileParams struct {
	FirstName Optional[string]
	LastName  Optional[string]
	BirthDate Optional[time.Time]
	Phone     Optional[string]
}

// IsEmpty reports whether the patch carries no fields at all. An empty
// patch is still a mutation: updated_at is bumped regardless.
func (p UpdateProfileParams) IsEmpty() bool {
	return !p.FirstName.Set && !p.LastName.Set && !p.BirthDate.Set && !p.Phone.Set
}

// UpdateProfileRequest is the JSON body for PUT /profile. birth_date is a
// plain calendar date.
type UpdateProfileRequest struct {
	FirstName Optional[string] `json:"first_name" validate:"omitempty,max=50"`
	LastName  Optional[string] `json:"last_name" validate:"omitempty,max=50"`
	BirthDate Optional[string] `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone     Optional[string] `json:"phone" validate:"omitempty,max=20"`
}
