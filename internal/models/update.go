package models

// FieldChange is one column assignment of a partial update.
type FieldChange struct {
	Column string
	Value  interface{}
}
