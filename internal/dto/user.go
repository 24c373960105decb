package dto

import "github.com/vova4o/goschool-api/internal/models"

// UserPatch is the admin partial update of a user. PremiumUntil accepts an
// explicit null to turn a dated grant into a lifetime one.
type UserPatch struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Role         *models.UserRole `json:"role" validate:"omitempty,oneof=user admin"`
	IsPremium    *bool            `json:"is_premium"`
	PremiumUntil OptionalTime     `json:"premium_until" swaggertype:"string" format:"date-time"`
}

// Changes lists the supplied fields in a stable column order.
func (p UserPatch) Changes() []models.FieldChange {
	var changes []models.FieldChange
	changes = appendString(changes, "name", p.Name)
	if p.Role != nil {
		changes = append(changes, models.FieldChange{Column: "role", Value: string(*p.Role)})
	}
	if p.IsPremium != nil {
		changes = append(changes, models.FieldChange{Column: "is_premium", Value: *p.IsPremium})
	}
	if p.PremiumUntil.Set {
		changes = append(changes, models.FieldChange{Column: "premium_until", Value: p.PremiumUntil.Value})
	}
	return changes
}
