package dto

import "github.com/vova4o/goschool-api/internal/models"

// CreateTutorialRequest is the admin payload for a new tutorial.
// IsFree is a pointer so an omitted flag defaults to free.
type CreateTutorialRequest struct {
	Slug        string `json:"slug" validate:"required,slug,max=255"`
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description"`
	Level       string `json:"level" validate:"required,max=100"`
	Duration    string `json:"duration" validate:"max=50"`
	Content     string `json:"content" validate:"required"`
	Category    string `json:"category" validate:"required,max=100"`
	Order       int    `json:"order" validate:"gte=0"`
	IsFree      *bool  `json:"is_free"`
}

// Model converts the request into a tutorial row.
func (r CreateTutorialRequest) Model() *models.Tutorial {
	isFree := true
	if r.IsFree != nil {
		isFree = *r.IsFree
	}
	return &models.Tutorial{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		Duration:    r.Duration,
		Content:     r.Content,
		Category:    r.Category,
		Order:       r.Order,
		IsFree:      isFree,
	}
}

// TutorialPatch carries a partial update. Nil fields are left untouched.
type TutorialPatch struct {
	Slug        *string `json:"slug" validate:"omitempty,slug,max=255"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	Level       *string `json:"level" validate:"omitempty,min=1,max=100"`
	Duration    *string `json:"duration" validate:"omitempty,max=50"`
	Content     *string `json:"content" validate:"omitempty,min=1"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
	IsFree      *bool   `json:"is_free"`
}

// Changes lists the supplied fields in a stable column order.
func (p TutorialPatch) Changes() []models.FieldChange {
	var changes []models.FieldChange
	changes = appendString(changes, "slug", p.Slug)
	changes = appendString(changes, "title", p.Title)
	changes = appendString(changes, "description", p.Description)
	changes = appendString(changes, "level", p.Level)
	changes = appendString(changes, "duration", p.Duration)
	changes = appendString(changes, "content", p.Content)
	changes = appendString(changes, "category", p.Category)
	if p.Order != nil {
		changes = append(changes, models.FieldChange{Column: "order", Value: *p.Order})
	}
	if p.IsFree != nil {
		changes = append(changes, models.FieldChange{Column: "is_free", Value: *p.IsFree})
	}
	return changes
}

// CreateExampleRequest is the admin payload for a new example.
type CreateExampleRequest struct {
	Slug        string `json:"slug" validate:"required,slug,max=255"`
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description"`
	Code        string `json:"code" validate:"required"`
	Language    string `json:"language" validate:"omitempty,max=50"`
	Category    string `json:"category" validate:"required,max=100"`
	Order       int    `json:"order" validate:"gte=0"`
}

// Model converts the request into an example row.
func (r CreateExampleRequest) Model() *models.Example {
	lang := r.Language
	if lang == "" {
		lang = models.DefaultExampleLanguage
	}
	return &models.Example{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Language:    lang,
		Category:    r.Category,
		Order:       r.Order,
	}
}

// ExamplePatch carries a partial update of an example.
type ExamplePatch struct {
	Slug        *string `json:"slug" validate:"omitempty,slug,max=255"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	Code        *string `json:"code" validate:"omitempty,min=1"`
	Language    *string `json:"language" validate:"omitempty,min=1,max=50"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

// Changes lists the supplied fields in a stable column order.
func (p ExamplePatch) Changes() []models.FieldChange {
	var changes []models.FieldChange
	changes = appendString(changes, "slug", p.Slug)
	changes = appendString(changes, "title", p.Title)
	changes = appendString(changes, "description", p.Description)
	changes = appendString(changes, "code", p.Code)
	changes = appendString(changes, "language", p.Language)
	changes = appendString(changes, "category", p.Category)
	if p.Order != nil {
		changes = append(changes, models.FieldChange{Column: "order", Value: *p.Order})
	}
	return changes
}

func appendString(changes []models.FieldChange, column string, v *string) []models.FieldChange {
	if v == nil {
		return changes
	}
	return append(changes, models.FieldChange{Column: column, Value: *v})
}
