package models

import "time"

// Tutorial is a lesson in the catalog. Non-free tutorials are premium.
type Tutorial struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Level       string    `db:"level" json:"level"`
	Duration    string    `db:"duration" json:"duration"`
	Content     string    `db:"content" json:"content,omitempty"`
	Category    string    `db:"category" json:"category"`
	Order       int       `db:"order" json:"order"`
	IsFree      bool      `db:"is_free" json:"is_free"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TutorialSummary is the list projection without the body.
type TutorialSummary struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Level       string    `db:"level" json:"level"`
	Duration    string    `db:"duration" json:"duration"`
	Category    string    `db:"category" json:"category"`
	Order       int       `db:"order" json:"order"`
	IsFree      bool      `db:"is_free" json:"is_free"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TutorialFilter narrows catalog listings.
type TutorialFilter struct {
	Category string
	IsFree   *bool
}

// TutorialPage is returned by the tutorial page route. Content is blank
// unless Access.Outcome is ALLOWED.
type TutorialPage struct {
	Tutorial
	Access AccessDecision `json:"access"`
}
