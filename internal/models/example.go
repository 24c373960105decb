package models

import "time"

// Example is a runnable code sample. Examples are never gated.
type Example struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Code        string    `db:"code" json:"code"`
	Language    string    `db:"language" json:"language"`
	Category    string    `db:"category" json:"category"`
	Order       int       `db:"order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultExampleLanguage applies when a create request omits language.
const DefaultExampleLanguage = "go"
