package models

// Customer is a billable party an invoice refers to
type Customer struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	ImageURL string `json:"image_url" db:"image_url"`
}
