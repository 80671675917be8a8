package models

import "time"

// Company is an employer that mentors are affiliated with.
type Company struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Industry  *string   `db:"industry" json:"industry,omitempty"`
	LogoURL   *string   `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CompanyMentorSummary aggregates verified mentor availability for a company.
type CompanyMentorSummary struct {
	CompanyID      string `db:"company_id" json:"company_id"`
	CompanyName    string `db:"company_name" json:"company_name"`
	VerifiedCount  int    `db:"verified_count" json:"verified_count"`
	AvailableCount int    `db:"available_count" json:"available_count"`
}
