package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ascend-api/internal/models"
)

// CompanyRepository reads companies. Companies are provisioned outside the API.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByID fetches a company by ID.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	const query = `SELECT id, name, industry, logo_url, created_at FROM companies WHERE id = $1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListIndustryPeers returns the other companies sharing the given company's industry
// in a stable order. Companies without an industry have no peers.
func (r *CompanyRepository) ListIndustryPeers(ctx context.Context, companyID string) ([]models.Company, error) {
	const query = `SELECT c.id, c.name, c.industry, c.logo_url, c.created_at
		FROM companies c
		JOIN companies self ON self.id = $1
		WHERE c.industry = self.industry AND c.id <> self.id
		ORDER BY c.created_at ASC, c.id ASC`
	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query, companyID); err != nil {
		return nil, fmt.Errorf("list industry peers: %w", err)
	}
	return companies, nil
}
