package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/norraset/shopapi/internal/models"
)

type CategoryStore struct {
	DB *sql.DB
}

func (s *CategoryStore) Create(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name, created_at)
		 VALUES ($1, NOW())
		 RETURNING id, name, created_at`,
		name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}
