package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/norraset/shopapi/internal/models"
)

type SizeStore struct {
	DB *sql.DB
}

func (s *SizeStore) Create(ctx context.Context, label string) (*models.Size, error) {
	size := &models.Size{}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO sizes (label, created_at)
		 VALUES ($1, NOW())
		 RETURNING id, label, created_at`,
		label).Scan(&size.ID, &size.Label, &size.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create size: %w", err)
	}

	return size, nil
}

func (s *SizeStore) List(ctx context.Context) ([]models.Size, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, label, created_at FROM sizes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()

	var sizes []models.Size
	for rows.Next() {
		var size models.Size
		if err := rows.Scan(&size.ID, &size.Label, &size.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		sizes = append(sizes, size)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sizes, nil
}
