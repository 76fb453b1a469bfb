package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
)

type AnnouncementStore struct {
	DB *sql.DB
}

func (s *AnnouncementStore) Create(ctx context.Context, title, body string, published bool) (*models.Announcement, error) {
	a := &models.Announcement{}

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO announcements (title, body, published, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING id, title, body, published, created_at, updated_at`,
		title, body, published).Scan(
		&a.ID, &a.Title, &a.Body, &a.Published, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	return a, nil
}

func (s *AnnouncementStore) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	a := &models.Announcement{}

	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, body, published, created_at, updated_at
		 FROM announcements
		 WHERE id = $1`,
		id).Scan(&a.ID, &a.Title, &a.Body, &a.Published, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}

	return a, nil
}

// List pages over announcements, optionally only published ones.
func (s *AnnouncementStore) List(ctx context.Context, publishedOnly bool, page, pageSize int) (*OffsetPage, error) {
	filter := ""
	if publishedOnly {
		filter = "WHERE published = TRUE"
	}

	var total int64
	err := s.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM announcements %s`, filter)).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count announcements: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, body, published, created_at, updated_at
		 FROM announcements %s
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, filter),
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Published, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(announcements, total, page, pageSize), nil
}

func (s *AnnouncementStore) Update(ctx context.Context, id int64, title, body string, published bool) (*models.Announcement, error) {
	a := &models.Announcement{}

	err := s.DB.QueryRowContext(ctx,
		`UPDATE announcements
		 SET title = $2, body = $3, published = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, body, published, created_at, updated_at`,
		id, title, body, published).Scan(
		&a.ID, &a.Title, &a.Body, &a.Published, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("update announcement: %w", err)
	}

	return a, nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrAnnouncementNotFound
	}

	return nil
}
