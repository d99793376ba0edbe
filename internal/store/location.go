// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogium/internal/models"
)

// LocationStore manages locations in the database.
type LocationStore struct {
	db *sql.DB
}

// NewLocationStore returns a new LocationStore.
func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

const locationColumns = `id, name, is_published, created_at`

func scanLocation(scanner interface{ Scan(...any) error }) (*models.Location, error) {
	var l models.Location
	if err := scanner.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListPublished returns all published locations ordered by name. Used for
// the post form's location dropdown.
func (s *LocationStore) ListPublished() ([]models.Location, error) {
	rows, err := s.db.Query(`SELECT ` + locationColumns + ` FROM locations WHERE is_published ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list published locations: %w", err)
	}
	defer rows.Close()

	var items []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// FindByID retrieves a location by ID. Returns nil if not found.
func (s *LocationStore) FindByID(id uuid.UUID) (*models.Location, error) {
	row := s.db.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location by id: %w", err)
	}
	return l, nil
}

// Create inserts a new location and returns it.
func (s *LocationStore) Create(l *models.Location) (*models.Location, error) {
	row := s.db.QueryRow(`
		INSERT INTO locations (name, is_published)
		VALUES ($1, $2)
		RETURNING `+locationColumns,
		l.Name, l.IsPublished,
	)
	result, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return result, nil
}

// Delete removes a location by ID. Posts keep existing with a NULL location.
func (s *LocationStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
