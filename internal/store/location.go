package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/util"
)

const locationColumns = "id, col, floor, zone, description"

func (s *Store) ListLocations(ctx context.Context) ([]*model.Location, error) {
	rows, err := s.query(ctx, "SELECT "+locationColumns+" FROM location ORDER BY zone, col, floor, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Location, 0)
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, location)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetLocation(ctx context.Context, id int32) (*model.Location, error) {
	location, err := scanLocation(s.queryRow(ctx, "SELECT "+locationColumns+" FROM location WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return location, nil
}

func (s *Store) CreateLocation(ctx context.Context, create *model.Location) (*model.Location, error) {
	if create.Floor == "" {
		return nil, errors.New("location floor is required")
	}
	if util.HasSpace(create.Floor) {
		return nil, errors.Errorf("location floor %q must not contain spaces", create.Floor)
	}
	stmt := `
		INSERT INTO location (
			col, floor, zone, description
		) VALUES (?, ?, ?, ?)
		RETURNING ` + locationColumns
	location, err := scanLocation(s.queryRow(ctx, stmt, create.Column, create.Floor, nullString(create.Zone), nullString(create.Description)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create location")
	}
	return location, nil
}

// GetOrCreateLocation uses zone, column and floor as the natural key.
func (s *Store) GetOrCreateLocation(ctx context.Context, zone string, column int32, floor string) (*model.Location, error) {
	stmt := "SELECT " + locationColumns + " FROM location WHERE col = ? AND floor = ? AND zone IS ? ORDER BY id LIMIT 1"
	location, err := scanLocation(s.queryRow(ctx, stmt, column, floor, nullString(zone)))
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.CreateLocation(ctx, &model.Location{Zone: zone, Column: column, Floor: floor})
}

func (s *Store) DeleteLocation(ctx context.Context, id int32) error {
	if _, err := s.exec(ctx, "DELETE FROM location WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete location")
	}
	return nil
}

func (s *Store) CountLocations(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, "SELECT COUNT(*) FROM location").Scan(&count)
	return count, err
}

func scanLocation(row rowScanner) (*model.Location, error) {
	var location model.Location
	var zone, description sql.NullString
	if err := row.Scan(&location.ID, &location.Column, &location.Floor, &zone, &description); err != nil {
		return nil, err
	}
	location.Zone = zone.String
	location.Description = description.String
	return &location, nil
}
