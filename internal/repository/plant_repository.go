package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gardenbook/api/internal/models"
)

var ErrPlantNotFound = errors.New("plant not found")

const plantColumns = `
	id, user_id, name, species, description, last_watered_at, photo_url, created_at, updated_at
`

type PlantRepository struct {
	pool *pgxpool.Pool
}

func NewPlantRepository(pool *pgxpool.Pool) *PlantRepository {
	return &PlantRepository{pool: pool}
}

func (r *PlantRepository) Create(ctx context.Context, plant models.Plant) error {
	const query = `
		INSERT INTO plants (
			id, user_id, name, species, description, last_watered_at, photo_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		plant.ID,
		plant.UserID,
		plant.Name,
		plant.Species,
		plant.Description,
		plant.LastWateredAt,
		plant.PhotoURL,
	)
	return err
}

func (r *PlantRepository) GetByID(ctx context.Context, id string) (models.Plant, error) {
	const query = `SELECT ` + plantColumns + ` FROM plants WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PlantRepository) ListByUser(ctx context.Context, userID string) ([]models.Plant, error) {
	const query = `SELECT ` + plantColumns + ` FROM plants WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plants []models.Plant
	for rows.Next() {
		plant, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, plant)
	}
	return plants, rows.Err()
}

type UpdatePlantParams struct {
	Name          *string
	Species       *string
	Description   *string
	LastWateredAt *time.Time
}

func (r *PlantRepository) Update(ctx context.Context, id string, params UpdatePlantParams) (models.Plant, error) {
	const query = `
		UPDATE plants SET
			name = COALESCE($2, name),
			species = COALESCE($3, species),
			description = COALESCE($4, description),
			last_watered_at = COALESCE($5, last_watered_at),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + plantColumns

	return r.scanOne(r.pool.QueryRow(ctx, query,
		id,
		params.Name,
		params.Species,
		params.Description,
		params.LastWateredAt,
	))
}

func (r *PlantRepository) SetPhotoURL(ctx context.Context, id string, photoURL string) error {
	const query = `UPDATE plants SET photo_url = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, photoURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPlantNotFound
	}
	return nil
}

func (r *PlantRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM plants WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPlantNotFound
	}
	return nil
}

func (r *PlantRepository) scanOne(row pgx.Row) (models.Plant, error) {
	var plant models.Plant
	if err := row.Scan(
		&plant.ID,
		&plant.UserID,
		&plant.Name,
		&plant.Species,
		&plant.Description,
		&plant.LastWateredAt,
		&plant.PhotoURL,
		&plant.CreatedAt,
		&plant.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Plant{}, ErrPlantNotFound
		}
		return models.Plant{}, err
	}
	return plant, nil
}
