package places

import (
	"context"
	"errors"
	"fmt"

	"frontsnap_backend/platform/apperr"
	"frontsnap_backend/platform/googleplaces"
	"frontsnap_backend/platform/phone"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const placeNotFoundMessage = "place not found"

const upsertPlaceQuery = `
	INSERT INTO places (place_id, name, address, lat, lng, phone, website, rating, user_rating_count, types, opening_hours)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (place_id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		phone = EXCLUDED.phone,
		website = EXCLUDED.website,
		rating = EXCLUDED.rating,
		user_rating_count = EXCLUDED.user_rating_count,
		types = EXCLUDED.types,
		opening_hours = EXCLUDED.opening_hours,
		updated_at = now()`

const recordResolutionQuery = `
	INSERT INTO resolutions (session_id, user_id, place_id, photo_key)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (session_id) DO UPDATE SET
		place_id = EXCLUDED.place_id,
		photo_key = EXCLUDED.photo_key,
		resolved_at = now()`

// Repository persists resolved places, their reviews, and the resolution
// log linking capture sessions to places.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new places repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertPlace writes or refreshes the cached record for a place. The phone
// number is normalized to E.164 before storage.
func (r *Repository) UpsertPlace(ctx context.Context, details *googleplaces.PlaceDetails) error {
	_, err := r.pool.Exec(ctx, upsertPlaceQuery,
		details.PlaceID,
		details.Name,
		details.Address,
		details.Lat,
		details.Lng,
		phone.NormalizeE164(details.Phone),
		details.Website,
		details.Rating,
		details.UserRatingCount,
		details.Types,
		details.OpeningHours,
	)
	if err != nil {
		return fmt.Errorf("upsert place: %w", err)
	}
	return nil
}

// ReplaceReviews swaps out the stored reviews for a place with the freshly
// fetched set.
func (r *Repository) ReplaceReviews(ctx context.Context, placeID string, reviews []googleplaces.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace reviews: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM place_reviews WHERE place_id = $1`, placeID); err != nil {
		return fmt.Errorf("delete stale reviews: %w", err)
	}

	for _, review := range reviews {
		_, err := tx.Exec(ctx, `
			INSERT INTO place_reviews (place_id, author_name, rating, text, posted_at)
			VALUES ($1, $2, $3, $4, to_timestamp($5))`,
			placeID, review.AuthorName, review.Rating, review.Text, review.PostedUnix,
		)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// RecordResolution links a capture session to the place it resolved to.
func (r *Repository) RecordResolution(ctx context.Context, rec ResolutionRecord) error {
	_, err := r.pool.Exec(ctx, recordResolutionQuery, rec.SessionID, rec.UserID, rec.PlaceID, rec.PhotoKey)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}
	return nil
}

// GetPlace loads a cached place with its reviews.
func (r *Repository) GetPlace(ctx context.Context, placeID string) (*StoredPlace, error) {
	query := `
		SELECT place_id, name, address, lat, lng, phone, website, rating, user_rating_count, types, opening_hours, updated_at
		FROM places
		WHERE place_id = $1`

	var place StoredPlace
	err := r.pool.QueryRow(ctx, query, placeID).Scan(
		&place.PlaceID,
		&place.Name,
		&place.Address,
		&place.Lat,
		&place.Lng,
		&place.Phone,
		&place.Website,
		&place.Rating,
		&place.UserRatingCount,
		&place.Types,
		&place.OpeningHours,
		&place.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(placeNotFoundMessage)
	}
	if err != nil {
		return nil, fmt.Errorf("get place: %w", err)
	}

	reviews, err := r.getReviews(ctx, placeID)
	if err != nil {
		return nil, err
	}
	place.Reviews = reviews

	return &place, nil
}

func (r *Repository) getReviews(ctx context.Context, placeID string) ([]googleplaces.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT author_name, rating, text, extract(epoch from posted_at)::bigint
		FROM place_reviews
		WHERE place_id = $1
		ORDER BY posted_at DESC`, placeID)
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	defer rows.Close()

	var reviews []googleplaces.Review
	for rows.Next() {
		var review googleplaces.Review
		if err := rows.Scan(&review.AuthorName, &review.Rating, &review.Text, &review.PostedUnix); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
