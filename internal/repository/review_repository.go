package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"reviews-backend/internal/database"
	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
)

type ReviewRepository interface {
	Insert(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	List(ctx context.Context, filter dto.ListReviewsFilter, offset, limit int) ([]models.Review, int, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Review, int, error)
	UserRatingAverage(ctx context.Context, userID uuid.UUID) (float64, error)
	FindByBusinessName(ctx context.Context, businessName string) ([]models.Review, error)
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]models.Review, error)
}

type PostgresReviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// Location columns are aliased into the nested struct path sqlx expects.
const reviewColumns = `
	id, business_id, business_name, user_id, user_name,
	review_stars, review_date, review_text,
	address as "location.address", city as "location.city",
	state as "location.state", postal_code as "location.postal_code",
	latitude as "location.latitude", longitude as "location.longitude",
	categories, photos, useful, funny, cool, created_at, updated_at
`

// Deterministic order for pagination: newest first, id as the tie-break.
const reviewOrder = ` order by review_date desc, id asc`

func (r *PostgresReviewRepository) Insert(ctx context.Context, review *models.Review) error {
	query := `
		insert into reviews (
			business_id, business_name, user_id, user_name,
			review_stars, review_date, review_text,
			address, city, state, postal_code, latitude, longitude,
			categories, photos, useful, funny, cool
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		returning id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.BusinessID, review.BusinessName, review.UserID, review.UserName,
		review.ReviewStars, review.ReviewDate, review.ReviewText,
		review.Location.Address, review.Location.City, review.Location.State,
		review.Location.PostalCode, review.Location.Latitude, review.Location.Longitude,
		pq.Array([]string(review.Categories)), review.Photos,
		review.Useful, review.Funny, review.Cool,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *PostgresReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `select ` + reviewColumns + ` from reviews where id = $1`

	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func buildListFilter(filter dto.ListReviewsFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	if filter.City != "" {
		args = append(args, "%"+filter.City+"%")
		conds = append(conds, fmt.Sprintf("city ilike $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		conds = append(conds, fmt.Sprintf("review_stars >= $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, "%"+filter.Category+"%")
		conds = append(conds, fmt.Sprintf(
			"exists (select 1 from unnest(categories) as c where c ilike $%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " where " + strings.Join(conds, " and "), args
}

func (r *PostgresReviewRepository) List(ctx context.Context, filter dto.ListReviewsFilter, offset, limit int) ([]models.Review, int, error) {
	where, args := buildListFilter(filter)

	var total int
	countQuery := `select count(*) from reviews` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	reviews := []models.Review{}
	query := fmt.Sprintf(`select %s from reviews%s%s limit $%d offset $%d`,
		reviewColumns, where, reviewOrder, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *PostgresReviewRepository) Update(ctx context.Context, review *models.Review) error {
	query := `
		update reviews
		set business_id = $1, business_name = $2, user_name = $3,
			review_stars = $4, review_date = $5, review_text = $6,
			address = $7, city = $8, state = $9, postal_code = $10,
			latitude = $11, longitude = $12,
			categories = $13, photos = $14,
			useful = $15, funny = $16, cool = $17,
			updated_at = now()
		where id = $18
		returning updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.BusinessID, review.BusinessName, review.UserName,
		review.ReviewStars, review.ReviewDate, review.ReviewText,
		review.Location.Address, review.Location.City, review.Location.State,
		review.Location.PostalCode, review.Location.Latitude, review.Location.Longitude,
		pq.Array([]string(review.Categories)), review.Photos,
		review.Useful, review.Funny, review.Cool,
		review.ID,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `delete from reviews where id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Review, int, error) {
	var total int
	countQuery := `select count(*) from reviews where user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count user reviews: %w", err)
	}

	reviews := []models.Review{}
	query := `select ` + reviewColumns + ` from reviews where user_id = $1` +
		reviewOrder + ` limit $2 offset $3`
	if err := r.db.SelectContext(ctx, &reviews, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list user reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *PostgresReviewRepository) UserRatingAverage(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg float64
	query := `select coalesce(avg(review_stars), 0) from reviews where user_id = $1`
	if err := r.db.GetContext(ctx, &avg, query, userID); err != nil {
		return 0, fmt.Errorf("failed to average user ratings: %w", err)
	}
	return avg, nil
}

func (r *PostgresReviewRepository) FindByBusinessName(ctx context.Context, businessName string) ([]models.Review, error) {
	reviews := []models.Review{}
	query := `select ` + reviewColumns + ` from reviews where business_name = $1` + reviewOrder

	if err := r.db.SelectContext(ctx, &reviews, query, businessName); err != nil {
		return nil, fmt.Errorf("failed to find reviews by business: %w", err)
	}
	return reviews, nil
}

func (r *PostgresReviewRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `select count(*) from reviews`); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func (r *PostgresReviewRepository) Recent(ctx context.Context, limit int) ([]models.Review, error) {
	reviews := []models.Review{}
	query := `select ` + reviewColumns + ` from reviews` + reviewOrder + ` limit $1`

	if err := r.db.SelectContext(ctx, &reviews, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent reviews: %w", err)
	}
	return reviews, nil
}
