package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"reviews-backend/internal/cache"
	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/validation"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrForbidden      = errors.New("not authorized to modify this review")
)

type ReviewService struct {
	reviews repository.ReviewRepository
	cache   *cache.Cache
}

func NewReviewService(reviews repository.ReviewRepository, c *cache.Cache) *ReviewService {
	return &ReviewService{reviews: reviews, cache: c}
}

func businessCacheKey(businessName string) string {
	return "business-summary:" + businessName
}

// canMutate applies the uniform mutation policy: the review's owner or any
// admin, for both update and delete.
func canMutate(caller *models.User, review *models.Review) bool {
	return review.IsOwnedBy(caller.ID) || caller.IsAdmin()
}

func validateListParams(page, perPage int) error {
	var v validation.Collector
	if page < 1 {
		v.Add("page", "Page must be a positive integer")
	}
	if perPage < 1 || perPage > validation.MaxPerPage {
		v.Add("perPage", "PerPage must be between 1 and 100")
	}
	return v.Err()
}

func (s *ReviewService) List(ctx context.Context, filter dto.ListReviewsFilter, page, perPage int) ([]models.Review, dto.Pagination, error) {
	if err := validateListParams(page, perPage); err != nil {
		return nil, dto.Pagination{}, err
	}
	if filter.MinRating != 0 && !validation.ValidStars(filter.MinRating) {
		var v validation.Collector
		v.Add("minRating", "MinRating must be between 1 and 5")
		return nil, dto.Pagination{}, v.Err()
	}

	offset := (page - 1) * perPage
	reviews, total, err := s.reviews.List(ctx, filter, offset, perPage)
	if err != nil {
		return nil, dto.Pagination{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, dto.NewPagination(page, perPage, total), nil
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func validateReviewFields(req *dto.CreateReviewRequest) error {
	var v validation.Collector
	if req.BusinessName == "" {
		v.Add("business_name", "Business name is required")
	}
	if req.UserName == "" {
		v.Add("user_name", "User name is required")
	}
	if !validation.ValidStars(req.ReviewStars) {
		v.Add("review_stars", "Review stars must be between 1 and 5")
	}
	if req.ReviewDate.IsZero() {
		v.Add("review_date", "Review date must be a valid date")
	}
	if req.ReviewText == "" {
		v.Add("review_text", "Review text is required")
	}
	return v.Err()
}

// Create persists a new review owned by author. Any caller-supplied owner is
// ignored; the authenticated identity is the owner.
func (s *ReviewService) Create(ctx context.Context, author *models.User, req *dto.CreateReviewRequest) (*models.Review, error) {
	if err := validateReviewFields(req); err != nil {
		return nil, err
	}

	review := &models.Review{
		BusinessID:   req.BusinessID,
		BusinessName: req.BusinessName,
		UserID:       author.ID,
		UserName:     req.UserName,
		ReviewStars:  req.ReviewStars,
		ReviewDate:   req.ReviewDate,
		ReviewText:   req.ReviewText,
		Location:     req.Location,
		Categories:   pq.StringArray(req.Categories),
		Photos:       req.Photos,
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.invalidateBusiness(ctx, review.BusinessName)
	logger.Info().
		Str("reviewID", review.ID.String()).
		Str("business", review.BusinessName).
		Msg("review created")
	return review, nil
}

// Update applies a partial patch to an existing review. Fields absent from
// the patch keep their stored values.
func (s *ReviewService) Update(ctx context.Context, caller *models.User, id uuid.UUID, patch *dto.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(caller, review) {
		return nil, ErrForbidden
	}

	var v validation.Collector
	if patch.BusinessName != nil && *patch.BusinessName == "" {
		v.Add("business_name", "Business name cannot be empty")
	}
	if patch.ReviewStars != nil && !validation.ValidStars(*patch.ReviewStars) {
		v.Add("review_stars", "Review stars must be between 1 and 5")
	}
	if patch.ReviewText != nil && *patch.ReviewText == "" {
		v.Add("review_text", "Review text cannot be empty")
	}
	if patch.ReviewDate != nil && patch.ReviewDate.IsZero() {
		v.Add("review_date", "Review date must be a valid date")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	oldBusiness := review.BusinessName
	if patch.BusinessName != nil {
		review.BusinessName = *patch.BusinessName
	}
	if patch.ReviewStars != nil {
		review.ReviewStars = *patch.ReviewStars
	}
	if patch.ReviewDate != nil {
		review.ReviewDate = *patch.ReviewDate
	}
	if patch.ReviewText != nil {
		review.ReviewText = *patch.ReviewText
	}
	if patch.Location != nil {
		review.Location = *patch.Location
	}
	if patch.Categories != nil {
		review.Categories = pq.StringArray(*patch.Categories)
	}
	if patch.Photos != nil {
		review.Photos = *patch.Photos
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.invalidateBusiness(ctx, oldBusiness)
	if review.BusinessName != oldBusiness {
		s.invalidateBusiness(ctx, review.BusinessName)
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(caller, review) {
		return ErrForbidden
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.invalidateBusiness(ctx, review.BusinessName)
	logger.Info().Str("reviewID", id.String()).Msg("review deleted")
	return nil
}

// AggregateByBusiness returns all reviews for an exact business name with
// their count and average stars. Cached per business until the next mutation.
func (s *ReviewService) AggregateByBusiness(ctx context.Context, businessName string) (*dto.BusinessSummary, error) {
	var summary dto.BusinessSummary
	if err := s.cache.Get(ctx, businessCacheKey(businessName), &summary); err == nil {
		return &summary, nil
	}

	reviews, err := s.reviews.FindByBusinessName(ctx, businessName)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate business reviews: %w", err)
	}
	if len(reviews) == 0 {
		return nil, ErrReviewNotFound
	}

	var sum int
	for _, r := range reviews {
		sum += r.ReviewStars
	}
	summary = dto.BusinessSummary{
		BusinessName:  businessName,
		Reviews:       reviews,
		AverageRating: RoundRating(float64(sum) / float64(len(reviews))),
		TotalReviews:  len(reviews),
	}

	if err := s.cache.Set(ctx, businessCacheKey(businessName), &summary); err != nil {
		logger.Warn().Err(err).Str("business", businessName).Msg("failed to cache business summary")
	}
	return &summary, nil
}

func (s *ReviewService) invalidateBusiness(ctx context.Context, businessName string) {
	if err := s.cache.Delete(ctx, businessCacheKey(businessName)); err != nil {
		logger.Warn().Err(err).Str("business", businessName).Msg("failed to invalidate business summary")
	}
}

// RoundRating rounds an average star rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
