package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
)

var ErrAdminRequired = errors.New("admin access required")

const recentRecordLimit = 5

type DashboardService struct {
	users   repository.UserRepository
	reviews repository.ReviewRepository
	svc     *ReviewService
}

func NewDashboardService(users repository.UserRepository, reviews repository.ReviewRepository, svc *ReviewService) *DashboardService {
	return &DashboardService{users: users, reviews: reviews, svc: svc}
}

// Stats builds the per-user dashboard: total review count, average rating over
// every review the user has written, and one page of their most recent reviews.
func (s *DashboardService) Stats(ctx context.Context, user *models.User, page, limit int) (*dto.DashboardResponse, error) {
	if err := validateListParams(page, limit); err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	reviews, total, err := s.reviews.ListByUser(ctx, user.ID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load user reviews: %w", err)
	}

	var avg float64
	if total > 0 {
		avg, err = s.reviews.UserRatingAverage(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to average ratings: %w", err)
		}
	}

	return &dto.DashboardResponse{
		Stats: dto.DashboardStats{
			TotalReviews:  total,
			AverageRating: RoundRating(avg),
		},
		RecentReviews: reviews,
		Pagination:    dto.NewPagination(page, limit, total),
	}, nil
}

// DeleteOwnReview removes one of the caller's reviews, with the same
// owner-or-admin rule as the review service.
func (s *DashboardService) DeleteOwnReview(ctx context.Context, user *models.User, reviewID uuid.UUID) error {
	return s.svc.Delete(ctx, user, reviewID)
}

func (s *DashboardService) AdminStats(ctx context.Context, caller *models.User) (*dto.AdminStatsResponse, error) {
	if !caller.IsAdmin() {
		return nil, ErrAdminRequired
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalReviews, err := s.reviews.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	totalAdmins, err := s.users.CountByRole(ctx, models.UserRoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}

	recentUsers, err := s.users.Recent(ctx, recentRecordLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	recentReviews, err := s.reviews.Recent(ctx, recentRecordLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}

	users := make([]dto.UserResponse, 0, len(recentUsers))
	for i := range recentUsers {
		users = append(users, dto.NewUserResponse(&recentUsers[i]))
	}

	return &dto.AdminStatsResponse{
		TotalUsers:    totalUsers,
		TotalReviews:  totalReviews,
		TotalAdmins:   totalAdmins,
		RecentUsers:   users,
		RecentReviews: recentReviews,
	}, nil
}
