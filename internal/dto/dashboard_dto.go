package dto

import "reviews-backend/internal/models"

type DashboardStats struct {
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

type DashboardResponse struct {
	Stats         DashboardStats  `json:"stats"`
	RecentReviews []models.Review `json:"recentReviews"`
	Pagination    Pagination      `json:"pagination"`
}

type AdminStatsResponse struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalReviews  int             `json:"totalReviews"`
	TotalAdmins   int             `json:"totalAdmins"`
	RecentUsers   []UserResponse  `json:"recentUsers"`
	RecentReviews []models.Review `json:"recentReviews"`
}
