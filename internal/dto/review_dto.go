package dto

import (
	"time"

	"reviews-backend/internal/models"
)

type CreateReviewRequest struct {
	BusinessID   string           `json:"business_id"`
	BusinessName string           `json:"business_name"`
	UserName     string           `json:"user_name"`
	ReviewStars  int              `json:"review_stars"`
	ReviewDate   time.Time        `json:"review_date"`
	ReviewText   string           `json:"review_text"`
	Location     models.Location  `json:"location"`
	Categories   []string         `json:"categories"`
	Photos       models.PhotoList `json:"photos"`
}

// UpdateReviewRequest is a partial patch. Nil fields are left untouched.
type UpdateReviewRequest struct {
	BusinessName *string           `json:"business_name"`
	ReviewStars  *int              `json:"review_stars"`
	ReviewDate   *time.Time        `json:"review_date"`
	ReviewText   *string           `json:"review_text"`
	Location     *models.Location  `json:"location"`
	Categories   *[]string         `json:"categories"`
	Photos       *models.PhotoList `json:"photos"`
}

// ListReviewsFilter holds the optional, independently combinable list filters.
type ListReviewsFilter struct {
	City      string
	MinRating int
	Category  string
}

type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination derives the page metadata for a total row count.
func NewPagination(page, perPage, total int) Pagination {
	totalPages := (total + perPage - 1) / perPage
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type ListReviewsResponse struct {
	Success    bool            `json:"success"`
	Data       []models.Review `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// BusinessSummary is the per-restaurant aggregation over all its reviews.
type BusinessSummary struct {
	BusinessName  string          `json:"business_name"`
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"avgRating"`
	TotalReviews  int             `json:"totalReviews"`
}
