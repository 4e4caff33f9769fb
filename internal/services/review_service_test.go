package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/validation"
)

func newReviewService() (*ReviewService, *repository.MemoryReviewRepository) {
	reviews := repository.NewMemoryReviewRepository()
	return NewReviewService(reviews, nil), reviews
}

func testUser(role models.UserRole) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "a@x.com",
		Role:     role,
	}
}

func reviewRequest(business string, stars int) *dto.CreateReviewRequest {
	return &dto.CreateReviewRequest{
		BusinessName: business,
		UserName:     "alice",
		ReviewStars:  stars,
		ReviewDate:   time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		ReviewText:   "Great food",
	}
}

func TestCreateReview_RoundTrip(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	req := reviewRequest("Joe's Pizza", 4)
	req.Location = models.Location{City: "Las Vegas", State: "NV"}
	req.Categories = []string{"Pizza", "Italian"}

	created, err := svc.Create(context.Background(), alice, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected a server-assigned id")
	}
	if created.UserID != alice.ID {
		t.Errorf("owner must come from the identity, got %s", created.UserID)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.BusinessName != "Joe's Pizza" || got.ReviewStars != 4 || got.ReviewText != "Great food" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Location.City != "Las Vegas" {
		t.Errorf("expected city Las Vegas, got %q", got.Location.City)
	}
	if len(got.Categories) != 2 {
		t.Errorf("expected 2 categories, got %v", got.Categories)
	}
}

func TestCreateReview_StarsOutOfRange(t *testing.T) {
	svc, reviews := newReviewService()
	alice := testUser(models.UserRoleUser)

	_, err := svc.Create(context.Background(), alice, reviewRequest("Joe's Pizza", 6))

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	found := false
	for _, fe := range verrs {
		if fe.Field == "review_stars" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error citing review_stars, got %v", verrs)
	}

	count, _ := reviews.Count(context.Background())
	if count != 0 {
		t.Errorf("no record should be persisted, got %d", count)
	}
}

func TestCreateReview_RequiredFields(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	req := &dto.CreateReviewRequest{ReviewStars: 3}
	_, err := svc.Create(context.Background(), alice, req)

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	wantFields := map[string]bool{
		"business_name": false,
		"user_name":     false,
		"review_date":   false,
		"review_text":   false,
	}
	for _, fe := range verrs {
		if _, ok := wantFields[fe.Field]; ok {
			wantFields[fe.Field] = true
		}
	}
	for field, seen := range wantFields {
		if !seen {
			t.Errorf("expected an error on field %q", field)
		}
	}
}

func TestUpdateReview_Ownership(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)
	bob := testUser(models.UserRoleUser)
	admin := testUser(models.UserRoleAdmin)

	created, err := svc.Create(context.Background(), alice, reviewRequest("Joe's Pizza", 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newText := "Edited"
	_, err = svc.Update(context.Background(), bob, created.ID, &dto.UpdateReviewRequest{ReviewText: &newText})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	got, _ := svc.Get(context.Background(), created.ID)
	if got.ReviewText != "Great food" {
		t.Errorf("review must be unmodified after forbidden update, got %q", got.ReviewText)
	}

	updated, err := svc.Update(context.Background(), alice, created.ID, &dto.UpdateReviewRequest{ReviewText: &newText})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.ReviewText != "Edited" {
		t.Errorf("expected patched text, got %q", updated.ReviewText)
	}
	if updated.ReviewStars != 3 || updated.BusinessName != "Joe's Pizza" {
		t.Errorf("fields absent from patch must be untouched: %+v", updated)
	}

	stars := 5
	if _, err := svc.Update(context.Background(), admin, created.ID, &dto.UpdateReviewRequest{ReviewStars: &stars}); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestUpdateReview_PatchValidation(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	created, err := svc.Create(context.Background(), alice, reviewRequest("Joe's Pizza", 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	badStars := 0
	_, err = svc.Update(context.Background(), alice, created.ID, &dto.UpdateReviewRequest{ReviewStars: &badStars})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Errorf("expected validation errors for stars=0, got %v", err)
	}

	empty := ""
	_, err = svc.Update(context.Background(), alice, created.ID, &dto.UpdateReviewRequest{ReviewText: &empty})
	if !errors.As(err, &verrs) {
		t.Errorf("expected validation errors for empty text, got %v", err)
	}
}

func TestDeleteReview(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)
	bob := testUser(models.UserRoleUser)
	admin := testUser(models.UserRoleAdmin)

	created, err := svc.Create(context.Background(), alice, reviewRequest("Joe's Pizza", 5))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), bob, created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := svc.Delete(context.Background(), admin, created.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound after delete, got %v", err)
	}

	// Second delete of the same id is NotFound, not success.
	if err := svc.Delete(context.Background(), admin, created.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound on repeat delete, got %v", err)
	}
}

func TestListReviews_Pagination(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		req := reviewRequest("Place", 3)
		req.ReviewDate = base.Add(time.Duration(i) * time.Hour)
		if _, err := svc.Create(context.Background(), alice, req); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	items, pagination, err := svc.List(context.Background(), dto.ListReviewsFilter{}, 2, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 3 {
		t.Errorf("expected 3 items on page 2, got %d", len(items))
	}
	if pagination.Total != 7 || pagination.TotalPages != 3 {
		t.Errorf("expected total 7 over 3 pages, got %+v", pagination)
	}
	if !pagination.HasNext || !pagination.HasPrev {
		t.Errorf("page 2 of 3 should have next and prev: %+v", pagination)
	}

	last, pagination, err := svc.List(context.Background(), dto.ListReviewsFilter{}, 3, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last) != 1 {
		t.Errorf("expected 1 item on the last page, got %d", len(last))
	}
	if pagination.HasNext {
		t.Error("last page should not have next")
	}

	// Newest first across pages.
	if !items[0].ReviewDate.After(last[0].ReviewDate) {
		t.Error("expected descending review_date ordering")
	}
}

func TestListReviews_ParamValidation(t *testing.T) {
	svc, _ := newReviewService()

	tests := []struct {
		name          string
		page, perPage int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero perPage", 1, 0},
		{"perPage over limit", 1, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.List(context.Background(), dto.ListReviewsFilter{}, tt.page, tt.perPage)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Errorf("expected validation errors, got %v", err)
			}
		})
	}
}

func TestListReviews_Filters(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	mk := func(business, city string, stars int, categories ...string) {
		req := reviewRequest(business, stars)
		req.Location = models.Location{City: city}
		req.Categories = categories
		if _, err := svc.Create(context.Background(), alice, req); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	mk("A", "Las Vegas", 5, "Pizza")
	mk("B", "North Las Vegas", 3, "Burgers")
	mk("C", "Phoenix", 4, "Pizza", "Italian")

	items, _, err := svc.List(context.Background(), dto.ListReviewsFilter{City: "las vegas"}, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("city substring match should be case-insensitive, got %d items", len(items))
	}

	items, _, err = svc.List(context.Background(), dto.ListReviewsFilter{MinRating: 4}, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("minRating 4 should match stars {4,5}, got %d items", len(items))
	}

	items, _, err = svc.List(context.Background(), dto.ListReviewsFilter{Category: "pizza"}, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("category substring match should be case-insensitive, got %d items", len(items))
	}

	// Filters combine independently.
	items, _, err = svc.List(context.Background(), dto.ListReviewsFilter{City: "vegas", MinRating: 4}, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].BusinessName != "A" {
		t.Errorf("combined filters should match only A, got %+v", items)
	}

	_, _, err = svc.List(context.Background(), dto.ListReviewsFilter{MinRating: 6}, 1, 10)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Errorf("expected validation errors for minRating 6, got %v", err)
	}
}

func TestListReviews_TimestampTieBreak(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	when := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		req := reviewRequest("Place", 3)
		req.ReviewDate = when
		if _, err := svc.Create(context.Background(), alice, req); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Equal timestamps order by id ascending, so paging twice with perPage 2
	// never repeats or skips an item.
	seen := map[uuid.UUID]bool{}
	for page := 1; page <= 3; page++ {
		items, _, err := svc.List(context.Background(), dto.ListReviewsFilter{}, page, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		for _, item := range items {
			if seen[item.ID] {
				t.Errorf("review %s returned twice across pages", item.ID)
			}
			seen[item.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected all 5 reviews across pages, got %d", len(seen))
	}
}

func TestAggregateByBusiness(t *testing.T) {
	svc, _ := newReviewService()
	alice := testUser(models.UserRoleUser)

	for _, stars := range []int{3, 4, 5} {
		if _, err := svc.Create(context.Background(), alice, reviewRequest("Joe's Pizza", stars)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), alice, reviewRequest("Other Place", 1)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	summary, err := svc.AggregateByBusiness(context.Background(), "Joe's Pizza")
	if err != nil {
		t.Fatalf("AggregateByBusiness failed: %v", err)
	}
	if summary.TotalReviews != 3 {
		t.Errorf("expected count 3, got %d", summary.TotalReviews)
	}
	if summary.AverageRating != 4.0 {
		t.Errorf("expected average 4.0, got %v", summary.AverageRating)
	}
	if len(summary.Reviews) != 3 {
		t.Errorf("expected 3 reviews in summary, got %d", len(summary.Reviews))
	}

	// Exact match only; no reviews means not found.
	if _, err := svc.AggregateByBusiness(context.Background(), "Joe's"); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound for partial name, got %v", err)
	}
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{4.0, 4.0},
		{4.04, 4.0},
		{4.75, 4.8},
		{3.666666, 3.7},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundRating(tt.in); got != tt.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
