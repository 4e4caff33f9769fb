package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
)

// In-memory repositories implementing the same contracts as the Postgres
// ones, including ordering and filter semantics. Used by tests and local
// development without a database.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return ErrDuplicate
		}
	}

	stored.Username = user.Username
	stored.Email = user.Email
	stored.AvatarURL = user.AvatarURL
	stored.UpdatedAt = time.Now()
	r.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.UserRole) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *MemoryUserRepository) Recent(_ context.Context, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// SetRole is a test convenience for building admin users.
func (r *MemoryUserRepository) SetRole(id uuid.UUID, role models.UserRole) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.Role = role
		r.users[id] = user
	}
}

type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews map[uuid.UUID]models.Review
}

func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{reviews: make(map[uuid.UUID]models.Review)}
}

func (r *MemoryReviewRepository) Insert(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	r.reviews[review.ID] = *review
	return nil
}

func (r *MemoryReviewRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &review, nil
}

func matchesFilter(review models.Review, filter dto.ListReviewsFilter) bool {
	if filter.City != "" &&
		!strings.Contains(strings.ToLower(review.Location.City), strings.ToLower(filter.City)) {
		return false
	}
	if filter.MinRating > 0 && review.ReviewStars < filter.MinRating {
		return false
	}
	if filter.Category != "" {
		found := false
		for _, c := range review.Categories {
			if strings.Contains(strings.ToLower(c), strings.ToLower(filter.Category)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// sortReviews applies the declared order: review_date desc, id asc tie-break.
func sortReviews(reviews []models.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].ReviewDate.Equal(reviews[j].ReviewDate) {
			return reviews[i].ReviewDate.After(reviews[j].ReviewDate)
		}
		return reviews[i].ID.String() < reviews[j].ID.String()
	})
}

func paginate(reviews []models.Review, offset, limit int) []models.Review {
	if offset >= len(reviews) {
		return []models.Review{}
	}
	end := offset + limit
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[offset:end]
}

func (r *MemoryReviewRepository) List(_ context.Context, filter dto.ListReviewsFilter, offset, limit int) ([]models.Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Review{}
	for _, review := range r.reviews {
		if matchesFilter(review, filter) {
			matched = append(matched, review)
		}
	}
	sortReviews(matched)
	return paginate(matched, offset, limit), len(matched), nil
}

func (r *MemoryReviewRepository) Update(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[review.ID]; !ok {
		return ErrNotFound
	}
	review.UpdatedAt = time.Now()
	r.reviews[review.ID] = *review
	return nil
}

func (r *MemoryReviewRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *MemoryReviewRepository) ListByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]models.Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Review{}
	for _, review := range r.reviews {
		if review.UserID == userID {
			matched = append(matched, review)
		}
	}
	sortReviews(matched)
	return paginate(matched, offset, limit), len(matched), nil
}

func (r *MemoryReviewRepository) UserRatingAverage(_ context.Context, userID uuid.UUID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum, count := 0, 0
	for _, review := range r.reviews {
		if review.UserID == userID {
			sum += review.ReviewStars
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

func (r *MemoryReviewRepository) FindByBusinessName(_ context.Context, businessName string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Review{}
	for _, review := range r.reviews {
		if review.BusinessName == businessName {
			matched = append(matched, review)
		}
	}
	sortReviews(matched)
	return matched, nil
}

func (r *MemoryReviewRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reviews), nil
}

func (r *MemoryReviewRepository) Recent(_ context.Context, limit int) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]models.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		reviews = append(reviews, review)
	}
	sortReviews(reviews)
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}
