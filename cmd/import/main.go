package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hashicorp/go-multierror"

	"reviews-backend/internal/config"
	"reviews-backend/internal/database"
	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/services"
)

// Bulk-loads a review dataset. The input file is JSON lines, one review per
// line, in the create-review request shape. Every record is validated with
// the same rules as the API; failures are collected and reported per line.
func main() {
	filePath := flag.String("file", "", "path to a JSON-lines review dataset")
	ownerEmail := flag.String("owner", "", "email of the user that will own the imported reviews")
	flag.Parse()

	if *filePath == "" || *ownerEmail == "" {
		log.Fatal("both -file and -owner are required")
	}

	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	reviewService := services.NewReviewService(reviewRepo, nil)

	owner, err := userRepo.GetByEmail(ctx, *ownerEmail)
	if err != nil {
		log.Fatalf("Failed to resolve owner %q: %v", *ownerEmail, err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer file.Close()

	imported, failures := importReviews(ctx, reviewService, owner, file)

	fmt.Printf("%d reviews imported\n", imported)
	if failures != nil {
		log.Fatalf("Import finished with errors:\n%v", failures)
	}
}

func importReviews(ctx context.Context, svc *services.ReviewService, owner *models.User, file *os.File) (int, error) {
	var result *multierror.Error
	imported := 0
	line := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var req dto.CreateReviewRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			result = multierror.Append(result, fmt.Errorf("line %d: invalid JSON: %w", line, err))
			continue
		}
		if req.UserName == "" {
			req.UserName = owner.Username
		}

		if _, err := svc.Create(ctx, owner, &req); err != nil {
			result = multierror.Append(result, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to read dataset: %w", err))
	}

	return imported, result.ErrorOrNil()
}
