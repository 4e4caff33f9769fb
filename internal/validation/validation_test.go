package validation

import (
	"errors"
	"testing"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last@example.co.uk", "user+tag@domain.io"}
	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "plain", "no@tld", "spaces in@x.com", "@x.com", "a@"}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidStars(t *testing.T) {
	for stars := 1; stars <= 5; stars++ {
		if !ValidStars(stars) {
			t.Errorf("expected %d stars to be valid", stars)
		}
	}
	for _, stars := range []int{0, -1, 6, 100} {
		if ValidStars(stars) {
			t.Errorf("expected %d stars to be invalid", stars)
		}
	}
}

func TestCollector(t *testing.T) {
	var v Collector
	if err := v.Err(); err != nil {
		t.Errorf("empty collector must return nil, got %v", err)
	}

	v.Add("stars", "Review stars must be between 1 and 5")
	v.Add("text", "Review text is required")

	err := v.Err()
	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(verrs))
	}
	if verrs[0].Field != "stars" || verrs[1].Field != "text" {
		t.Errorf("field order must be preserved: %v", verrs)
	}
	if err.Error() == "" {
		t.Error("Error() must describe the failures")
	}
}
