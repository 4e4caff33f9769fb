package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Location is the optional structured place info attached to a review.
// Stored as flat columns on the reviews table.
type Location struct {
	Address    string  `db:"address" json:"address,omitempty"`
	City       string  `db:"city" json:"city,omitempty"`
	State      string  `db:"state" json:"state,omitempty"`
	PostalCode string  `db:"postal_code" json:"postal_code,omitempty"`
	Latitude   float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude  float64 `db:"longitude" json:"longitude,omitempty"`
}

type Photo struct {
	PhotoID  string `json:"photo_id,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Label    string `json:"label,omitempty"`
	PhotoURL string `json:"photo_url"`
}

// PhotoList is stored as a jsonb column.
type PhotoList []Photo

func (p PhotoList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *PhotoList) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("photos: cannot scan %T", src)
	}
	return json.Unmarshal(b, p)
}

type Review struct {
	ID uuid.UUID `db:"id" json:"id"`

	BusinessID   string    `db:"business_id" json:"business_id,omitempty"`
	BusinessName string    `db:"business_name" json:"business_name"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	UserName     string    `db:"user_name" json:"user_name"`
	ReviewStars  int       `db:"review_stars" json:"review_stars"`
	ReviewDate   time.Time `db:"review_date" json:"review_date"`
	ReviewText   string    `db:"review_text" json:"review_text"`

	Location   Location       `db:"location" json:"location"`
	Categories pq.StringArray `db:"categories" json:"categories,omitempty"`
	Photos     PhotoList      `db:"photos" json:"photos,omitempty"`

	Useful int `db:"useful" json:"useful"`
	Funny  int `db:"funny" json:"funny"`
	Cool   int `db:"cool" json:"cool"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsOwnedBy reports whether userID authored the review.
func (r *Review) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
