package domain

import "time"

// Tag is a physical QR label. It is created inactive and claimed once by the
// holder of a verified email address or phone number.
type Tag struct {
	TagID          string     `json:"id" dynamodbav:"tag_id" firestore:"-"`
	Active         bool       `json:"active" dynamodbav:"active" firestore:"active"`
	Name           string     `json:"name,omitempty" dynamodbav:"name" firestore:"name"`
	Email          string     `json:"email,omitempty" dynamodbav:"email" firestore:"email"`
	Address        string     `json:"address,omitempty" dynamodbav:"address" firestore:"address"`
	PhoneNumber    string     `json:"phone_number,omitempty" dynamodbav:"phone_number" firestore:"phone_number"`
	CreatedFor     string     `json:"created_for,omitempty" dynamodbav:"created_for" firestore:"created_for"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at" firestore:"created_at"`
	ActivationDate *time.Time `json:"activation_date,omitempty" dynamodbav:"activation_date" firestore:"activation_date"`
	UpdatedAt      time.Time  `json:"updated_at" dynamodbav:"updated_at" firestore:"updated_at"`
}

type ClaimTagRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"max=255"`
	PhoneNumber string `json:"phone_number" validate:"max=32"`
}

type UpdateTagRequest struct {
	SessionID   string  `json:"session_id" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

type GenerateTagsRequest struct {
	Count      int    `json:"count" validate:"required,min=1,max=500"`
	CreatedFor string `json:"created_for" validate:"max=120"`
}

// GeneratedTag describes a freshly minted tag and where its QR image was stored.
type GeneratedTag struct {
	TagID    string `json:"id"`
	URL      string `json:"url"`
	ImageKey string `json:"image_key"`
	// ImageURL is a time-limited download link; empty when it could not be signed.
	ImageURL string `json:"image_url,omitempty"`
}
