package domain

import "time"

// User is an end user known to the external identity provider.
// UserID is the provider's subject id.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id" firestore:"-"`
	PhoneNumber  string    `json:"phone_number" dynamodbav:"phone_number" firestore:"phone_number"`
	Email        string    `json:"email,omitempty" dynamodbav:"email" firestore:"email"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at" firestore:"created_at"`
	LastSignInAt time.Time `json:"last_sign_in_at" dynamodbav:"last_sign_in_at" firestore:"last_sign_in_at"`
}

type UserSignInRequest struct {
	IDToken     string `json:"id_token" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
}

// ExternalIdentity is what the identity provider vouches for after checking a token.
type ExternalIdentity struct {
	Subject     string
	PhoneNumber string
	Email       string
	Claims      map[string]interface{}
}

// ScanRequest starts a phone sign-in from a scanned tag.
type ScanRequest struct {
	TagID       string `json:"tag_id" validate:"required,max=64"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
	DeviceID    string `json:"device_id" validate:"max=128"`
}

type ScanVerifyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Code      string `json:"code" validate:"required,max=32"`
	DeviceID  string `json:"device_id" validate:"max=128"`
}

type TagSignInRequest struct {
	TagID string `json:"tag_id" validate:"required,max=64"`
}
