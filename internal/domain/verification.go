package domain

import "time"

// Channel identifies how a one-time code reaches the user.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// VerificationSession is one pending proof-of-control for a contact.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; validity is always
// decided from CreatedAt and the configured TTL.
type VerificationSession struct {
	SessionID      string    `json:"session_id" dynamodbav:"session_id"`
	Contact        string    `json:"contact" dynamodbav:"contact"`
	Channel        Channel   `json:"channel" dynamodbav:"channel"`
	Code           string    `json:"-" dynamodbav:"code"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	Used           bool      `json:"used" dynamodbav:"used"`
	BoundSubjectID string    `json:"bound_subject_id,omitempty" dynamodbav:"bound_subject_id,omitempty"`
	ExpiresAt      int64     `json:"expires_at" dynamodbav:"expires_at"`
}

type OTPRequest struct {
	Contact string `json:"contact" validate:"required,max=254"`
}

type OTPVerifyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Code      string `json:"code" validate:"required,max=32"`
}
