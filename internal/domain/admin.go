package domain

import "time"

type Admin struct {
	AdminID      string     `json:"id" dynamodbav:"admin_id" firestore:"-"`
	Username     string     `json:"username" dynamodbav:"username" firestore:"username"`
	Email        string     `json:"email" dynamodbav:"email" firestore:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash" firestore:"password_hash"`
	Role         Role       `json:"role" dynamodbav:"role" firestore:"role"`
	Enabled      bool       `json:"enabled" dynamodbav:"enabled" firestore:"enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at" firestore:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at" firestore:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at" firestore:"updated_at"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
}

type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=ADMIN SUPERADMIN"`
}

type UpdateAdminRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN SUPERADMIN"`
	Enabled  *bool   `json:"enabled"`
}
