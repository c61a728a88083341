// Package storage declares the sentinel errors shared by all storage
// implementations, so that services can branch on failure causes with
// errors.Is instead of inspecting driver-specific errors.
package storage

import "errors"

var (
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrTestNotFound         = errors.New("test not found")
	ErrQuestionNotFound     = errors.New("question not found")
)
