package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMockTestNotFound   = errors.New("mock test not found")
	ErrProgressNotFound   = errors.New("progress record not found")
	ErrInvalidAIResponse  = errors.New("invalid AI response payload")
)
