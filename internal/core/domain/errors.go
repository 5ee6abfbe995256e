package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrDuplicateIdentity  = errors.New("email or username already taken")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrIssuanceFailed     = errors.New("failed to issue token pair")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrCorruptDigest      = errors.New("corrupt password digest")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrListNotFound       = errors.New("list not found")
	ErrInternal           = errors.New("internal server error")
)
