// Package auth checks the token a client presents in its hello line.
package auth

import (
	"crypto/subtle"
	"errors"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator decides whether a hello token admits the client.
type Validator interface {
	Validate(token string) error
}

// Open admits every client, with or without a token.
type Open struct{}

func (Open) Validate(string) error { return nil }

// SharedToken admits clients presenting exactly this token. The empty
// SharedToken admits nobody.
type SharedToken string

func (s SharedToken) Validate(token string) error {
	if s == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) error

func (f FuncValidator) Validate(token string) error {
	return f(token)
}

// ForToken returns Open when token is empty and SharedToken otherwise, the
// usual mapping from a config value.
func ForToken(token string) Validator {
	if token == "" {
		return Open{}
	}
	return SharedToken(token)
}
