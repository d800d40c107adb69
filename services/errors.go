package services

import (
	"errors"
	"fmt"

	"bizmarket/store"
)

// Kind classifies a business failure so the transport can pick a status code.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindInvalidState Kind = "invalid_state"
	KindInvalidAgent Kind = "invalid_agent"
	KindCooldown     Kind = "cooldown"
	KindValidation   Kind = "validation"
	KindInternal     Kind = "internal"
)

// Error is the structured failure every service operation returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Internal wraps an unexpected persistence or infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// storeError maps store sentinels onto the taxonomy. what names the missing entity.
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return newError(KindNotFound, what+" not found")
	case errors.Is(err, store.ErrCooldown):
		return newError(KindCooldown, "you already enquired about this listing recently")
	case errors.Is(err, store.ErrDuplicate):
		return newError(KindValidation, what+" already exists")
	}
	return Internal("failed to access "+what, err)
}
