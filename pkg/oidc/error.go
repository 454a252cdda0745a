package oidc

import (
	"errors"
	"fmt"
)

type errorType string

const (
	InvalidRequest     errorType = "invalid_request"
	InvalidClient      errorType = "invalid_client"
	UnauthorizedClient errorType = "unauthorized_client"
	ServerError        errorType = "server_error"
)

var (
	ErrInvalidRequest = func() *Error {
		return &Error{
			ErrorType: InvalidRequest,
		}
	}
	ErrInvalidClient = func() *Error {
		return &Error{
			ErrorType: InvalidClient,
		}
	}
	ErrUnauthorizedClient = func() *Error {
		return &Error{
			ErrorType: UnauthorizedClient,
		}
	}
	ErrServerError = func() *Error {
		return &Error{
			ErrorType: ServerError,
		}
	}
)

// Error is the OAuth 2.0 error response carried through a transaction
// and serialized into the final response, either inline or as redirect
// query parameters.
type Error struct {
	Parent      error     `json:"-" schema:"-"`
	ErrorType   errorType `json:"error" schema:"error"`
	Description string    `json:"error_description,omitempty" schema:"error_description,omitempty"`
	ErrorURI    string    `json:"error_uri,omitempty" schema:"error_uri,omitempty"`
	State       string    `json:"state,omitempty" schema:"state,omitempty"`
}

func (e *Error) Error() string {
	message := "ErrorType=" + string(e.ErrorType)
	if e.Description != "" {
		message += " Description=" + e.Description
	}
	if e.ErrorURI != "" {
		message += " ErrorURI=" + e.ErrorURI
	}
	if e.Parent != nil {
		message += " Parent=" + e.Parent.Error()
	}
	return message
}

func (e *Error) Unwrap() error {
	return e.Parent
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorType == t.ErrorType &&
		(e.Description == t.Description || t.Description == "") &&
		(e.ErrorURI == t.ErrorURI || t.ErrorURI == "") &&
		(e.State == t.State || t.State == "")
}

func (e *Error) WithParent(err error) *Error {
	e.Parent = err
	return e
}

func (e *Error) WithDescription(desc string, args ...any) *Error {
	e.Description = fmt.Sprintf(desc, args...)
	return e
}

func (e *Error) WithErrorURI(uri string) *Error {
	e.ErrorURI = uri
	return e
}

// NewError builds an Error from a raw rejection triple. An empty code
// defaults to invalid_request; description and uri pass through
// verbatim, including empty values.
func NewError(code, description, uri string) *Error {
	if code == "" {
		code = string(InvalidRequest)
	}
	return &Error{
		ErrorType:   errorType(code),
		Description: description,
		ErrorURI:    uri,
	}
}

// DefaultToServerError checks if the error is an Error
// if not the provided error will be wrapped into a ServerError
func DefaultToServerError(err error, description string) *Error {
	oauth := new(Error)
	if ok := errors.As(err, &oauth); !ok {
		oauth.ErrorType = ServerError
		oauth.Description = description
		oauth.Parent = err
	}
	return oauth
}
