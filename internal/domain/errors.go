package domain

import "errors"

// Post validation errors
var (
	ErrEmptyTitle   = errors.New("title may not be blank")
	ErrTitleTooLong = errors.New("title must be at most 50 characters")
	ErrEmptyContent = errors.New("content may not be blank")
)

// Profile validation errors
var (
	ErrAboutMeTooLong = errors.New("about me must be at most 128 characters")
)
