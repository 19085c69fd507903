package course

import "errors"

var (
	// ErrCourseNotFound signals that the course could not be located.
	ErrCourseNotFound = errors.New("course not found")
	// ErrSlugAlreadyExists indicates the slug is taken by another course.
	ErrSlugAlreadyExists = errors.New("slug already exists")
	// ErrInvalidCourse indicates the course payload failed validation.
	ErrInvalidCourse = errors.New("invalid course")
)
