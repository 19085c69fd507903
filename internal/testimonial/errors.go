package testimonial

import "errors"

var (
	// ErrTestimonialNotFound signals that the testimonial could not be located.
	ErrTestimonialNotFound = errors.New("testimonial not found")
	// ErrInvalidTestimonial indicates the payload failed validation.
	ErrInvalidTestimonial = errors.New("invalid testimonial")
)
