package services

// Custom errors

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// Study engine errors. All are user-correctable input or state errors and are
// surfaced directly to the caller.

type NoActiveSessionError struct{ Message string }

func (e *NoActiveSessionError) Error() string { return e.Message }

type NoActiveTimerError struct{ Message string }

func (e *NoActiveTimerError) Error() string { return e.Message }

type QuestionNotFoundError struct{ Message string }

func (e *QuestionNotFoundError) Error() string { return e.Message }

type NotSelectableError struct{ Message string }

func (e *NotSelectableError) Error() string { return e.Message }

type InvalidRatingError struct{ Message string }

func (e *InvalidRatingError) Error() string { return e.Message }

type InvalidModeError struct{ Message string }

func (e *InvalidModeError) Error() string { return e.Message }
