package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrIncompleteTasks       = errors.New("required tasks are not completed")
	ErrDuplicateApplication  = errors.New("application already exists")
	ErrJobNotOpen            = errors.New("job is not open")
	ErrPayoutAccountRequired = errors.New("verified payout account required")
	ErrPaymentGateway        = errors.New("payment gateway error")
	ErrDuplicateReview       = errors.New("review already exists")
	ErrValidation            = errors.New("validation failed")
)

func TransitionError(from, to JobStatus) error {
	return fmt.Errorf("%w: job %s -> %s", ErrInvalidTransition, from, to)
}

func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func GatewayError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPaymentGateway, op, err)
}
