// Package businessflow contains the core business logic for the queue system
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Not-found errors
	ErrEventNotFound      = errors.New("event not found")
	ErrLoketNotFound      = errors.New("loket not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrHeldTicketNotFound = errors.New("no held ticket with that number")

	// Conflict errors
	ErrEventCodeExists        = errors.New("event code already exists")
	ErrEventHasLokets         = errors.New("event still has lokets")
	ErrLoketHasWaitingTickets = errors.New("loket still has waiting tickets")

	// Invalid-state errors
	ErrNoActiveNumber   = errors.New("no active number on this loket")
	ErrCannotHoldStatus = errors.New("ticket status does not allow hold")

	// ErrQueueStateCorrupted marks a broken invariant the system itself
	// should have guaranteed, e.g. current_number pointing at no ticket.
	// It is surfaced as an internal error and never silently repaired.
	ErrQueueStateCorrupted = errors.New("queue state is corrupted")

	// ErrStoreContention marks a transaction aborted by contention or
	// timeout; the whole operation is safe to retry.
	ErrStoreContention = errors.New("store contention, retry the operation")

	// Input errors
	ErrInvalidSoundRole = errors.New("unknown sound source role")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

func IsLoketNotFound(err error) bool {
	return errors.Is(err, ErrLoketNotFound)
}

func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

func IsHeldTicketNotFound(err error) bool {
	return errors.Is(err, ErrHeldTicketNotFound)
}

func IsEventCodeExists(err error) bool {
	return errors.Is(err, ErrEventCodeExists)
}

func IsEventHasLokets(err error) bool {
	return errors.Is(err, ErrEventHasLokets)
}

func IsLoketHasWaitingTickets(err error) bool {
	return errors.Is(err, ErrLoketHasWaitingTickets)
}

func IsNoActiveNumber(err error) bool {
	return errors.Is(err, ErrNoActiveNumber)
}

func IsCannotHoldStatus(err error) bool {
	return errors.Is(err, ErrCannotHoldStatus)
}

func IsQueueStateCorrupted(err error) bool {
	return errors.Is(err, ErrQueueStateCorrupted)
}

func IsStoreContention(err error) bool {
	return errors.Is(err, ErrStoreContention)
}

func IsInvalidSoundRole(err error) bool {
	return errors.Is(err, ErrInvalidSoundRole)
}
