// Package errors provides the sentinel errors shared by the store, service and transport layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every "unknown id" error.
var ErrNotFound = errors.New("not found")

var ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
var ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
var ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
var ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
var ErrResultNotFound = fmt.Errorf("sentiment result %w", ErrNotFound)

// ErrInvalidInput is wrapped by input rejected by the business layer.
var ErrInvalidInput = errors.New("invalid input")

// ErrBusinessRule is wrapped by requests that are well-formed but not allowed.
var ErrBusinessRule = errors.New("business rule violation")

var ErrEmailAlreadyExists = fmt.Errorf("%w: email already registered", ErrBusinessRule)
var ErrSellerRequired = fmt.Errorf("%w: customer is not a seller", ErrBusinessRule)

// ErrClassifierUnavailable covers every failure talking to the external classifier.
var ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")

var ErrCustomerInUse = fmt.Errorf("%w: customer still has products or comments", ErrBusinessRule)
var ErrProductInUse = fmt.Errorf("%w: product still has comments", ErrBusinessRule)
