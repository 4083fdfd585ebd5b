package actions

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation      = "ACTION_VALIDATION_FAILED"
	codeUnauthenticated = "ACTION_UNAUTHENTICATED"
	codeInactive        = "ACTION_ACCOUNT_INACTIVE"
	codeForbidden       = "ACTION_FORBIDDEN"
	codeCanceled        = "ACTION_CONTEXT_CANCELED"
	codeTimeout         = "ACTION_CONTEXT_TIMEOUT"
	codeFailed          = "ACTION_EXECUTION_FAILED"
)

var (
	ErrUnauthenticated = errors.New("actions: authentication required")
	ErrInactiveAccount = errors.New("actions: account is not active")
	ErrForbidden       = errors.New("actions: role not permitted for this action")
)

// wrapValidationError keeps ozzo field errors as go-errors field issues.
func wrapValidationError(err error) error {
	if _, ok := goerrors.GetValidationErrors(err); ok {
		return err
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return goerrors.FromOzzoValidation(fields, "action validation failed").
			WithTextCode(codeValidation)
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "action validation failed").
		WithTextCode(codeValidation)
}

func unauthenticated() error {
	return goerrors.Wrap(ErrUnauthenticated, goerrors.CategoryAuth, "sign in to continue").
		WithTextCode(codeUnauthenticated)
}

func inactive() error {
	return goerrors.Wrap(ErrInactiveAccount, goerrors.CategoryAuthz, "account is not active").
		WithTextCode(codeInactive)
}

func forbidden(action string) error {
	return goerrors.Wrap(ErrForbidden, goerrors.CategoryAuthz, "not allowed to run "+action).
		WithTextCode(codeForbidden)
}

func wrapExecuteError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "action cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "action deadline exceeded").
			WithTextCode(codeTimeout)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "action failed").
		WithTextCode(codeFailed)
}
