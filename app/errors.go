package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/blogsphere/internal/blogservice"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

type errorKind string

const (
	kindValidation       errorKind = "validation"
	kindNotFound         errorKind = "not_found"
	kindDuplicate        errorKind = "duplicate"
	kindAuthentication   errorKind = "authentication"
	kindAuthorization    errorKind = "authorization"
	kindMethodNotAllowed errorKind = "method_not_allowed"
	kindRateLimited      errorKind = "rate_limited"
	kindInternal         errorKind = "internal"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

// writeErrorResponse writes the error envelope. fieldErrors is left out when empty.
func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, kind errorKind, message string, fieldErrors map[string]string) {
	env := envelope{
		"success":    false,
		"statusCode": status,
		"message":    message,
		"errorKind":  kind,
	}
	if len(fieldErrors) > 0 {
		env["errors"] = fieldErrors
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, kindInternal, message, nil)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, kindValidation, err.Error(), nil)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.writeErrorResponse(w, r, http.StatusNotFound, kindNotFound, message, nil)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, kindMethodNotAllowed, message, nil)
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	app.writeErrorResponse(w, r, http.StatusUnprocessableEntity, kindValidation, "validation failed", errs)
}

func (app *application) duplicateResponse(w http.ResponseWriter, r *http.Request, field, message string) {
	app.writeErrorResponse(w, r, http.StatusConflict, kindDuplicate, message, map[string]string{field: message})
}

func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	app.writeErrorResponse(w, r, http.StatusUnauthorized, kindAuthentication, message, nil)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	message := "invalid or missing authentication token"
	app.writeErrorResponse(w, r, http.StatusUnauthorized, kindAuthentication, message, nil)
}

func (app *application) blockedUserResponse(w http.ResponseWriter, r *http.Request) {
	message := "your account has been blocked"
	app.writeErrorResponse(w, r, http.StatusUnauthorized, kindAuthentication, message, nil)
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	message := "you must be authenticated to access this resource"
	app.writeErrorResponse(w, r, http.StatusUnauthorized, kindAuthentication, message, nil)
}

func (app *application) notPermittedResponse(w http.ResponseWriter, r *http.Request) {
	message := "your user account doesn't have the necessary permissions to access this resource"
	app.writeErrorResponse(w, r, http.StatusForbidden, kindAuthorization, message, nil)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.writeErrorResponse(w, r, http.StatusTooManyRequests, kindRateLimited, message, nil)
}

// serviceErrorResponse maps an error returned by a service call onto its envelope.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError

	switch {
	case errors.As(err, &validationErr):
		app.failedValidationResponse(w, r, validationErr.Errors)
	case errors.Is(err, blogservice.ErrRecordNotFound), errors.Is(err, userservice.ErrNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, blogservice.ErrDuplicateSlug):
		app.duplicateResponse(w, r, "slug", "a blog with this slug already exists")
	case errors.Is(err, userservice.ErrDuplicateEmail):
		app.duplicateResponse(w, r, "email", "a user with this email address already exists")
	case errors.Is(err, blogservice.ErrNotAuthor):
		app.notPermittedResponse(w, r)
	case errors.Is(err, blogservice.ErrAuthorNotFound), errors.Is(err, userservice.ErrInvalidToken):
		app.invalidAuthenticationTokenResponse(w, r)
	case errors.Is(err, userservice.ErrAuthenticationFailure):
		app.invalidCredentialsResponse(w, r)
	case errors.Is(err, userservice.ErrUserBlocked):
		app.blockedUserResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
