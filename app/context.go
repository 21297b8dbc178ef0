package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/blogsphere/internal/userservice"
)

type contextKey string

const userContextKey = contextKey("user")

func (app *application) contextSetUser(r *http.Request, user *userservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser returns the user attached by authenticate, or the anonymous user
// for requests that never passed through it.
func (app *application) contextGetUser(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok {
		return &userservice.AnonymousUser
	}
	return user
}
