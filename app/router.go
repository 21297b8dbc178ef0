package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/api/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	// blogs
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.requirePermission(app.createBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/api/blogs/latest", app.latestBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/api/blogs/id/:id", app.getBlogByIDHandler)
	router.HandlerFunc(http.MethodGet, "/api/blogs/slug/:slug", app.getBlogBySlugHandler)
	router.HandlerFunc(http.MethodPatch, "/api/blogs/id/:id", app.requirePermission(app.updateBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodDelete, "/api/blogs/id/:id", app.requirePermission(app.deleteBlogHandler, userservice.PermissionWriteBlog))

	// users
	router.HandlerFunc(http.MethodPost, "/api/user/user-create", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/user", app.requirePermission(app.listUsersHandler, userservice.PermissionManageUsers))
	router.HandlerFunc(http.MethodGet, "/api/user/:userId", app.getUserHandler)
	router.HandlerFunc(http.MethodPut, "/api/user/:userId", app.requireAuthenticatedUser(app.updateUserHandler))
	router.HandlerFunc(http.MethodDelete, "/api/user/:userId", app.requireAuthenticatedUser(app.deleteUserHandler))
	router.HandlerFunc(http.MethodPatch, "/api/user/:userId/block", app.requirePermission(app.blockUserHandler, userservice.PermissionManageUsers))

	// auth
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginHandler)

	return app.recoverPanic(app.metricsMiddleware(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router))))))
}
