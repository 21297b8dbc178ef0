package main

import (
	"net/http"

	"github.com/sushihentaime/blogsphere/internal/blogservice"
	"github.com/sushihentaime/blogsphere/internal/querybuilder"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

// blogs

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	blog, err := app.blogService.CreateBlog(r.Context(), user.ID, &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, "Blog created successfully", blog, nil)
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	params := querybuilder.ParamsFromURL(r.URL.Query())

	blogs, meta, err := app.blogService.GetBlogs(r.Context(), params)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blogs retrieved successfully", blogs, meta)
}

func (app *application) latestBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit := app.readIntQuery(r, "limit", blogservice.DefaultLatestLimit)

	blogs, err := app.blogService.GetLatestBlogs(r.Context(), limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Latest blogs retrieved successfully", blogs, nil)
}

func (app *application) getBlogByIDHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.blogService.GetBlogByID(r.Context(), app.readParam(r, "id"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog retrieved successfully", blog, nil)
}

func (app *application) getBlogBySlugHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.blogService.GetBlogBySlug(r.Context(), app.readParam(r, "slug"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog retrieved successfully", blog, nil)
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.UpdateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	blog, err := app.blogService.UpdateBlog(r.Context(), app.readParam(r, "id"), app.editor(r), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog updated successfully", blog, nil)
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	err := app.blogService.DeleteBlog(r.Context(), app.readParam(r, "id"), app.editor(r))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Blog deleted successfully", struct{}{}, nil)
}

func (app *application) editor(r *http.Request) blogservice.Editor {
	user := app.contextGetUser(r)
	return blogservice.Editor{
		UserID:  user.ID,
		IsAdmin: user.HasPermission(userservice.PermissionManageBlogs),
	}
}

// users

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.userService.CreateUser(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusCreated, "User created successfully", user, nil)
}

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	params := querybuilder.ParamsFromURL(r.URL.Query())

	users, meta, err := app.userService.GetUsers(r.Context(), params)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Users retrieved successfully", users, meta)
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.userService.GetUserByID(r.Context(), app.readParam(r, "userId"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "User retrieved successfully", user, nil)
}

func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readParam(r, "userId")
	if !app.contextGetUser(r).CanManage(id) {
		app.notPermittedResponse(w, r)
		return
	}

	var input userservice.UpdateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.userService.UpdateUser(r.Context(), id, &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "User updated successfully", user, nil)
}

func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readParam(r, "userId")
	if !app.contextGetUser(r).CanManage(id) {
		app.notPermittedResponse(w, r)
		return
	}

	err := app.userService.DeleteUser(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "User deleted successfully", struct{}{}, nil)
}

type blockUserRequest struct {
	IsBlocked *bool `json:"isBlocked"`
}

func (app *application) blockUserHandler(w http.ResponseWriter, r *http.Request) {
	var input blockUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.IsBlocked == nil {
		app.failedValidationResponse(w, r, map[string]string{"isBlocked": "must be provided"})
		return
	}

	user, err := app.userService.SetBlocked(r.Context(), app.readParam(r, "userId"), *input.IsBlocked)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "User block status updated successfully", user, nil)
}

// auth

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.LoginRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.userService.LoginUser(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeSuccess(w, r, http.StatusOK, "Login successful", token, nil)
}
