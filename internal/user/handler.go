package handler

import (
	"errors"
	"net/http"

	handlers "beleske/handler"
	"beleske/internal/user/model"
	"beleske/internal/user/service"
	"beleske/middleware"
	"beleske/pkg/form"
	"beleske/pkg/logger"
	"beleske/store"
)

const usernameTakenMsg = "That username already exists. Please choose a different one."

type UserHandler struct {
	Service  *service.UserService
	Sessions *middleware.SessionManager
	View     *handlers.Renderer
}

func NewUserHandler(service *service.UserService, sessions *middleware.SessionManager, view *handlers.Renderer) *UserHandler {
	return &UserHandler{Service: service, Sessions: sessions, View: view}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.View.Render(w, r, http.StatusOK, "register.html", model.CredentialsPage{})
		return
	}

	_ = r.ParseForm()
	f := model.RegisterForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	page := model.CredentialsPage{Username: f.Username, Errors: form.Validate(&f)}

	if page.Errors.Get("username") == "" {
		taken, err := h.Service.UsernameTaken(r.Context(), f.Username)
		if err != nil {
			h.fail(w, r, "registering", err)
			return
		}
		if taken {
			page.Errors.Add("username", usernameTakenMsg)
		}
	}
	if !page.Errors.Valid() {
		h.View.Render(w, r, http.StatusOK, "register.html", page)
		return
	}

	if _, err := h.Service.Register(r.Context(), f.Username, f.Password); err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			page.Errors.Add("username", usernameTakenMsg)
			h.View.Render(w, r, http.StatusOK, "register.html", page)
			return
		}
		h.fail(w, r, "registering", err)
		return
	}
	logger.Sugar.Infof("Registered user %s", f.Username)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Login establishes a session. A failed attempt re-renders the form without
// saying why.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.View.Render(w, r, http.StatusOK, "login.html", model.CredentialsPage{})
		return
	}

	_ = r.ParseForm()
	f := model.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	page := model.CredentialsPage{Username: f.Username, Errors: form.Validate(&f)}
	if !page.Errors.Valid() {
		h.View.Render(w, r, http.StatusOK, "login.html", page)
		return
	}

	user, err := h.Service.Authenticate(r.Context(), f.Username, f.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.View.Render(w, r, http.StatusOK, "login.html", page)
			return
		}
		h.fail(w, r, "logging in", err)
		return
	}

	if err := h.Sessions.Issue(w, middleware.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		h.fail(w, r, "logging in", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "dashboard.html", nil)
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	logger.Sugar.Errorw("Account request failed",
		"request_id", middleware.RequestID(r.Context()),
		"action", action,
		"error", err,
	)
	if errors.Is(err, store.ErrUnavailable) {
		http.Error(w, "There was an issue "+action+": the database is unavailable, try again later", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "There was an issue "+action, http.StatusInternalServerError)
}
