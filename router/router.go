package router

import (
	"net/http"

	"beleske/config"
	handlers "beleske/handler"
	noteHandler "beleske/internal/note"
	noteRepository "beleske/internal/note/repository"
	noteService "beleske/internal/note/service"
	userHandler "beleske/internal/user"
	userRepository "beleske/internal/user/repository"
	userService "beleske/internal/user/service"
	"beleske/middleware"
	"beleske/socket"

	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a mux. Account routes
// exist only when cfg.Accounts is set.
func Setup(db *gorm.DB, hub *socket.Hub, cfg config.Config) (http.Handler, error) {
	view, err := handlers.NewRenderer(cfg.Accounts)
	if err != nil {
		return nil, err
	}

	var publisher noteService.Publisher
	if hub != nil {
		publisher = hub
	}

	mux := http.NewServeMux()

	noteRepo := noteRepository.NewNoteRepository(db)
	noteSvc := noteService.NewNoteService(noteRepo, publisher, noteService.Options{
		Accounts:        cfg.Accounts,
		StrictOwnership: cfg.StrictOwnership,
	})
	notes := noteHandler.NewNoteHandler(noteSvc, view)

	// auth guards a route only when accounts are enabled.
	auth := func(h http.HandlerFunc) http.Handler {
		if cfg.Accounts {
			return middleware.RequireAuth(h)
		}
		return h
	}

	mux.HandleFunc("GET /{$}", notes.List)
	mux.HandleFunc("POST /{$}", notes.List)
	mux.Handle("GET /create-note", auth(notes.CreateNote))
	mux.Handle("POST /create-note", auth(notes.CreateNote))
	mux.Handle("GET /note/{id}", auth(notes.Note))
	mux.Handle("POST /note/{id}", auth(notes.Note))
	mux.HandleFunc("GET /delete/{id}", notes.Delete)
	mux.HandleFunc("GET /", view.NotFound)

	if hub != nil {
		mux.Handle("GET /ws", auth(func(w http.ResponseWriter, r *http.Request) {
			socket.ServeWs(hub, w, r, middleware.UserID(r.Context()))
		}))
	}

	if !cfg.Accounts {
		return middleware.RequestLogger(middleware.Recoverer(mux)), nil
	}

	sessions := middleware.NewSessionManager(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookies)
	userRepo := userRepository.NewUserRepository(db)
	users := userHandler.NewUserHandler(userService.NewUserService(userRepo), sessions, view)

	mux.HandleFunc("GET /login", users.Login)
	mux.HandleFunc("POST /login", users.Login)
	mux.HandleFunc("GET /register", users.Register)
	mux.HandleFunc("POST /register", users.Register)
	mux.Handle("GET /dashboard", auth(users.Dashboard))
	mux.Handle("POST /dashboard", auth(users.Dashboard))
	mux.Handle("GET /logout", auth(users.Logout))
	mux.Handle("POST /logout", auth(users.Logout))
	mux.HandleFunc("POST /search", notes.Search)

	return middleware.RequestLogger(middleware.Recoverer(sessions.Authenticate(mux))), nil
}
