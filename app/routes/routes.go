package routes

import (
	"net/http"

	"chirp/app/controllers"
	"chirp/app/middleware"
	"chirp/app/services"

	"github.com/gorilla/mux"
)

// BasePath prefixes every procedure route.
const BasePath = "/api/trpc"

// Dependencies are the services the router hands to its controllers.
type Dependencies struct {
	Posts    *services.PostService
	Profiles *services.ProfileService
	Verifier middleware.TokenVerifier
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Authenticate(deps.Verifier))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}).Methods("GET")

	postController := controllers.NewPostController(deps.Posts)
	profileController := controllers.NewProfileController(deps.Profiles)

	// Procedure routes with JSON content type
	api := router.PathPrefix(BasePath).Subrouter()
	api.Use(middleware.ContentTypeJSON)

	api.HandleFunc("/post.create", postController.Create).Methods("POST")
	api.HandleFunc("/post.getAll", postController.GetAll).Methods("GET")
	api.HandleFunc("/post.getByAuthorId", postController.GetByAuthorID).Methods("GET")
	api.HandleFunc("/post.getById", postController.GetByID).Methods("GET")

	api.HandleFunc("/profile.getByUsername", profileController.GetByUsername).Methods("GET")

	return router
}
