package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /api/user/signup", app.registerUserHandler)
	mux.HandleFunc("POST /api/user/login", app.loginUserHandler)
	mux.HandleFunc("POST /api/user/logout", app.requireAuthenticatedUser(app.logoutUserHandler))

	mux.HandleFunc("POST /api/task", app.requireAuthenticatedUser(app.createTaskHandler))
	mux.HandleFunc("GET /api/task", app.requireAuthenticatedUser(app.listTasksHandler))
	mux.HandleFunc("PATCH /api/task/{id}", app.requireAuthenticatedUser(app.updateTaskHandler))
	mux.HandleFunc("PATCH /api/task/toggle/{id}", app.requireAuthenticatedUser(app.toggleTaskHandler))
	mux.HandleFunc("DELETE /api/task/{id}", app.requireAuthenticatedUser(app.deleteTaskHandler))

	if len(app.config.cors.trustedOrigins) > 0 {
		return app.enableCORS(mux)
	}
	return mux
}
