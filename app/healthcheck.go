package main

import "net/http"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     app.config.Version,
		},
	}

	if app.broker != nil && app.broker.IsClosed() {
		data["status"] = "degraded"
	}

	app.writeSuccess(w, r, http.StatusOK, "Service is healthy", data, nil)
}
