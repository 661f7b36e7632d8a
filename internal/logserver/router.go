package logserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/logger"
	"github.com/Tiliavir/adolog/internal/model"
)

// NewRouter serves the time log API on top of store.
func NewRouter(store Store, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		renderJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/getLogs", handleGetLogs(store, log)).Methods(http.MethodGet)
	api.Handle("/addLog", handleAddLog(store, log)).Methods(http.MethodPost)
	api.Handle("/updateLog", handleUpdateLog(store, log)).Methods(http.MethodPost)

	r.Use(loggerMiddleware(log))
	return r
}

func handleGetLogs(store Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date := q.Get("date")
		if date != "" {
			if _, err := time.Parse(model.DateLayout, date); err != nil {
				renderError(w, ValidationErrorType, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}

		entries, err := store.List(r.Context(), q.Get("developer"), date)
		if err != nil {
			log.Error("listing logs failed", "error", err)
			renderError(w, ServiceErrorType, "could not list logs", http.StatusInternalServerError)
			return
		}
		renderJSON(w, entries)
	}
}

func handleAddLog(store Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := bindAndValidate[gateway.LogEntry](w, r)
		if err != nil {
			return
		}
		entry.LogID = ""

		id, err := store.Add(r.Context(), entry)
		if err != nil {
			log.Error("adding log failed", "error", err)
			renderError(w, ServiceErrorType, "could not add log", http.StatusInternalServerError)
			return
		}
		jsonWithStatus(w, gateway.AddLogResponse{LogID: id}, http.StatusCreated)
	}
}

func handleUpdateLog(store Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := bindAndValidate[gateway.LogUpdate](w, r)
		if err != nil {
			return
		}

		err = store.Update(r.Context(), update)
		switch {
		case errors.Is(err, ErrNotFound):
			renderError(w, NotFoundErrorType, "log "+update.LogID.String()+" does not exist", http.StatusNotFound)
		case err != nil:
			log.Error("updating log failed", "log_id", update.LogID.String(), "error", err)
			renderError(w, ServiceErrorType, "could not update log", http.StatusInternalServerError)
		default:
			renderJSON(w, gateway.AddLogResponse{LogID: update.LogID})
		}
	}
}
