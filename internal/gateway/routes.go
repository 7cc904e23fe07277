package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the gateway's HTTP surface.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.loggingMiddleware)
	router.Use(recoveryMiddleware)

	router.HandleFunc("/v1/classify", h.HandleClassify).Methods(http.MethodPost)
	router.HandleFunc("/v1/check", h.HandleCheck).Methods(http.MethodPost)
	router.HandleFunc("/v1/validate", h.HandleValidate).Methods(http.MethodPost)
	router.HandleFunc("/v1/robot/motion", h.HandleMotion).Methods(http.MethodPost)
	router.HandleFunc("/v1/robot/estop", h.HandleEstop).Methods(http.MethodPost)
	router.HandleFunc("/v1/robot/release", h.HandleReleaseEstop).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}
