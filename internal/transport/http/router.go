package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"feedbacker-service/internal/app"
)

// Container holds the services the router exposes.
type Container struct {
	Store   app.Store
	Host    *app.HostService
	Players *app.PlayerService
	Stats   *app.StatsService
}

// NewRouter builds the host API plus the player and presenter sockets.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	host := NewHostHandler(c.Host, c.Stats)
	players := NewPlayerHandler(c.Players, c.Store)
	presenters := NewPresenterHandler(c.Store)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws/player", players.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/ws/presenter", presenters.ServeWS).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/event", host.Event).Methods(http.MethodGet)
	api.HandleFunc("/event/branding", host.UpdateBranding).Methods(http.MethodPut)
	api.HandleFunc("/event/intro", host.UpdateIntro).Methods(http.MethodPut)
	api.HandleFunc("/event/carousel", host.UpdateCarousel).Methods(http.MethodPut)
	api.HandleFunc("/event/prize", host.SetPrizeEnabled).Methods(http.MethodPut)
	api.HandleFunc("/event/prize/email-page", host.UpdatePrizeEmailPage).Methods(http.MethodPut)
	api.HandleFunc("/event/prize/claim-page", host.UpdatePrizeClaimPage).Methods(http.MethodPut)
	api.HandleFunc("/event/validation", host.Validate).Methods(http.MethodGet)
	api.HandleFunc("/event/publish", host.Publish).Methods(http.MethodPost)
	api.HandleFunc("/event/unpublish", host.Unpublish).Methods(http.MethodPost)

	api.HandleFunc("/objects", host.AddObject).Methods(http.MethodPost)
	api.HandleFunc("/objects/{id}", host.UpdateObject).Methods(http.MethodPatch)
	api.HandleFunc("/objects/{id}", host.DeleteObject).Methods(http.MethodDelete)
	api.HandleFunc("/objects/{id}/questions", host.AddQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/{id}", host.UpdateQuestion).Methods(http.MethodPatch)
	api.HandleFunc("/questions/{id}", host.DeleteQuestion).Methods(http.MethodDelete)

	api.HandleFunc("/stats", host.Stats).Methods(http.MethodGet)
	api.HandleFunc("/responses/reset", host.ResetResponses).Methods(http.MethodPost)
	api.HandleFunc("/prize/submissions", host.PrizeSubmissions).Methods(http.MethodGet)
	api.HandleFunc("/prize/submissions/reset", host.ClearPrizeSubmissions).Methods(http.MethodPost)

	return r
}
