package subscription

import (
	"net/http"

	"feedcore/internal/repository"
)

// Register registers the subscription introspection routes with mux.
func Register(mux *http.ServeMux, subs repository.SubscriptionRepository, items repository.ItemRepository) {
	mux.Handle("GET /subscriptions/due", DueHandler{Subs: subs})
	mux.Handle("GET /subscriptions/{id}/items", ItemsHandler{Items: items})
	mux.Handle("GET /subscriptions/{id}/stats", StatsHandler{Items: items})
	mux.Handle("GET /subscriptions/{id}", GetHandler{Subs: subs})
}
