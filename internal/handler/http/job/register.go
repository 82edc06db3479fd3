package job

import (
	"net/http"

	"feedcore/internal/infra/runner"
	"feedcore/internal/repository"
	"feedcore/internal/usecase/update"
)

// Register registers the job control routes with mux.
func Register(mux *http.ServeMux, subs repository.SubscriptionRepository, r *runner.Runner, updater *update.Updater) {
	mux.Handle("POST /jobs/{owner}/cancel", CancelHandler{Runner: r})
	mux.Handle("POST /jobs", SubmitHandler{Subs: subs, Runner: r, Updater: updater})
}
