package job

import (
	"net/http"

	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/infra/runner"
)

// CancelHandler cancels every queued or in-flight job owned by an owner.
// Cancellation in the runner is owner-keyed, not job-id-keyed: a job's
// owner is the subscription id it fetches for (entity.UpdateRequest.Owner).
type CancelHandler struct{ Runner *runner.Runner }

// ServeHTTP cancels jobs owned by owner.
// @Summary      Cancel jobs by owner
// @Description  Cancels every queued or running job owned by the given owner (typically a subscription id).
// @Tags         jobs
// @Produce      json
// @Param        owner path string true "Job owner"
// @Success      204 "No content"
// @Failure      400 {string} string "Bad request - missing owner"
// @Router       /jobs/{owner}/cancel [post]
func (h CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, err := pathutil.ExtractStringID(r.URL.Path, "/jobs/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	h.Runner.CancelByOwner(owner)
	w.WriteHeader(http.StatusNoContent)
}
