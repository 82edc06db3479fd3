package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/requestid"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/infra/runner"
	"feedcore/internal/observability/logging"
	"feedcore/internal/repository"
	"feedcore/internal/usecase/update"
)

var errInvalidBody = errors.New("invalid request body: subscription_id is required")

// SubmitHandler submits a subscription's fetch request onto the runner
// outside of the scheduler's own tick, mirroring the scheduler's own
// submit/onResult wiring (usecase/scheduler.Scheduler).
type SubmitHandler struct {
	Subs    repository.SubscriptionRepository
	Runner  *runner.Runner
	Updater *update.Updater
}

// ServeHTTP submits a fetch job for a subscription.
// @Summary      Submit a fetch job
// @Description  Builds an update request for a subscription and submits it to the job runner. The result is processed asynchronously.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        request body SubmitRequest true "Subscription to fetch"
// @Success      202 {object} SubmitResponse
// @Failure      400 {string} string "Bad request - missing or invalid subscription id"
// @Failure      404 {string} string "Not found - subscription does not exist"
// @Failure      422 {string} string "Unprocessable - subscription is discontinued"
// @Router       /jobs [post]
func (h SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
	reqID := requestid.FromContext(ctx)

	var body SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SubscriptionID == "" {
		respond.SafeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	subID := entity.SubscriptionID(body.SubscriptionID)
	sub, err := h.Subs.Get(ctx, subID)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}

	req, err := h.Updater.PrepareRequest(sub)
	if err != nil {
		respond.SafeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	j := h.Runner.Submit(req, true, func(result *entity.UpdateResult, err error) {
		bg := context.Background()
		if err != nil {
			logger.Warn("job submit fetch failed", "subscription", string(subID), "error", err.Error(), "request_id", reqID)
			return
		}
		outcome, procErr := h.Updater.ProcessResult(bg, sub, result, time.Now())
		if procErr != nil {
			logger.Error("job submit process result failed", "subscription", string(subID), "error", procErr.Error(), "request_id", reqID)
			return
		}
		dto := outcomeFromUpdate(body.SubscriptionID, outcome)
		logger.Info("job submit completed", "subscription", dto.SubscriptionID, "new", dto.NewCount, "updated", dto.UpdatedCount, "retryable", dto.Retryable, "request_id", reqID)
	})

	respond.JSON(w, http.StatusAccepted, SubmitResponse{
		JobID:          j.ID,
		Owner:          j.Owner,
		SubscriptionID: body.SubscriptionID,
	})
}
