package subscription

import (
	"net/http"

	"feedcore/internal/handler/http/respond"
	"feedcore/internal/repository"
)

// DueHandler lists subscriptions that are due candidates for the scheduler.
type DueHandler struct{ Subs repository.SubscriptionRepository }

// ServeHTTP lists subscriptions returned by the repository's due-candidate
// query. The repository does no interval math; a candidate here is not
// necessarily due yet, the scheduler applies EffectiveInterval itself.
// @Summary      List due-candidate subscriptions
// @Description  Returns the subscriptions the scheduler considers as due-check candidates (non-discontinued). Interval math is not applied here.
// @Tags         subscriptions
// @Produce      json
// @Success      200 {array} DTO
// @Failure      500 {string} string "Internal server error"
// @Router       /subscriptions/due [get]
func (h DueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Subs.ListDue(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(subs))
	for _, s := range subs {
		dtos = append(dtos, fromEntity(s))
	}

	respond.JSON(w, http.StatusOK, dtos)
}
