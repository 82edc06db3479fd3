package subscription

import (
	"net/http"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/repository"
)

// StatsHandler reports a subscription's item/unread counts.
type StatsHandler struct{ Items repository.ItemRepository }

// ServeHTTP returns a subscription's total and unread item counts.
// @Summary      Get subscription item stats
// @Description  Returns a subscription's total and unread item counts.
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} StatsDTO
// @Failure      400 {string} string "Bad request - missing subscription id"
// @Failure      500 {string} string "Internal server error"
// @Router       /subscriptions/{id}/stats [get]
func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	total, unread, err := h.Items.CountBySubscription(r.Context(), entity.SubscriptionID(id))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, StatsDTO{Total: total, Unread: unread})
}
