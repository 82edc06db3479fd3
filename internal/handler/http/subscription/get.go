package subscription

import (
	"errors"
	"net/http"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/repository"
)

// GetHandler resolves a single subscription by id.
type GetHandler struct{ Subs repository.SubscriptionRepository }

// ServeHTTP returns a subscription by id.
// @Summary      Get subscription
// @Description  Returns a single subscription's fetch contract and last-error state.
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - missing subscription id"
// @Failure      404 {string} string "Not found - subscription does not exist"
// @Router       /subscriptions/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	sub, err := h.Subs.Get(r.Context(), entity.SubscriptionID(id))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNodeNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, fromEntity(sub))
}
