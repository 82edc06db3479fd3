package subscription

import (
	"net/http"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/repository"
)

// ItemsHandler lists the items stored for a subscription.
type ItemsHandler struct{ Items repository.ItemRepository }

// ServeHTTP lists a subscription's items.
// @Summary      List subscription items
// @Description  Returns every item currently stored for a subscription (cache-limit enforcement already applied).
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {array} ItemDTO
// @Failure      400 {string} string "Bad request - missing subscription id"
// @Failure      500 {string} string "Internal server error"
// @Router       /subscriptions/{id}/items [get]
func (h ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	items, err := h.Items.ListBySubscription(r.Context(), entity.SubscriptionID(id))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, itemFromEntity(it))
	}

	respond.JSON(w, http.StatusOK, dtos)
}
