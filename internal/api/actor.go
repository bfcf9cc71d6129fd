package api

import (
	"encoding/json"
	"net/http"

	"chopline-be/internal/order"
	"chopline-be/internal/utils"
)

// requireActor pulls the authenticated actor off the context. The auth layer
// (external collaborator) put it there; handlers only check presence.
func requireActor(w http.ResponseWriter, r *http.Request) (order.Actor, bool) {
	id, ok := utils.GetActorIDFromContext(r.Context())
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(envelope{
			Error: &errorBody{Code: "unauthenticated", Message: "missing actor identity"},
		})
		return order.Actor{}, false
	}

	return order.Actor{
		ID:   id,
		Role: order.Role(utils.GetActorRoleFromContext(r.Context())),
	}, true
}
