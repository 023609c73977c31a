package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Health returns a plain 200 OK body, used by load balancers to decide
// whether to route to this node (§4.J).
func (h *ViralClipHandlersCollection) Health() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		writeResponseBody(w, "", []byte("OK"))
	}
}
