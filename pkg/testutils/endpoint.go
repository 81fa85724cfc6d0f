package testutils

import (
	"net/http"

	"certhub/api/endpoints"
	"certhub/pkg/helper"
)

// NewEndpointHandler returns handler serving endpoint under its path
func NewEndpointHandler(endpoint endpoints.Endpoint) http.Handler {
	handler := helper.NewEcho()
	endpoints.Route(handler, endpoint)

	return handler
}
