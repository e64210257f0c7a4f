package http

import (
	"net/http"

	"logbridge/internal/handler/http/respond"
)

// StatusResponse is the body of the root status endpoint.
type StatusResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	ClientID     string `json:"client_id"`
	ZabbixTarget string `json:"zabbix_target"`
	Version      string `json:"version"`
}

// StatusHandler answers the root endpoint with a static identity snapshot of
// this bridge instance, so probes can verify they talk to the right tenant.
type StatusHandler struct {
	ClientID     string
	ZabbixTarget string
	Version      string
}

func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, StatusResponse{
		Status:       "running",
		Service:      "Remote Log Server",
		ClientID:     h.ClientID,
		ZabbixTarget: h.ZabbixTarget,
		Version:      h.Version,
	})
}
