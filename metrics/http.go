package metrics

import (
	"fmt"
	"net/http"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func ListenAndServe(promPort int) error {
	listen := fmt.Sprintf("0.0.0.0:%d", promPort)
	http.Handle("/metrics", promhttp.Handler())

	log.LogNoJobID(
		"starting prometheus metrics endpoint",
		"version", config.Version,
		"host", listen,
	)
	return http.ListenAndServe(listen, nil)
}
