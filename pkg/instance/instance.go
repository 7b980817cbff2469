package instance

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// EnvWorkerID overrides the generated worker identity.
const EnvWorkerID = "VENDORRS_WORKER_ID"

// ID identifies this process when it holds a shared lease. The explicit
// env value wins, then the hostname suffixed with a short random tag so two
// replicas on one host never collide.
func ID() string {
	if id := strings.TrimSpace(os.Getenv(EnvWorkerID)); id != "" {
		return id
	}
	suffix := uuid.NewString()[:8]
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "worker-" + suffix
	}
	return host + "-" + suffix
}
