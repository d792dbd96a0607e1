package cloudfunctions

import (
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/poltracker/poltracker/internal/config"
	"github.com/poltracker/poltracker/internal/handlers"
)

var (
	serverOnce sync.Once
	server     *handlers.Server
	serverErr  error
)

func init() {
	// Register HTTP function for Cloud Functions deployments
	functions.HTTP("PolTracker", PolTracker)
}

// PolTracker is the HTTP entry point. The server is built once per
// instance and reused across invocations so the in-process caches
// survive between requests.
func PolTracker(w http.ResponseWriter, r *http.Request) {
	serverOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			serverErr = err
			return
		}
		server, serverErr = handlers.NewServer(cfg)
	})
	if serverErr != nil {
		log.Printf("Failed to initialize server: %v", serverErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	server.HandleRequest(w, r)
}
