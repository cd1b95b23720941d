package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/pointperfect_bridge/internal/client"
)

// runStatus serves a JSON snapshot of the session state for
// diagnostics.
func runStatus(port int, pc *client.Client) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(pc.Status()); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("status server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("status server error: %v", err)
	}
}
