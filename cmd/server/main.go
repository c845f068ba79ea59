package main

import (
	"log"
	"net/http"

	"github.com/teampulse-app/teampulse/internal/api"
	"github.com/teampulse-app/teampulse/internal/db"
	"github.com/teampulse-app/teampulse/internal/llm"
	"github.com/teampulse-app/teampulse/internal/middleware"
	"github.com/teampulse-app/teampulse/internal/services"
	"github.com/teampulse-app/teampulse/internal/utils"
)

func main() {
	addr := utils.Env("ADDR", ":8080")
	version := utils.Env("COMMIT", "dev")

	var store api.Store
	if path := utils.Env("SQLITE_PATH", ""); path != "" {
		sqlStore, err := db.Open(path)
		if err != nil {
			log.Fatalf("open sqlite store: %v", err)
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Printf("using sqlite store at %s", path)
	} else {
		store = api.NewMemoryStore()
		log.Printf("using in-memory store (set TEAMPULSE_SQLITE_PATH to persist)")
	}

	var extractor services.RatingExtractor
	if key := utils.Env("OPENAI_KEY", ""); key != "" {
		extractor = llm.New(key, utils.Env("OPENAI_MODEL", ""))
		log.Printf("chat interviews use the OpenAI extractor")
	} else {
		extractor = services.StaticExtractor{}
		log.Printf("TEAMPULSE_OPENAI_KEY not set; chat interviews use the static extractor")
	}

	router := api.NewRouter(store, extractor, middleware.SignToken, version)
	if err := router.SeedOccupations(); err != nil {
		log.Fatalf("seed occupations: %v", err)
	}

	mux := http.NewServeMux()
	router.Register(mux)

	// Serve the dashboard frontend when a build is available.
	if staticDir := utils.Env("STATIC_DIR", ""); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.SecureHeaders(middleware.CORS(middleware.NoStore(middleware.WithAuth(mux))))

	log.Printf("teampulse server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
