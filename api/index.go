package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"numgate/internal/app"
)

var entry = &lazyHandler{
	build: func() (http.Handler, error) {
		runtime, err := app.Build(app.Options{LoadDotEnv: false})
		if err != nil {
			return nil, err
		}
		return runtime.Handler, nil
	},
}

// Handler is the serverless entry point. The runtime, and with it the
// credential store, is built on the first request and kept for the life of
// the process.
func Handler(w http.ResponseWriter, r *http.Request) {
	entry.ServeHTTP(w, r)
}

// lazyHandler builds its handler once. A failed build is not retried.
type lazyHandler struct {
	build func() (http.Handler, error)

	once    sync.Once
	handler http.Handler
	err     error
}

func (l *lazyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.once.Do(func() {
		l.handler, l.err = l.build()
		if l.err != nil {
			log.Error().Err(l.err).Msg("bootstrap_failed")
		}
	})

	if l.err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "application bootstrap failed"})
		return
	}

	l.handler.ServeHTTP(w, r)
}
