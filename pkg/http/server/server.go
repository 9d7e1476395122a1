package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Port           int
	Timeout        time.Duration
	MaxUploadBytes int64
}

// New. http.Server bound to ctx. write timeout leaves room for a full match request.
func New(ctx context.Context, handler http.Handler, config Config) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:       config.Timeout,
		WriteTimeout:      config.Timeout + 10*time.Second,
		IdleTimeout:       2 * config.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
