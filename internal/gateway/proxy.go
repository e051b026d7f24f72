package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/snetlabs/social-network/config"
	"github.com/snetlabs/social-network/internal/api"
)

// Proxy relays requests to the user service, passing bodies, the
// Authorization header and response status through verbatim. A transport
// failure maps to 503; everything else is the upstream's answer.
type Proxy struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewProxy(cfg config.GatewayConfig, logger *slog.Logger) *Proxy {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Proxy{
		baseURL: strings.TrimRight(cfg.UserServiceURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		logger: logger,
	}
}

// Relay returns a handler that forwards the request to the user service at
// /api/v1 + targetPath.
func (p *Proxy) Relay(targetPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		targetURL := p.baseURL + "/api/v1" + targetPath

		l := p.logger.With(
			slog.String("handler", "Relay"),
			slog.String("method", r.Method),
			slog.String("target", targetURL),
		)

		req, err := http.NewRequestWithContext(ctx, r.Method, targetURL, r.Body)
		if err != nil {
			l.ErrorContext(ctx, "Failed to build upstream request", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to build upstream request")
			return
		}

		if auth := r.Header.Get("Authorization"); auth != "" {
			req.Header.Set("Authorization", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		req.ContentLength = r.ContentLength

		resp, err := p.client.Do(req)
		if err != nil {
			l.WarnContext(ctx, "User service unreachable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			l.WarnContext(ctx, "Failed to copy upstream response", slog.Any("error", err))
		}
	}
}
