package http

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// HandlerConfig collects the pieces mounted on the root handler.
type HandlerConfig struct {
	Admin      *AdminAPI
	Public     *PublicAPI
	TrustProxy bool
	Logger     interfaces.Logger
}

// NewHandler registers the admin and public APIs on one mux and wraps it
// with request metadata, access logging and panic recovery.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Admin == nil && cfg.Public == nil {
		return nil, fmt.Errorf("http: at least one api is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	mux := http.NewServeMux()
	if cfg.Admin != nil {
		if err := cfg.Admin.Register(mux); err != nil {
			return nil, err
		}
	}
	if cfg.Public != nil {
		if err := cfg.Public.Register(mux); err != nil {
			return nil, err
		}
	}

	return Chain(mux,
		RequestMeta(cfg.TrustProxy),
		Recover(logger),
		AccessLog(logger),
	), nil
}
