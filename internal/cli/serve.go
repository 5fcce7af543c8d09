package cli

import (
	"net/http"

	"github.com/aretw0/crossflow"
	httpAdapter "github.com/aretw0/crossflow/internal/adapters/http"
	"github.com/aretw0/crossflow/internal/cache"
)

// ServeOptions carries the serve command inputs.
type ServeOptions struct {
	User  string
	Debug bool

	Config *Config
}

// BuildServerHandler assembles the HTTP handler for serve mode: the
// stateless translator plus the optional Redis artifact cache.
func BuildServerHandler(opts ServeOptions) (http.Handler, func() error, error) {
	conv, err := newConverter("", opts.User, "", opts.Config, opts.Debug)
	if err != nil {
		return nil, nil, err
	}

	serverOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(createLogger(opts.Debug)),
		httpAdapter.WithVersion(crossflow.Version),
	}

	cleanup := func() error { return nil }
	if opts.Config != nil && opts.Config.Redis.Enabled {
		store := cache.New(opts.Config.Redis.Addr, opts.Config.Redis.Password, opts.Config.Redis.DB)
		serverOpts = append(serverOpts, httpAdapter.WithCache(store))
		cleanup = store.Close
	}

	server := httpAdapter.NewServer(conv, serverOpts...)
	return server.Handler(), cleanup, nil
}
