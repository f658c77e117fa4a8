package gateway

import "go.uber.org/fx"

var Module = fx.Module("gateway",
	fx.Provide(func(c *HTTPClient) Client { return c }),
	fx.Provide(NewHTTPClient),
)
