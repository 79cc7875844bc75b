// Package web serves the JSON API on Config.Web.Addr.
package web

import (
	"context"

	"calassist/internal/communicators"
	"calassist/internal/gateway"
	"calassist/internal/webui"
)

func init() {
	communicators.Register(&Adapter{})
}

type Adapter struct {
	// Addr overrides the configured listen address when set.
	Addr string
}

func (a *Adapter) ID() string {
	return "web"
}

func (a *Adapter) Start(ctx context.Context, gw *gateway.Gateway) error {
	addr := a.Addr
	if addr == "" {
		addr = gw.Config.Web.Addr
	}
	return webui.NewServer(ctx, gw, addr).Start(ctx)
}
