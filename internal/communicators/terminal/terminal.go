// Package terminal serves the full-screen two-pane interface.
package terminal

import (
	"context"

	"calassist/internal/communicators"
	"calassist/internal/gateway"
	"calassist/internal/tui"
)

func init() {
	communicators.Register(Adapter{})
}

type Adapter struct{}

func (Adapter) ID() string {
	return "tui"
}

func (Adapter) Start(ctx context.Context, gw *gateway.Gateway) error {
	return tui.Run(ctx, gw)
}
