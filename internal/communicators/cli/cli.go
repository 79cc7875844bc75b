// Package cli serves the line-oriented chat on stdin and stdout.
package cli

import (
	"context"
	"io"
	"os"

	"calassist/internal/communicators"
	"calassist/internal/gateway"
)

func init() {
	communicators.Register(&Adapter{In: os.Stdin, Out: os.Stdout})
}

type Adapter struct {
	In  io.Reader
	Out io.Writer
}

func (a *Adapter) ID() string {
	return "cli"
}

func (a *Adapter) Start(ctx context.Context, gw *gateway.Gateway) error {
	return gw.Run(ctx, a.In, a.Out)
}
