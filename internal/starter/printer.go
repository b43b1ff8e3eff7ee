// Package starter holds the sinks a daily level start request is handed to.
package starter

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/models"
)

// Printer writes start requests to w. It is the starter used when no game
// host is configured.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Start(_ context.Context, req models.StartRequest) error {
	logger.Debug("start request", "session", req.SessionID, "route", req.Route, "level", req.LevelID)
	_, err := fmt.Fprintf(p.w, "→ %s: level %d (%s) for %s [session %s]\n",
		req.Route, req.LevelID, req.Mode, req.Day, req.SessionID)
	return err
}
