// Package lognotifier is a notifier.Gateway that only logs events. It backs
// local development and the memory storage backend, where no broker runs.
package lognotifier

import (
	"context"
	"log/slog"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/notifier"
)

type Gateway struct {
	log *slog.Logger
}

func NewGateway(log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{log: log}
}

func (g *Gateway) NotifyUser(_ context.Context, userID domain.UserID, ev notifier.Event) error {
	g.log.Info("notify user",
		"event", string(ev.Kind),
		"user", string(userID),
		"ride", string(ev.RideID),
		"actor", string(ev.ActorID))
	return nil
}

func (g *Gateway) NotifyRideMembers(_ context.Context, rideID domain.RideID, exclude domain.UserID, ev notifier.Event) error {
	g.log.Info("notify ride members",
		"event", string(ev.Kind),
		"ride", string(rideID),
		"exclude", string(exclude),
		"actor", string(ev.ActorID))
	return nil
}
