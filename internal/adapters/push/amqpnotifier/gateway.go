// Package amqpnotifier publishes ride events to a RabbitMQ topic exchange.
// A downstream worker owns device tokens and turns the events into mobile
// push notifications; this service only emits them.
package amqpnotifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/campus-carpool/rides-api/internal/domain"
	"github.com/campus-carpool/rides-api/internal/ports/out/notifier"
)

const (
	// Exchange is the topic exchange ride events are published to.
	Exchange = "carpool.notifications"

	publishTimeout = 5 * time.Second
)

// Gateway is an AMQP implementation of notifier.Gateway.
type Gateway struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// wireEvent is the published payload. Exclude carries the acting user on
// ride-wide events so the consumer can skip notifying them about their own
// action.
type wireEvent struct {
	Kind    string `json:"kind"`
	RideID  string `json:"ride_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
	Exclude string `json:"exclude,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewGateway dials the broker and declares the exchange.
func NewGateway(url string) (*Gateway, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Gateway{conn: conn, ch: ch}, nil
}

func (g *Gateway) NotifyUser(ctx context.Context, userID domain.UserID, ev notifier.Event) error {
	return g.publish(ctx, "user."+string(userID), wireEvent{
		Kind:    string(ev.Kind),
		RideID:  string(ev.RideID),
		UserID:  string(userID),
		ActorID: string(ev.ActorID),
		Message: ev.Message,
	})
}

func (g *Gateway) NotifyRideMembers(ctx context.Context, rideID domain.RideID, exclude domain.UserID, ev notifier.Event) error {
	return g.publish(ctx, "ride."+string(rideID), wireEvent{
		Kind:    string(ev.Kind),
		RideID:  string(rideID),
		ActorID: string(ev.ActorID),
		Exclude: string(exclude),
		Message: ev.Message,
	})
}

func (g *Gateway) publish(ctx context.Context, routingKey string, ev wireEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = g.ch.PublishWithContext(pubCtx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (g *Gateway) Close() error {
	if g.ch != nil {
		_ = g.ch.Close()
	}
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}
