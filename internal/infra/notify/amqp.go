package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"daily-quiz-service/internal/app"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKeySessionStarted is the topic session-start events are published under.
const RoutingKeySessionStarted = "quiz.session.started"

// AMQPNotifier publishes session-start events to a topic exchange.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPNotifier(amqpURL, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange}, nil
}

func (n *AMQPNotifier) NotifySessionStart(ctx context.Context, event app.SessionStartEvent) error {
	msg, err := sessionStartedMessage(event)
	if err != nil {
		return err
	}
	return n.channel.PublishWithContext(ctx, n.exchange, RoutingKeySessionStarted, false, false, msg)
}

func (n *AMQPNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}

func sessionStartedMessage(event app.SessionStartEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(map[string]interface{}{
		"type":    RoutingKeySessionStarted,
		"payload": event,
	})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.SessionID,
		Timestamp:    event.StartedAt,
		Body:         body,
	}, nil
}
