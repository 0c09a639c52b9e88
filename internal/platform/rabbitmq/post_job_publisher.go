package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"claira-social/internal/model"
)

type PostJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewPostJobPublisher(conn *amqp.Connection, queueName string) *PostJobPublisher {
	return &PostJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *PostJobPublisher) Publish(ctx context.Context, job model.PostPublishJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal post job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish post job failed: %w", err)
	}
	return nil
}
