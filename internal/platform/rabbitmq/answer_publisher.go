package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AnswerRequest is the queue payload asking the answer worker to generate
// a response for one question.
type AnswerRequest struct {
	QuestionID  uint   `json:"question_id"`
	SessionID   uint   `json:"session_id"`
	Content     string `json:"content"`
	Personality string `json:"personality"`
}

type AnswerPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAnswerPublisher(conn *amqp.Connection, queueName string) *AnswerPublisher {
	return &AnswerPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AnswerPublisher) Publish(ctx context.Context, req AnswerRequest) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal answer request failed: %w", err)
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
		return fmt.Errorf("publish answer request failed: %w", err)
	}
	return nil
}
