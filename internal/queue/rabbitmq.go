package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type QueueName string

const (
	QueueCertificateGenerate QueueName = "certificate_generate_queue"
	QueueCertificateMail     QueueName = "certificate_mail_queue"
)

const (
	MAX_QUEUE_RETRY = 3
)

// DeadLetter is where a job lands once it is nacked without requeue.
func (q QueueName) DeadLetter() QueueName {
	return q + "_dead"
}

// queueArgs routes rejected messages of q to its dead letter queue through the default exchange.
func queueArgs(q QueueName) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": string(q.DeadLetter()),
	}
}

// publisher is the part of RabbitMQ the workers need to requeue a job.
type publisher interface {
	Publish(ctx context.Context, routingKey QueueName, body []byte) error
}

// RabbitMQ publishes on one shared channel and opens a channel per consumer so prefetch
// settings of the two consumers do not interfere.
type RabbitMQ struct {
	conn *amqp.Connection

	mu      sync.Mutex
	channel *amqp.Channel

	consumers []*amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	for _, name := range []QueueName{QueueCertificateGenerate, QueueCertificateMail} {
		// durable, not auto deleted, not exclusive, wait for the broker
		if _, err := ch.QueueDeclare(string(name.DeadLetter()), true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name.DeadLetter(), err)
		}
		if _, err := ch.QueueDeclare(string(name), true, false, false, false, queueArgs(name)); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, ch := range r.consumers {
		errs = append(errs, ch.Close())
	}
	r.consumers = nil
	errs = append(errs, r.channel.Close(), r.conn.Close())
	return errors.Join(errs...)
}

func (r *RabbitMQ) Publish(ctx context.Context, routingKey QueueName, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.PublishWithContext(
		ctx,
		"", // default exchange
		string(routingKey),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			// survive a broker restart
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

// Consume opens a dedicated channel whose prefetch equals the worker count, so every worker
// holds at most one unacknowledged job.
// Docs: https://www.rabbitmq.com/tutorials/tutorial-two-go#fair-dispatch
func (r *RabbitMQ) Consume(queueName QueueName, workers int) (<-chan amqp.Delivery, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(max(workers, 1), 0, false); err != nil {
		ch.Close()
		return nil, err
	}

	// manual ack, shared, no-local and no-wait off
	deliveries, err := ch.Consume(string(queueName), "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	r.mu.Lock()
	r.consumers = append(r.consumers, ch)
	r.mu.Unlock()

	return deliveries, nil
}

func ack(delivery amqp.Delivery) error {
	return delivery.Ack(false)
}

// nack without requeue dead letters the job.
func nack(delivery amqp.Delivery, requeue bool) error {
	return delivery.Nack(false, requeue)
}
