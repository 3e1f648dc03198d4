package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueClientAssigned     = "client.assigned"
	QueueClientAcknowledged = "client.acknowledged"
)

var amqpURL string

// Init включает публикацию событий. Пустой url оставляет публикацию выключенной.
func Init(url string) {
	amqpURL = url
}

// Publish отправляет событие в очередь. Ошибки логируются и возвращаются,
// но вызывающий код их игнорирует: события вторичны по отношению к записи в БД.
func Publish(ctx context.Context, queueName string, event any) error {
	if amqpURL == "" {
		return nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable-очередь, объявление идемпотентно
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
