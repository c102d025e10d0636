package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const giftKey = "fulfilment.gift"

// RabbitGiftCourier implements usecase.GiftCourier. Gift compensation is
// fulfilled by hand, so the instruction is published for an employee to
// pick up; it never touches the ledger or the order lines.
type RabbitGiftCourier struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitGiftCourier sets up the exchange, queue, and binding once at startup.
func NewRabbitGiftCourier(ch *amqp.Channel, exchange, giftQueue string) (*RabbitGiftCourier, error) {
	// 1. declare exchange (topic type, durable)
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	// 2. declare queue
	q, err := ch.QueueDeclare(
		giftQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	// 3. bind queue → exchange
	if err := ch.QueueBind(
		q.Name,
		giftKey,
		exchange,
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	// 4. enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitGiftCourier{ch: ch, exchange: exchange}, nil
}

// SendGiftInstruction publishes a gift-fulfilment instruction.
func (p *RabbitGiftCourier) SendGiftInstruction(ctx context.Context, msg usecase.GiftInstructionMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange, // exchange
		giftKey,    // routing key
		false,        // mandatory
		false,        // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

var _ usecase.GiftCourier = (*RabbitGiftCourier)(nil)
