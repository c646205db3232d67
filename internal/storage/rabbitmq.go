package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"jobai-go/internal/config"
	"jobai-go/internal/logger"
	"jobai-go/internal/tracing"
)

var rabbitTracer = otel.Tracer("jobai-go/storage/rabbitmq")

const publishConfirmTimeout = 5 * time.Second

// Disposition tells the consumer what to do with a delivery after handling.
type Disposition int

const (
	// Ack removes the message.
	Ack Disposition = iota
	// Requeue nacks the message back onto the queue for a later retry.
	Requeue
	// Drop nacks without requeue; the message goes to the dead-letter exchange if any.
	Drop
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// MessageHandler processes one delivery body.
type MessageHandler func(ctx context.Context, body []byte) Disposition

// RabbitMQ publishes extraction events and consumes extraction requests.
type RabbitMQ struct {
	conn        *amqp.Connection
	channelPool sync.Pool
	mu          sync.Mutex
	exchangeMap map[string]bool
	queueMap    map[string]bool
	bindingMap  map[string]bool // "exchange:queue:routingKey"
	cfg         *config.RabbitMQConfig
}

// NewRabbitMQ dials the broker and verifies a channel can be opened.
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ config must not be nil")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL must not be empty")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		exchangeMap: make(map[string]bool),
		queueMap:    make(map[string]bool),
		bindingMap:  make(map[string]bool),
		cfg:         cfg,
	}
	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, err := conn.Channel()
			if err != nil {
				logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
				return nil
			}
			return ch
		},
	}

	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel")
	}
	mq.putChannel(testCh)

	logger.Info().Msg("connected to RabbitMQ")
	return mq, nil
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	if v := r.channelPool.Get(); v != nil {
		if ch, ok := v.(*amqp.Channel); ok && !ch.IsClosed() {
			return ch
		}
	}
	ch, err := r.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
		return nil
	}
	return ch
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

// Close closes the connection.
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// IsClosed reports whether the connection is gone.
func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

// EnsureExchange declares exchangeName once per process.
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange name must not be empty")
	}
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("refusing to declare default exchange %q", exchangeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exchangeMap[exchangeName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("failed to get RabbitMQ channel")
	}
	defer r.putChannel(ch)

	if err := ch.ExchangeDeclare(exchangeName, exchangeType, durable, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}
	r.exchangeMap[exchangeName] = true
	return nil
}

// EnsureQueue declares queueName once per process.
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queueMap[queueName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("failed to get RabbitMQ channel")
	}
	defer r.putChannel(ch)

	if _, err := ch.QueueDeclare(queueName, durable, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	r.queueMap[queueName] = true
	return nil
}

// BindQueue binds queueName to exchangeName with routingKey.
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	bindingKey := exchangeName + ":" + queueName + ":" + routingKey

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindingMap[bindingKey] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("failed to get RabbitMQ channel")
	}
	defer r.putChannel(ch)

	if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", queueName, exchangeName, err)
	}
	r.bindingMap[bindingKey] = true
	return nil
}

// EnsureTopology declares the events exchange and the extraction request queue.
func (r *RabbitMQ) EnsureTopology() error {
	if err := r.EnsureExchange(r.cfg.ResumeEventsExchange, "topic", true); err != nil {
		return err
	}
	if r.cfg.ExtractionQueue == "" {
		return nil
	}
	if err := r.EnsureQueue(r.cfg.ExtractionQueue, true); err != nil {
		return err
	}
	return r.BindQueue(r.cfg.ExtractionQueue, r.cfg.ResumeEventsExchange, r.cfg.ExtractionRoutingKey)
}

// PublishMessage publishes body with the current trace context in the headers.
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, body []byte, persistent bool) error {
	ctx, span := rabbitTracer.Start(ctx, "RabbitMQ.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", exchangeName),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		))
	defer span.End()

	ch := r.getChannel()
	if ch == nil {
		err := fmt.Errorf("failed to get RabbitMQ channel")
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return err
	}
	defer r.putChannel(ch)

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	if err := ch.Confirm(false); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	messageID := uuid.NewString()
	span.SetAttributes(attribute.String("messaging.message_id", messageID))

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		Headers:      headers,
		MessageId:    messageID,
		DeliveryMode: deliveryMode,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return fmt.Errorf("failed to publish to %s/%s: %w", exchangeName, routingKey, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, publishConfirmTimeout)
	defer cancel()
	acked, err := confirm.WaitContext(waitCtx)
	if err != nil {
		tracing.RecordRabbitMQTimeout(span, messageID, publishConfirmTimeout.String())
		return fmt.Errorf("publish to %s/%s not confirmed: %w", exchangeName, routingKey, err)
	}
	if !acked {
		tracing.RecordRabbitMQNack(span, messageID, "")
		return fmt.Errorf("publish to %s/%s nacked by broker", exchangeName, routingKey)
	}
	span.SetAttributes(attribute.Bool("messaging.rabbitmq.confirmed", true))
	return nil
}

// PublishJSON marshals data and publishes it.
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, body, persistent)
}

// PublishExtracted announces a finished extraction on the configured routing key.
func (r *RabbitMQ) PublishExtracted(ctx context.Context, event ExtractionEvent) error {
	return r.PublishJSON(ctx, r.cfg.ResumeEventsExchange, r.cfg.ExtractedRoutingKey, event, true)
}

// PublishExtractionRequest enqueues a PDF already stored in MinIO for the worker.
func (r *RabbitMQ) PublishExtractionRequest(ctx context.Context, msg ExtractionRequestMessage) error {
	return r.PublishJSON(ctx, r.cfg.ResumeEventsExchange, r.cfg.ExtractionRoutingKey, msg, true)
}

// StartConsumer consumes queueName with `workers` goroutines until ctx is cancelled.
// The returned channel is closed once every worker has exited.
func (r *RabbitMQ) StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler MessageHandler) (<-chan struct{}, error) {
	if workers <= 0 {
		workers = 1
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						logger.Warn().Str("queue", queueName).Msg("RabbitMQ delivery channel closed")
						return
					}
					r.handleDelivery(ctx, d, handler, worker)
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		ch.Close()
		close(done)
	}()

	logger.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Int("workers", workers).Msg("RabbitMQ consumer started")
	return done, nil
}

func (r *RabbitMQ) handleDelivery(ctx context.Context, d amqp.Delivery, handler MessageHandler, worker int) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(d.Headers))
	ctx, span := rabbitTracer.Start(ctx, "RabbitMQ.Consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.rabbitmq.routing_key", d.RoutingKey),
			attribute.Int("worker", worker),
		))
	defer span.End()

	disposition := handler(ctx, d.Body)
	span.SetAttributes(attribute.String("messaging.disposition", disposition.String()))

	var err error
	switch disposition {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		r.backoff(ctx)
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		logger.Error().Err(err).Str("disposition", disposition.String()).Msg("failed to settle delivery")
	}
}

// backoff waits retry_interval before a requeue so a failing message does not spin.
func (r *RabbitMQ) backoff(ctx context.Context) {
	d := config.GetDuration(r.cfg.RetryInterval, 0)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// amqpHeaderCarrier adapts amqp.Table to propagation.TextMapCarrier.
type amqpHeaderCarrier amqp.Table

var _ propagation.TextMapCarrier = amqpHeaderCarrier(nil)

func (c amqpHeaderCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c amqpHeaderCarrier) Set(key, value string) {
	c[key] = value
}

func (c amqpHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
