// infrastructure/analysis_notifiers.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vitovidale/video-upload-gateway/domain"
)

// HTTPAnalysisNotifier calls POST {base}/api/v1/analyze/video/{id}/ on the
// analysis service.
type HTTPAnalysisNotifier struct {
	baseURL string
	client  *http.Client
}

var _ domain.AnalysisNotifier = (*HTTPAnalysisNotifier)(nil)

func NewHTTPAnalysisNotifier(baseURL string, client *http.Client) *HTTPAnalysisNotifier {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPAnalysisNotifier{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (n *HTTPAnalysisNotifier) analyzeURL(videoID string) string {
	return n.baseURL + "/api/v1/analyze/video/" + url.PathEscape(videoID) + "/"
}

func (n *HTTPAnalysisNotifier) Notify(ctx context.Context, msg domain.VideoAnalysisMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.analyzeURL(msg.VideoID), nil)
	if err != nil {
		return fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analysis service returned %s", resp.Status)
	}
	return nil
}

// RabbitMQAnalysisNotifier publishes a JSON VideoAnalysisMessage to a durable queue.
type RabbitMQAnalysisNotifier struct {
	conn  *amqp.Connection
	queue string
}

var _ domain.AnalysisNotifier = (*RabbitMQAnalysisNotifier)(nil)

// RabbitMQURL builds an amqp:// URL from its parts.
func RabbitMQURL(user, pass, host, port string) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(user, pass),
		Host:   host + ":" + port,
		Path:   "/",
	}
	return u.String()
}

func NewRabbitMQAnalysisNotifier(amqpURL, queue string) (*RabbitMQAnalysisNotifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &RabbitMQAnalysisNotifier{conn: conn, queue: queue}, nil
}

func (n *RabbitMQAnalysisNotifier) Notify(ctx context.Context, msg domain.VideoAnalysisMessage) error {
	pub, err := analysisPublishing(msg)
	if err != nil {
		return err
	}
	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		return fmt.Errorf("failed to publish analysis message: %w", err)
	}
	return nil
}

// Connected reports whether the broker connection is still open.
func (n *RabbitMQAnalysisNotifier) Connected() bool {
	return n.conn != nil && !n.conn.IsClosed()
}

func (n *RabbitMQAnalysisNotifier) Close() error {
	return n.conn.Close()
}

func analysisPublishing(msg domain.VideoAnalysisMessage) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.VideoID,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	}, nil
}

// NopAnalysisNotifier only logs. Used when no analysis service is configured.
type NopAnalysisNotifier struct {
	Logger hclog.Logger
}

func (n NopAnalysisNotifier) Notify(_ context.Context, msg domain.VideoAnalysisMessage) error {
	if n.Logger != nil {
		n.Logger.Debug("analysis notifications disabled", "video_id", msg.VideoID)
	}
	return nil
}
