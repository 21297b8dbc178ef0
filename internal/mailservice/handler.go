package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogsphere/internal/common"
	"golang.org/x/exp/rand"
)

const (
	welcomeTemplate = "welcome_email.html"
	consumerName    = "mailservice"

	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// SendWelcomeEmail consumes user.created events in the background and mails every
// new user. It returns once consumption has started.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserCreatedQueue, consumerName)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handle(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handle(msg amqp.Delivery) {
	var event common.UserCreatedEvent

	err := json.Unmarshal(msg.Body, &event)
	if err != nil || event.Email == "" {
		s.logger.Error("discarding malformed user.created message", slog.String("body", string(msg.Body)))
		_ = msg.Reject(false)
		return
	}

	payload := welcomeData{Name: event.Name, Email: event.Email}

	// using exponential backoff with jitter
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = s.m.send(event.Email, payload, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			_ = msg.Ack(false)
			return
		}
		if attempt == s.maxRetries-1 {
			break
		}

		delay := s.backoff(attempt)
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			// leave it for redelivery after restart
			_ = msg.Nack(false, true)
			return
		}
	}

	s.logger.Error("could not send welcome email", slog.String("email", event.Email), slog.String("error", err.Error()))
	_ = msg.Ack(false)
}

// backoff returns a random delay in [0, baseDelay*2^attempt).
func (s *MailService) backoff(attempt int) time.Duration {
	ceiling := int64(s.baseDelay) << uint(attempt)
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(ceiling))
}

// Close stops consuming and waits for the message in flight.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
