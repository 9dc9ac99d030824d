package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/logger"
)

// subjectPrefix namespaces all direct-message subjects.
const subjectPrefix = "dm"

// Config holds NATS connection configuration.
type Config struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// NATSTransport implements Transport on core NATS. Core (non-JetStream)
// publish is at-most-once, which matches the delivery contract exactly.
type NATSTransport struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes a connection to the NATS server.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*NATSTransport, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error("NATS error", zap.Error(err))
		}),
	}

	if cfg.CAFile != "" && cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsConfig, err := createTLSConfig(cfg.CAFile, cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSTransport{conn: nc, logger: log}, nil
}

// subject maps a channel and event kind onto a NATS subject. Channel names
// are derived from user ids; subject-reserved characters are replaced so both
// sides of the pair still land on the same subject.
func subject(channel string, event model.EventKind) string {
	r := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")
	return subjectPrefix + "." + r.Replace(channel) + "." + string(event)
}

// Publish sends one event to a channel.
func (t *NATSTransport) Publish(ctx context.Context, channel string, event model.EventKind, payload []byte) error {
	return t.conn.Publish(subject(channel, event), payload)
}

// Subscribe returns a stream of the channel's events. The subscription covers
// every event kind on the channel; the kind is recovered from the subject.
func (t *NATSTransport) Subscribe(ctx context.Context, channel string) (<-chan model.Event, func(), error) {
	events := make(chan model.Event, 64)
	stopped := make(chan struct{})

	sub, err := t.conn.Subscribe(subject(channel, "*"), func(msg *nats.Msg) {
		tokens := strings.Split(msg.Subject, ".")
		kind := model.EventKind(tokens[len(tokens)-1])

		select {
		case <-stopped:
		case events <- model.Event{Kind: kind, Payload: msg.Data}:
		default:
			// Slow subscriber; dropping is fine, history re-fetch is the
			// correctness backstop.
			t.logger.Warn("dropping event for slow subscriber", zap.String("channel", channel))
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	unsubscribe := func() {
		_ = sub.Unsubscribe()
		close(stopped)
	}

	return events, unsubscribe, nil
}

// IsConnected reports whether the transport is connected.
func (t *NATSTransport) IsConnected() bool {
	return t.conn != nil && t.conn.IsConnected()
}

// Close closes the NATS connection.
func (t *NATSTransport) Close() {
	if t.conn != nil {
		t.conn.Close()
	}
}

func createTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
