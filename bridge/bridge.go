package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/viant/satgate/demo"
	"github.com/viant/satgate/event"
	"github.com/viant/satgate/protocol"
	"github.com/viant/satgate/remote"
	"github.com/viant/satgate/server"
	"github.com/viant/satgate/session"
	"github.com/viant/satgate/tool"
)

const instructions = "Authenticate with start, then confirm (solve the proof-of-work challenge, or pay the invoice and poll status). " +
	"Call charge before each paid downstream call and stop when it is denied."

// Bridge represents a configured satgate MCP server
type Bridge struct {
	options    *Options
	store      session.Store
	backend    protocol.Backend
	publisher  event.Publisher
	dispatcher *tool.Dispatcher
	server     *server.Server
	closers    []io.Closer
}

type redisClientProvider interface {
	Client() *redis.Client
}

// Dispatcher returns the tool dispatcher
func (b *Bridge) Dispatcher() *tool.Dispatcher {
	return b.dispatcher
}

// Server returns the MCP server
func (b *Bridge) Server() *server.Server {
	return b.server
}

// Serve runs the configured transport until it fails
func (b *Bridge) Serve(ctx context.Context) error {
	switch b.options.Transport {
	case TransportSSE, TransportStreamable:
		httpServer := b.server.HTTP(ctx, fmt.Sprintf(":%d", b.options.Port))
		log.Printf("satgate listening on %v (%v)", httpServer.Addr, b.options.Transport)
		return httpServer.ListenAndServe()
	default:
		return b.server.Stdio(ctx).ListenAndServe()
	}
}

// Close releases store and event resources
func (b *Bridge) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bridge) initStore(ctx context.Context) error {
	if b.options.RedisURL == "" {
		b.store = session.NewMemoryStore()
		return nil
	}
	store, err := session.NewRedisStore(ctx, b.options.RedisURL, session.DefaultRedisPrefix)
	if err != nil {
		return err
	}
	b.store = store
	b.closers = append(b.closers, store)
	return nil
}

func (b *Bridge) initBackend() {
	if b.options.IsDemo() {
		var options []demo.Option
		if b.options.PaymentDelay > 0 {
			options = append(options, demo.WithPaymentDelay(b.options.PaymentDelay))
		}
		b.backend = demo.New(b.store, options...)
		return
	}
	b.backend = remote.New(b.options.URL, remote.WithAPIKey(b.options.APIKey))
}

func (b *Bridge) initEvents(ctx context.Context) error {
	switch b.options.Events {
	case EventsMemory:
		pubSub := event.NewMemoryPubSub()
		b.closers = append(b.closers, pubSub)
		if err := event.Listen(ctx, pubSub, func(anEvent *event.Event) {
			log.Printf("session %v: quote=%v mode=%v calls=%v sats=%v", anEvent.Type, anEvent.QuoteID, anEvent.Mode, anEvent.CallsUsed, anEvent.SatsUsed)
		}); err != nil {
			return err
		}
		b.publisher = event.NewWatermillPublisher(pubSub)
	case EventsRedis:
		client, shared, err := b.redisClient()
		if err != nil {
			return err
		}
		publisher, err := event.NewRedisPublisher(client)
		if err != nil {
			return err
		}
		// the publisher closes its client, a client shared with the store is closed by the store
		if !shared {
			b.closers = append(b.closers, publisher)
		}
		b.publisher = publisher
	}
	return nil
}

// redisClient returns the session store client when it has one, otherwise a dedicated client
func (b *Bridge) redisClient() (client redis.UniversalClient, shared bool, err error) {
	if store, ok := b.store.(redisClientProvider); ok {
		return store.Client(), true, nil
	}
	options, err := redis.ParseURL(b.options.RedisURL)
	if err != nil {
		return nil, false, fmt.Errorf("invalid redis URL: %w", err)
	}
	return redis.NewClient(options), false, nil
}

// New creates a bridge
func New(ctx context.Context, options *Options) (*Bridge, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	ret := &Bridge{options: options}
	if err := ret.initStore(ctx); err != nil {
		return nil, err
	}
	ret.initBackend()
	if err := ret.initEvents(ctx); err != nil {
		_ = ret.Close()
		return nil, err
	}
	serviceOptions := []protocol.Option{protocol.WithDemo(options.IsDemo())}
	if ret.publisher != nil {
		serviceOptions = append(serviceOptions, protocol.WithPublisher(ret.publisher))
	}
	service := protocol.New(ret.backend, ret.store, serviceOptions...)
	registry := tool.NewRegistry()
	if err := service.Register(registry); err != nil {
		_ = ret.Close()
		return nil, err
	}
	ret.dispatcher = tool.New(registry)
	var err error
	if ret.server, err = server.New(ret.dispatcher, options.serverOptions()...); err != nil {
		_ = ret.Close()
		return nil, err
	}
	return ret, nil
}
