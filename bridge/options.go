package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/satgate/server"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio      = "stdio"
	TransportSSE        = "sse"
	TransportStreamable = "streamable"

	EventsNone   = "none"
	EventsMemory = "memory"
	EventsRedis  = "redis"

	defaultURL  = "http://localhost:8080"
	defaultPort = 5000
)

// Options represents bridge configuration; flags and env win over the config file
type Options struct {
	URL          string        `short:"u" long:"url" env:"SATGATE_URL" description:"auth service base URL" yaml:"url"`
	APIKey       string        `short:"k" long:"api-key" env:"SATGATE_API_KEY" description:"bridge credential, demo mode when empty" yaml:"apiKey"`
	Demo         bool          `long:"demo" env:"SATGATE_DEMO" description:"simulate the auth service locally" yaml:"demo"`
	Transport    string        `short:"T" long:"transport" description:"MCP transport" choice:"stdio" choice:"sse" choice:"streamable" yaml:"transport"`
	Port         int           `short:"p" long:"port" description:"HTTP port of sse and streamable transports" yaml:"port"`
	RedisURL     string        `long:"redis" env:"SATGATE_REDIS_URL" description:"redis URL of the session store" yaml:"redis"`
	Events       string        `long:"events" description:"lifecycle event sink" choice:"none" choice:"memory" choice:"redis" yaml:"events"`
	PaymentDelay time.Duration `long:"payment-delay" description:"demo payment auto-completion delay" yaml:"paymentDelay"`
	ConfigURL    string        `short:"c" long:"config" description:"YAML or JSON config file URL" yaml:"-"`
	HTTP         *HTTPOptions  `no-flag:"true" yaml:"http"`
}

// HTTPOptions configures sse and streamable transports, config file only
type HTTPOptions struct {
	SSEURI        string       `yaml:"sseURI"`
	SSEMessageURI string       `yaml:"sseMessageURI"`
	StreamableURI string       `yaml:"streamableURI"`
	Cors          *server.Cors `yaml:"cors"`
}

// IsDemo returns true when the auth service is simulated
func (o *Options) IsDemo() bool {
	return o.Demo || o.APIKey == ""
}

// Load fills blank options from the config file, then applies defaults
func (o *Options) Load(ctx context.Context) error {
	if o.ConfigURL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, o.ConfigURL)
		if err != nil {
			return fmt.Errorf("failed to load config %v: %w", o.ConfigURL, err)
		}
		file := &Options{}
		if err = yaml.Unmarshal(data, file); err != nil {
			return fmt.Errorf("failed to decode config %v: %w", o.ConfigURL, err)
		}
		o.merge(file)
	}
	o.Init()
	return o.Validate()
}

func (o *Options) merge(file *Options) {
	if o.URL == "" {
		o.URL = file.URL
	}
	if o.APIKey == "" {
		o.APIKey = file.APIKey
	}
	if !o.Demo {
		o.Demo = file.Demo
	}
	if o.Transport == "" {
		o.Transport = file.Transport
	}
	if o.Port == 0 {
		o.Port = file.Port
	}
	if o.RedisURL == "" {
		o.RedisURL = file.RedisURL
	}
	if o.Events == "" {
		o.Events = file.Events
	}
	if o.PaymentDelay == 0 {
		o.PaymentDelay = file.PaymentDelay
	}
	if o.HTTP == nil {
		o.HTTP = file.HTTP
	}
}

// Init sets defaults
func (o *Options) Init() {
	if o.URL == "" {
		o.URL = defaultURL
	}
	if o.Transport == "" {
		o.Transport = TransportStdio
	}
	if o.Port == 0 {
		o.Port = defaultPort
	}
	if o.Events == "" {
		o.Events = EventsNone
	}
}

// Validate checks options consistency
func (o *Options) Validate() error {
	switch o.Transport {
	case TransportStdio, TransportSSE, TransportStreamable:
	default:
		return fmt.Errorf("unsupported transport: %v", o.Transport)
	}
	switch o.Events {
	case EventsNone, EventsMemory:
	case EventsRedis:
		if o.RedisURL == "" {
			return fmt.Errorf("redis events require a redis URL")
		}
	default:
		return fmt.Errorf("unsupported events sink: %v", o.Events)
	}
	if !o.IsDemo() && !strings.HasPrefix(o.URL, "http://") && !strings.HasPrefix(o.URL, "https://") {
		return fmt.Errorf("invalid auth service URL: %v", o.URL)
	}
	if o.PaymentDelay < 0 {
		return fmt.Errorf("payment delay must not be negative")
	}
	return nil
}

func (o *Options) serverOptions() []server.Option {
	ret := []server.Option{
		server.WithImplementation(schema.Implementation{Name: "satgate", Version: Version}),
		server.WithInstructions(instructions),
		server.WithStreamableHTTP(o.Transport == TransportStreamable),
		server.WithRootRedirect(true),
	}
	if o.HTTP == nil {
		return ret
	}
	if o.HTTP.SSEURI != "" {
		ret = append(ret, server.WithSSEURI(o.HTTP.SSEURI))
	}
	if o.HTTP.SSEMessageURI != "" {
		ret = append(ret, server.WithSSEMessageURI(o.HTTP.SSEMessageURI))
	}
	if o.HTTP.StreamableURI != "" {
		ret = append(ret, server.WithStreamableURI(o.HTTP.StreamableURI))
	}
	if o.HTTP.Cors != nil {
		ret = append(ret, server.WithCORS(o.HTTP.Cors))
	}
	return ret
}
