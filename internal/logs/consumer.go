package logs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	arborlevels "github.com/ternarybob/arbor/levels"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/folio/internal/common"
)

// Broadcaster receives log lines destined for connected clients
type Broadcaster interface {
	BroadcastLogLine(timestamp, level, message string)
}

// Consumer consumes log batches from arbor's context channel and streams
// them to WebSocket clients. Filtering mirrors the websocket config:
// minimum level plus message exclude patterns.
type Consumer struct {
	broadcaster     Broadcaster
	logger          arbor.ILogger
	channel         chan []arbormodels.LogEvent
	done            chan struct{}
	wg              sync.WaitGroup
	minLevel        arborlevels.LogLevel
	excludePatterns []string
}

// NewConsumer creates a new log consumer
func NewConsumer(broadcaster Broadcaster, logger arbor.ILogger, wsConfig *common.WebSocketConfig) *Consumer {
	c := &Consumer{
		broadcaster: broadcaster,
		logger:      logger,
		channel:     make(chan []arbormodels.LogEvent, 10),
		done:        make(chan struct{}),
		minLevel:    arborlevels.InfoLevel,
	}

	if wsConfig != nil {
		c.minLevel = parseLogLevel(wsConfig.MinLevel)
		c.excludePatterns = wsConfig.ExcludePatterns
	}

	return c
}

// parseLogLevel converts string log level to arbor levels.LogLevel
func parseLogLevel(levelStr string) arborlevels.LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return arborlevels.DebugLevel
	case "info":
		return arborlevels.InfoLevel
	case "warn", "warning":
		return arborlevels.WarnLevel
	case "error":
		return arborlevels.ErrorLevel
	default:
		return arborlevels.InfoLevel
	}
}

// convertTo3Letter converts full level names to 3-letter codes
func convertTo3Letter(level string) string {
	switch strings.ToUpper(level) {
	case "INFO":
		return "INF"
	case "WARN", "WARNING":
		return "WRN"
	case "ERROR":
		return "ERR"
	case "DEBUG":
		return "DBG"
	default:
		if len(level) == 3 {
			return strings.ToUpper(level)
		}
		return "INF"
	}
}

// GetChannel returns the channel for arbor to send log batches to
func (c *Consumer) GetChannel() chan []arbormodels.LogEvent {
	return c.channel
}

// Start launches the consumer goroutine
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	return nil
}

// Stop gracefully shuts down the consumer
func (c *Consumer) Stop() error {
	close(c.done)
	c.wg.Wait()
	return nil
}

// consume processes log batches from arbor and broadcasts them
func (c *Consumer) consume() {
	defer c.wg.Done()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Log consumer panic recovered")
		}
	}()

	for {
		select {
		case batch, ok := <-c.channel:
			if !ok {
				return
			}

			for _, event := range batch {
				if !c.shouldBroadcast(event) {
					continue
				}

				c.broadcaster.BroadcastLogLine(
					event.Timestamp.Format("15:04:05"),
					convertTo3Letter(event.Level.String()),
					event.Message,
				)
			}

		case <-c.done:
			return
		}
	}
}

// shouldBroadcast filters by level and excluded message patterns.
// WebSocket lifecycle and HTTP trace logs are dropped so broadcasting
// them cannot trigger further broadcasts.
func (c *Consumer) shouldBroadcast(event arbormodels.LogEvent) bool {
	if arborlevels.FromLogLevel(event.Level) < c.minLevel {
		return false
	}

	for _, pattern := range c.excludePatterns {
		if strings.Contains(event.Message, pattern) {
			return false
		}
	}

	return true
}
