package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler streams content events and log lines to connected
// clients so a preview consumer can live-reload on catalog changes
type WebSocketHandler struct {
	logger                arbor.ILogger
	clients               map[*websocket.Conn]bool
	clientMutex           map[*websocket.Conn]*sync.Mutex
	mu                    sync.RWMutex
	eventService          interfaces.EventService
	contentService        interfaces.ContentService
	scanProgressThrottler *rate.Limiter   // Rate limiter for scan_progress events
	allowedEvents         map[string]bool // Whitelist of events to broadcast (empty = allow all)
	serverInstanceID      string          // Unique ID generated on startup - clients use to detect server restart
}

func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger, config *common.WebSocketConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized with server instance ID")

	// Initialize allowedEvents map (whitelist pattern)
	// Empty list means allow all events
	h.allowedEvents = make(map[string]bool)
	if config != nil && len(config.AllowedEvents) > 0 {
		for _, eventType := range config.AllowedEvents {
			h.allowedEvents[eventType] = true
		}
		logger.Debug().
			Int("allowed_events", len(h.allowedEvents)).
			Msg("Initialized event whitelist for WebSocketHandler")
	}

	// Nil throttler = no throttling (disabled)
	if config != nil && len(config.ThrottleIntervals) > 0 {
		if intervalStr, ok := config.ThrottleIntervals["scan_progress"]; ok {
			if duration, err := time.ParseDuration(intervalStr); err == nil {
				h.scanProgressThrottler = rate.NewLimiter(rate.Every(duration), 1)
				logger.Debug().
					Str("event_type", "scan_progress").
					Str("interval", intervalStr).
					Msg("Throttler initialized for scan_progress events")
			} else {
				logger.Warn().
					Err(err).
					Str("interval", intervalStr).
					Msg("Failed to parse scan_progress throttle interval - throttler disabled")
			}
		}
	}

	// Subscribe to content events if eventService is provided
	if eventService != nil {
		h.SubscribeToContentEvents()
	}

	return h
}

// SetContentService wires the catalog in for status snapshots. Late bound
// because the handler is constructed before the content service.
func (h *WebSocketHandler) SetContentService(contentService interfaces.ContentService) {
	h.contentService = contentService
}

// WSMessage is the envelope every WebSocket frame carries
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StatusUpdate is the snapshot sent to a client on connect
type StatusUpdate struct {
	Service          string `json:"service"`
	Status           string `json:"status"`
	Database         string `json:"database"`
	PostsCount       int    `json:"postsCount"`
	PagesCount       int    `json:"pagesCount"`
	LastScan         string `json:"lastScan"`
	ServerInstanceID string `json:"serverInstanceId"` // Unique ID per server startup - clients clear state on change
}

// ContentEventUpdate mirrors a catalog change event on the wire
type ContentEventUpdate struct {
	Slug      string    `json:"slug"`
	Kind      string    `json:"kind,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ScanCompletedUpdate summarizes a finished reconcile pass
type ScanCompletedUpdate struct {
	Scanned   int       `json:"scanned"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Removed   int       `json:"removed"`
	Unchanged int       `json:"unchanged"`
	Errors    int       `json:"errors"`
	Duration  string    `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

// LogEntry is a log line formatted for WebSocket consumers
type LogEntry struct {
	Index     int    `json:"index,omitempty"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", len(h.clients))

	// Send initial status
	h.sendStatus(conn)

	// Handle client disconnection
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		clientCount := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", clientCount)
	}()

	// Read messages from client (keep connection alive)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// sendStatus sends the current catalog snapshot to a single client
func (h *WebSocketHandler) sendStatus(conn *websocket.Conn) {
	status := StatusUpdate{
		Service:          "ONLINE",
		Status:           "ONLINE",
		Database:         "CONNECTED",
		LastScan:         "Never",
		ServerInstanceID: h.serverInstanceID,
	}

	if h.contentService != nil {
		if stats, err := h.contentService.GetStats(context.Background()); err == nil {
			status.PostsCount = stats.Posts
			status.PagesCount = stats.Pages
			if !stats.LastScan.IsZero() {
				status.LastScan = stats.LastScan.Format(time.RFC3339)
			}
		}
	}

	msg := WSMessage{
		Type:    "status",
		Payload: status,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal initial status")
		return
	}

	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()

	if mutex != nil {
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send initial status")
		}
	}
}

// broadcast marshals the message once and writes it to every client
func (h *WebSocketHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to send message to client")
		}
	}
}

// BroadcastStatus sends status updates to all connected clients
func (h *WebSocketHandler) BroadcastStatus(status StatusUpdate) {
	status.ServerInstanceID = h.serverInstanceID
	h.broadcast(WSMessage{
		Type:    "status",
		Payload: status,
	})
}

// BroadcastLog sends a log entry to all connected clients
func (h *WebSocketHandler) BroadcastLog(entry LogEntry) {
	h.broadcast(WSMessage{
		Type:    "log",
		Payload: entry,
	})
}

// BroadcastLogLine adapts the log consumer's line format to a LogEntry
// broadcast. Satisfies logs.Broadcaster.
func (h *WebSocketHandler) BroadcastLogLine(timestamp, level, message string) {
	h.BroadcastLog(LogEntry{
		Timestamp: timestamp,
		Level:     level,
		Message:   message,
	})
}

// SubscribeToContentEvents bridges catalog events onto the WebSocket so
// clients rebuild or reload as content changes
func (h *WebSocketHandler) SubscribeToContentEvents() {
	if h.eventService == nil {
		return
	}

	contentEvents := []interfaces.EventType{
		interfaces.EventContentAdded,
		interfaces.EventContentUpdated,
		interfaces.EventContentRemoved,
	}

	for _, eventType := range contentEvents {
		et := eventType
		h.eventService.Subscribe(et, func(ctx context.Context, event interfaces.Event) error {
			if len(h.allowedEvents) > 0 && !h.allowedEvents[string(et)] {
				return nil
			}

			update := ContentEventUpdate{Timestamp: time.Now()}
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				update.Slug = getString(payload, "slug")
				update.Kind = getString(payload, "kind")
				update.Path = getString(payload, "path")
			}

			h.broadcast(WSMessage{
				Type:    string(et),
				Payload: update,
			})
			return nil
		})
	}

	h.eventService.Subscribe(interfaces.EventScanStarted, func(ctx context.Context, event interfaces.Event) error {
		if len(h.allowedEvents) > 0 && !h.allowedEvents[string(interfaces.EventScanStarted)] {
			return nil
		}

		// Throttle so rapid manual triggers do not flood clients
		if h.scanProgressThrottler != nil && !h.scanProgressThrottler.Allow() {
			return nil
		}

		h.broadcast(WSMessage{
			Type:    string(interfaces.EventScanStarted),
			Payload: map[string]interface{}{"timestamp": time.Now().Format(time.RFC3339)},
		})
		return nil
	})

	h.eventService.Subscribe(interfaces.EventScanCompleted, func(ctx context.Context, event interfaces.Event) error {
		if len(h.allowedEvents) > 0 && !h.allowedEvents[string(interfaces.EventScanCompleted)] {
			return nil
		}

		update := ScanCompletedUpdate{Timestamp: time.Now()}
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			update.Scanned = getInt(payload, "scanned")
			update.Added = getInt(payload, "added")
			update.Updated = getInt(payload, "updated")
			update.Removed = getInt(payload, "removed")
			update.Unchanged = getInt(payload, "unchanged")
			update.Errors = getInt(payload, "errors")
			update.Duration = getString(payload, "duration")
		}

		h.broadcast(WSMessage{
			Type:    string(interfaces.EventScanCompleted),
			Payload: update,
		})
		return nil
	})
}

// GetRecentLogsHandler returns recent logs from the memory writer as JSON
func (h *WebSocketHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	memWriter := arbor.GetRegisteredMemoryWriter(arbor.WRITER_MEMORY)
	var logs []LogEntry

	if memWriter != nil {
		entries, err := memWriter.GetEntriesWithLimit(100)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to get log entries")
			http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
			return
		}

		// Map keys are timestamps - sorting gives chronological order
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			logLine := entries[key]
			// Skip internal handler logs
			if strings.Contains(logLine, "WebSocket client connected") ||
				strings.Contains(logLine, "WebSocket client disconnected") ||
				strings.Contains(logLine, "HTTP request") ||
				strings.Contains(logLine, "HTTP response") {
				continue
			}

			// Parse "LEVEL | datetime | message" log lines
			parts := strings.SplitN(logLine, "|", 3)
			if len(parts) != 3 {
				continue
			}

			levelStr := strings.TrimSpace(parts[0])
			dateTime := strings.TrimSpace(parts[1])
			message := strings.TrimSpace(parts[2])

			timeParts := strings.Fields(dateTime)
			var timestamp string
			if len(timeParts) >= 3 {
				timestamp = timeParts[len(timeParts)-1]
			} else {
				timestamp = time.Now().Format("15:04:05")
			}

			level := "INF"
			switch levelStr {
			case "ERR", "ERROR", "FATAL", "PANIC":
				level = "ERR"
			case "WRN", "WARN":
				level = "WRN"
			case "INF", "INFO":
				level = "INF"
			case "DBG", "DEBUG":
				level = "DBG"
			}

			logs = append(logs, LogEntry{
				Index:     len(logs),
				Timestamp: timestamp,
				Level:     level,
				Message:   message,
			})
		}
	}

	if logs == nil {
		logs = []LogEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

func getString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func getInt(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
