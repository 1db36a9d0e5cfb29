package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/modernmen/concierge/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Conversation metrics
	MessagesProcessedTotal int64
	SessionsStartedTotal   int64
	SessionsEndedTotal     int64
	FlowsCompletedTotal    int64
	SessionsSweptTotal     int64

	// Routing metrics
	EscalationsTotal  int64
	TransfersTotal    int64
	escalationsByRule map[string]int64
	transfersByStatus map[types.TransferStatus]int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			escalationsByRule:    make(map[string]int64),
			transfersByStatus:    make(map[types.TransferStatus]int64),
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordMessageProcessed increments the processed message counter
func (m *Metrics) RecordMessageProcessed() {
	m.mu.Lock()
	m.MessagesProcessedTotal++
	m.mu.Unlock()
}

// RecordSessionStarted increments the session counter
func (m *Metrics) RecordSessionStarted() {
	m.mu.Lock()
	m.SessionsStartedTotal++
	m.mu.Unlock()
}

// RecordSessionEnded increments the ended session counter
func (m *Metrics) RecordSessionEnded() {
	m.mu.Lock()
	m.SessionsEndedTotal++
	m.mu.Unlock()
}

// RecordFlowCompleted increments the completed flow counter
func (m *Metrics) RecordFlowCompleted() {
	m.mu.Lock()
	m.FlowsCompletedTotal++
	m.mu.Unlock()
}

// RecordSessionsSwept adds swept sessions from a cleanup pass
func (m *Metrics) RecordSessionsSwept(count int) {
	m.mu.Lock()
	m.SessionsSweptTotal += int64(count)
	m.mu.Unlock()
}

// RecordEscalation records an escalation, optionally attributed to a rule
func (m *Metrics) RecordEscalation(ruleID string) {
	m.mu.Lock()
	m.EscalationsTotal++
	if ruleID != "" {
		m.escalationsByRule[ruleID]++
	}
	m.mu.Unlock()
}

// RecordTransfer records a transfer reaching a new status
func (m *Metrics) RecordTransfer(status types.TransferStatus) {
	m.mu.Lock()
	if status == types.TransferPending {
		m.TransfersTotal++
	}
	m.transfersByStatus[status]++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("concierge_uptime_seconds", time.Since(m.startTime).Seconds())

		// Conversation metrics
		write("concierge_messages_processed_total", m.MessagesProcessedTotal)
		write("concierge_sessions_started_total", m.SessionsStartedTotal)
		write("concierge_sessions_ended_total", m.SessionsEndedTotal)
		write("concierge_flows_completed_total", m.FlowsCompletedTotal)
		write("concierge_sessions_swept_total", m.SessionsSweptTotal)

		// Calculate messages per second
		uptimeSeconds := time.Since(m.startTime).Seconds()
		if uptimeSeconds > 0 {
			write("concierge_messages_per_second", float64(m.MessagesProcessedTotal)/uptimeSeconds)
		}

		// Routing metrics
		write("concierge_escalations_total", m.EscalationsTotal)
		write("concierge_transfers_total", m.TransfersTotal)

		for rule, count := range m.escalationsByRule {
			write("concierge_escalations_by_rule", count, "rule", rule)
		}
		for status, count := range m.transfersByStatus {
			write("concierge_transfers_by_status", count, "status", string(status))
		}

		// WebSocket metrics
		write("concierge_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("concierge_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("concierge_websocket_active_connections", m.activeConnections)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("concierge_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
