package directory

import (
	"sync"
	"time"

	"github.com/modernmen/concierge/internal/types"
)

// Directory maintains the live roster of human agents
type Directory struct {
	agents map[string]*types.Agent // agentID -> current entry
	mu     sync.RWMutex
}

// New creates an empty agent directory
func New() *Directory {
	return &Directory{
		agents: make(map[string]*types.Agent),
	}
}

// Upsert adds or replaces an agent entry
func (d *Directory) Upsert(agent types.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[agent.ID] = &agent
}

// Get returns a copy of an agent entry
func (d *Directory) Get(agentID string) (types.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	agent, ok := d.agents[agentID]
	if !ok {
		return types.Agent{}, false
	}
	return *agent, true
}

// All returns copies of all agent entries
func (d *Directory) All() []types.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	agents := make([]types.Agent, 0, len(d.agents))
	for _, agent := range d.agents {
		agents = append(agents, *agent)
	}
	return agents
}

// Available returns agents that are online and under their concurrency cap
func (d *Directory) Available() []types.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	agents := make([]types.Agent, 0, len(d.agents))
	for _, agent := range d.agents {
		if agent.Available() {
			agents = append(agents, *agent)
		}
	}
	return agents
}

// SetStatus updates an agent's live status and activity timestamp
func (d *Directory) SetStatus(agentID string, status types.AgentStatus) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	agent, ok := d.agents[agentID]
	if !ok {
		return false
	}
	agent.Status = status
	agent.LastActivity = time.Now()
	return true
}

// AddConversation increments an agent's live conversation counter,
// flipping status to busy when the cap is reached.
func (d *Directory) AddConversation(agentID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	agent, ok := d.agents[agentID]
	if !ok {
		return false
	}

	agent.CurrentConversations++
	if agent.CurrentConversations >= agent.MaxConversations {
		agent.Status = types.AgentBusy
	} else {
		agent.Status = types.AgentOnline
	}
	agent.LastActivity = time.Now()
	return true
}

// ReleaseConversation decrements the counter when a conversation finishes,
// flipping a busy agent back to online when headroom returns.
func (d *Directory) ReleaseConversation(agentID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	agent, ok := d.agents[agentID]
	if !ok {
		return false
	}

	if agent.CurrentConversations > 0 {
		agent.CurrentConversations--
	}
	if agent.Status == types.AgentBusy && agent.CurrentConversations < agent.MaxConversations {
		agent.Status = types.AgentOnline
	}
	agent.LastActivity = time.Now()
	return true
}

// Workload reports per-agent utilization
type Workload struct {
	Current     int     `json:"current"`
	Max         int     `json:"max"`
	Utilization float64 `json:"utilization"`
}

// Workloads returns the current workload for every agent
func (d *Directory) Workloads() map[string]Workload {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]Workload, len(d.agents))
	for id, agent := range d.agents {
		utilization := 0.0
		if agent.MaxConversations > 0 {
			utilization = float64(agent.CurrentConversations) / float64(agent.MaxConversations)
		}
		out[id] = Workload{
			Current:     agent.CurrentConversations,
			Max:         agent.MaxConversations,
			Utilization: utilization,
		}
	}
	return out
}

// Count returns the number of agents in the roster
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}
