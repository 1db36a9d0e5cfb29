package directory

import (
	"time"

	"github.com/modernmen/concierge/internal/types"
)

// MockRoster returns a small seed roster used when the agent service is
// unreachable, keeping local and offline operation working.
func MockRoster() []types.Agent {
	now := time.Now()
	return []types.Agent{
		{
			ID:                   "agent_1",
			Name:                 "Sarah Johnson",
			Email:                "sarah@modernmen.com",
			Status:               types.AgentOnline,
			Skills:               []string{"booking", "customer_service"},
			Languages:            []string{"en", "es"},
			Specialties:          []string{"appointments", "hair_services"},
			Experience:           3,
			Rating:               4.8,
			CurrentConversations: 2,
			MaxConversations:     5,
			ResponseTime:         2,
			LastActivity:         now,
			Performance: types.AgentPerformance{
				ResolvedConversations: 245,
				AvgResolutionTime:     8,
				CustomerSatisfaction:  4.6,
				TransferRate:          0.05,
			},
		},
		{
			ID:                   "agent_2",
			Name:                 "Mike Chen",
			Email:                "mike@modernmen.com",
			Status:               types.AgentOnline,
			Skills:               []string{"technical_support", "inventory"},
			Languages:            []string{"en", "zh"},
			Specialties:          []string{"product_inquiries", "technical_issues"},
			Experience:           5,
			Rating:               4.9,
			CurrentConversations: 1,
			MaxConversations:     4,
			ResponseTime:         1.5,
			LastActivity:         now,
			Performance: types.AgentPerformance{
				ResolvedConversations: 312,
				AvgResolutionTime:     6,
				CustomerSatisfaction:  4.7,
				TransferRate:          0.03,
			},
		},
	}
}
