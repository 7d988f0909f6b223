package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// Health service names.
const (
	ServiceVector = "opensearch"
	ServiceLLM    = "llm"
)

// HealthService reports whether the vector cluster and the LLM are reachable.
type HealthService struct {
	vector driven.VectorSearch
	llm    driven.LLMService
	now    func() time.Time
}

// NewHealthService creates a new health service. Either collaborator may
// be nil, in which case it is reported as not configured.
func NewHealthService(vector driven.VectorSearch, llm driven.LLMService) *HealthService {
	return &HealthService{
		vector: vector,
		llm:    llm,
		now:    time.Now,
	}
}

// Check pings the vector cluster and the LLM.
func (s *HealthService) Check(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{
		Status:    domain.StatusHealthy,
		Timestamp: s.now().UTC(),
		Services:  make(map[string]string, 2),
	}

	var problems []string

	if s.vector == nil {
		status.Services[ServiceVector] = "not configured"
		problems = append(problems, "vector search not configured")
	} else {
		// A reachable cluster is healthy; its own status is reported as is.
		cluster, err := s.vector.Health(ctx)
		if err != nil {
			status.Services[ServiceVector] = domain.StatusUnhealthy
			problems = append(problems, fmt.Sprintf("%s: %v", ServiceVector, err))
		} else {
			status.Services[ServiceVector] = cluster
		}
	}

	if s.llm == nil {
		status.Services[ServiceLLM] = "not configured"
		problems = append(problems, "llm not configured")
	} else if err := s.llm.Ping(ctx); err != nil {
		status.Services[ServiceLLM] = domain.StatusUnhealthy
		problems = append(problems, fmt.Sprintf("%s: %v", ServiceLLM, err))
	} else {
		status.Services[ServiceLLM] = domain.StatusHealthy
	}

	if len(problems) > 0 {
		status.Status = domain.StatusUnhealthy
		status.Error = strings.Join(problems, "; ")
	}
	return status
}
