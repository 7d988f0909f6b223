package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func TestHealthCmd_Healthy(t *testing.T) {
	rt := newMockRuntime()
	rt.health.status = domain.HealthStatus{
		Status:   domain.StatusHealthy,
		Services: map[string]string{"opensearch": "green", "llm": "healthy"},
	}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("health")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: healthy")
	assert.Contains(t, out, "opensearch")
	assert.Contains(t, out, "green")
	assert.Less(t, strings.Index(out, "llm"), strings.Index(out, "opensearch"), "services are sorted")
}

func TestHealthCmd_Unhealthy(t *testing.T) {
	rt := newMockRuntime()
	rt.health.status = domain.HealthStatus{
		Status:   domain.StatusUnhealthy,
		Services: map[string]string{"opensearch": "not configured"},
		Error:    "vector search not configured",
	}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("health")

	require.Error(t, err)
	assert.Equal(t, "vector search not configured", err.Error())
	assert.Contains(t, out, "Status: unhealthy")
}

func TestHealthCmd_UnhealthyWithoutMessage(t *testing.T) {
	rt := newMockRuntime()
	rt.health.status = domain.HealthStatus{Status: domain.StatusUnhealthy}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("health")

	require.Error(t, err)
	assert.Equal(t, "unhealthy", err.Error())
}

func TestHealthCmd_JSON(t *testing.T) {
	rt := newMockRuntime()
	rt.health.status = domain.HealthStatus{Status: domain.StatusHealthy}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("health", "--json")

	require.NoError(t, err)
	var got domain.HealthStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.StatusHealthy, got.Status)
}

