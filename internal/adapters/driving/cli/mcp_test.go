package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)

	serve, _, err := mcpCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, mcpServeCmd, serve)

	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
	assert.Contains(t, mcpServeCmd.Long, "kbrag mcp serve")
}

func TestMCPServe_RequiresSearch(t *testing.T) {
	rt := newMockRuntime()
	rt.searchErr = errNotConfigured
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("mcp", "serve")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestAnswerOrNil(t *testing.T) {
	rt := newMockRuntime()
	assert.NotNil(t, answerOrNil(context.Background(), rt))

	rt.answerErr = errNotConfigured
	assert.Nil(t, answerOrNil(context.Background(), rt))
}

func TestArticlesOrNil(t *testing.T) {
	rt := newMockRuntime()
	assert.Nil(t, articlesOrNil(rt))

	rt.articles = &mockArticleService{}
	assert.NotNil(t, articlesOrNil(rt))
}
