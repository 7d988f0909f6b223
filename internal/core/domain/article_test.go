package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticlePage_HasNext(t *testing.T) {
	var nilPage *ArticlePage
	assert.False(t, nilPage.HasNext())
	assert.False(t, (&ArticlePage{}).HasNext())
	assert.True(t, (&ArticlePage{NextPage: "https://x.test/page/2"}).HasNext())
}

func TestCuratedArticle_JSONFieldNames(t *testing.T) {
	rec := CuratedArticle{
		ID:        7,
		Title:     "Billing",
		URL:       "https://help.example.com/7",
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Labels:    []string{"billing"},
		Body:      "Pay here",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{"id", "title", "url", "updated_at", "outdated", "labels", "body"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "raw_body", "raw_body omitted when empty")
}

func TestArticle_DecodeUpstream(t *testing.T) {
	raw := `{"id":360001,"title":"Hi","html_url":"https://h.test/a/360001","body":"<p>x</p>",
		"label_names":["a","b"],"outdated":true,"draft":false,"updated_at":"2024-01-02T03:04:05Z"}`

	var a Article
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, int64(360001), a.ID)
	assert.Equal(t, "https://h.test/a/360001", a.HTMLURL)
	assert.Equal(t, []string{"a", "b"}, a.LabelNames)
	assert.True(t, a.Outdated)
	assert.Equal(t, 2024, a.UpdatedAt.Year())
}
