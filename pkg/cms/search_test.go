package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchHit_UnmarshalJSON(t *testing.T) {
	var results SearchResults
	err := json.Unmarshal([]byte(`{
		"results": [
			{"type": "article", "id": "a-1", "title": "Welcome", "status": "published"},
			{"type": "revision", "id": "r-1", "article_id": "a-1", "title": "Welcome", "status": "pending"}
		],
		"total": 2
	}`), &results)
	require.NoError(t, err)
	require.Len(t, results.Results, 2)

	article := results.Results[0]
	assert.Equal(t, KindArticle, article.Kind)
	require.NotNil(t, article.Article)
	assert.Nil(t, article.Revision)
	assert.Equal(t, "a-1", article.Article.ID)

	revision := results.Results[1]
	assert.Equal(t, KindRevision, revision.Kind)
	require.NotNil(t, revision.Revision)
	assert.Nil(t, revision.Article)
	assert.Equal(t, "a-1", revision.Revision.ArticleID)
}

func TestSearchHit_UnknownType(t *testing.T) {
	var hit SearchHit
	err := json.Unmarshal([]byte(`{"type":"comment","id":"c-1"}`), &hit)
	assert.EqualError(t, err, `unknown search result type "comment"`)
}

func TestSearchHit_MarshalKeepsDiscriminant(t *testing.T) {
	hit := SearchHit{Kind: KindRevision, Revision: &Revision{ID: "r-1", Status: StatusPending}}

	data, err := json.Marshal(hit)
	require.NoError(t, err)

	var decoded SearchHit
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, KindRevision, decoded.Kind)
	assert.Equal(t, "r-1", decoded.Revision.ID)
}

func TestSearchService_Query(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/search", mock.MatchedBy(func(opts *RequestOptions) bool {
		return opts.Query.Get("q") == "welcome" && opts.Query.Get("type") == KindArticle
	})).Return(okEnvelope(http.StatusOK, `{"results":[{"type":"article","id":"a-1"}],"total":1}`))

	resp := client.Search.Query(context.Background(), &SearchParams{Query: "welcome", Kind: KindArticle})

	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "a-1", resp.Data.Results[0].Article.ID)
	mockTransport.AssertExpectations(t)
}

func TestSearchService_Query_BadDiscriminant(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/search", mock.Anything).
		Return(okEnvelope(http.StatusOK, `{"results":[{"type":"mystery"}],"total":1}`))

	resp := client.Search.Query(context.Background(), nil)

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.ErrorIs(t, resp.Err, ErrParse)
}
