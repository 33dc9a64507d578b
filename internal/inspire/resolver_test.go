package inspire

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benkendorfer/HEP-paper-graph/internal/cache"
)

const titleSearchBody = `{"hits":{"hits":[{"metadata":{"titles":[{"title":"Measurement of the top quark mass"}]}}],"total":1}}`

func titleLogLines(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, cache.TitleLogFile))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestResolveTitle_Idempotent(t *testing.T) {
	api := newStubAPI(t, map[string]string{"/literature": titleSearchBody})
	c, dir := newTestClient(t, api.URL, &countingGate{})
	ctx := context.Background()

	first := c.ResolveTitle(ctx, "1234", true)
	second := c.ResolveTitle(ctx, "1234", true)

	assert.Equal(t, "Measurement of the top quark mass", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), api.hits.Load())
	assert.Equal(t, []string{"1234,Measurement of the top quark mass"}, titleLogLines(t, dir))
}

func TestResolveTitle_NeverUsesResponseCache(t *testing.T) {
	api := newStubAPI(t, map[string]string{"/literature": titleSearchBody})
	c, dir := newTestClient(t, api.URL, &countingGate{})

	c.ResolveTitle(context.Background(), "1", true)

	entries, err := cache.NewResponseCache(dir).List()
	require.NoError(t, err)
	assert.Empty(t, entries, "title search must not be written to the response cache")
}

func TestResolveTitle_FirstLogLineWins(t *testing.T) {
	api := newStubAPI(t, nil)
	c, dir := newTestClient(t, api.URL, &countingGate{})
	log := cache.NewTitleLog(filepath.Join(dir, cache.TitleLogFile))
	require.NoError(t, log.Append("77", "Original"))
	require.NoError(t, log.Append("77", "Later duplicate"))

	assert.Equal(t, "Original", c.ResolveTitle(context.Background(), "77", true))
	assert.Zero(t, api.hits.Load())
}

func TestResolveTitle_SentinelOnFailureIsCached(t *testing.T) {
	api := newStubAPI(t, nil) // every request 404s
	c, dir := newTestClient(t, api.URL, &countingGate{})
	ctx := context.Background()

	assert.Equal(t, NoTitle, c.ResolveTitle(ctx, "5", true))
	assert.Equal(t, []string{"5,No title"}, titleLogLines(t, dir))

	assert.Equal(t, NoTitle, c.ResolveTitle(ctx, "5", true))
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestResolveTitle_MissingField(t *testing.T) {
	api := newStubAPI(t, map[string]string{"/literature": `{"hits":{"hits":[]}}`})
	c, _ := newTestClient(t, api.URL, &countingGate{})

	assert.Equal(t, NoTitle, c.ResolveTitle(context.Background(), "9", true))
}

func TestResolveTitle_WithoutCache(t *testing.T) {
	api := newStubAPI(t, map[string]string{"/literature": titleSearchBody})
	c, dir := newTestClient(t, api.URL, &countingGate{})
	ctx := context.Background()

	c.ResolveTitle(ctx, "1", false)
	c.ResolveTitle(ctx, "1", false)

	assert.Equal(t, int32(2), api.hits.Load())
	assert.Nil(t, titleLogLines(t, dir))
}
