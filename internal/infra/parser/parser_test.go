package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <ttl>45</ttl>
    <item>
      <title>First post</title>
      <link>https://example.com/1</link>
      <guid>guid-1</guid>
      <description>Hello</description>
      <category>news</category>
    </item>
    <item>
      <title>No guid post</title>
      <link>https://example.com/2</link>
      <description>World</description>
    </item>
  </channel>
</rss>`

func TestParser_Parse(t *testing.T) {
	p := New("feedcore-test/1.0")
	items, meta, err := p.Parse(context.Background(), []byte(sampleRSS), "https://example.com/feed.xml")
	require.NoError(t, err)

	assert.Equal(t, "Example Feed", meta.TitleHint)
	assert.Equal(t, "https://example.com", meta.HomepageURL)
	assert.Equal(t, 45, meta.TTLMinutes)

	require.Len(t, items, 2)
	assert.Equal(t, "guid-1", items[0].SourceID)
	assert.Equal(t, "First post", items[0].Title)
	require.Len(t, items[0].Metadata, 1)
	assert.Equal(t, "category", items[0].Metadata[0].Key)

	assert.Empty(t, items[1].SourceID, "a feed item with no guid leaves SourceID empty for the (title,link) fallback")
}

func TestParser_Parse_InvalidXML(t *testing.T) {
	p := New("feedcore-test/1.0")
	_, _, err := p.Parse(context.Background(), []byte("not xml at all"), "https://example.com/feed.xml")
	assert.Error(t, err)
}
