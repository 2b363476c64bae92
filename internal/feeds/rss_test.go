package feeds

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/gapper/internal/models"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Yahoo! Finance: ABCD News</title>
<item>
  <title><![CDATA[ABCD   announces Phase 2 trial results]]></title>
  <link>https://www.example.com/news/abcd-phase-2?.tsrc=rss</link>
  <pubDate>Wed, 10 Sep 2025 12:30:00 +0000</pubDate>
</item>
<item>
  <title>ABCD added to index</title>
  <link>not a url</link>
</item>
<item>
  <title></title>
  <link>https://www.example.com/empty</link>
</item>
</channel>
</rss>`

func TestParse_RSS(t *testing.T) {
	items := Parse(sampleRSS, "ABCD")
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "ABCD", first.Ticker)
	assert.Equal(t, "ABCD announces Phase 2 trial results", first.Headline)
	assert.Equal(t, "https://www.example.com/news/abcd-phase-2?.tsrc=rss", first.URL)
	assert.Equal(t, "example.com", first.Source)
	assert.Equal(t, models.NewsSourceFeed, first.Origin)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, time.Date(2025, 9, 10, 12, 30, 0, 0, time.UTC), *first.PublishedAt)

	second := items[1]
	assert.Equal(t, "", second.URL)
	assert.Equal(t, "Yahoo! Finance: ABCD News", second.Source)
	assert.Nil(t, second.PublishedAt)
}

func TestParse_Atom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Filings</title>
  <entry>
    <title>8-K filed by ABCD</title>
    <link href="https://sec.example.com/abcd/8k"/>
    <updated>2025-09-10T13:00:00Z</updated>
    <author><name>SEC</name></author>
  </entry>
</feed>`

	items := Parse(atom, "ABCD")
	require.Len(t, items, 1)
	assert.Equal(t, "8-K filed by ABCD", items[0].Headline)
	assert.Equal(t, "SEC", items[0].Source)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, time.Date(2025, 9, 10, 13, 0, 0, 0, time.UTC), *items[0].PublishedAt)
}

func TestParse_Malformed(t *testing.T) {
	assert.Empty(t, Parse("", "ABCD"))
	assert.Empty(t, Parse("<html><body>Not a feed</body></html>", "ABCD"))
	assert.Empty(t, Parse("{\"json\": true}", "ABCD"))
}

func TestParse_Caps(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss version="2.0"><channel><title>T</title>`)
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, `<item><title>Headline %d</title><link>https://x.test/%d</link></item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)

	assert.Len(t, Parse(b.String(), "ABCD"), MaxItemsPerFeed)
}
