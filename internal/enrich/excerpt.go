package enrich

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// maxExcerptBytes limits the raw download before markup stripping.
const maxExcerptBytes = 512 * 1024

var (
	scriptPattern     = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// FetchSiteExcerpt downloads a page and returns a plain-text excerpt for the
// evaluation prompt: script/style blocks and tags stripped, whitespace
// collapsed, truncated to maxChars. Any fetch failure returns an error; the
// caller treats the excerpt as simply absent.
func FetchSiteExcerpt(ctx context.Context, client *http.Client, url string, maxChars int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "enrich: create excerpt request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "enrich: fetch site")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("enrich: site returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExcerptBytes))
	if err != nil {
		return "", eris.Wrap(err, "enrich: read site body")
	}

	text := string(body)
	text = scriptPattern.ReplaceAllString(text, " ")
	text = stylePattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}
