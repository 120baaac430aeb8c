package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

const maxPageSize = 5 * 1024 * 1024

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// Option configures Load.
type Option func(*options)

type options struct {
	httpClient *http.Client
	topK       int
}

func defaultOptions() options {
	return options{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTopK limits Lookup to the k best entries once the base exceeds k.
func WithTopK(k int) Option {
	return func(o *options) { o.topK = k }
}

func loadURL(ctx context.Context, url string, o options) (*Base, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid knowledge URL: %w", err)
	}
	req.Header.Set("User-Agent", "fileagent/1.0")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return ParseJSON(url, body)
	}

	title, markdown, err := ConvertHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", url, err)
	}
	return textBase(url, KindURL, title, markdown)
}

// ConvertHTML returns the page title and its body as GitHub-flavored
// markdown. Scripts, styles and navigation chrome are dropped.
func ConvertHTML(content []byte) (title, markdown string, err error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", "", err
	}
	title = findTitle(doc)
	removeElements(doc, "head", "script", "style", "noscript", "nav", "header", "footer", "aside", "iframe", "form")

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	markdown, err = converter.ConvertString(buf.String())
	if err != nil {
		return "", "", err
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n"))

	if title == "" {
		for _, line := range strings.Split(markdown, "\n") {
			if strings.HasPrefix(line, "# ") {
				title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
				break
			}
		}
	}
	return title, markdown, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func removeElements(n *html.Node, tags ...string) {
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && drop[c.Data] {
				node.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(n)
}
