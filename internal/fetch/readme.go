package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"dailynews/internal/github"
	"dailynews/internal/media"
)

var fencedBlockRe = regexp.MustCompile("(?s)```.*?```")

// ReadmeFetcher turns a repository URL into plain README text.
type ReadmeFetcher struct {
	client *github.Client
	pages  *PageFetcher
}

// NewReadmeFetcher builds a README fetcher sharing the GitHub client and
// the page fetcher's redirect resolution.
func NewReadmeFetcher(client *github.Client, pages *PageFetcher) *ReadmeFetcher {
	return &ReadmeFetcher{client: client, pages: pages}
}

// FetchReadme resolves short links to the repository, downloads its
// README and strips it to plain text with code blocks removed.
func (r *ReadmeFetcher) FetchReadme(ctx context.Context, repoURL string) (string, error) {
	resolved := repoURL
	if !strings.Contains(repoURL, "github.com") {
		resolved = r.pages.ResolveRedirect(ctx, repoURL)
	}

	owner, repo, err := splitRepoURL(resolved)
	if err != nil {
		return "", err
	}

	markdown, err := r.client.Readme(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	return MarkdownToText(markdown), nil
}

// MarkdownToText renders markdown to HTML and flattens it to plain text,
// dropping fenced and inline code.
func MarkdownToText(markdown string) string {
	markdown = fencedBlockRe.ReplaceAllString(markdown, "")

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return strings.TrimSpace(markdown)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	doc.Find("pre, code").Remove()
	return media.HTMLToText(docHTML(doc))
}

func docHTML(doc *goquery.Document) string {
	htmlStr, err := doc.Html()
	if err != nil {
		return ""
	}
	return htmlStr
}

// splitRepoURL extracts owner and repo from a github.com URL.
func splitRepoURL(repoURL string) (string, string, error) {
	u, err := url.Parse(repoURL)
	if err != nil || !strings.Contains(u.Host, "github.com") {
		return "", "", fmt.Errorf("not a github repository URL: %s", repoURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("not a github repository URL: %s", repoURL)
	}
	return parts[0], parts[1], nil
}
