package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// Markdown folder sources point at curated newsletter repositories via
// github://owner/repo/folder@ref URLs. The newest date-prefixed markdown
// file is split into "---" delimited sections, one article each.

// UntitledFallback labels files whose markdown carries no heading.
const UntitledFallback = "Untitled Newsletter"

// minFileChars and minSectionChars reject empty or placeholder content.
const (
	minFileChars    = 100
	minSectionChars = 50
)

var (
	sectionTitleRe    = regexp.MustCompile(`(?m)^##\s*제목:\s*(.+)`)
	anyHeadingRe      = regexp.MustCompile(`(?m)^##\s*(.+)`)
	sectionImageRe    = regexp.MustCompile(`!\[Image\]\((https?://[^\s\)]+)\)`)
	importanceRe      = regexp.MustCompile(`\*\*중요도\*\*:\s*(\d+)`)
	sectionLinkRe     = regexp.MustCompile(`\*\*전체링크\*\*\s*:?\s*(https?://[^\s\n]+)`)
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,2}\s+(.+)`)
)

// fieldRe matches one **label**: value field, value running to the next
// bold marker or end of section.
func fieldRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\*\*` + label + `\*\*:\s*(.*?)(?:\*\*|$)`)
}

var (
	summaryFieldRe = fieldRe("요약")
	easyFieldRe    = fieldRe("쉬운설명")
	domainFieldRe  = fieldRe("관련분야")
)

// FolderRef is a parsed github:// folder URL.
type FolderRef struct {
	Owner  string
	Repo   string
	Folder string
	Ref    string
}

// ParseFolderURL parses github://owner/repo/folder[@ref]. The folder may
// be percent-encoded and contain slashes; ref defaults to "main".
func ParseFolderURL(raw string) (*FolderRef, error) {
	rest, ok := strings.CutPrefix(raw, "github://")
	if !ok {
		return nil, fmt.Errorf("github: not a github:// URL: %s", raw)
	}

	ref := "main"
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		ref = rest[at+1:]
		rest = rest[:at]
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("github: malformed folder URL: %s", raw)
	}
	folder, err := url.PathUnescape(parts[2])
	if err != nil {
		folder = parts[2]
	}
	return &FolderRef{Owner: parts[0], Repo: parts[1], Folder: folder, Ref: ref}, nil
}

// FetchMarkdownFolder downloads the newest markdown file of a curated
// folder and converts its sections into articles.
func (c *Client) FetchMarkdownFolder(ctx context.Context, cfg *core.SourceConfig, now time.Time) ([]*core.Article, error) {
	ref, err := ParseFolderURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	entries, err := c.ListFolderContents(ctx, ref.Owner, ref.Repo, ref.Folder, ref.Ref)
	if err != nil {
		return nil, err
	}

	var files []Entry
	for _, e := range entries {
		if e.Type == "file" && strings.HasSuffix(e.Name, ".md") && e.DownloadURL != "" {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		logger.Warn("no markdown files in folder", "source", cfg.Title, "folder", ref.Folder)
		return nil, nil
	}

	// Filenames are date-prefixed, so the lexicographically largest is
	// the newest.
	sort.Slice(files, func(i, j int) bool { return files[i].Name > files[j].Name })
	newest := files[0]

	body, err := c.DownloadFileContent(ctx, newest.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("github: download %s: %w", newest.Name, err)
	}
	if len([]rune(string(body))) < minFileChars {
		logger.Warn("markdown file too short, skipping", "source", cfg.Title, "file", newest.Name)
		return nil, nil
	}

	articles := ParseSections(string(body), cfg, now)
	logger.Info("markdown folder parsed", "source", cfg.Title, "file", newest.Name, "articles", len(articles))
	return articles, nil
}

// ParseSections splits curated markdown into "---" delimited sections
// and extracts one article per well-formed section. Sections missing a
// title or link are skipped.
func ParseSections(content string, cfg *core.SourceConfig, now time.Time) []*core.Article {
	var articles []*core.Article
	for _, section := range strings.Split(content, "\n---\n") {
		section = strings.TrimSpace(section)
		if len([]rune(section)) < minSectionChars {
			continue
		}

		title := firstGroup(sectionTitleRe, section)
		if title == "" {
			title = firstGroup(anyHeadingRe, section)
		}
		if title == "" {
			logger.Debug("section has no title, skipping", "source", cfg.Title)
			continue
		}

		link := firstGroup(sectionLinkRe, section)
		if link == "" {
			logger.Debug("section has no link, skipping", "source", cfg.Title, "title", title)
			continue
		}

		importance := 5
		if raw := firstGroup(importanceRe, section); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				importance = n
			}
		}

		summary := firstGroup(summaryFieldRe, section)
		if easy := firstGroup(easyFieldRe, section); easy != "" {
			summary += "\n\n쉬운설명: " + easy
		}
		if domain := firstGroup(domainFieldRe, section); domain != "" {
			summary += "\n\n관련분야: " + domain
		}

		articles = append(articles, &core.Article{
			Title:      strings.TrimSpace(title),
			Summary:    strings.TrimSpace(summary),
			Link:       link,
			CoverURL:   firstGroup(sectionImageRe, section),
			Date:       now,
			Info:       core.FeedInfo{Title: cfg.Title},
			Config:     cfg,
			OriginType: core.OriginCurated,
			Tier:       cfg.Tier,
			Importance: importance,
		})
	}
	return articles
}

// ExtractTitleFromMarkdown returns the first markdown heading, or the
// untitled fallback.
func ExtractTitleFromMarkdown(content string) string {
	if title := firstGroup(markdownHeadingRe, content); title != "" {
		return strings.TrimSpace(title)
	}
	return UntitledFallback
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
