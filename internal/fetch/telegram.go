package fetch

import (
	"context"
	"regexp"
	"strings"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// Telegram channel entries link to t.me posts; the real story is behind
// a t.co shortlink inside the message body. The transform follows the
// first shortlink and refetches the destination.

var shortlinkRe = regexp.MustCompile(`https://t\.co/\S+`)

// TransformTelegram rewrites articles whose link points at t.me by
// resolving the first non-quoted t.co shortlink in their summary. A
// github.com destination is refetched as a README, anything else as a
// web page. Articles without a shortlink are left unchanged.
func (d *Dispatcher) TransformTelegram(ctx context.Context, articles []*core.Article) {
	for _, article := range articles {
		if !strings.HasPrefix(article.Link, "https://t.me/") {
			continue
		}

		short := firstShortlink(article.Summary)
		if short == "" {
			continue
		}

		dest := d.pages.ResolveRedirect(ctx, short)
		if dest == "" || dest == short {
			continue
		}

		var summary, cover string
		var err error
		if strings.Contains(dest, "github.com") {
			summary, cover, err = d.itemContent(ctx, dest, "code")
		} else {
			summary, cover, err = d.itemContent(ctx, dest, "link")
		}
		if err != nil || summary == "" {
			logger.Warn("telegram transform failed", "link", dest)
			continue
		}

		logger.Info("telegram link resolved", "from", article.Link, "to", dest)
		article.Link = dest
		article.Summary = summary
		if cover != "" && article.CoverURL == "" {
			article.CoverURL = cover
		}
	}
}

// firstShortlink scans summary lines for the first t.co link, skipping
// quoted lines.
func firstShortlink(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		if m := shortlinkRe.FindString(line); m != "" {
			return m
		}
	}
	return ""
}
