package feed

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Entry struct {
	Label string
	Name  string
}

type Generator struct {
	baseURL string
	now     func() time.Time
}

func New(baseURL string) *Generator {
	return &Generator{baseURL: baseURL, now: time.Now}
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return New(do.MustInvokeNamed[string](i, "base_url")), nil
}

func (g *Generator) link(name string) string {
	escaped := url.PathEscape(name)
	if g.baseURL == "" {
		return escaped
	}
	return strings.TrimSuffix(g.baseURL, "/") + "/" + escaped
}

// Generate renders an RSS document with one item per entry, in entry order.
func (g *Generator) Generate(ctx context.Context, title string, entries []Entry) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed", "entries", len(entries))

	updated := g.now()
	feed := feeds.Feed{
		Title:       title,
		Description: "Generated character expressions",
		Link:        &feeds.Link{Href: g.link("index.html")},
		Updated:     updated,
	}
	feed.Items = lo.Map(entries, func(e Entry, _ int) *feeds.Item {
		return &feeds.Item{
			Title:   e.Label,
			Link:    &feeds.Link{Href: g.link(e.Name)},
			Id:      g.link(e.Name),
			Updated: updated,
		}
	})

	rss, err := feed.ToRss()
	return []byte(rss), err
}
