package feed

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	g := &Generator{
		baseURL: "https://example.com/sheets/",
		now:     func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}

	rss, err := g.Generate(context.Background(), "Expressions", []Entry{
		{Label: "smile", Name: "smile.png"},
		{Label: "looking down in shape", Name: "looking down in shape.png"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out := string(rss)
	for _, want := range []string{
		"<title>Expressions</title>",
		"<title>smile</title>",
		"https://example.com/sheets/smile.png",
		"https://example.com/sheets/looking%20down%20in%20shape.png",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected feed to contain %q", want)
		}
	}
	if strings.Index(out, "<title>smile</title>") > strings.Index(out, "<title>looking down in shape</title>") {
		t.Error("expected items in entry order")
	}
}

func TestLinkWithoutBaseURL(t *testing.T) {
	g := &Generator{}
	if got := g.link("grinning with teeth.png"); got != "grinning%20with%20teeth.png" {
		t.Errorf("unexpected link %q", got)
	}
}
