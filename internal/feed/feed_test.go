package feed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/reelwatch/internal/story"
)

const sample = `[
  {"id": "a1", "authorId": "A", "createdAt": "2024-05-01T10:00:10Z", "isViewedByCurrentUser": false},
  {"id": "a2", "authorId": "A", "createdAt": "2024-05-01T10:00:05Z", "isViewedByCurrentUser": true},
  {"id": "b1", "authorId": "B", "createdAt": "2024-05-01T10:00:08Z", "isViewedByCurrentUser": true}
]`

func TestJSONParserArray(t *testing.T) {
	items, err := (&JSONParser{}).Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "a1" || items[0].Viewed || !items[1].Viewed {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestJSONParserEnvelope(t *testing.T) {
	items, err := (&JSONParser{}).Parse([]byte(`{"stories": ` + sample + `}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
}

func TestJSONParserErrors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "   ",
		"garbage":        "{not json",
		"missing author": `[{"id": "x"}]`,
		"missing id":     `[{"authorId": "A"}]`,
	} {
		if _, err := (&JSONParser{}).Parse([]byte(input)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), "failed to parse stories") {
			t.Errorf("%s: unexpected error text %q", name, err)
		}
	}
}

func TestTextRendererMarksMineAndUnseen(t *testing.T) {
	items, err := (&JSONParser{}).Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	out, err := (&TextRenderer{}).Render(story.Aggregate(items, "B"), "B")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)

	if strings.Contains(text, "Add to your story") {
		t.Error("add-story prompt should be hidden when the user has stories")
	}
	mine := strings.Index(text, "B (you)")
	other := strings.Index(text, "a1")
	if mine == -1 || other == -1 || !strings.Contains(text, "2. ") {
		t.Fatalf("expected two numbered groups, got:\n%s", text)
	}
	if other < mine {
		t.Errorf("own group should be listed first:\n%s", text)
	}
	if !strings.Contains(text, "a1") || !strings.Contains(text, "new") {
		t.Errorf("expected the unseen story to be marked new:\n%s", text)
	}
}

func TestTextRendererEmpty(t *testing.T) {
	out, err := (&TextRenderer{}).Render(nil, "me")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "Add to your story") || !strings.Contains(string(out), "No stories.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestJSONRendererRoundTrip(t *testing.T) {
	items, err := (&JSONParser{}).Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	groups := story.Aggregate(items, "me")
	out, err := RendererFor("JSON").Render(groups, "me")
	if err != nil {
		t.Fatal(err)
	}

	var decoded []story.Group
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].AuthorID != "A" || !decoded[0].HasUnviewed {
		t.Errorf("unexpected decoded groups %+v", decoded)
	}
}

func TestJSONRendererEmptyIsArray(t *testing.T) {
	out, err := (&JSONRenderer{}).Render(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "[]" {
		t.Errorf("expected [], got %q", out)
	}
}

func TestRendererForDefaultsToText(t *testing.T) {
	if _, ok := RendererFor("yaml").(*TextRenderer); !ok {
		t.Error("unknown formats should fall back to text")
	}
}

func TestWatchNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stories.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() { changed <- struct{}{} })
	}()

	// Keep writing until the watcher is up and reports a change.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no change notification received")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not return after cancel")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stories.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	changed := make(chan struct{}, 16)
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644)
	}()
	if err := Watch(ctx, path, nil, func() { changed <- struct{}{} }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("expected no notifications for sibling files, got %d", len(changed))
	}
}
