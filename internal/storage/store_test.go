package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/BlogHub/internal/processor"
)

func post(link, pubDate string) processor.Post {
	return processor.Post{Title: "t " + link, Link: link, PubDate: pubDate}
}

func TestAddDedupByLink(t *testing.T) {
	s := NewStore()

	first, created := s.Add(post("https://a", "Wed, 20 Aug 2025 15:15:37 GMT"))
	if !created {
		t.Fatalf("expected first add to create")
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}

	again := post("https://a", "Thu, 21 Aug 2025 10:00:00 GMT")
	again.Title = "changed"
	got, created := s.Add(again)
	if created {
		t.Fatalf("expected duplicate link to be ignored")
	}
	if got.ID != first.ID || got.Title != first.Title {
		t.Fatalf("duplicate add must return the stored record unchanged, got %+v", got)
	}
	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
}

func TestAddSentinelLinkNotDeduped(t *testing.T) {
	s := NewStore()
	s.Add(post(processor.NoLink, ""))
	s.Add(post(processor.NoLink, ""))
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
}

func TestGetAllSortedByPubDateDesc(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]processor.Post{
		{ID: "old", Link: "1", PubDate: "Mon, 18 Aug 2025 10:00:00 GMT"},
		{ID: "bad", Link: "2", PubDate: "not a date"},
		{ID: "new", Link: "3", PubDate: "2025-08-21T10:00:00.000Z"},
		{ID: "mid", Link: "4", PubDate: "Wed, 20 Aug 2025 15:15:37 GMT"},
	})

	got := s.GetAll()
	want := []string{"new", "mid", "old", "bad"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (all=%v)", i, got[i].ID, id, ids(got))
		}
	}
}

func TestReplaceAllIsolatesCallerSlice(t *testing.T) {
	s := NewStore()
	in := []processor.Post{{ID: "a", Link: "1"}}
	s.ReplaceAll(in)
	in[0].ID = "mutated"

	p, err := s.GetByID("a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.Link != "1" {
		t.Fatalf("unexpected post %+v", p)
	}

	out := s.GetAll()
	out[0].Title = "mutated"
	if p, _ := s.GetByID("a"); p.Title == "mutated" {
		t.Fatalf("GetAll must return a copy")
	}
}

func TestReplaceAllDropsPreviousPosts(t *testing.T) {
	s := NewStore()
	s.Add(post("https://webhook", ""))
	s.ReplaceAll([]processor.Post{{ID: "rss-1-0", Link: "https://feed"}})

	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
	if _, err := s.GetByID("rss-1-0"); err != nil {
		t.Fatalf("expected feed post, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetByID("missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVersionBumpsOnWrite(t *testing.T) {
	s := NewStore()
	v0 := s.Version()
	s.Add(post("https://a", ""))
	s.Add(post("https://a", ""))
	v1 := s.Version()
	if v1 != v0+1 {
		t.Fatalf("duplicate add must not bump version: v0=%d v1=%d", v0, v1)
	}
	s.ReplaceAll(nil)
	if s.Version() != v1+1 {
		t.Fatalf("ReplaceAll must bump version")
	}
}

func TestNewPostIDFormat(t *testing.T) {
	now := time.UnixMilli(1755702937000)
	id := newPostID(now)
	if len(id) != len("1755702937000")+9 {
		t.Fatalf("unexpected id %q", id)
	}
	if id[:13] != "1755702937000" {
		t.Fatalf("id must start with millis, got %q", id)
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Add(post(fmt.Sprintf("https://%d/%d", i, j), ""))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				all := s.GetAll()
				seen := map[string]bool{}
				for _, p := range all {
					if seen[p.Link] {
						t.Errorf("duplicate link %s in snapshot", p.Link)
						return
					}
					seen[p.Link] = true
				}
			}
		}()
	}
	wg.Wait()
	if s.Count() != 8*50 {
		t.Fatalf("count = %d, want %d", s.Count(), 8*50)
	}
}

func TestTruncateRunesDB(t *testing.T) {
	if got := truncateRunesDB("  áéíóú  ", 3); got != "áéí" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunesDB("abc", 0); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := toValidUTF8("ok\xff"); got != "ok\uFFFD" {
		t.Fatalf("got %q", got)
	}
}

func ids(ps []processor.Post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
