package poster

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/datallboy/gonntp/internal/infra/config"
	"github.com/datallboy/gonntp/internal/nntp"
)

func batch(n int) []*nntp.Builder {
	var out []*nntp.Builder
	for i := 0; i < n; i++ {
		out = append(out, nntp.NewBuilder().
			SetMessageID(fmt.Sprintf("b%d@example.com", i)).
			SetFrom("f@example.com").
			SetSubject(fmt.Sprintf("part %d", i)).
			AddGroup("alt.test"))
	}
	return out
}

func TestPublishAll(t *testing.T) {
	svc, mgr, journal := newTestService(t, config.PostConfig{})
	builders := batch(10)
	// Two articles find every provider busy before going through
	mgr.busyLeft["<b3@example.com>"] = 2
	mgr.busyLeft["<b7@example.com>"] = 1

	results, err := svc.PublishAll(context.Background(), builders)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(builders) {
		t.Fatalf("expected %d results, got %d", len(builders), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("builder %d failed: %v", i, r.Err)
			continue
		}
		if r.Index != i || r.Record.MessageID != fmt.Sprintf("<b%d@example.com>", i) {
			t.Errorf("result %d out of place: %+v", i, r)
		}
	}
	if len(mgr.posted) != 10 || len(journal.records) != 10 {
		t.Fatalf("posted %d, journaled %d", len(mgr.posted), len(journal.records))
	}
}

func TestPublishAllReportsPerBuilderErrors(t *testing.T) {
	svc, _, _ := newTestService(t, config.PostConfig{})
	builders := batch(3)
	builders[1].SetSubject("")

	results, err := svc.PublishAll(context.Background(), builders)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(results[1].Err, nntp.ErrMissingRequiredHeader) {
		t.Fatalf("expected builder 1 to fail, got %v", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatal("other builders should succeed")
	}
}

func TestPublishAllCanceled(t *testing.T) {
	svc, mgr, _ := newTestService(t, config.PostConfig{})
	mgr.busyLeft["<b0@example.com>"] = 1 << 30

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.PublishAll(ctx, batch(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPublishAllEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, config.PostConfig{})
	results, err := svc.PublishAll(context.Background(), nil)
	if err != nil || results != nil {
		t.Fatalf("expected nothing, got %v %v", results, err)
	}
}
