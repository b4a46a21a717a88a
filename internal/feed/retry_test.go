package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/staffup/internal/domain"
)

// fake provider you can control
type fakeProvider struct {
	errs []error
	i    int
}

func (f *fakeProvider) Fetch(ctx context.Context) (domain.Snapshot, error) {
	if f.i >= len(f.errs) {
		return domain.Snapshot{}, errors.New("no more")
	}
	err := f.errs[f.i]
	f.i++
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Pilots: []domain.Pilot{{Callsign: "OK1"}}}, nil
}

func TestRetryProvider_SucceedsAfterRetry(t *testing.T) {
	f := &fakeProvider{errs: []error{errors.New("first fail"), nil}}
	rp := &RetryProvider{Inner: f, Attempts: 3, Backoff: time.Millisecond}

	snap, err := rp.Fetch(context.Background())
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if len(snap.Pilots) != 1 || f.i != 2 {
		t.Fatalf("unexpected snapshot/calls: %+v calls=%d", snap, f.i)
	}
}

func TestRetryProvider_AllFailAnnotates(t *testing.T) {
	boom := errors.New("fail2")
	f := &fakeProvider{errs: []error{errors.New("fail1"), boom}}
	rp := &RetryProvider{Inner: f, Attempts: 2}

	_, err := rp.Fetch(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want last error wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("expected attempt annotation, got %q", err.Error())
	}
}

func TestRetryProvider_StopsOnCancel(t *testing.T) {
	f := &fakeProvider{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	rp := &RetryProvider{Inner: f, Attempts: 3, Backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rp.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if f.i != 1 {
		t.Fatalf("want a single attempt before cancel, got %d", f.i)
	}
}
