package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memNotifier struct {
	n   int
	err error
}

func (m *memNotifier) Send(ctx context.Context, channelID uint64, text string) error {
	m.n++
	return m.err
}

func TestMulti_SendsToAllAndCombinesErrors(t *testing.T) {
	a := &memNotifier{err: errors.New("a failed")}
	b := &memNotifier{}
	c := &memNotifier{err: errors.New("c failed")}

	err := Multi{a, nil, b, c}.Send(context.Background(), 1, "hi")
	if a.n != 1 || b.n != 1 || c.n != 1 {
		t.Fatalf("every notifier should be called once: %d %d %d", a.n, b.n, c.n)
	}
	if err == nil || !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "c failed") {
		t.Fatalf("want both errors, got %v", err)
	}
}

func TestMulti_NoErrors(t *testing.T) {
	if err := (Multi{&memNotifier{}}).Send(context.Background(), 1, "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMirrored_MirrorFailureIsNotReturned(t *testing.T) {
	primary := &memNotifier{}
	mirror := &memNotifier{err: errors.New("kafka down")}
	core, logs := observer.New(zap.WarnLevel)

	m := &Mirrored{Primary: primary, Mirrors: Multi{mirror}, Logger: zap.New(core)}
	if err := m.Send(context.Background(), 1, "hi"); err != nil {
		t.Fatalf("mirror failure leaked to caller: %v", err)
	}
	if primary.n != 1 || mirror.n != 1 {
		t.Fatalf("want one send each, got primary=%d mirror=%d", primary.n, mirror.n)
	}
	if logs.FilterMessage("notify_mirror_error").Len() != 1 {
		t.Fatalf("mirror failure should be logged once")
	}
}

func TestMirrored_PrimaryFailureSkipsMirrors(t *testing.T) {
	primary := &memNotifier{err: errors.New("discord down")}
	mirror := &memNotifier{}

	m := &Mirrored{Primary: primary, Mirrors: Multi{mirror}}
	err := m.Send(context.Background(), 1, "hi")
	if err == nil || !strings.Contains(err.Error(), "discord down") {
		t.Fatalf("want primary error, got %v", err)
	}
	if mirror.n != 0 {
		t.Fatalf("mirror should not receive undelivered alerts, got %d", mirror.n)
	}
}
