package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gastosapp/gastos-backend/internal/realtime"
)

func TestStreamEventsDeliversBroadcasts(t *testing.T) {
	hub := realtime.NewBroadcaster(nil)
	handler := StreamEvents(hub, nil)

	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", got)
	}

	for hub.ClientCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	hub.Broadcast("transactions.changed", map[string]string{"action": "created"})

	buf := make([]byte, 4096)
	var received strings.Builder
	for {
		n, err := resp.Body.Read(buf)
		received.Write(buf[:n])
		if strings.Contains(received.String(), "transactions.changed") {
			break
		}
		if err != nil {
			t.Fatalf("stream closed early: %v (got %q)", err, received.String())
		}
	}

	out := received.String()
	if !strings.Contains(out, "retry: 3000") {
		t.Fatalf("expected retry hint, got %q", out)
	}
	if !strings.Contains(out, "event: connected") {
		t.Fatalf("expected connected event, got %q", out)
	}
	if !strings.Contains(out, `"action":"created"`) {
		t.Fatalf("expected broadcast payload, got %q", out)
	}

	cancel()
}

func TestStreamEventsUnregistersOnDisconnect(t *testing.T) {
	hub := realtime.NewBroadcaster(nil)
	handler := StreamEvents(hub, nil)

	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client still registered after disconnect: %d", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
