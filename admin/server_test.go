package admin

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/ensemblops/observe"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	var buf bytes.Buffer
	h := (&Handlers{Client: &fakeClient{}}).Routes()
	srv := NewServer(h, ServerConfig{ShutdownTimeout: time.Second, Logger: observe.NewLoggerWithWriter("info", &buf)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"capacity"`) {
		t.Errorf("GET = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	logs := buf.String()
	for _, event := range []string{"admin.listening", "admin.stopped"} {
		if !strings.Contains(logs, event) {
			t.Errorf("logs missing %s:\n%s", event, logs)
		}
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	srv := NewServer(http.NotFoundHandler(), ServerConfig{Addr: ln.Addr().String()})
	if err := srv.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "admin: listen") {
		t.Errorf("Run = %v, want listen error", err)
	}
}
