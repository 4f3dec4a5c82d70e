package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestAsyncWriterDeliversToAllSinks(t *testing.T) {
	a := &bytes.Buffer{}
	b := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{a, b}, 1024)

	if err := w.Write([]byte("line one\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write([]byte("line two\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "line one\nline two\n"
	if a.String() != want || b.String() != want {
		t.Fatalf("sinks = %q / %q, want %q", a.String(), b.String(), want)
	}
}

func TestAsyncWriterFlushAfterClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 1024)
	if err := w.Write([]byte("late\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Flush() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Flush after Close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Flush after Close blocked")
	}
	if !strings.Contains(buf.String(), "late") {
		t.Fatalf("close did not drain queued line, sink = %q", buf.String())
	}
}

func TestAsyncWriterCloseTwice(t *testing.T) {
	w := newAsyncWriter([]io.Writer{&bytes.Buffer{}}, 1024)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
