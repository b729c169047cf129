package services_test

import (
	"errors"
	"strings"
	"testing"

	"datefixer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "exiftool", "execute", "write command", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"exiftool", "execute", "write command"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"transport": services.Wrap(services.ErrTransport, "exiftool", "read", "", errors.New("eof")),
		"protocol":  services.Wrap(services.ErrProtocol, "exiftool", "read date", "bad", nil),
		"tool":      services.Wrap(services.ErrExternalTool, "exiftool", "write date", "", nil),
		"io":        errors.New("permission denied"),
		"":          nil,
	}
	for want, err := range cases {
		if got := services.Classify(err); got != want {
			t.Fatalf("Classify(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestWithPathTagsOnce(t *testing.T) {
	base := services.Wrap(services.ErrProtocol, "exiftool", "read date", "", nil)
	err := services.WithPath("/photos/a.jpg", base)
	again := services.WithPath("/photos/other.jpg", err)

	var fe *services.FileError
	if !errors.As(again, &fe) {
		t.Fatalf("expected FileError, got %T", again)
	}
	if fe.Path != "/photos/a.jpg" {
		t.Fatalf("path should not be re-tagged, got %q", fe.Path)
	}
	if !errors.Is(again, services.ErrProtocol) {
		t.Fatal("FileError should unwrap to its marker")
	}
	if services.WithPath("/x", nil) != nil {
		t.Fatal("nil error should stay nil")
	}
}
