package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrToolExecution, "rasterize", "convert deck", "libreoffice failed", base)
	if !errors.Is(err, ErrToolExecution) {
		t.Fatalf("expected ErrToolExecution marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "render", "encode", "", nil)
	if !errors.Is(err, ErrToolExecution) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrNoOutput, "render", "concatenate", "no segments", nil)
	details := Details(err)
	if details.Message != "render: concatenate: no segments" {
		t.Fatalf("unexpected message: %q", details.Message)
	}
}

func TestDetailsNil(t *testing.T) {
	if Details(nil).Message != "" {
		t.Fatal("expected empty message for nil error")
	}
}
