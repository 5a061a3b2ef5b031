package batch

import (
	"errors"
	"testing"
)

func TestNewResolved(t *testing.T) {
	r := NewResolved("AAECAwQFBgcICQoL", 42)
	if r.ID() != "AAECAwQFBgcICQoL" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.DocID() != 42 {
		t.Errorf("DocID() = %d", r.DocID())
	}
	if r.Status() != StatusResolved {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusResolved)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewNotFound(t *testing.T) {
	r := NewNotFound("f-1")
	if r.Status() != StatusNotFound || r.DocID() != 0 {
		t.Errorf("got status=%q doc=%d", r.Status(), r.DocID())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("f-2", err)
	if r.ID() != "f-2" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusResolved != "resolved" {
		t.Errorf("StatusResolved = %q", StatusResolved)
	}
	if StatusNotFound != "not_found" {
		t.Errorf("StatusNotFound = %q", StatusNotFound)
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q", StatusError)
	}
}
