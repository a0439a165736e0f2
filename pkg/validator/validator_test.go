package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	FullName string `validate:"required"`
	Rating   int    `validate:"min=1,max=5"`
	Status   string `validate:"oneof=active inactive banned"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(sample{Rating: 9, Status: "gone"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := FormatValidationError(err)
	for _, want := range []string{
		"Full name is required",
		"Rating must be at most 5",
		"Status must be one of: active inactive banned",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestFormatValidationErrorPassesThroughOtherErrors(t *testing.T) {
	if got := FormatValidationError(errors.New("EOF")); got != "EOF" {
		t.Fatalf("got %q", got)
	}
}
