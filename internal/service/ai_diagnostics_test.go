package service

import (
	"context"
	"errors"
	"testing"

	"github.com/wavesignals/internal/llm"
)

type stubProvider struct {
	name       string
	configured bool
	out        string
	err        error
}

func (s stubProvider) Complete(context.Context, string) (string, error) { return s.out, s.err }
func (s stubProvider) Name() string                                     { return s.name }
func (s stubProvider) Configured() bool                                 { return s.configured }

func TestDiagnoseProviders(t *testing.T) {
	statuses := DiagnoseProviders(context.Background(), []llm.Provider{
		stubProvider{name: "Gemini", configured: true, out: "OK"},
		stubProvider{name: "OpenAI", configured: true, err: errors.New("401 unauthorized")},
		stubProvider{name: "Other"},
	})

	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].OK || statuses[0].Response != "OK" {
		t.Fatalf("unexpected first status %+v", statuses[0])
	}
	if statuses[1].OK || statuses[1].Error != "401 unauthorized" {
		t.Fatalf("unexpected second status %+v", statuses[1])
	}
	if statuses[2].Configured || statuses[2].Error == "" {
		t.Fatalf("unconfigured provider should report missing key, got %+v", statuses[2])
	}
}
