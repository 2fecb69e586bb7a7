package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arvindram27/memex-agent/internal/config"
	"github.com/arvindram27/memex-agent/pkg/transcribe"
	transcribemock "github.com/arvindram27/memex-agent/pkg/transcribe/mock"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
transcriber:
  provider: whisper
  model_path: /models/ggml-base.en.bin
  language: en
browser:
  headless: true
  home_url: "https://start.example"
pipeline:
  timeout: 10s
  confidence_threshold: 0.7
  max_targets: 2
  max_suggestions: 4
memory:
  capacity: 50
  postgres_dsn: "postgres://localhost/memex"
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr: got %q, want %q", cfg.Server.ListenAddr, ":9090")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}
	if cfg.Transcriber.Provider != "whisper" || cfg.Transcriber.ModelPath == "" {
		t.Errorf("transcriber: got %+v, want whisper with a model path", cfg.Transcriber)
	}
	if !cfg.Browser.Headless || cfg.Browser.HomeURL != "https://start.example" {
		t.Errorf("browser: got %+v", cfg.Browser)
	}
	if cfg.Pipeline.Timeout != 10*time.Second || cfg.Pipeline.ConfidenceThreshold != 0.7 {
		t.Errorf("pipeline: got %+v", cfg.Pipeline)
	}
	if cfg.Memory.Capacity != 50 {
		t.Errorf("memory.capacity: got %d, want 50", cfg.Memory.Capacity)
	}
}

func TestLoadFromReader_DefaultsApplied(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("transcriber:\n  provider: mock\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != config.DefaultListenAddr {
		t.Errorf("listen_addr: got %q, want default %q", cfg.Server.ListenAddr, config.DefaultListenAddr)
	}
	if cfg.Pipeline.Timeout != config.DefaultPipelineTimeout {
		t.Errorf("pipeline.timeout: got %s, want %s", cfg.Pipeline.Timeout, config.DefaultPipelineTimeout)
	}
	if cfg.Pipeline.ConfidenceThreshold != config.DefaultThreshold {
		t.Errorf("confidence_threshold: got %v, want %v", cfg.Pipeline.ConfidenceThreshold, config.DefaultThreshold)
	}
	if cfg.Pipeline.MaxTargets != config.DefaultMaxTargets || cfg.Pipeline.MaxSuggestions != config.DefaultMaxSuggestions {
		t.Errorf("pipeline caps: got %+v", cfg.Pipeline)
	}
	if cfg.Memory.Capacity != config.DefaultMemoryCapacity {
		t.Errorf("memory.capacity: got %d, want %d", cfg.Memory.Capacity, config.DefaultMemoryCapacity)
	}
	if cfg.Browser.NavigationTimeout != config.DefaultNavigationTimeout {
		t.Errorf("navigation_timeout: got %s, want %s", cfg.Browser.NavigationTimeout, config.DefaultNavigationTimeout)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("serverr:\n  listen_addr: \":8080\"\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad log level",
			yaml: "server:\n  log_level: bananas\n",
			want: "log_level",
		},
		{
			name: "whisper without model path",
			yaml: "transcriber:\n  provider: whisper\n",
			want: "model_path",
		},
		{
			name: "threshold out of range",
			yaml: "pipeline:\n  confidence_threshold: 1.5\n",
			want: "confidence_threshold",
		},
		{
			name: "negative timeout",
			yaml: "pipeline:\n  timeout: -5s\n",
			want: "timeout",
		},
		{
			name: "negative capacity",
			yaml: "memory:\n  capacity: -1\n",
			want: "capacity",
		},
		{
			name: "tls missing key",
			yaml: "server:\n  tls:\n    cert_file: /tmp/cert.pem\n",
			want: "tls",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_MultipleErrorsJoined(t *testing.T) {
	t.Parallel()
	bad := "server:\n  log_level: loud\npipeline:\n  confidence_threshold: 2\n"
	_, err := config.LoadFromReader(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "log_level") || !strings.Contains(msg, "confidence_threshold") {
		t.Errorf("joined error %q should mention both failures", msg)
	}
}

func TestRegistry_CreateTranscriber(t *testing.T) {
	t.Parallel()
	r := config.NewRegistry()

	if _, err := r.CreateTranscriber(config.TranscriberConfig{Provider: "whisper"}); err == nil {
		t.Fatal("expected ErrProviderNotRegistered, got nil")
	}

	var gotModelPath string
	r.RegisterTranscriber("whisper", func(tc config.TranscriberConfig) (transcribe.Transcriber, error) {
		gotModelPath = tc.ModelPath
		return &transcribemock.Transcriber{}, nil
	})

	tr, err := r.CreateTranscriber(config.TranscriberConfig{Provider: "whisper", ModelPath: "/m.bin"})
	if err != nil {
		t.Fatalf("CreateTranscriber: %v", err)
	}
	if tr == nil {
		t.Fatal("CreateTranscriber returned nil transcriber")
	}
	if gotModelPath != "/m.bin" {
		t.Errorf("factory model path = %q, want %q", gotModelPath, "/m.bin")
	}
}
