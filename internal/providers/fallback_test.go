package providers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type stubProvider struct {
	name string
	text string
	err  error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestFallbackChainUsesPrimaryFirst(t *testing.T) {
	chain, err := NewFallbackChain(slog.Default(),
		&stubProvider{name: "primary", text: "from primary"},
		&stubProvider{name: "backup", text: "from backup"},
	)
	if err != nil {
		t.Fatalf("NewFallbackChain() error = %v", err)
	}

	got, err := chain.Complete(context.Background(), "plan")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from primary" {
		t.Errorf("Complete() = %q, want primary response", got)
	}
	if chain.Name() != "primary" {
		t.Errorf("Name() = %q, want primary", chain.Name())
	}
}

func TestFallbackChainFallsThrough(t *testing.T) {
	chain, err := NewFallbackChain(slog.Default(),
		&stubProvider{name: "primary", err: errors.New("rate limited")},
		&stubProvider{name: "backup", text: "from backup"},
	)
	if err != nil {
		t.Fatalf("NewFallbackChain() error = %v", err)
	}

	got, err := chain.Complete(context.Background(), "plan")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from backup" {
		t.Errorf("Complete() = %q, want backup response", got)
	}
}

func TestFallbackChainReportsAllErrors(t *testing.T) {
	errPrimary := errors.New("primary down")
	errBackup := errors.New("backup down")
	chain, err := NewFallbackChain(slog.Default(),
		&stubProvider{name: "primary", err: errPrimary},
		&stubProvider{name: "backup", err: errBackup},
	)
	if err != nil {
		t.Fatalf("NewFallbackChain() error = %v", err)
	}

	_, err = chain.Complete(context.Background(), "plan")
	if err == nil {
		t.Fatal("Complete() succeeded with all providers down")
	}
	if !errors.Is(err, errPrimary) || !errors.Is(err, errBackup) {
		t.Errorf("Complete() error %v does not wrap both provider errors", err)
	}
}

func TestFallbackChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backupCalled := false
	backup := &stubProvider{name: "backup", text: "from backup"}
	chain, err := NewFallbackChain(slog.Default(),
		&stubProvider{name: "primary", err: context.Canceled},
		providerFunc(func(c context.Context, p string) (string, error) {
			backupCalled = true
			return backup.Complete(c, p)
		}),
	)
	if err != nil {
		t.Fatalf("NewFallbackChain() error = %v", err)
	}

	if _, err := chain.Complete(ctx, "plan"); err == nil {
		t.Fatal("Complete() succeeded with cancelled context")
	}
	if backupCalled {
		t.Error("fallback provider was tried after context cancellation")
	}
}

type providerFunc func(ctx context.Context, prompt string) (string, error)

func (f providerFunc) Name() string { return "func" }

func (f providerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
