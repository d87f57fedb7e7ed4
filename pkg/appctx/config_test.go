package appctx

import (
	"context"
	"testing"

	"github.com/softwatch/softwatch/pkg/config"
)

func TestWithConfigAndConfig(t *testing.T) {
	mgr := config.NewManager()
	ctx := WithConfig(context.Background(), mgr)

	got, ok := Config(ctx)
	if !ok {
		t.Fatal("expected manager on context")
	}
	if got != mgr {
		t.Error("retrieved manager differs from stored manager")
	}
}

func TestConfigMissing(t *testing.T) {
	if _, ok := Config(context.Background()); ok {
		t.Error("expected no manager on empty context")
	}
}

func TestNilContexts(t *testing.T) {
	ctx := WithConfig(nil, config.NewManager()) //nolint:staticcheck
	if _, ok := Config(ctx); !ok {
		t.Error("expected manager after storing on nil context")
	}
	if _, ok := Config(nil); ok { //nolint:staticcheck
		t.Error("expected no manager from nil context")
	}
}

func TestNilManager(t *testing.T) {
	ctx := WithConfig(context.Background(), nil)
	if _, ok := Config(ctx); ok {
		t.Error("expected ok=false for nil manager")
	}
}
