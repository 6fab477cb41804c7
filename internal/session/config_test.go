package session

import (
	"errors"
	"testing"

	"github.com/diogo/deploychat/internal/models"
)

type fakeDeploymentProvider struct {
	dep   *models.Deployment
	err   error
	calls int
}

func (f *fakeDeploymentProvider) GetDeployment() (*models.Deployment, error) {
	f.calls++
	return f.dep, f.err
}

type fakeCapabilityChecker struct {
	supported bool
	err       error
	calls     int
}

func (f *fakeCapabilityChecker) HasChatSupport() (bool, error) {
	f.calls++
	return f.supported, f.err
}

func TestConfigDeploymentCached(t *testing.T) {
	deps := &fakeDeploymentProvider{dep: &models.Deployment{ID: "d1", Label: "Test"}}
	cfg := NewConfig(deps, &fakeCapabilityChecker{}, true, false)

	for i := 0; i < 3; i++ {
		dep, err := cfg.Deployment()
		if err != nil {
			t.Fatalf("Deployment() error = %v", err)
		}
		if dep.ID != "d1" {
			t.Errorf("deployment id = %q, want d1", dep.ID)
		}
	}
	if deps.calls != 1 {
		t.Errorf("GetDeployment called %d times, want 1", deps.calls)
	}
}

func TestConfigDeploymentErrorNotCached(t *testing.T) {
	deps := &fakeDeploymentProvider{err: errors.New("boom")}
	cfg := NewConfig(deps, &fakeCapabilityChecker{}, true, false)

	if _, err := cfg.Deployment(); err == nil {
		t.Fatal("Expected deployment error")
	}

	// A later successful fetch still lands in the cache
	deps.err = nil
	deps.dep = &models.Deployment{ID: "d1"}
	if _, err := cfg.Deployment(); err != nil {
		t.Fatalf("Deployment() after recovery error = %v", err)
	}
	if deps.calls != 2 {
		t.Errorf("GetDeployment called %d times, want 2", deps.calls)
	}
}

func TestConfigChatAPISupportedCached(t *testing.T) {
	caps := &fakeCapabilityChecker{supported: true}
	cfg := NewConfig(&fakeDeploymentProvider{}, caps, true, false)

	for i := 0; i < 3; i++ {
		if !cfg.ChatAPISupported() {
			t.Error("ChatAPISupported() = false, want true")
		}
	}
	if caps.calls != 1 {
		t.Errorf("HasChatSupport called %d times, want 1", caps.calls)
	}
}

func TestConfigChatAPISupportedErrorCachesFalse(t *testing.T) {
	caps := &fakeCapabilityChecker{err: errors.New("capability lookup failed")}
	cfg := NewConfig(&fakeDeploymentProvider{}, caps, true, false)

	if cfg.ChatAPISupported() {
		t.Error("failed capability lookup should resolve to false")
	}
	// Even if the endpoint recovers, the answer stays pinned for the session
	caps.err = nil
	caps.supported = true
	if cfg.ChatAPISupported() {
		t.Error("capability answer must not flip mid-session")
	}
	if caps.calls != 1 {
		t.Errorf("HasChatSupport called %d times, want 1", caps.calls)
	}
}

func TestConfigInvalidate(t *testing.T) {
	caps := &fakeCapabilityChecker{supported: false}
	cfg := NewConfig(&fakeDeploymentProvider{dep: &models.Deployment{ID: "d1"}}, caps, true, false)

	cfg.ChatAPISupported()
	cfg.Invalidate()
	caps.supported = true
	if !cfg.ChatAPISupported() {
		t.Error("ChatAPISupported() after Invalidate() should re-resolve")
	}
	if caps.calls != 2 {
		t.Errorf("HasChatSupport called %d times, want 2", caps.calls)
	}
}

func TestConfigFeedbackAvailable(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"no association columns", nil, false},
		{"with association column", []string{"association_id"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := &fakeDeploymentProvider{dep: &models.Deployment{ID: "d1", AssociationColumns: tt.columns}}
			cfg := NewConfig(deps, &fakeCapabilityChecker{}, true, false)
			if got := cfg.FeedbackAvailable(); got != tt.want {
				t.Errorf("FeedbackAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigAssociationIDColumnNameOnError(t *testing.T) {
	deps := &fakeDeploymentProvider{err: errors.New("unreachable")}
	cfg := NewConfig(deps, &fakeCapabilityChecker{}, true, false)
	if got := cfg.AssociationIDColumnName(); got != "" {
		t.Errorf("AssociationIDColumnName() = %q, want empty on fetch failure", got)
	}
}
