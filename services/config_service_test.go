package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/open-teleop/movingheads/pkg/config"
)

const showYAML = `movingHeads:
  - name: left
    position: [0, 0, 0]
    pan: {channel: 1, value: 0, maxValue: 270}
    tilt: {channel: 2, value: 0, maxValue: 135}
room: [10, 10, 10]
home: [5, 5, 5]
speed: 1
`

func writeShow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestShowConfigServiceLoads(t *testing.T) {
	path := writeShow(t, showYAML)
	svc, err := NewShowConfigService(path, nil)
	if err != nil {
		t.Fatalf("NewShowConfigService failed: %v", err)
	}

	cfg := svc.GetCurrentConfig()
	if len(cfg.MovingHeads) != 1 || cfg.MovingHeads[0].Name != "left" {
		t.Errorf("unexpected config %+v", cfg)
	}
	data, err := svc.GetCurrentConfigYAML()
	if err != nil || string(data) != showYAML {
		t.Errorf("GetCurrentConfigYAML = %q, %v", data, err)
	}
	data[0] = 'X'
	if again, _ := svc.GetCurrentConfigYAML(); string(again) != showYAML {
		t.Errorf("returned YAML aliases the service copy")
	}
	if svc.Path() != path {
		t.Errorf("Path = %s", svc.Path())
	}
}

func TestShowConfigServiceRejectsInvalidShow(t *testing.T) {
	path := writeShow(t, "movingHeads: []\nroom: [1, 1, 1]\nhome: [0, 0, 0]\n")
	if _, err := NewShowConfigService(path, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewShowConfigService("", nil); err == nil {
		t.Errorf("expected error for empty path")
	}
}

func TestShowConfigServiceKeepsConfigOnFailedReload(t *testing.T) {
	path := writeShow(t, showYAML)
	svc, err := NewShowConfigService(path, nil)
	if err != nil {
		t.Fatalf("NewShowConfigService failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("speed: -1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := svc.LoadConfig(); err == nil {
		t.Fatalf("expected reload to fail")
	}
	if svc.GetCurrentConfig() == nil || svc.GetCurrentConfig().Speed != 1 {
		t.Errorf("previous config should be kept")
	}
}
