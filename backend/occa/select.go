package occa

import (
	"github.com/notargets/amrkit/backend"
	"go.uber.org/zap"
)

// DefaultModes is the device preference order: parallel backends first
var DefaultModes = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// Select opens the first available device from modes (DefaultModes when
// empty). It falls back to the host backend when no device opens, so the
// result is always usable. Call once at startup and inject the result
func Select(log *zap.Logger, modes ...string) backend.Backend {
	if log == nil {
		log = zap.NewNop()
	}
	if len(modes) == 0 {
		modes = DefaultModes
	}
	for _, props := range modes {
		dev, err := NewDevice(props, log)
		if err == nil {
			log.Info("selected array backend", zap.String("backend", dev.Name()))
			return dev
		}
		log.Debug("device unavailable", zap.String("props", props), zap.Error(err))
	}
	log.Info("selected array backend", zap.String("backend", backend.Host{}.Name()))
	return backend.Host{}
}
