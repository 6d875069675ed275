package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
)

// Store caches preferences loaded once from a Backend. Reads are safe from any
// goroutine; every setter persists its single value synchronously before the
// cache is updated.
type Store struct {
	mu        sync.RWMutex
	backend   Backend
	logger    *slog.Logger
	prefs     Preferences
	listeners []Listener
}

// Open loads stored values and falls back to defaults for missing or malformed entries.
func Open(ctx context.Context, backend Backend, logger *slog.Logger) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	raw, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	s := &Store{backend: backend, logger: logger, prefs: Defaults()}
	s.apply(raw)
	return s, nil
}

func (s *Store) apply(raw map[string]string) {
	for key, value := range raw {
		var err error
		switch key {
		case KeyDefaultZoom:
			var z float64
			if z, err = parseZoom(value); err == nil {
				s.prefs.DefaultZoom = z
			}
		case KeyLightOnStart:
			var b bool
			if b, err = strconv.ParseBool(value); err == nil {
				s.prefs.LightOnStart = b
			}
		case KeyHighContrast:
			var b bool
			if b, err = strconv.ParseBool(value); err == nil {
				s.prefs.HighContrast = b
			}
		case KeyButtonPosition:
			var p ButtonPosition
			if p, err = ParseButtonPosition(value); err == nil {
				s.prefs.ButtonPosition = p
			}
		default:
			continue
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("ignoring stored preference", "key", key, "value", value, "error", err)
		}
	}
}

func parseZoom(value string) (float64, error) {
	z, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if !validZoom(z) {
		return 0, ErrInvalidValue
	}
	return z, nil
}

func validZoom(z float64) bool {
	return !math.IsNaN(z) && z >= MinDefaultZoom && z <= MaxDefaultZoom
}

// Snapshot returns a copy of all current values.
func (s *Store) Snapshot() Preferences {
	if s == nil {
		return Defaults()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *Store) DefaultZoom() float64           { return s.Snapshot().DefaultZoom }
func (s *Store) LightOnStart() bool             { return s.Snapshot().LightOnStart }
func (s *Store) HighContrast() bool             { return s.Snapshot().HighContrast }
func (s *Store) ButtonPosition() ButtonPosition { return s.Snapshot().ButtonPosition }

// SetDefaultZoom stores the zoom applied when the camera screen opens.
func (s *Store) SetDefaultZoom(ctx context.Context, zoom float64) error {
	if !validZoom(zoom) {
		return fmt.Errorf("%w: default zoom %v outside [%v, %v]", ErrInvalidValue, zoom, MinDefaultZoom, MaxDefaultZoom)
	}
	return s.put(ctx, KeyDefaultZoom, strconv.FormatFloat(zoom, 'f', -1, 64), func(p *Preferences) { p.DefaultZoom = zoom })
}

// SetLightOnStart controls whether the torch is switched on once the camera is ready.
func (s *Store) SetLightOnStart(ctx context.Context, on bool) error {
	return s.put(ctx, KeyLightOnStart, strconv.FormatBool(on), func(p *Preferences) { p.LightOnStart = on })
}

// SetHighContrast toggles the black/yellow palette.
func (s *Store) SetHighContrast(ctx context.Context, on bool) error {
	return s.put(ctx, KeyHighContrast, strconv.FormatBool(on), func(p *Preferences) { p.HighContrast = on })
}

// SetButtonPosition moves the control column.
func (s *Store) SetButtonPosition(ctx context.Context, pos ButtonPosition) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: button position %q", ErrInvalidValue, pos)
	}
	return s.put(ctx, KeyButtonPosition, string(pos), func(p *Preferences) { p.ButtonPosition = pos })
}

// Set parses value according to key and stores it.
func (s *Store) Set(ctx context.Context, key, value string) error {
	switch key {
	case KeyDefaultZoom:
		z, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return s.SetDefaultZoom(ctx, z)
	case KeyLightOnStart, KeyHighContrast:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if key == KeyLightOnStart {
			return s.SetLightOnStart(ctx, b)
		}
		return s.SetHighContrast(ctx, b)
	case KeyButtonPosition:
		p, err := ParseButtonPosition(value)
		if err != nil {
			return err
		}
		return s.SetButtonPosition(ctx, p)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidValue, key)
	}
}

// Subscribe registers l for change notifications. Listeners run on the
// goroutine that called the setter.
func (s *Store) Subscribe(l Listener) {
	if s == nil || l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) put(ctx context.Context, key, value string, mutate func(*Preferences)) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if err := s.backend.Put(ctx, key, value); err != nil {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Error("persist preference", "key", key, "error", err)
		}
		return fmt.Errorf("persist %s: %w", key, err)
	}
	mutate(&s.prefs)
	snap := s.prefs
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("preference updated", "key", key, "value", value)
	}
	for _, l := range listeners {
		l(key, snap)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
