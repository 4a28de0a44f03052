package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type fakeMigrator struct {
	version uint
	err     error
	calls   []string
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, false, f.err
}

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	return f.err
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	return f.err
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.err
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	return f.err
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		steps     int
		version   bool
		forceSet  bool
		err       error
		wantCall  string
		wantCode  int
	}{
		{"up", "up", 0, false, false, nil, "up", 0},
		{"up no change", "up", 0, false, false, migrate.ErrNoChange, "up", 0},
		{"up failure", "up", 0, false, false, errors.New("syntax error"), "up", 1},
		{"down failure", "down", 0, false, false, errors.New("locked"), "down", 1},
		{"steps", "up", -1, false, false, nil, "steps", 0},
		{"version", "up", 0, true, false, nil, "version", 0},
		{"nil version", "up", 0, true, false, migrate.ErrNilVersion, "version", 0},
		{"version failure", "up", 0, true, false, errors.New("connection reset"), "version", 1},
		{"force failure", "up", 0, false, true, errors.New("locked"), "force", 1},
		{"unknown direction", "sideways", 0, false, false, nil, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{err: tt.err}

			code := run(m, tt.direction, tt.steps, tt.version, tt.forceSet, 1)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d", code, tt.wantCode)
			}

			if tt.wantCall == "" {
				if len(m.calls) != 0 {
					t.Errorf("calls = %v, want none", m.calls)
				}
				return
			}
			if len(m.calls) != 1 || m.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", m.calls, tt.wantCall)
			}
		})
	}
}
