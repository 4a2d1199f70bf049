package device

import (
	"context"
	"sync"
)

// MockClient returns controllable fixed data for development and testing.
type MockClient struct {
	mu sync.Mutex

	State    State
	ReadErr  error
	WriteErr error
	// RejectWrites makes writes return success=false without an error.
	RejectWrites bool

	ZoneWrites []float64
	TankWrites []float64
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) ReadState(_ context.Context, _ string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	st := m.State
	return &st, nil
}

func (m *MockClient) WriteZoneTarget(_ context.Context, _ string, value float64) (WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return WriteResult{}, m.WriteErr
	}
	if m.RejectWrites {
		return WriteResult{Success: false}, nil
	}
	changed := m.State.ZoneTarget != value
	m.State.ZoneTarget = value
	m.ZoneWrites = append(m.ZoneWrites, value)
	return WriteResult{Success: true, Changed: changed}, nil
}

func (m *MockClient) WriteTankTarget(_ context.Context, _ string, value float64) (WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return WriteResult{}, m.WriteErr
	}
	if m.RejectWrites {
		return WriteResult{Success: false}, nil
	}
	changed := m.State.TankTarget != value
	m.State.TankTarget = value
	m.TankWrites = append(m.TankWrites, value)
	return WriteResult{Success: true, Changed: changed}, nil
}
