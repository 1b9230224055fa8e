package connection

import (
	"net"
	"testing"
	"time"
)

type mockAddr struct{}

func (m *mockAddr) Network() string { return "tcp" }
func (m *mockAddr) String() string  { return "127.0.0.1:0" }

type mockConn struct{}

func (m *mockConn) Read(b []byte) (n int, err error)   { return 0, nil }
func (m *mockConn) Write(b []byte) (n int, err error)  { return len(b), nil }
func (m *mockConn) Close() error                       { return nil }
func (m *mockConn) LocalAddr() net.Addr                { return &mockAddr{} }
func (m *mockConn) RemoteAddr() net.Addr               { return &mockAddr{} }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func TestManager_Register(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	err := m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("Expected 1 connection, got %d", m.Count())
	}

	station, exists := m.Get("conn1")
	if !exists {
		t.Fatal("Station not found")
	}

	if station.StationID != "station-dhanmondi" {
		t.Errorf("Expected station-dhanmondi, got %s", station.StationID)
	}
}

func TestManager_RegisterMaxConnections(t *testing.T) {
	m := NewManager(2)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn2", "station-gulshan", "Gulshan", conn)

	// Third connection should fail
	err := m.Register("conn3", "station-mirpur", "Mirpur", conn)
	if err != ErrMaxConnectionsReached {
		t.Errorf("Expected ErrMaxConnectionsReached, got %v", err)
	}
}

func TestManager_Unregister(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn2", "station-dhanmondi", "Dhanmondi", conn)

	err := m.Unregister("conn1")
	if err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("Expected 1 connection, got %d", m.Count())
	}

	// Station should still have one connection
	connIDs := m.GetByStation("station-dhanmondi")
	if len(connIDs) != 1 {
		t.Errorf("Expected 1 connection for station, got %d", len(connIDs))
	}
}

func TestManager_GetByStation(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn2", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn3", "station-gulshan", "Gulshan", conn)

	connIDs := m.GetByStation("station-dhanmondi")
	if len(connIDs) != 2 {
		t.Errorf("Expected 2 connections for station-dhanmondi, got %d", len(connIDs))
	}

	connIDs = m.GetByStation("station-gulshan")
	if len(connIDs) != 1 {
		t.Errorf("Expected 1 connection for station-gulshan, got %d", len(connIDs))
	}
}

func TestManager_UpdateActivity(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)

	station, _ := m.Get("conn1")
	firstHeard := station.GetLastHeardFrom()

	time.Sleep(10 * time.Millisecond)

	err := m.UpdateActivity("conn1")
	if err != nil {
		t.Fatalf("UpdateActivity failed: %v", err)
	}

	station, _ = m.Get("conn1")
	secondHeard := station.GetLastHeardFrom()

	if !secondHeard.After(firstHeard) {
		t.Error("LastHeardFrom was not updated")
	}
}

func TestManager_GetInactiveConnections(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn2", "station-gulshan", "Gulshan", conn)

	// Make conn1 inactive by manually setting its timestamp
	station1, _ := m.Get("conn1")
	station1.mu.Lock()
	station1.LastHeardFrom = time.Now().Add(-5 * time.Minute)
	station1.mu.Unlock()

	inactive := m.GetInactiveConnections(2 * time.Minute)
	if len(inactive) != 1 {
		t.Errorf("Expected 1 inactive connection, got %d", len(inactive))
	}

	if inactive[0] != "conn1" {
		t.Errorf("Expected conn1 to be inactive, got %s", inactive[0])
	}
}

func TestManager_Stats(t *testing.T) {
	m := NewManager(100)
	conn := &mockConn{}

	m.Register("conn1", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn2", "station-dhanmondi", "Dhanmondi", conn)
	m.Register("conn3", "station-gulshan", "Gulshan", conn)

	stats := m.Stats()
	if stats.TotalConnections != 3 {
		t.Errorf("Expected 3 connections, got %d", stats.TotalConnections)
	}
	if stats.UniqueStations != 2 {
		t.Errorf("Expected 2 unique stations, got %d", stats.UniqueStations)
	}
	if stats.MaxConnections != 100 {
		t.Errorf("Expected max 100, got %d", stats.MaxConnections)
	}
}
