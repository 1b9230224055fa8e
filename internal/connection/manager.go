package connection

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// StationConn holds information about a connected monitoring station
type StationConn struct {
	ConnectionID  string
	StationID     string
	Location      string
	ConnectedAt   time.Time
	LastHeardFrom time.Time
	Conn          net.Conn
	mu            sync.RWMutex
}

// UpdateLastHeardFrom updates the last activity timestamp
func (c *StationConn) UpdateLastHeardFrom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastHeardFrom = time.Now()
}

// GetLastHeardFrom returns the last activity timestamp
func (c *StationConn) GetLastHeardFrom() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastHeardFrom
}

// Manager manages all active station connections
type Manager struct {
	stations  map[string]*StationConn // key: connection_id
	byStation map[string][]string     // key: station_id, value: []connection_id
	mu        sync.RWMutex
	maxConns  int
}

// NewManager creates a new connection manager
func NewManager(maxConnections int) *Manager {
	return &Manager{
		stations:  make(map[string]*StationConn),
		byStation: make(map[string][]string),
		maxConns:  maxConnections,
	}
}

// Register adds a new station connection
func (m *Manager) Register(connectionID, stationID, location string, conn net.Conn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.stations) >= m.maxConns {
		return ErrMaxConnectionsReached
	}

	if _, exists := m.stations[connectionID]; exists {
		return fmt.Errorf("connection ID %s already registered", connectionID)
	}

	now := time.Now()
	station := &StationConn{
		ConnectionID:  connectionID,
		StationID:     stationID,
		Location:      location,
		ConnectedAt:   now,
		LastHeardFrom: now,
		Conn:          conn,
	}

	m.stations[connectionID] = station
	m.byStation[stationID] = append(m.byStation[stationID], connectionID)

	return nil
}

// Unregister removes a station connection
func (m *Manager) Unregister(connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	station, exists := m.stations[connectionID]
	if !exists {
		return fmt.Errorf("connection ID %s not found", connectionID)
	}

	stationID := station.StationID
	if connIDs, ok := m.byStation[stationID]; ok {
		for i, id := range connIDs {
			if id == connectionID {
				m.byStation[stationID] = append(connIDs[:i], connIDs[i+1:]...)
				break
			}
		}
		if len(m.byStation[stationID]) == 0 {
			delete(m.byStation, stationID)
		}
	}

	delete(m.stations, connectionID)

	return nil
}

// Get retrieves station connection info by connection ID
func (m *Manager) Get(connectionID string) (*StationConn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	station, exists := m.stations[connectionID]
	return station, exists
}

// GetByStation retrieves all connection IDs for a station
func (m *Manager) GetByStation(stationID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	connIDs := m.byStation[stationID]
	// Return a copy to avoid race conditions
	result := make([]string, len(connIDs))
	copy(result, connIDs)
	return result
}

// UpdateActivity updates the last heard from timestamp for a connection
func (m *Manager) UpdateActivity(connectionID string) error {
	m.mu.RLock()
	station, exists := m.stations[connectionID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection ID %s not found", connectionID)
	}

	station.UpdateLastHeardFrom()
	return nil
}

// GetInactiveConnections returns connection IDs that haven't been heard from in the given duration
func (m *Manager) GetInactiveConnections(timeout time.Duration) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var inactive []string

	for connID, station := range m.stations {
		lastHeard := station.GetLastHeardFrom()
		if now.Sub(lastHeard) > timeout {
			inactive = append(inactive, connID)
		}
	}

	return inactive
}

// Count returns the total number of active connections
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stations)
}

// Stats returns statistics about the connection manager
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ManagerStats{
		TotalConnections: len(m.stations),
		UniqueStations:   len(m.byStation),
		MaxConnections:   m.maxConns,
	}
}

// ManagerStats contains statistics about the connection manager
type ManagerStats struct {
	TotalConnections int
	UniqueStations   int
	MaxConnections   int
}

var (
	ErrMaxConnectionsReached = &ConnectionError{"maximum connections reached"}
)

// ConnectionError represents a connection error
type ConnectionError struct {
	msg string
}

func (e *ConnectionError) Error() string {
	return e.msg
}
