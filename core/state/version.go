package state

// The palette version counter is a plain change indicator for clients; it is
// never consulted for authorization.
var versionKey = []byte("palette/version")

// VersionPut records the palette version counter.
func (m *Manager) VersionPut(version uint64) error {
	return m.KVPut(versionKey, version)
}

// VersionGet returns the stored version counter and whether it was present.
// Absence means the genesis palette has not been applied yet.
func (m *Manager) VersionGet() (uint64, bool, error) {
	var stored uint64
	ok, err := m.KVGet(versionKey, &stored)
	if err != nil {
		return 0, false, err
	}
	return stored, ok, nil
}
