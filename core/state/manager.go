package state

import (
	"fmt"
	"strconv"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"palettecore/storage"
)

// Manager exposes typed views over the raw key-value store. Every mapping the
// palette persists (positions, approvals, prices, escrow balances, ownership,
// accounts, the version counter) lives behind one of its accessors.
type Manager struct {
	db storage.Database
}

// NewManager wraps the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 so callers can use readable prefixes
// without worrying about length or collision structure.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the
// key existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.db.Get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under the supplied key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Delete(kvKey(key))
}

func tokenKey(prefix string, id uint64) []byte {
	return []byte(prefix + strconv.FormatUint(id, 10))
}

func addressKey(prefix string, addr [20]byte) []byte {
	buf := make([]byte, len(prefix)+len(addr))
	copy(buf, prefix)
	copy(buf[len(prefix):], addr[:])
	return buf
}
