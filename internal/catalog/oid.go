package catalog

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// InvalidOID is the zero value shared by every identifier type. No catalog
// object is ever assigned it.
const InvalidOID = 0

// DatabaseOID identifies a database.
type DatabaseOID uint32

// NamespaceOID identifies a namespace (schema) inside a database.
type NamespaceOID uint32

// TableOID identifies a table.
type TableOID uint32

// ColumnOID identifies a column within a table.
type ColumnOID uint32

// IndexOID identifies an index.
type IndexOID uint32

func hashOID(v uint32) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return xxhash.Sum64(buf[:])
}

// Hash returns the hash of the identifier.
func (o DatabaseOID) Hash() uint64 { return hashOID(uint32(o)) }

// Hash returns the hash of the identifier.
func (o NamespaceOID) Hash() uint64 { return hashOID(uint32(o)) }

// Hash returns the hash of the identifier.
func (o TableOID) Hash() uint64 { return hashOID(uint32(o)) }

// Hash returns the hash of the identifier.
func (o ColumnOID) Hash() uint64 { return hashOID(uint32(o)) }

// Hash returns the hash of the identifier.
func (o IndexOID) Hash() uint64 { return hashOID(uint32(o)) }

// IsValid reports whether the identifier was assigned.
func (o TableOID) IsValid() bool { return o != InvalidOID }

// IsValid reports whether the identifier was assigned.
func (o IndexOID) IsValid() bool { return o != InvalidOID }

func (o DatabaseOID) String() string  { return fmt.Sprintf("db#%d", uint32(o)) }
func (o NamespaceOID) String() string { return fmt.Sprintf("ns#%d", uint32(o)) }
func (o TableOID) String() string     { return fmt.Sprintf("table#%d", uint32(o)) }
func (o ColumnOID) String() string    { return fmt.Sprintf("col#%d", uint32(o)) }
func (o IndexOID) String() string     { return fmt.Sprintf("index#%d", uint32(o)) }
