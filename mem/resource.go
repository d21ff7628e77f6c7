package mem

import (
	"encoding/binary"
	"log"
)

// WordSize is the number of bytes the bus moves in one transaction.
const WordSize = 4

// A Resource is a memory block or a peripheral controller that has exactly
// one native read/write port. The port moves one 32-bit word per access and
// is addressed with byte offsets relative to the start of the resource.
type Resource interface {
	Name() string

	// Size returns the number of bytes the resource decodes.
	Size() uint64

	// ReadWord returns the word at the word-aligned offset.
	ReadWord(offset uint64) uint32

	// WriteWord replaces the word at the word-aligned offset.
	WriteWord(offset uint64, value uint32)
}

// Clocked is implemented by resources whose state advances with the clock of
// the component that owns their native port.
type Clocked interface {
	Tick() bool
}

// WordBytes encodes a word in the little-endian byte order of the bus.
func WordBytes(value uint32) []byte {
	buf := make([]byte, WordSize)
	binary.LittleEndian.PutUint32(buf, value)

	return buf
}

// WordFromBytes decodes up to four little-endian bytes into a word.
func WordFromBytes(data []byte) uint32 {
	buf := make([]byte, WordSize)
	copy(buf, data)

	return binary.LittleEndian.Uint32(buf)
}

// MergeWord applies the bytes of a partial write at byteOffset within a word.
// Bytes whose mask entry is false keep the old value. A nil mask writes all
// the bytes.
func MergeWord(old uint32, byteOffset uint64, data []byte, mask []bool) uint32 {
	buf := WordBytes(old)

	for i, b := range data {
		if mask != nil && !mask[i] {
			continue
		}

		buf[byteOffset+uint64(i)] = b
	}

	return binary.LittleEndian.Uint32(buf)
}

// AccessMustFitInWord panics if the access crosses a word boundary. Requests
// on the bus carry at most one word.
func AccessMustFitInWord(addr, byteSize uint64) {
	if byteSize == 0 || byteSize > WordSize {
		log.Panicf("access of %d bytes at 0x%x is not a word access",
			byteSize, addr)
	}

	if addr%WordSize+byteSize > WordSize {
		log.Panicf("access of %d bytes at 0x%x crosses a word boundary",
			byteSize, addr)
	}
}

// ExtractBytes returns the byteSize bytes at byteOffset within a word.
func ExtractBytes(word uint32, byteOffset, byteSize uint64) []byte {
	return WordBytes(word)[byteOffset : byteOffset+byteSize]
}

// StorageResource exposes a Storage through a native word port.
type StorageResource struct {
	name    string
	storage *Storage
}

// NewStorageResource wraps the storage as a resource. A nil storage is
// replaced with a new storage of the given size.
func NewStorageResource(
	name string,
	storage *Storage,
	size uint64,
) *StorageResource {
	if storage == nil {
		storage = NewStorage(size)
	}

	return &StorageResource{
		name:    name,
		storage: storage,
	}
}

// Name returns the name of the resource.
func (r *StorageResource) Name() string {
	return r.name
}

// Size returns the capacity of the storage.
func (r *StorageResource) Size() uint64 {
	return r.storage.Capacity()
}

// Storage returns the storage behind the resource.
func (r *StorageResource) Storage() *Storage {
	return r.storage
}

// ReadWord reads one word from the storage.
func (r *StorageResource) ReadWord(offset uint64) uint32 {
	offsetMustBeAligned(r.name, offset)

	data, err := r.storage.Read(offset, WordSize)
	if err != nil {
		log.Panicf("%s: read at 0x%x: %v", r.name, offset, err)
	}

	return binary.LittleEndian.Uint32(data)
}

// WriteWord writes one word to the storage.
func (r *StorageResource) WriteWord(offset uint64, value uint32) {
	offsetMustBeAligned(r.name, offset)

	err := r.storage.Write(offset, WordBytes(value))
	if err != nil {
		log.Panicf("%s: write at 0x%x: %v", r.name, offset, err)
	}
}

func offsetMustBeAligned(name string, offset uint64) {
	if offset%WordSize != 0 {
		log.Panicf("%s: offset 0x%x is not word aligned", name, offset)
	}
}
