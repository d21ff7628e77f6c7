package mem

// AddressConverter can translate the address on the bus to the offset that
// a resource decodes, and back.
type AddressConverter interface {
	ConvertExternalToInternal(external uint64) uint64
	ConvertInternalToExternal(internal uint64) uint64
}

// OffsetAddressConverter maps the window that starts at Base onto offset 0.
type OffsetAddressConverter struct {
	Base uint64
}

// ConvertExternalToInternal subtracts the base of the window.
func (c OffsetAddressConverter) ConvertExternalToInternal(
	external uint64,
) uint64 {
	if external < c.Base {
		panic("address is below the window base")
	}

	return external - c.Base
}

// ConvertInternalToExternal adds the base of the window.
func (c OffsetAddressConverter) ConvertInternalToExternal(
	internal uint64,
) uint64 {
	return internal + c.Base
}
