package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
)

var _ = Describe("StorageResource", func() {
	var (
		res *mem.StorageResource
	)

	BeforeEach(func() {
		res = mem.NewStorageResource("RAM", nil, 64)
	})

	It("should report its name and size", func() {
		Expect(res.Name()).To(Equal("RAM"))
		Expect(res.Size()).To(Equal(uint64(64)))
	})

	It("should store words in little-endian order", func() {
		res.WriteWord(4, 0x11223344)

		Expect(res.ReadWord(4)).To(Equal(uint32(0x11223344)))

		raw, err := res.Storage().Read(4, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))
	})

	It("should panic on unaligned offsets", func() {
		Expect(func() { res.ReadWord(2) }).To(Panic())
		Expect(func() { res.WriteWord(6, 1) }).To(Panic())
	})

	It("should panic on offsets beyond the size", func() {
		Expect(func() { res.ReadWord(64) }).To(Panic())
	})
})

var _ = Describe("Word helpers", func() {
	It("should merge partial writes", func() {
		merged := mem.MergeWord(0xaabbccdd, 1, []byte{0x11, 0x22}, nil)
		Expect(merged).To(Equal(uint32(0xaa2211dd)))
	})

	It("should respect the dirty mask", func() {
		merged := mem.MergeWord(
			0xaabbccdd, 0, []byte{1, 2, 3, 4}, []bool{true, false, false, true})
		Expect(merged).To(Equal(uint32(0x04bbcc01)))
	})

	It("should extract bytes", func() {
		Expect(mem.ExtractBytes(0xaabbccdd, 2, 2)).
			To(Equal([]byte{0xbb, 0xaa}))
	})

	It("should reject accesses that cross a word", func() {
		Expect(func() { mem.AccessMustFitInWord(2, 4) }).To(Panic())
		Expect(func() { mem.AccessMustFitInWord(0, 0) }).To(Panic())
		Expect(func() { mem.AccessMustFitInWord(4, 4) }).NotTo(Panic())
	})
})

var _ = Describe("Address translation", func() {
	It("should convert between bus addresses and offsets", func() {
		c := mem.OffsetAddressConverter{Base: 0x1000}

		Expect(c.ConvertExternalToInternal(0x1004)).To(Equal(uint64(4)))
		Expect(c.ConvertInternalToExternal(4)).To(Equal(uint64(0x1004)))
		Expect(func() { c.ConvertExternalToInternal(0x10) }).To(Panic())
	})

	It("should map every address to the single port", func() {
		m := &mem.SinglePortMapper{Port: sim.RemotePort("RAM.Top")}

		Expect(m.Find(0)).To(Equal(sim.RemotePort("RAM.Top")))
		Expect(m.Find(0xffff)).To(Equal(sim.RemotePort("RAM.Top")))
	})
})

var _ = Describe("Protocol", func() {
	It("should build a word read by default", func() {
		req := mem.ReadReqBuilder{}.
			WithSrc("Master.Port").
			WithDst("RAM.Top").
			WithAddress(0x40).
			Build()

		Expect(req.GetAddress()).To(Equal(uint64(0x40)))
		Expect(req.GetByteSize()).To(Equal(uint64(mem.WordSize)))
		Expect(req.Meta().Src).To(Equal(sim.RemotePort("Master.Port")))
		Expect(req.ID).NotTo(BeEmpty())
	})

	It("should carry written words", func() {
		req := mem.WriteReqBuilder{}.
			WithSrc("Master.Port").
			WithDst("RAM.Top").
			WithWord(0xdeadbeef).
			Build()

		Expect(req.GetByteSize()).To(Equal(uint64(4)))

		rsp := mem.DataReadyRspBuilder{}.
			WithRspTo(req.ID).
			WithData(req.Data).
			Build()
		Expect(rsp.GetRspTo()).To(Equal(req.ID))
		Expect(rsp.Word()).To(Equal(uint32(0xdeadbeef)))
	})
})
