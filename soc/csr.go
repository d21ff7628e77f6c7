package soc

import (
	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/regmap"
)

// A csrBlock is the group of control and status registers of one module.
// Each block takes one page of the CSR region.
type csrBlock struct {
	name string
	page uint64
	bank *regmap.Bank
}

// csrBus is the resource behind the CSR region of the host. It routes every
// word to the block that owns the page. Words that no register backs read as
// zero and ignore writes.
type csrBus struct {
	paging uint64
	blocks []*csrBlock
	byPage map[uint64]*csrBlock
}

func newCSRBus(paging uint64) *csrBus {
	return &csrBus{
		paging: paging,
		byPage: make(map[uint64]*csrBlock),
	}
}

func (b *csrBus) Name() string {
	return "csr"
}

func (b *csrBus) Size() uint64 {
	return CSRSize
}

func (b *csrBus) pages() uint64 {
	return CSRSize / b.paging
}

// addBlock compiles the registers of a module into the next free page.
func (b *csrBus) addBlock(
	name string,
	descs []regmap.Descriptor,
) (*csrBlock, error) {
	page := uint64(len(b.blocks))
	if page >= b.pages() {
		return nil, cfgerr.Newf(cfgerr.ErrOverlappingRegion, name,
			"the CSR region has no free page")
	}

	m, err := regmap.Compile(descs, CSRRegionBase+page*b.paging)
	if err != nil {
		return nil, err
	}

	if m.Size() > b.paging {
		return nil, cfgerr.Newf(cfgerr.ErrOverlappingRegion, name,
			"0x%x bytes of registers do not fit a CSR page", m.Size())
	}

	block := &csrBlock{
		name: name,
		page: page,
		bank: m.Bind(name),
	}
	b.blocks = append(b.blocks, block)
	b.byPage[page] = block

	return block, nil
}

func (b *csrBus) locate(offset uint64) (*csrBlock, uint64, bool) {
	block, found := b.byPage[offset/b.paging]
	if !found {
		return nil, 0, false
	}

	inPage := offset % b.paging
	if inPage >= block.bank.Size() {
		return nil, 0, false
	}

	return block, inPage, true
}

func (b *csrBus) ReadWord(offset uint64) uint32 {
	block, inPage, found := b.locate(offset)
	if !found {
		return 0
	}

	return block.bank.ReadWord(inPage)
}

func (b *csrBus) WriteWord(offset uint64, value uint32) {
	block, inPage, found := b.locate(offset)
	if !found {
		return
	}

	block.bank.WriteWord(inPage, value)
}
