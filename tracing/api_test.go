package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/upsilonsoc/sim"
	gomock "go.uber.org/mock/gomock"
)

type sampleReq struct {
	sim.MsgMeta
}

func (r *sampleReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

var _ = Describe("API", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		domain.EXPECT().Name().Return("Arbiter").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not invoke hooks if there are none", func() {
		domain.EXPECT().NumHooks().Return(0).Times(3)

		StartTask("1", "", domain, "kind", "what", nil)
		AddTaskStep("1", domain, "step")
		EndTask("1", domain)
	})

	It("should start a task at the location of the domain", func() {
		domain.EXPECT().NumHooks().Return(1)
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			task := ctx.Item.(Task)
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStart))
			Expect(task.ID).To(Equal("1"))
			Expect(task.Location).To(Equal("Arbiter"))
			Expect(task.Kind).To(Equal("grant"))
		})

		StartTask("1", "", domain, "grant", "port0", nil)
	})

	It("should panic if required fields are missing", func() {
		domain.EXPECT().NumHooks().Return(1).AnyTimes()

		Expect(func() {
			StartTask("", "", domain, "kind", "what", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "", "what", nil)
		}).To(Panic())
	})

	It("should link the receiving task to the sending task", func() {
		req := &sampleReq{}
		req.ID = "req"

		domain.EXPECT().NumHooks().Return(1).Times(2)
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			task := ctx.Item.(Task)
			Expect(task.ID).To(Equal("req@Arbiter"))
			Expect(task.ParentID).To(Equal("req_req_out"))
			Expect(task.Kind).To(Equal("req_in"))
			Expect(task.What).To(Equal("*tracing.sampleReq"))
		})
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskEnd))
			Expect(ctx.Item.(Task).ID).To(Equal("req@Arbiter"))
		})

		TraceReqReceive(req, domain)
		TraceReqComplete(req, domain)
	})

	It("should forward hooked tasks to a tracer", func() {
		base := sim.NewHookableBase()
		named := struct {
			*sim.HookableBase
			sim.Named
		}{base, domain}

		tracer := NewAverageTimeTracer(nil, func(Task) bool { return false })
		CollectTrace(named, tracer)

		Expect(base.NumHooks()).To(Equal(1))
	})

	It("should pass tasks to the tracer and skip other items", func() {
		timeTeller := NewMockTimeTeller(mockCtrl)
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))

		base := sim.NewHookableBase()
		named := struct {
			*sim.HookableBase
			sim.Named
		}{base, domain}

		tracer := NewAverageTimeTracer(timeTeller, nil)
		CollectTrace(named, tracer)

		task := Task{ID: "req@Arbiter", Kind: "req_in"}
		base.InvokeHook(sim.HookCtx{Pos: HookPosTaskStart, Item: "noise"})
		base.InvokeHook(sim.HookCtx{Pos: HookPosTaskStart, Item: task})
		base.InvokeHook(sim.HookCtx{Pos: HookPosTaskEnd, Item: task})

		Expect(tracer.TotalCount()).To(Equal(uint64(1)))
		Expect(tracer.AverageTime()).To(Equal(sim.VTimeInSec(2)))
	})
})
