package xflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/bytedance/mockey"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/xiaoshicae/x-one/xconfig"
)

// ==================== 测试用 Processor ====================

type mockProcessor[T any] struct {
	name       string
	dependency Dependency
	processFn  func(ctx context.Context, data *T) error
	rollbackFn func(ctx context.Context, data *T) error
}

func (m *mockProcessor[T]) Name() string           { return m.name }
func (m *mockProcessor[T]) Dependency() Dependency { return m.dependency }

func (m *mockProcessor[T]) Process(ctx context.Context, data *T) error {
	if m.processFn != nil {
		return m.processFn(ctx, data)
	}
	return nil
}

func (m *mockProcessor[T]) Rollback(ctx context.Context, data *T) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx, data)
	}
	return nil
}

// appendName 只实现 Process，其余使用 ProcessorBase 默认值
type appendName struct {
	ProcessorBase[[]string]
	name string
}

func (a appendName) Name() string { return a.name }

func (a appendName) Process(_ context.Context, data *[]string) error {
	*data = append(*data, a.name)
	return nil
}

// ==================== 测试用 Monitor ====================

type monitorCall struct {
	method        string
	flowName      string
	executionID   string
	processorName string
	dependency    Dependency
	err           error
	result        *ExecuteResult
}

type testMonitor struct {
	mu    sync.Mutex
	calls []monitorCall
}

func (m *testMonitor) record(c monitorCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *testMonitor) OnProcessDone(_ context.Context, e *StepEvent) {
	m.record(monitorCall{method: "process", flowName: e.FlowName, executionID: e.ExecutionID,
		processorName: e.ProcessorName, dependency: e.Dependency, err: e.Err})
}

func (m *testMonitor) OnRollbackDone(_ context.Context, e *StepEvent) {
	m.record(monitorCall{method: "rollback", flowName: e.FlowName, executionID: e.ExecutionID,
		processorName: e.ProcessorName, dependency: e.Dependency, err: e.Err})
}

func (m *testMonitor) OnFlowDone(_ context.Context, e *FlowEvent) {
	m.record(monitorCall{method: "flow", flowName: e.FlowName, executionID: e.ExecutionID, result: e.Result})
}

func (m *testMonitor) trace() []string {
	res := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		if c.method == "flow" {
			res = append(res, "flow")
			continue
		}
		res = append(res, c.method+":"+c.processorName)
	}
	return res
}

// onlyFlowDone 只关心流程结束
type onlyFlowDone struct {
	NopMonitor
	done int
}

func (o *onlyFlowDone) OnFlowDone(context.Context, *FlowEvent) { o.done++ }

// ==================== Dependency / StepError / ExecuteResult ====================

func TestDependency_String(t *testing.T) {
	PatchConvey("TestDependency_String", t, func() {
		So(Strong.String(), ShouldEqual, "strong")
		So(Weak.String(), ShouldEqual, "weak")
		So(Dependency(99).String(), ShouldEqual, "unknown")

		var d Dependency
		So(d, ShouldEqual, Strong)
	})
}

func TestStepError(t *testing.T) {
	PatchConvey("TestStepError", t, func() {
		original := errors.New("invalid input")
		se := &StepError{ProcessorName: "validate", Dependency: Strong, Err: original}
		So(se.Error(), ShouldEqual, "step [validate] (strong) failed: invalid input")
		So(errors.Is(se, original), ShouldBeTrue)
		So(se.Unwrap(), ShouldEqual, original)
	})
}

func TestExecuteResult(t *testing.T) {
	PatchConvey("TestExecuteResult", t, func() {
		PatchConvey("Success", func() {
			r := &ExecuteResult{}
			So(r.Success(), ShouldBeTrue)
			So(r.String(), ShouldEqual, "flow succeeded")
			So(r.Error(), ShouldBeNil)
		})

		PatchConvey("SuccessWithSkipped", func() {
			r := &ExecuteResult{SkippedErrors: []*StepError{{ProcessorName: "w", Dependency: Weak, Err: errors.New("x")}}}
			So(r.Success(), ShouldBeTrue)
			So(r.HasSkippedErrors(), ShouldBeTrue)
			So(r.String(), ShouldEqual, "flow succeeded, 1 skipped error(s)")
			So(r.Error().Error(), ShouldEqual, "step [w] (weak) failed: x")
		})

		PatchConvey("FailedRolledBack", func() {
			r := &ExecuteResult{
				Err:    &StepError{ProcessorName: "b", Dependency: Strong, Err: errors.New("boom")},
				Rolled: true,
			}
			So(r.Success(), ShouldBeFalse)
			So(r.String(), ShouldEqual, "flow failed: step [b] (strong) failed: boom, rolled back")
		})

		PatchConvey("FailedWithEverything", func() {
			primary := errors.New("boom")
			rbErr := errors.New("undo failed")
			r := &ExecuteResult{
				Err:            &StepError{ProcessorName: "b", Dependency: Strong, Err: primary},
				SkippedErrors:  []*StepError{{ProcessorName: "w", Dependency: Weak, Err: errors.New("x")}},
				RollbackErrors: []*StepError{{ProcessorName: "a", Dependency: Strong, Err: rbErr}},
				Rolled:         true,
			}
			So(r.HasRollbackErrors(), ShouldBeTrue)
			So(r.String(), ShouldEqual, "flow failed: step [b] (strong) failed: boom, 1 skipped error(s), rolled back with 1 error(s)")

			err := r.Error()
			So(errors.Is(err, primary), ShouldBeTrue)
			So(errors.Is(err, rbErr), ShouldBeTrue)
		})
	})
}

// ==================== PanicError ====================

func TestPanicError(t *testing.T) {
	PatchConvey("TestPanicError", t, func() {
		p := &mockProcessor[int]{name: "boom", processFn: func(context.Context, *int) error { panic("kaboom") }}
		err := safeProcess[int](context.Background(), p, new(int))

		var pe *PanicError
		So(errors.As(err, &pe), ShouldBeTrue)
		So(pe.Phase, ShouldEqual, "process")
		So(pe.ProcessorName, ShouldEqual, "boom")
		So(pe.Value, ShouldEqual, "kaboom")
		So(len(pe.Stack), ShouldBeGreaterThan, 0)
		So(err.Error(), ShouldEqual, "panic in process [boom]: kaboom")
		So(pe.Unwrap(), ShouldBeNil)

		cause := errors.New("cause")
		p.rollbackFn = func(context.Context, *int) error { panic(cause) }
		err = safeRollback[int](context.Background(), p, new(int))
		So(err.Error(), ShouldEqual, "panic in rollback [boom]: cause")
		So(errors.Is(err, cause), ShouldBeTrue)
	})
}

// namePanics Name 与 Dependency 都会 panic
type namePanics struct {
	processed *bool
}

func (n namePanics) Name() string           { panic("name boom") }
func (n namePanics) Dependency() Dependency { panic("dependency boom") }

func (n namePanics) Process(context.Context, *int) error {
	*n.processed = true
	return errors.New("process failed")
}

func (n namePanics) Rollback(context.Context, *int) error { return nil }

func TestFlow_FaultyProcessor(t *testing.T) {
	PatchConvey("TestFlow_FaultyProcessor", t, func() {
		PatchConvey("NilIgnored", func() {
			ok := &mockProcessor[int]{name: "ok"}
			f := New[int]("f", nil, ok).Step(nil)
			So(f.Len(), ShouldEqual, 1)

			var res *ExecuteResult
			So(func() { res = f.Execute(context.Background(), new(int)) }, ShouldNotPanic)
			So(res.Success(), ShouldBeTrue)
		})

		PatchConvey("TypedNilPointer", func() {
			var p *mockProcessor[int]
			before := &mockProcessor[int]{name: "before"}
			var res *ExecuteResult
			So(func() { res = New[int]("f", before, p).Execute(context.Background(), new(int)) }, ShouldNotPanic)
			So(res.Success(), ShouldBeFalse)
			So(res.Err.ProcessorName, ShouldEqual, unknownProcessorName)
			So(res.Err.Dependency, ShouldEqual, Strong)

			var pe *PanicError
			So(errors.As(res.Err, &pe), ShouldBeTrue)
			So(pe.ProcessorName, ShouldEqual, unknownProcessorName)
			So(res.Rolled, ShouldBeTrue)
		})

		PatchConvey("NameAndDependencyPanic", func() {
			Mock(GetConfig).Return(&Config{}).Build()
			processed := false
			m := &testMonitor{}
			f := New[int]("f", Processor[int](namePanics{processed: &processed})).WithMonitor(m).RollbackFailedStep()

			var res *ExecuteResult
			So(func() { res = f.Execute(context.Background(), new(int)) }, ShouldNotPanic)
			So(processed, ShouldBeTrue)
			So(res.Err, ShouldNotBeNil)
			So(res.Err.ProcessorName, ShouldEqual, unknownProcessorName)
			So(res.Err.Dependency, ShouldEqual, Strong)
			So(res.Err.Error(), ShouldEqual, "step [<unknown>] (strong) failed: process failed")
			So(res.RollbackErrors, ShouldBeEmpty)
			So(m.trace(), ShouldResemble, []string{"process:<unknown>", "rollback:<unknown>", "flow"})
		})
	})
}

// ==================== Step ====================

func TestStep(t *testing.T) {
	PatchConvey("TestStep", t, func() {
		s := NewStep[int]("s")
		So(s.Name(), ShouldEqual, "s")
		So(s.Dependency(), ShouldEqual, Strong)
		So(s.Process(context.Background(), new(int)), ShouldBeNil)
		So(s.Rollback(context.Background(), new(int)), ShouldBeNil)

		w := NewWeakStep[int]("w").
			WithProcess(func(_ context.Context, v *int) error { *v++; return nil }).
			WithRollback(func(_ context.Context, v *int) error { *v--; return nil })
		So(w.Dependency(), ShouldEqual, Weak)
		v := 0
		So(w.Process(context.Background(), &v), ShouldBeNil)
		So(v, ShouldEqual, 1)
		So(w.Rollback(context.Background(), &v), ShouldBeNil)
		So(v, ShouldEqual, 0)

		var wb WeakProcessorBase[int]
		So(wb.Dependency(), ShouldEqual, Weak)
		So(wb.Rollback(context.Background(), nil), ShouldBeNil)
	})
}

// ==================== Flow.Execute ====================

func TestFlow_Examples(t *testing.T) {
	PatchConvey("TestFlow_Examples", t, func() {
		PatchConvey("顺序执行全部成功", func() {
			data := []string{}
			res := New[[]string]("example-1").
				Step(appendName{name: "validate"}).
				Step(appendName{name: "save"}).
				Execute(context.Background(), &data)

			So(res.Success(), ShouldBeTrue)
			So(res.Rolled, ShouldBeFalse)
			So(data, ShouldResemble, []string{"validate", "save"})
		})

		PatchConvey("强依赖失败回滚前序步骤", func() {
			data := ""
			res := New[string]("example-2").
				Step(NewStep[string]("a").
					WithProcess(func(_ context.Context, s *string) error { *s += "a"; return nil }).
					WithRollback(func(_ context.Context, s *string) error { *s = "rolled a"; return nil })).
				Step(NewStep[string]("b").
					WithProcess(func(context.Context, *string) error { return errors.New("b failed") })).
				Execute(context.Background(), &data)

			So(res.Success(), ShouldBeFalse)
			So(res.Err.ProcessorName, ShouldEqual, "b")
			So(res.Rolled, ShouldBeTrue)
			So(data, ShouldEqual, "rolled a")
		})

		PatchConvey("弱依赖失败继续执行", func() {
			data := []string{}
			res := New[[]string]("example-3").
				Step(NewWeakStep[[]string]("w").
					WithProcess(func(context.Context, *[]string) error { return errors.New("w failed") })).
				Step(NewStep[[]string]("s").
					WithProcess(func(_ context.Context, d *[]string) error { *d = append(*d, "s"); return nil })).
				Execute(context.Background(), &data)

			So(res.Success(), ShouldBeTrue)
			So(len(res.SkippedErrors), ShouldEqual, 1)
			So(res.SkippedErrors[0].ProcessorName, ShouldEqual, "w")
			So(res.SkippedErrors[0].Dependency, ShouldEqual, Weak)
			So(data, ShouldResemble, []string{"s"})
		})

		PatchConvey("数值流水线", func() {
			v := 0
			res := New[int]("example-4",
				NewStep[int]("init").WithProcess(func(_ context.Context, n *int) error { *n = 10; return nil }),
				NewStep[int]("double").WithProcess(func(_ context.Context, n *int) error { *n *= 2; return nil }),
				NewStep[int]("add5").WithProcess(func(_ context.Context, n *int) error { *n += 5; return nil }),
			).Execute(context.Background(), &v)

			So(res.Success(), ShouldBeTrue)
			So(v, ShouldEqual, 25)
		})
	})
}

func TestFlow_Execute(t *testing.T) {
	PatchConvey("TestFlow_Execute", t, func() {
		PatchConvey("空流程", func() {
			res := New[int]("empty").Execute(context.Background(), new(int))
			So(res.Success(), ShouldBeTrue)
			So(res.Rolled, ShouldBeFalse)
			So(res.SkippedErrors, ShouldBeEmpty)
			So(res.RollbackErrors, ShouldBeEmpty)
		})

		PatchConvey("nil ctx", func() {
			var got context.Context
			p := &mockProcessor[int]{name: "p", processFn: func(ctx context.Context, _ *int) error { got = ctx; return nil }}
			//nolint:staticcheck
			res := New[int]("nil-ctx", p).Execute(nil, new(int))
			So(res.Success(), ShouldBeTrue)
			So(got, ShouldNotBeNil)
		})

		PatchConvey("强依赖失败后续步骤不执行且逆序回滚", func() {
			var executed, rolled []string
			mk := func(name string, dep Dependency, fail bool) Processor[int] {
				return &mockProcessor[int]{
					name:       name,
					dependency: dep,
					processFn: func(context.Context, *int) error {
						executed = append(executed, name)
						if fail {
							return fmt.Errorf("%s failed", name)
						}
						return nil
					},
					rollbackFn: func(context.Context, *int) error {
						rolled = append(rolled, name)
						return nil
					},
				}
			}
			res := New[int]("strong-fail",
				mk("p1", Strong, false),
				mk("w2", Weak, true),
				mk("p3", Strong, false),
				mk("p4", Strong, true),
				mk("p5", Strong, false),
			).Execute(context.Background(), new(int))

			So(res.Success(), ShouldBeFalse)
			So(res.Rolled, ShouldBeTrue)
			So(res.Err.ProcessorName, ShouldEqual, "p4")
			So(res.Err.Err.Error(), ShouldEqual, "p4 failed")
			So(executed, ShouldResemble, []string{"p1", "w2", "p3", "p4"})
			// 失败的 p4 自身不回滚，弱依赖失败的 w2 参与回滚
			So(rolled, ShouldResemble, []string{"p3", "w2", "p1"})
			So(len(res.SkippedErrors), ShouldEqual, 1)
			So(res.SkippedErrors[0].ProcessorName, ShouldEqual, "w2")
		})

		PatchConvey("首个步骤强依赖失败", func() {
			rolled := 0
			p := &mockProcessor[int]{
				name:       "first",
				processFn:  func(context.Context, *int) error { return errors.New("fail") },
				rollbackFn: func(context.Context, *int) error { rolled++; return nil },
			}
			res := New[int]("first-fail", p).Execute(context.Background(), new(int))
			So(res.Rolled, ShouldBeTrue)
			So(rolled, ShouldEqual, 0)
			So(res.RollbackErrors, ShouldBeEmpty)
		})

		PatchConvey("RollbackFailedStep 时失败步骤也回滚", func() {
			var rolled []string
			mk := func(name string, fail bool) Processor[int] {
				return &mockProcessor[int]{
					name: name,
					processFn: func(context.Context, *int) error {
						if fail {
							return errors.New("fail")
						}
						return nil
					},
					rollbackFn: func(context.Context, *int) error { rolled = append(rolled, name); return nil },
				}
			}
			res := New[int]("inclusive", mk("a", false), mk("b", true)).
				RollbackFailedStep().
				Execute(context.Background(), new(int))
			So(res.Success(), ShouldBeFalse)
			So(rolled, ShouldResemble, []string{"b", "a"})
		})

		PatchConvey("多个弱依赖失败按顺序记录", func() {
			weak := func(name string) Processor[int] {
				return NewWeakStep[int](name).WithProcess(func(context.Context, *int) error { return errors.New(name) })
			}
			res := New[int]("weak-many", weak("w1"), NewStep[int]("s"), weak("w2"), weak("w3")).
				Execute(context.Background(), new(int))
			So(res.Success(), ShouldBeTrue)
			So(res.Rolled, ShouldBeFalse)
			So(len(res.SkippedErrors), ShouldEqual, 3)
			So(res.SkippedErrors[0].ProcessorName, ShouldEqual, "w1")
			So(res.SkippedErrors[1].ProcessorName, ShouldEqual, "w2")
			So(res.SkippedErrors[2].ProcessorName, ShouldEqual, "w3")
		})

		PatchConvey("回滚失败不中断其余回滚", func() {
			var rolled []string
			res := New[int]("rollback-errors",
				NewStep[int]("a").WithRollback(func(context.Context, *int) error { rolled = append(rolled, "a"); return nil }),
				NewStep[int]("b").WithRollback(func(context.Context, *int) error { rolled = append(rolled, "b"); return errors.New("b undo") }),
				NewStep[int]("c").WithRollback(func(context.Context, *int) error { rolled = append(rolled, "c"); panic("c undo panic") }),
				NewStep[int]("d").WithProcess(func(context.Context, *int) error { return errors.New("d failed") }),
			).Execute(context.Background(), new(int))

			So(rolled, ShouldResemble, []string{"c", "b", "a"})
			So(len(res.RollbackErrors), ShouldEqual, 2)
			So(res.RollbackErrors[0].ProcessorName, ShouldEqual, "c")
			So(res.RollbackErrors[0].Err.Error(), ShouldEqual, "panic in rollback [c]: c undo panic")
			So(res.RollbackErrors[1].ProcessorName, ShouldEqual, "b")
			So(res.String(), ShouldEqual, "flow failed: step [d] (strong) failed: d failed, rolled back with 2 error(s)")
		})

		PatchConvey("强依赖 panic 视为失败", func() {
			rolled := false
			res := New[int]("strong-panic",
				NewStep[int]("a").WithRollback(func(context.Context, *int) error { rolled = true; return nil }),
				NewStep[int]("b").WithProcess(func(context.Context, *int) error { panic("oops") }),
			).Execute(context.Background(), new(int))

			So(res.Success(), ShouldBeFalse)
			So(rolled, ShouldBeTrue)
			var pe *PanicError
			So(errors.As(res.Err, &pe), ShouldBeTrue)
			So(pe.ProcessorName, ShouldEqual, "b")
			So(res.Err.Err.Error(), ShouldEqual, "panic in process [b]: oops")
		})

		PatchConvey("弱依赖 panic 被记录并继续", func() {
			ran := false
			res := New[int]("weak-panic",
				NewWeakStep[int]("w").WithProcess(func(context.Context, *int) error { panic(errors.New("weak panic")) }),
				NewStep[int]("s").WithProcess(func(context.Context, *int) error { ran = true; return nil }),
			).Execute(context.Background(), new(int))

			So(res.Success(), ShouldBeTrue)
			So(ran, ShouldBeTrue)
			So(res.SkippedErrors[0].Err.Error(), ShouldEqual, "panic in process [w]: weak panic")
		})

		PatchConvey("重复执行结果互不影响", func() {
			fail := true
			f := New[int]("repeat", NewStep[int]("maybe").WithProcess(func(context.Context, *int) error {
				if fail {
					return errors.New("fail")
				}
				return nil
			}))
			So(f.Execute(context.Background(), new(int)).Success(), ShouldBeFalse)
			fail = false
			So(f.Execute(context.Background(), new(int)).Success(), ShouldBeTrue)
			So(f.Len(), ShouldEqual, 1)
			So(f.Name(), ShouldEqual, "repeat")
		})

		PatchConvey("并发执行", func() {
			f := New[int]("concurrent",
				NewStep[int]("inc").WithProcess(func(_ context.Context, n *int) error { *n++; return nil }),
				NewStep[int]("double").WithProcess(func(_ context.Context, n *int) error { *n *= 2; return nil }),
			)
			var wg sync.WaitGroup
			results := make([]int, 50)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i] = i
					f.Execute(context.Background(), &results[i])
				}(i)
			}
			wg.Wait()
			for i, v := range results {
				So(v, ShouldEqual, (i+1)*2)
			}
		})
	})
}

// ==================== Monitor ====================

func TestFlow_Monitor(t *testing.T) {
	PatchConvey("TestFlow_Monitor", t, func() {
		Mock(GetConfig).Return(&Config{}).Build()

		failing := func() *Flow[int] {
			return New[int]("monitored",
				NewStep[int]("a"),
				NewWeakStep[int]("w").WithProcess(func(context.Context, *int) error { return errors.New("w") }),
				NewStep[int]("b").WithProcess(func(context.Context, *int) error { return errors.New("b") }),
				NewStep[int]("never"),
			)
		}

		PatchConvey("默认不开启", func() {
			m := &testMonitor{}
			SetDefaultMonitor(m)
			defer SetDefaultMonitor(nil)

			failing().Execute(context.Background(), new(int))
			So(m.calls, ShouldBeEmpty)
		})

		PatchConvey("WithMonitor 事件顺序", func() {
			m := &testMonitor{}
			res := failing().WithMonitor(m).Execute(context.Background(), new(int))

			So(m.trace(), ShouldResemble, []string{
				"process:a", "process:w", "process:b",
				"rollback:w", "rollback:a",
				"flow",
			})
			So(m.calls[1].err, ShouldNotBeNil)
			So(m.calls[1].dependency, ShouldEqual, Weak)
			So(m.calls[5].result, ShouldEqual, res)
			So(m.calls[5].flowName, ShouldEqual, "monitored")

			id := m.calls[0].executionID
			So(id, ShouldNotBeEmpty)
			for _, c := range m.calls {
				So(c.executionID, ShouldEqual, id)
			}
		})

		PatchConvey("EnableMonitor 使用全局默认", func() {
			m := &testMonitor{}
			SetDefaultMonitor(m)
			defer SetDefaultMonitor(nil)

			New[int]("default", NewStep[int]("a")).EnableMonitor().Execute(context.Background(), new(int))
			So(m.trace(), ShouldResemble, []string{"process:a", "flow"})
		})

		PatchConvey("每次执行 ID 不同", func() {
			m := &testMonitor{}
			f := New[int]("ids").WithMonitor(m)
			f.Execute(context.Background(), new(int))
			f.Execute(context.Background(), new(int))
			So(len(m.calls), ShouldEqual, 2)
			So(m.calls[0].executionID, ShouldNotEqual, m.calls[1].executionID)
		})

		PatchConvey("嵌入 NopMonitor", func() {
			o := &onlyFlowDone{}
			failing().WithMonitor(o).Execute(context.Background(), new(int))
			So(o.done, ShouldEqual, 1)
		})

		PatchConvey("默认日志 Monitor 不 panic", func() {
			So(func() {
				failing().EnableMonitor().Execute(context.Background(), new(int))
				New[int]("ok", NewStep[int]("a")).EnableMonitor().Execute(context.Background(), new(int))
			}, ShouldNotPanic)
		})
	})

	PatchConvey("TestFlow_Monitor-配置关闭", t, func() {
		Mock(GetConfig).Return(&Config{DisableMonitor: true}).Build()
		m := &testMonitor{}
		New[int]("disabled", NewStep[int]("a")).WithMonitor(m).Execute(context.Background(), new(int))
		So(m.calls, ShouldBeEmpty)
	})
}

func TestSetDefaultMonitor(t *testing.T) {
	PatchConvey("TestSetDefaultMonitor", t, func() {
		So(GetDefaultMonitor(), ShouldHaveSameTypeAs, logMonitor{})

		custom := &testMonitor{}
		SetDefaultMonitor(custom)
		So(GetDefaultMonitor(), ShouldEqual, custom)

		SetDefaultMonitor(nil)
		So(GetDefaultMonitor(), ShouldHaveSameTypeAs, logMonitor{})
	})
}

func TestGetConfig(t *testing.T) {
	PatchConvey("TestGetConfig", t, func() {
		ResetConfig()
		defer ResetConfig()

		PatchConvey("读取并缓存", func() {
			calls := 0
			Mock(xconfig.UnmarshalConfig).To(func(key string, conf any) error {
				calls++
				conf.(*Config).DisableMonitor = true
				return nil
			}).Build()

			So(GetConfig().DisableMonitor, ShouldBeTrue)
			So(GetConfig().DisableMonitor, ShouldBeTrue)
			So(calls, ShouldEqual, 1)
		})

		PatchConvey("读取失败使用默认值", func() {
			Mock(xconfig.UnmarshalConfig).Return(errors.New("bad")).Build()
			So(GetConfig(), ShouldResemble, &Config{})
		})
	})
}

func TestMonitorZeroCostWhenDisabled(t *testing.T) {
	PatchConvey("TestMonitorZeroCostWhenDisabled", t, func() {
		getConfig := Mock(GetConfig).Return(&Config{}).Build()
		New[int]("no-monitor", NewStep[int]("a")).Execute(context.Background(), new(int))
		// 未开启监控时不读取配置
		So(getConfig.Times(), ShouldEqual, 0)

		start := time.Now()
		for i := 0; i < 1000; i++ {
			New[int]("loop", NewStep[int]("a")).Execute(context.Background(), new(int))
		}
		So(time.Since(start), ShouldBeLessThan, time.Second)
	})
}
