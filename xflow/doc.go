// Package xflow 顺序流程编排。
//
// Flow 按添加顺序依次执行 Processor：
//   - Strong 依赖失败时中断流程，并按逆序回滚此前已完成的 Processor
//   - Weak 依赖失败时记录到 SkippedErrors，流程继续，且该 Processor 仍参与后续回滚
//
// Process 与 Rollback 中的 panic 会被捕获并转换为 *PanicError，Execute 不会向调用方抛出 panic。
//
// 监控默认关闭，通过 EnableMonitor / WithMonitor 开启；配置 XFlow.DisableMonitor=true 可全局关闭。
//
//	res := xflow.New[Order]("create-order").
//		Step(xflow.NewStep[Order]("reserve").WithProcess(reserve).WithRollback(release)).
//		Step(xflow.NewWeakStep[Order]("notify").WithProcess(notify)).
//		EnableMonitor().
//		Execute(ctx, &order)
//	if !res.Success() {
//		return res.Error()
//	}
package xflow
