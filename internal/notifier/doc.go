// Package notifier 通知分发：计算接收人、逐条持久化通知，并通过后台推送队列投递实时事件。
//
// 持久化是可靠性保证，推送是尽力而为：推送失败的通知仍可通过列表与未读数接口取回。
// 分发过程中的任何失败只记录日志与指标，从不传播给触发它的业务操作。
package notifier
