// Package imap 定义 IMAP4rev1 消息的类型化表示。
//
// IMAP4rev1 在 RFC 3501 中定义。
//
// 本包只包含数据类型：命令（Command 与 CommandBody 的各个变体）、响应
// （Response 的各个变体、Greeting、ContinuationRequest）、FETCH 数据项、信封、
// 体结构、搜索键、序列集和响应代码。字节与这些类型之间的转换由 imapcodec
// 子包完成。
package imap

import (
	"fmt"
	"io"
)

// ConnState 描述连接状态。
//
// 请参见 RFC 3501 第 3 节。
type ConnState int

const (
	ConnStateNone             ConnState = iota // 无状态
	ConnStateNotAuthenticated                  // 未认证
	ConnStateAuthenticated                     // 已认证
	ConnStateSelected                          // 已选择
	ConnStateLogout                            // 登出
)

// String 实现 fmt.Stringer 接口。
func (state ConnState) String() string {
	switch state {
	case ConnStateNone:
		return "none" // 无状态
	case ConnStateNotAuthenticated:
		return "not authenticated" // 未认证
	case ConnStateAuthenticated:
		return "authenticated" // 已认证
	case ConnStateSelected:
		return "selected" // 已选择
	case ConnStateLogout:
		return "logout" // 登出
	default:
		return fmt.Sprintf("ConnState(%d)", int(state))
	}
}

// MailboxAttr 是邮箱属性。
//
// 邮箱属性在 RFC 3501 第 7.2.2 节中定义。
type MailboxAttr string

const (
	// 基础属性
	MailboxAttrNoInferiors   MailboxAttr = "\\Noinferiors"   // 无下级
	MailboxAttrNoSelect      MailboxAttr = "\\Noselect"      // 不可选择
	MailboxAttrMarked        MailboxAttr = "\\Marked"        // 已标记
	MailboxAttrUnmarked      MailboxAttr = "\\Unmarked"      // 未标记
	MailboxAttrHasChildren   MailboxAttr = "\\HasChildren"   // 有子项（RFC 3348）
	MailboxAttrHasNoChildren MailboxAttr = "\\HasNoChildren" // 无子项（RFC 3348）

	// 特殊用途属性（RFC 6154）
	MailboxAttrAll     MailboxAttr = "\\All"     // 全部
	MailboxAttrArchive MailboxAttr = "\\Archive" // 档案
	MailboxAttrDrafts  MailboxAttr = "\\Drafts"  // 草稿
	MailboxAttrFlagged MailboxAttr = "\\Flagged" // 标记
	MailboxAttrJunk    MailboxAttr = "\\Junk"    // 垃圾
	MailboxAttrSent    MailboxAttr = "\\Sent"    // 已发送
	MailboxAttrTrash   MailboxAttr = "\\Trash"   // 垃圾箱
)

// Flag 是消息标志。
//
// 消息标志在 RFC 3501 第 2.3.2 节中定义。
type Flag string

const (
	// 系统标志
	FlagSeen     Flag = "\\Seen"     // 已读
	FlagAnswered Flag = "\\Answered" // 已回复
	FlagFlagged  Flag = "\\Flagged"  // 已标记
	FlagDeleted  Flag = "\\Deleted"  // 已删除
	FlagDraft    Flag = "\\Draft"    // 草稿
	FlagRecent   Flag = "\\Recent"   // 最近到达，只出现在 FETCH 和 FLAGS 响应中

	// 常用标志
	FlagForwarded Flag = "$Forwarded" // 已转发
	FlagMDNSent   Flag = "$MDNSent"   // 消息处理通知已发送
	FlagJunk      Flag = "$Junk"      // 垃圾
	FlagNotJunk   Flag = "$NotJunk"   // 非垃圾
	FlagPhishing  Flag = "$Phishing"  // 钓鱼

	// 永久标志
	FlagWildcard Flag = "\\*" // 通配符，只出现在 PERMANENTFLAGS 中
)

// LiteralReader 是 IMAP 字面量的读取器。
type LiteralReader interface {
	io.Reader    // 实现 io.Reader 接口
	Size() int64 // 返回字面量的大小
}

// UID 是消息的唯一标识符。
type UID uint32
