// Package imapwire 实现 IMAP 协议的底层线路格式。
//
// Decoder 在调用者提供的完整缓冲区上识别基本记号（原子、引号字符串、字面量、
// 数字、NIL、日期和序列集），从不阻塞：缓冲区在某个记号结束之前耗尽时返回
// IncompleteError。Encoder 以相反方向写出记号，选择最便宜的安全字符串形式，
// 并在同步字面量处把输出切分为多个片段（参见 Encoded）。
package imapwire

import (
	"fmt"
)

// ConnSide 描述连接的一侧。
type ConnSide int

const (
	ConnSideClient ConnSide = 1 + iota // 客户端：写命令，读响应
	ConnSideServer                     // 服务器端：写响应，读命令
)

// String 实现 fmt.Stringer 接口。
func (side ConnSide) String() string {
	switch side {
	case ConnSideClient:
		return "client"
	case ConnSideServer:
		return "server"
	default:
		return fmt.Sprintf("ConnSide(%d)", int(side))
	}
}

// LiteralHeader 描述字面量头部 "{n}"、"{n+}" 或 "~{n}"。
type LiteralHeader struct {
	Size    int64 // 声明的八位字节数
	NonSync bool  // 非同步字面量（LITERAL+ / LITERAL-）
	Binary  bool  // literal8（BINARY）
}

// String 返回字面量头部的线路形式（不含 CRLF）。
func (hdr LiteralHeader) String() string {
	s := "{"
	if hdr.Binary {
		s = "~{"
	}
	s += fmt.Sprint(hdr.Size)
	if hdr.NonSync {
		s += "+"
	}
	return s + "}"
}

// LiteralMinusMaxSize 是 LITERAL- 允许的非同步字面量的最大长度。
const LiteralMinusMaxSize = 4096

// IsCTL 报告 ch 是否是控制字符。
func IsCTL(ch byte) bool {
	return ch <= 0x1f || ch == 0x7f
}

// IsAtomChar 报告 ch 是否是 ATOM-CHAR。
func IsAtomChar(ch byte) bool {
	switch ch {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	default:
		return !IsCTL(ch) && ch < 0x80
	}
}

// IsAStringChar 报告 ch 是否是 ASTRING-CHAR（ATOM-CHAR 或 "]"）。
func IsAStringChar(ch byte) bool {
	return IsAtomChar(ch) || ch == ']'
}

// IsListChar 报告 ch 是否可以出现在 list-mailbox 原子中。
func IsListChar(ch byte) bool {
	return IsAStringChar(ch) || ch == '%' || ch == '*'
}

// IsTagChar 报告 ch 是否可以出现在标签中（ASTRING-CHAR 除去 "+"）。
func IsTagChar(ch byte) bool {
	return IsAStringChar(ch) && ch != '+'
}

// IsTextChar 报告 ch 是否是 TEXT-CHAR。
func IsTextChar(ch byte) bool {
	return ch != '\r' && ch != '\n' && ch != 0
}

// isQuotedChar 报告 ch 是否可以不加转义地出现在引号字符串中。
func isQuotedChar(ch byte) bool {
	return ch != '"' && ch != '\\' && IsTextChar(ch)
}

// IsBase64Char 报告 ch 是否属于 base64 字母表（包括填充字符）。
func IsBase64Char(ch byte) bool {
	switch {
	case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		return true
	default:
		return ch == '+' || ch == '/' || ch == '='
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
