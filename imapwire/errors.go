package imapwire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete 表示输入在消息结束之前耗尽。
//
// 使用 errors.Is(err, ErrIncomplete) 检测；具体信息见 IncompleteError。
var ErrIncomplete = errors.New("imapwire: incomplete message")

var (
	// ErrContinuationPending 表示在收到继续请求之前调用了 Encoded.Next。
	ErrContinuationPending = errors.New("imapwire: waiting for continuation request")
	// ErrNoContinuation 表示在没有等待继续请求时调用了 Encoded.Continue。
	ErrNoContinuation = errors.New("imapwire: no continuation request pending")
)

// IncompleteError 表示需要更多数据。调用者应追加数据后从同一消息的开头重新解码。
type IncompleteError struct {
	// Need 是已知的最少还需要的字节数，未知时为 0。
	Need int64
	// Literal 在输入恰好结束于字面量头部之后时非 nil。
	// 对于同步字面量，服务器此时应发送继续请求。
	Literal *LiteralHeader
}

// Error 实现 error 接口。
func (err *IncompleteError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrIncomplete.Error())
	if err.Literal != nil {
		fmt.Fprintf(&sb, " (waiting for literal %v)", err.Literal)
	} else if err.Need > 0 {
		fmt.Fprintf(&sb, " (need %v more bytes)", err.Need)
	}
	return sb.String()
}

// Is 使 errors.Is(err, ErrIncomplete) 成立。
func (err *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

// ErrorKind 是确定性失败的类别。
type ErrorKind int

const (
	KindInvalid       ErrorKind = 1 + iota // 语法错误
	KindUnsupported                        // 使用了未启用扩展的语法
	KindResourceLimit                      // 超过配置的资源限制
)

// String 实现 fmt.Stringer 接口。
func (kind ErrorKind) String() string {
	switch kind {
	case KindInvalid:
		return "invalid"
	case KindUnsupported:
		return "unsupported"
	case KindResourceLimit:
		return "resource limit"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

// Error 是解码或编码的确定性失败。
type Error struct {
	Kind ErrorKind
	// Offset 是失败处在输入缓冲区中的字节偏移。编码错误为 -1。
	Offset int
	// Expected 描述期望的语法元素，例如 "SP" 或 "fetch-att"。
	Expected string
	// Context 是失败时所在的语法产生式，由外到内。
	Context []string
	// Extension 是 KindUnsupported 错误涉及的扩展名称。
	Extension string
	// Size 是 KindResourceLimit 错误中字面量声明的长度。
	Size int64
	// Err 是底层错误（如果有）。
	Err error
}

// Error 实现 error 接口。
func (err *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("imapwire: ")
	// 连续重复的产生式只输出一次
	for i := 0; i < len(err.Context); {
		n := 1
		for i+n < len(err.Context) && err.Context[i+n] == err.Context[i] {
			n++
		}
		if n > 1 {
			fmt.Fprintf(&sb, "在 %v 中 (×%v): ", err.Context[i], n)
		} else {
			fmt.Fprintf(&sb, "在 %v 中: ", err.Context[i])
		}
		i += n
	}
	switch err.Kind {
	case KindUnsupported:
		fmt.Fprintf(&sb, "需要扩展 %v", err.Extension)
		if err.Expected != "" {
			fmt.Fprintf(&sb, " (%v)", err.Expected)
		}
	case KindResourceLimit:
		sb.WriteString("超过资源限制")
		if err.Expected != "" {
			fmt.Fprintf(&sb, ": %v", err.Expected)
		}
		if err.Size > 0 {
			fmt.Fprintf(&sb, " (字面量大小 %v)", err.Size)
		}
	default:
		if err.Expected != "" {
			fmt.Fprintf(&sb, "期望 %v", err.Expected)
		} else {
			sb.WriteString("无效的语法")
		}
	}
	if err.Err != nil {
		fmt.Fprintf(&sb, ": %v", err.Err)
	}
	if err.Offset >= 0 {
		fmt.Fprintf(&sb, " (偏移 %v)", err.Offset)
	}
	return sb.String()
}

// Unwrap 返回底层错误。
func (err *Error) Unwrap() error {
	return err.Err
}

// IsIncomplete 报告 err 是否表示需要更多数据。
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// KindOf 返回 err 的失败类别。err 不是 *Error 时返回 0。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
