package imapwire

import (
	"io"
)

// FragmentKind 是片段的种类。
type FragmentKind int

const (
	FragmentBytes             FragmentKind = 1 + iota // 要发送的字节
	FragmentAwaitContinuation                         // 等待对端的继续请求 "+"
	FragmentDone                                      // 消息已全部输出
)

// String 实现 fmt.Stringer 接口。
func (kind FragmentKind) String() string {
	switch kind {
	case FragmentBytes:
		return "bytes"
	case FragmentAwaitContinuation:
		return "await-continuation"
	case FragmentDone:
		return "done"
	default:
		return "unknown"
	}
}

// Fragment 是一次编码输出的一段。
type Fragment struct {
	Kind FragmentKind
	// Data 是 FragmentBytes 的内容。字面量数据不会被复制，可能与被编码的值共享内存。
	Data []byte
	// Literal 是 FragmentAwaitContinuation 之前写出的字面量头部。
	Literal *LiteralHeader
}

// Encoded 是一次编码的输出，在同步字面量处分段。
//
// Next 依次返回片段。返回 FragmentAwaitContinuation 之后，调用者必须等到
// 对端发送继续请求，调用 Continue，再继续调用 Next。
type Encoded struct {
	frags   []Fragment
	next    int
	waiting bool
}

// Next 返回下一个片段。全部输出后返回 FragmentDone。
func (e *Encoded) Next() (Fragment, error) {
	if e.waiting {
		return Fragment{}, ErrContinuationPending
	}
	if e.next >= len(e.frags) {
		return Fragment{Kind: FragmentDone}, nil
	}
	frag := e.frags[e.next]
	e.next++
	if frag.Kind == FragmentAwaitContinuation {
		e.waiting = true
	}
	return frag, nil
}

// Continue 记录已收到对端的继续请求。
func (e *Encoded) Continue() error {
	if !e.waiting {
		return ErrNoContinuation
	}
	e.waiting = false
	return nil
}

// Waiting 报告游标是否在等待继续请求。
func (e *Encoded) Waiting() bool {
	return e.waiting
}

// Fragments 返回所有片段（与游标位置无关）。
func (e *Encoded) Fragments() []Fragment {
	l := make([]Fragment, len(e.frags))
	copy(l, e.frags)
	return l
}

// Bytes 忽略继续请求，返回完整的编码。
func (e *Encoded) Bytes() []byte {
	n := 0
	for _, frag := range e.frags {
		n += len(frag.Data)
	}
	b := make([]byte, 0, n)
	for _, frag := range e.frags {
		if frag.Kind == FragmentBytes {
			b = append(b, frag.Data...)
		}
	}
	return b
}

// Len 返回编码的总字节数。
func (e *Encoded) Len() int {
	n := 0
	for _, frag := range e.frags {
		n += len(frag.Data)
	}
	return n
}

// HasContinuation 报告编码中是否有等待继续请求的点。
func (e *Encoded) HasContinuation() bool {
	for _, frag := range e.frags {
		if frag.Kind == FragmentAwaitContinuation {
			return true
		}
	}
	return false
}

// WriteTo 把剩余片段写入 w，直到遇到等待继续请求的点或输出结束。
// 遇到等待点时返回 ErrContinuationPending，此时调用者应读取继续请求，
// 调用 Continue，然后再次调用 WriteTo。
func (e *Encoded) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for {
		frag, err := e.Next()
		if err != nil {
			return n, err
		}
		switch frag.Kind {
		case FragmentDone:
			return n, nil
		case FragmentAwaitContinuation:
			return n, ErrContinuationPending
		}
		m, err := w.Write(frag.Data)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
}
