package imap

import (
	"bytes"
	"fmt"
)

// Literal 是一块消息数据，例如 APPEND 的消息或 FETCH BODY[] 的内容。
//
// 解码得到的 Literal 通常是输入缓冲区的视图（借用），只在缓冲区有效期间有效。
// Own 返回一个独立的副本。
type Literal struct {
	data     []byte
	borrowed bool

	// NonSync 记录线路上使用的是非同步字面量。编码时由启用的扩展决定实际形式。
	NonSync bool
	// Binary 表示数据以 literal8 "~{n}" 传输，可以包含 NUL（BINARY）。
	Binary bool
}

var _ fmt.Stringer = (*Literal)(nil)

// NewLiteral 返回一个拥有 b 的 Literal。调用者之后不应再修改 b。
func NewLiteral(b []byte) *Literal {
	if b == nil {
		b = []byte{}
	}
	return &Literal{data: b}
}

// BorrowLiteral 返回一个引用 b 的 Literal，b 通常是解码器的输入缓冲区。
func BorrowLiteral(b []byte) *Literal {
	lit := NewLiteral(b)
	lit.borrowed = true
	return lit
}

// Bytes 返回数据。
func (lit *Literal) Bytes() []byte {
	if lit == nil {
		return nil
	}
	return lit.data
}

// Size 返回数据长度。
func (lit *Literal) Size() int64 {
	if lit == nil {
		return 0
	}
	return int64(len(lit.data))
}

// Borrowed 报告数据是否借用自解码器的输入缓冲区。
func (lit *Literal) Borrowed() bool {
	return lit != nil && lit.borrowed
}

// Own 返回不再引用输入缓冲区的 Literal。已经拥有数据时返回 lit 本身。
func (lit *Literal) Own() *Literal {
	if lit == nil || !lit.borrowed {
		return lit
	}
	owned := *lit
	owned.data = append([]byte{}, lit.data...)
	owned.borrowed = false
	return &owned
}

// Reader 返回读取数据的 LiteralReader。
func (lit *Literal) Reader() LiteralReader {
	return bytes.NewReader(lit.Bytes())
}

// Equal 比较两个 Literal 的数据和 Binary 标志。
func (lit *Literal) Equal(other *Literal) bool {
	if lit == nil || other == nil {
		return lit == other
	}
	return lit.Binary == other.Binary && bytes.Equal(lit.data, other.data)
}

// String 实现 fmt.Stringer 接口，不输出数据内容。
func (lit *Literal) String() string {
	if lit == nil {
		return "NIL"
	}
	kind := "literal"
	if lit.Binary {
		kind = "literal8"
	}
	return fmt.Sprintf("<%v %v bytes>", kind, len(lit.data))
}
