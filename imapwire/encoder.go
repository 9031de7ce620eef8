package imapwire

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/luhaoyun888/go-imap-codec"
)

// DefaultMaxQuotedSize 是编码为引号字符串的最大长度，更长的字符串编码为字面量。
const DefaultMaxQuotedSize = 1024

// An Encoder 写入 IMAP 数据。
//
// 大多数方法可以链式调用。第一个错误是粘滞的，由 Err 或 Encoded 返回。
type Encoder struct {
	// LiteralPlus 和 LiteralMinus 允许客户端写出非同步字面量。
	LiteralPlus, LiteralMinus bool
	// Binary 允许写出 literal8。
	Binary bool
	// QuotedUTF8 允许在引号字符串中写出 UTF-8（UTF8=ACCEPT）。
	QuotedUTF8 bool
	// MaxQuotedSize 是引号字符串的最大长度，<= 0 表示 DefaultMaxQuotedSize。
	MaxQuotedSize int

	side  ConnSide
	buf   []byte
	frags []Fragment
	err   error
}

// NewEncoder 创建一个编码器。side 是写入数据的一方。
func NewEncoder(side ConnSide) *Encoder {
	return &Encoder{side: side}
}

// Err 返回编码器错误（如果有）。
func (enc *Encoder) Err() error {
	return enc.err
}

func (enc *Encoder) setErr(err *Error) *Encoder {
	if enc.err == nil {
		err.Offset = -1
		enc.err = err
	}
	return enc
}

// Errorf 记录一个 KindInvalid 编码错误。
func (enc *Encoder) Errorf(format string, v ...interface{}) *Encoder {
	return enc.setErr(&Error{Kind: KindInvalid, Err: fmt.Errorf(format, v...)})
}

// Unsupported 记录一个 KindUnsupported 编码错误。
func (enc *Encoder) Unsupported(ext, what string) *Encoder {
	return enc.setErr(&Error{Kind: KindUnsupported, Extension: ext, Expected: what})
}

func (enc *Encoder) writeString(s string) *Encoder {
	if enc.err == nil {
		enc.buf = append(enc.buf, s...)
	}
	return enc
}

// Raw 不加检查地写入 s。调用者负责 s 的合法性。
func (enc *Encoder) Raw(s string) *Encoder {
	return enc.writeString(s)
}

func (enc *Encoder) SP() *Encoder {
	return enc.writeString(" ")
}

func (enc *Encoder) CRLF() *Encoder {
	return enc.writeString("\r\n")
}

func (enc *Encoder) Special(ch byte) *Encoder {
	if enc.err == nil {
		enc.buf = append(enc.buf, ch)
	}
	return enc
}

func validFunc(s string, valid func(ch byte) bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !valid(s[i]) {
			return false
		}
	}
	return true
}

// Atom 写入一个原子。s 必须是非空的 ATOM-CHAR 序列。
func (enc *Encoder) Atom(s string) *Encoder {
	if !validFunc(s, IsAtomChar) {
		return enc.Errorf("invalid atom %q", s)
	}
	return enc.writeString(s)
}

// Tag 写入一个命令标签。
func (enc *Encoder) Tag(s string) *Encoder {
	if !validFunc(s, IsTagChar) {
		return enc.Errorf("invalid tag %q", s)
	}
	return enc.writeString(s)
}

// Flag 写入一个标志："\" 原子、原子或 "\*"。
func (enc *Encoder) Flag(flag imap.Flag) *Encoder {
	s := string(flag)
	if s == string(imap.FlagWildcard) {
		return enc.writeString(s)
	}
	name := strings.TrimPrefix(s, "\\")
	if !validFunc(name, IsAtomChar) {
		return enc.Errorf("invalid flag %q", s)
	}
	return enc.writeString(s)
}

func (enc *Encoder) Number(v uint32) *Encoder {
	return enc.writeString(strconv.FormatUint(uint64(v), 10))
}

// NZNumber 写入一个非零数字。
func (enc *Encoder) NZNumber(v uint32) *Encoder {
	if v == 0 {
		return enc.Errorf("zero is not a valid nz-number")
	}
	return enc.Number(v)
}

func (enc *Encoder) Number64(v int64) *Encoder {
	if v < 0 {
		return enc.Errorf("negative number64 %v", v)
	}
	return enc.writeString(strconv.FormatInt(v, 10))
}

// ModSeq 写入一个 mod-sequence-value。
func (enc *Encoder) ModSeq(v uint64) *Encoder {
	if v == 0 || v > 1<<63-1 {
		return enc.Errorf("invalid mod-sequence-value %v", v)
	}
	return enc.writeString(strconv.FormatUint(v, 10))
}

func (enc *Encoder) NIL() *Encoder {
	return enc.writeString("NIL")
}

func (enc *Encoder) maxQuotedSize() int {
	if enc.MaxQuotedSize > 0 {
		return enc.MaxQuotedSize
	}
	return DefaultMaxQuotedSize
}

func (enc *Encoder) canQuote(s string) bool {
	if len(s) > enc.maxQuotedSize() {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\r' || ch == '\n' || ch == 0 {
			return false
		}
		if ch >= 0x80 && !enc.QuotedUTF8 {
			return false
		}
	}
	return !enc.QuotedUTF8 || utf8.ValidString(s)
}

// Quoted 写入一个引号字符串。s 不能包含 CR、LF 或 NUL。
func (enc *Encoder) Quoted(s string) *Encoder {
	if strings.ContainsAny(s, "\r\n\x00") {
		return enc.Errorf("quoted string contains CR, LF or NUL")
	}
	if enc.err != nil {
		return enc
	}
	enc.buf = append(enc.buf, '"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\\' {
			enc.buf = append(enc.buf, '\\')
		}
		enc.buf = append(enc.buf, ch)
	}
	enc.buf = append(enc.buf, '"')
	return enc
}

// String 写入一个 string：能用引号字符串时用引号字符串，否则用字面量。
func (enc *Encoder) String(s string) *Encoder {
	if enc.canQuote(s) {
		return enc.Quoted(s)
	}
	return enc.Literal([]byte(s), false)
}

// AString 写入一个 astring：依次优先选择原子、引号字符串和字面量。
func (enc *Encoder) AString(s string) *Encoder {
	if validFunc(s, IsAStringChar) {
		return enc.writeString(s)
	}
	return enc.String(s)
}

// NString 写入一个 nstring。空字符串写为 NIL。
func (enc *Encoder) NString(s string) *Encoder {
	if s == "" {
		return enc.NIL()
	}
	return enc.String(s)
}

// NStringBytes 写入大块数据的 nstring。nil 写为 NIL。
func (enc *Encoder) NStringBytes(b []byte, binary bool) *Encoder {
	if b == nil {
		return enc.NIL()
	}
	if binary {
		return enc.Literal(b, true)
	}
	if len(b) <= enc.maxQuotedSize() && enc.canQuote(string(b)) {
		return enc.Quoted(string(b))
	}
	return enc.Literal(b, false)
}

// Mailbox 写入一个邮箱名称。INBOX 不区分大小写。
func (enc *Encoder) Mailbox(name string) *Encoder {
	if strings.EqualFold(name, "INBOX") {
		return enc.writeString("INBOX")
	}
	return enc.AString(name)
}

// ListMailbox 写入一个 list-mailbox，允许通配符 "%" 和 "*"。
func (enc *Encoder) ListMailbox(pattern string) *Encoder {
	if validFunc(pattern, IsListChar) {
		return enc.writeString(pattern)
	}
	return enc.String(pattern)
}

// Text 写入响应文本。文本不能包含 CR、LF 或 NUL。
func (enc *Encoder) Text(s string) *Encoder {
	if strings.ContainsAny(s, "\r\n\x00") {
		return enc.Errorf("text contains CR, LF or NUL")
	}
	return enc.writeString(s)
}

// List 写入一个括号列表，对每个元素调用 f。
func (enc *Encoder) List(n int, f func(i int)) *Encoder {
	enc.Special('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			enc.SP()
		}
		f(i)
	}
	return enc.Special(')')
}

// NumSet 写入一个序列集。
func (enc *Encoder) NumSet(numSet imap.NumSet) *Encoder {
	if numSet == nil {
		return enc.Errorf("missing sequence-set")
	}
	s := numSet.String()
	if s == "" {
		return enc.Errorf("empty sequence-set")
	}
	return enc.writeString(s)
}

// Date 写入一个日期 "d-Mon-yyyy"。
func (enc *Encoder) Date(t time.Time) *Encoder {
	if t.IsZero() {
		return enc.Errorf("missing date")
	}
	return enc.writeString(t.Format(dateLayout))
}

// DateTime 写入一个带引号的日期时间。
func (enc *Encoder) DateTime(t time.Time) *Encoder {
	if t.IsZero() {
		return enc.Errorf("missing date-time")
	}
	return enc.writeString(`"` + t.Format("02-Jan-2006 15:04:05 -0700") + `"`)
}

// Base64 写入 base64 编码的数据。
func (enc *Encoder) Base64(b []byte) *Encoder {
	return enc.writeString(base64.StdEncoding.EncodeToString(b))
}

func (enc *Encoder) flush() {
	if len(enc.buf) > 0 {
		enc.frags = append(enc.frags, Fragment{Kind: FragmentBytes, Data: enc.buf})
		enc.buf = nil
	}
}

// Literal 写入一个字面量。客户端写出同步字面量时在头部之后插入一个
// 等待继续请求的片段。数据不会被复制。
func (enc *Encoder) Literal(b []byte, binary bool) *Encoder {
	if enc.err != nil {
		return enc
	}
	if binary && !enc.Binary {
		return enc.Unsupported("BINARY", "literal8")
	}
	if !binary && bytes.IndexByte(b, 0) >= 0 {
		return enc.Errorf("NUL byte in literal")
	}

	hdr := LiteralHeader{Size: int64(len(b)), Binary: binary}
	if enc.side == ConnSideClient {
		hdr.NonSync = enc.LiteralPlus || (enc.LiteralMinus && len(b) <= LiteralMinusMaxSize)
	}
	enc.buf = append(enc.buf, hdr.String()...)
	enc.buf = append(enc.buf, "\r\n"...)
	enc.flush()
	if enc.side == ConnSideClient && !hdr.NonSync {
		h := hdr
		enc.frags = append(enc.frags, Fragment{Kind: FragmentAwaitContinuation, Literal: &h})
	}
	if len(b) > 0 {
		enc.frags = append(enc.frags, Fragment{Kind: FragmentBytes, Data: b})
	}
	return enc
}

// Encoded 结束编码并返回片段游标。
func (enc *Encoder) Encoded() (*Encoded, error) {
	if enc.err != nil {
		return nil, enc.err
	}
	enc.flush()
	frags := enc.frags
	enc.frags = nil
	return &Encoded{frags: frags}, nil
}
