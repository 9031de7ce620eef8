package imapwire

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/internal/imapnum"
)

// DefaultMaxDepth 是默认的最大语法嵌套深度。
const DefaultMaxDepth = 128

// A Decoder 在内存缓冲区上读取 IMAP 数据。
//
// 有几组方法：
//
//   - 直接以 IMAP 语法元素命名的方法尝试解码该元素，如果是其他元素则返回
//     false 且不消耗输入。
//   - "Expect" 方法做同样的事，但在失败时设置解码器错误（参见 Err）。
//
// 第一个错误是粘滞的：之后所有方法都返回 false。缓冲区在记号结束之前耗尽时
// 记录 *IncompleteError，它不能被 Try 清除。
//
// Decoder 不复制输入：返回 []byte 的方法返回缓冲区的视图。
type Decoder struct {
	// MaxLiteralSize 是字面量允许的最大长度，<= 0 表示不限制。
	MaxLiteralSize int64
	// MaxDepth 是语法产生式的最大嵌套深度，<= 0 表示 DefaultMaxDepth。
	MaxDepth int
	// LiteralPlus 和 LiteralMinus 允许非同步字面量（只在服务器端读取命令时有效）。
	LiteralPlus, LiteralMinus bool
	// Binary 允许 literal8 "~{n}"。
	Binary bool

	side ConnSide
	buf  []byte
	pos  int
	err  error
	ctx  []string
}

// NewDecoder 创建一个读取 b 的解码器。side 是读取数据的一方。
func NewDecoder(b []byte, side ConnSide) *Decoder {
	return &Decoder{buf: b, side: side}
}

// Side 返回读取数据的一方。
func (dec *Decoder) Side() ConnSide {
	return dec.side
}

// Err 返回解码器错误（如果有）。
func (dec *Decoder) Err() error {
	return dec.err
}

// Offset 返回当前读取位置。
func (dec *Decoder) Offset() int {
	return dec.pos
}

// EOF 报告是否已读取完整个缓冲区。
func (dec *Decoder) EOF() bool {
	return dec.pos >= len(dec.buf)
}

func (dec *Decoder) setErr(err error) bool {
	if dec.err == nil {
		dec.err = err
	}
	return false
}

func (dec *Decoder) incomplete(need int64, lit *LiteralHeader) bool {
	return dec.setErr(&IncompleteError{Need: need, Literal: lit})
}

func (dec *Decoder) fail(err *Error) bool {
	if dec.err != nil {
		return false
	}
	err.Offset = dec.pos
	if len(dec.ctx) > 0 {
		err.Context = append([]string(nil), dec.ctx...)
	}
	dec.err = err
	return false
}

// Errorf 在当前位置记录一个 KindInvalid 错误并返回解码器错误。
func (dec *Decoder) Errorf(format string, v ...interface{}) error {
	dec.fail(&Error{Kind: KindInvalid, Err: fmt.Errorf(format, v...)})
	return dec.err
}

// Unsupported 记录一个 KindUnsupported 错误并返回解码器错误。
func (dec *Decoder) Unsupported(ext, what string) error {
	dec.fail(&Error{Kind: KindUnsupported, Extension: ext, Expected: what})
	return dec.err
}

// Expect 在 ok 为 false 时设置解码器错误。
func (dec *Decoder) Expect(ok bool, name string) bool {
	if !ok {
		return dec.fail(&Error{Kind: KindInvalid, Expected: name})
	}
	return true
}

// Enter 进入一个语法产生式，错误会记录产生式的名称。超过最大嵌套深度时
// 记录 KindResourceLimit 错误并返回 false。每次调用 Enter 之后都必须调用 Leave。
func (dec *Decoder) Enter(name string) bool {
	dec.ctx = append(dec.ctx, name)
	max := dec.MaxDepth
	if max <= 0 {
		max = DefaultMaxDepth
	}
	if len(dec.ctx) > max {
		return dec.fail(&Error{Kind: KindResourceLimit, Expected: "nesting depth"})
	}
	return dec.err == nil
}

// Leave 离开最近进入的语法产生式。
func (dec *Decoder) Leave() {
	if len(dec.ctx) > 0 {
		dec.ctx = dec.ctx[:len(dec.ctx)-1]
	}
}

// Try 调用 f。如果 f 失败且错误是确定性的（不是 Incomplete），Try 恢复读取位置
// 并清除错误，以便调用者尝试下一个候选。Incomplete 总是保留：更多数据才能决定
// 选择哪个候选。
func (dec *Decoder) Try(f func() bool) bool {
	if dec.err != nil {
		return false
	}
	pos, depth := dec.pos, len(dec.ctx)
	if f() && dec.err == nil {
		return true
	}
	if dec.err != nil && IsIncomplete(dec.err) {
		return false
	}
	dec.err = nil
	dec.pos = pos
	dec.ctx = dec.ctx[:depth]
	return false
}

// Peek 返回下一个字节而不消耗它。
func (dec *Decoder) Peek() (byte, bool) {
	if dec.err != nil {
		return 0, false
	}
	if dec.pos >= len(dec.buf) {
		return 0, dec.incomplete(1, nil)
	}
	return dec.buf[dec.pos], true
}

func (dec *Decoder) acceptByte(want byte) bool {
	ch, ok := dec.Peek()
	if !ok || ch != want {
		return false
	}
	dec.pos++
	return true
}

// Special 读取一个特定字节。
func (dec *Decoder) Special(b byte) bool {
	return dec.acceptByte(b)
}

// ExpectSpecial 读取一个特定字节，失败时设置错误。
func (dec *Decoder) ExpectSpecial(b byte) bool {
	return dec.Expect(dec.Special(b), strconv.QuoteRune(rune(b)))
}

func (dec *Decoder) SP() bool {
	return dec.acceptByte(' ')
}

func (dec *Decoder) ExpectSP() bool {
	return dec.Expect(dec.SP(), "SP")
}

func (dec *Decoder) CRLF() bool {
	start := dec.pos
	if !dec.acceptByte('\r') {
		return false
	}
	if !dec.acceptByte('\n') {
		dec.pos = start
		return false
	}
	return true
}

func (dec *Decoder) ExpectCRLF() bool {
	return dec.Expect(dec.CRLF(), "CRLF")
}

// Func 读取一段满足 valid 的字节。至少需要一个字节。
func (dec *Decoder) Func(ptr *string, valid func(ch byte) bool) bool {
	b, ok := dec.funcBytes(valid)
	if ok {
		*ptr = string(b)
	}
	return ok
}

func (dec *Decoder) funcBytes(valid func(ch byte) bool) ([]byte, bool) {
	start := dec.pos
	for {
		ch, ok := dec.Peek()
		if !ok {
			dec.pos = start
			return nil, false
		}
		if !valid(ch) {
			break
		}
		dec.pos++
	}
	if dec.pos == start {
		return nil, false
	}
	return dec.buf[start:dec.pos], true
}

func (dec *Decoder) Atom(ptr *string) bool {
	return dec.Func(ptr, IsAtomChar)
}

func (dec *Decoder) ExpectAtom(ptr *string) bool {
	return dec.Expect(dec.Atom(ptr), "atom")
}

// Keyword 读取一个原子并与 kw 比较（不区分大小写）。不匹配时不消耗输入。
func (dec *Decoder) Keyword(kw string) bool {
	start := dec.pos
	b, ok := dec.funcBytes(IsAtomChar)
	if !ok {
		return false
	}
	if !strings.EqualFold(string(b), kw) {
		dec.pos = start
		return false
	}
	return true
}

func (dec *Decoder) ExpectKeyword(kw string) bool {
	return dec.Expect(dec.Keyword(kw), kw)
}

func (dec *Decoder) NIL() bool {
	return dec.Keyword("NIL")
}

func (dec *Decoder) ExpectNIL() bool {
	return dec.Expect(dec.NIL(), "NIL")
}

func (dec *Decoder) numberBytes() ([]byte, bool) {
	return dec.funcBytes(isDigit)
}

// Number 读取一个 32 位无符号数字。
func (dec *Decoder) Number(ptr *uint32) bool {
	start := dec.pos
	b, ok := dec.numberBytes()
	if !ok {
		return false
	}
	v, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		dec.pos = start
		return false
	}
	*ptr = uint32(v)
	return true
}

func (dec *Decoder) ExpectNumber(ptr *uint32) bool {
	return dec.Expect(dec.Number(ptr), "number")
}

// NZNumber 读取一个非零的 32 位数字。
func (dec *Decoder) NZNumber(ptr *uint32) bool {
	start := dec.pos
	var v uint32
	if !dec.Number(&v) {
		return false
	}
	if v == 0 {
		dec.pos = start
		return false
	}
	*ptr = v
	return true
}

func (dec *Decoder) ExpectNZNumber(ptr *uint32) bool {
	return dec.Expect(dec.NZNumber(ptr), "nz-number")
}

// Number64 读取一个 63 位无符号数字（number64）。
func (dec *Decoder) Number64(ptr *int64) bool {
	start := dec.pos
	b, ok := dec.numberBytes()
	if !ok {
		return false
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		dec.pos = start
		return false
	}
	*ptr = v
	return true
}

func (dec *Decoder) ExpectNumber64(ptr *int64) bool {
	return dec.Expect(dec.Number64(ptr), "number64")
}

// ModSeq 读取一个 mod-sequence-value（1 到 2^63-1）。
func (dec *Decoder) ModSeq(ptr *uint64) bool {
	start := dec.pos
	var v int64
	if !dec.Number64(&v) {
		return false
	}
	if v == 0 {
		dec.pos = start
		return false
	}
	*ptr = uint64(v)
	return true
}

func (dec *Decoder) ExpectModSeq(ptr *uint64) bool {
	return dec.Expect(dec.ModSeq(ptr), "mod-sequence-value")
}

// quoted 读取一个引号字符串。没有转义时返回缓冲区的视图。
func (dec *Decoder) quoted() ([]byte, bool) {
	if dec.err != nil {
		return nil, false
	}
	start := dec.pos
	if !dec.Special('"') {
		return nil, false
	}
	var unescaped []byte
	escaped := false
	for i := dec.pos; ; i++ {
		if i >= len(dec.buf) {
			dec.pos = start
			return nil, dec.incomplete(1, nil)
		}
		ch := dec.buf[i]
		switch {
		case ch == '"':
			var b []byte
			if escaped {
				b = unescaped
				if b == nil {
					b = []byte{}
				}
			} else {
				b = dec.buf[dec.pos:i]
			}
			dec.pos = i + 1
			return b, true
		case ch == '\\':
			if i+1 >= len(dec.buf) {
				dec.pos = start
				return nil, dec.incomplete(1, nil)
			}
			next := dec.buf[i+1]
			if next != '"' && next != '\\' {
				dec.pos = i
				return nil, dec.fail(&Error{Kind: KindInvalid, Expected: "quoted-specials after '\\'"})
			}
			if !escaped {
				unescaped = append(unescaped, dec.buf[dec.pos:i]...)
				escaped = true
			}
			unescaped = append(unescaped, next)
			i++
		case ch == '\r' || ch == '\n' || ch == 0:
			dec.pos = i
			return nil, dec.fail(&Error{Kind: KindInvalid, Expected: "QUOTED-CHAR"})
		default:
			if escaped {
				unescaped = append(unescaped, ch)
			}
		}
	}
}

// Quoted 读取一个引号字符串，处理 "\"" 和 "\\" 转义。
func (dec *Decoder) Quoted(ptr *string) bool {
	b, ok := dec.quoted()
	if ok {
		*ptr = string(b)
	}
	return ok
}

func (dec *Decoder) ExpectQuoted(ptr *string) bool {
	return dec.Expect(dec.Quoted(ptr), "quoted")
}

func (dec *Decoder) literalHeader(hdr *LiteralHeader, allowBinary bool) bool {
	if dec.err != nil {
		return false
	}
	start := dec.pos
	binary := false
	if allowBinary && dec.Special('~') {
		if !dec.Special('{') {
			dec.pos = start
			return false
		}
		binary = true
	} else if !dec.Special('{') {
		return false
	}

	digits, ok := dec.numberBytes()
	if !ok {
		return dec.Expect(false, "literal size")
	}
	size, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		size = math.MaxInt64
	}
	nonSync := dec.Special('+')
	if !dec.ExpectSpecial('}') {
		return false
	}

	if dec.MaxLiteralSize > 0 && size > dec.MaxLiteralSize {
		dec.pos = start
		return dec.fail(&Error{Kind: KindResourceLimit, Expected: "literal", Size: size})
	}
	if binary && !dec.Binary {
		dec.pos = start
		return dec.fail(&Error{Kind: KindUnsupported, Extension: "BINARY", Expected: "literal8"})
	}
	if nonSync {
		switch {
		case dec.side != ConnSideServer:
			dec.pos = start
			return dec.fail(&Error{Kind: KindInvalid, Expected: "synchronizing literal"})
		case dec.LiteralPlus:
		case dec.LiteralMinus && size <= LiteralMinusMaxSize:
		default:
			dec.pos = start
			return dec.fail(&Error{Kind: KindUnsupported, Extension: "LITERAL+", Expected: "non-synchronizing literal", Size: size})
		}
	}
	if !dec.ExpectCRLF() {
		return false
	}

	*hdr = LiteralHeader{Size: size, NonSync: nonSync, Binary: binary}
	return true
}

// LiteralHeader 读取一个字面量头部 "{n}" 或 "{n+}" 以及其后的 CRLF。
func (dec *Decoder) LiteralHeader(hdr *LiteralHeader) bool {
	return dec.literalHeader(hdr, false)
}

func (dec *Decoder) literalData(hdr *LiteralHeader) ([]byte, bool) {
	if dec.err != nil {
		return nil, false
	}
	remaining := int64(len(dec.buf) - dec.pos)
	if remaining < hdr.Size {
		var lit *LiteralHeader
		if remaining == 0 {
			h := *hdr
			lit = &h
		}
		return nil, dec.incomplete(hdr.Size-remaining, lit)
	}
	b := dec.buf[dec.pos : dec.pos+int(hdr.Size)]
	if !hdr.Binary {
		if i := bytes.IndexByte(b, 0); i >= 0 {
			dec.pos += i
			return nil, dec.fail(&Error{Kind: KindInvalid, Expected: "CHAR8 (NUL in literal)"})
		}
	}
	dec.pos += int(hdr.Size)
	return b, true
}

// Literal 读取一个字面量，返回缓冲区的视图。
func (dec *Decoder) Literal(ptr *[]byte, hdr *LiteralHeader) bool {
	var h LiteralHeader
	if !dec.LiteralHeader(&h) {
		return false
	}
	b, ok := dec.literalData(&h)
	if !ok {
		return false
	}
	*ptr = b
	if hdr != nil {
		*hdr = h
	}
	return true
}

// Literal8 读取一个字面量或 literal8 "~{n}"。
func (dec *Decoder) Literal8(ptr *[]byte, hdr *LiteralHeader) bool {
	var h LiteralHeader
	if !dec.literalHeader(&h, true) {
		return false
	}
	b, ok := dec.literalData(&h)
	if !ok {
		return false
	}
	*ptr = b
	if hdr != nil {
		*hdr = h
	}
	return true
}

// String 读取一个 string（引号字符串或字面量）。
func (dec *Decoder) String(ptr *string) bool {
	if b, ok := dec.quoted(); ok {
		*ptr = string(b)
		return true
	}
	var b []byte
	if dec.Literal(&b, nil) {
		*ptr = string(b)
		return true
	}
	return false
}

func (dec *Decoder) ExpectString(ptr *string) bool {
	return dec.Expect(dec.String(ptr), "string")
}

// StringBytes 读取一个 string 并返回缓冲区的视图（引号字符串含转义时除外）。
// binary 为 true 时也接受 literal8。hdr 只对字面量填充。
func (dec *Decoder) StringBytes(ptr *[]byte, hdr *LiteralHeader, binary bool) bool {
	if b, ok := dec.quoted(); ok {
		*ptr = b
		if hdr != nil {
			*hdr = LiteralHeader{Size: -1}
		}
		return true
	}
	if binary {
		return dec.Literal8(ptr, hdr)
	}
	return dec.Literal(ptr, hdr)
}

// NStringBytes 读取一个 nstring。NIL 时 *ptr 为 nil，空字符串时为非 nil 的空切片。
func (dec *Decoder) NStringBytes(ptr *[]byte, hdr *LiteralHeader, binary bool) bool {
	if dec.NIL() {
		*ptr = nil
		return true
	}
	var b []byte
	if !dec.StringBytes(&b, hdr, binary) {
		return false
	}
	if b == nil {
		b = []byte{}
	}
	*ptr = b
	return true
}

func (dec *Decoder) ExpectNStringBytes(ptr *[]byte, hdr *LiteralHeader, binary bool) bool {
	return dec.Expect(dec.NStringBytes(ptr, hdr, binary), "nstring")
}

// AString 读取一个 astring（ASTRING-CHAR 原子、引号字符串或字面量）。
func (dec *Decoder) AString(ptr *string) bool {
	if dec.Func(ptr, IsAStringChar) {
		return true
	}
	return dec.String(ptr)
}

func (dec *Decoder) ExpectAString(ptr *string) bool {
	return dec.Expect(dec.AString(ptr), "astring")
}

// NString 读取一个 nstring。NIL 解码为空字符串。
func (dec *Decoder) NString(ptr *string) bool {
	if dec.NIL() {
		*ptr = ""
		return true
	}
	return dec.String(ptr)
}

func (dec *Decoder) ExpectNString(ptr *string) bool {
	return dec.Expect(dec.NString(ptr), "nstring")
}

// Text 读取 CRLF 之前的文本，不消耗 CRLF。文本可以为空。
func (dec *Decoder) Text(ptr *string) bool {
	if dec.err != nil {
		return false
	}
	i := dec.pos
	for i < len(dec.buf) && dec.buf[i] != '\r' && dec.buf[i] != '\n' && dec.buf[i] != 0 {
		i++
	}
	if i >= len(dec.buf) {
		return dec.incomplete(1, nil)
	}
	*ptr = string(dec.buf[dec.pos:i])
	dec.pos = i
	return true
}

func (dec *Decoder) ExpectText(ptr *string) bool {
	return dec.Expect(dec.Text(ptr), "text")
}

// List 读取一个括号列表，对每个元素调用 f。如果下一个字节不是 "("，返回 false。
func (dec *Decoder) List(f func() error) (isList bool, err error) {
	if !dec.Special('(') {
		return false, dec.Err()
	}
	if dec.Special(')') {
		return true, nil
	}
	for {
		if err := f(); err != nil {
			return true, err
		}
		if dec.err != nil {
			return true, dec.err
		}
		if dec.Special(')') {
			return true, nil
		} else if !dec.ExpectSP() {
			return true, dec.Err()
		}
	}
}

// ExpectList 读取一个括号列表，对每个元素调用 f。
func (dec *Decoder) ExpectList(f func() error) error {
	isList, err := dec.List(f)
	if err != nil {
		return err
	} else if !isList {
		dec.Expect(false, "'('")
		return dec.Err()
	}
	return nil
}

// ExpectNList 读取一个括号列表或 NIL。
func (dec *Decoder) ExpectNList(f func() error) error {
	isList, err := dec.List(f)
	if err != nil {
		return err
	} else if !isList && !dec.ExpectNIL() {
		return dec.Err()
	}
	return nil
}

func isNumSetChar(ch byte) bool {
	return isDigit(ch) || ch == '*' || ch == ':' || ch == ','
}

// NumKind 描述数字集中数字的种类。
type NumKind int

const (
	NumKindSeq NumKind = 1 + iota // 消息序列号
	NumKindUID                    // UID
)

// NumSet 读取一个序列集。"$" 解码为 imap.SearchRes()，是否允许由调用者决定。
func (dec *Decoder) NumSet(kind NumKind, ptr *imap.NumSet) bool {
	if dec.Special('$') {
		*ptr = imap.SearchRes()
		return true
	}
	start := dec.pos
	b, ok := dec.funcBytes(isNumSetChar)
	if !ok {
		return false
	}
	set, err := imapnum.Parse(string(b))
	if err != nil {
		dec.pos = start
		return dec.fail(&Error{Kind: KindInvalid, Expected: "sequence-set", Err: err})
	}
	switch kind {
	case NumKindUID:
		*ptr = imap.UIDSetFromRanges(set)
	default:
		*ptr = imap.SeqSetFromRanges(set)
	}
	return true
}

func (dec *Decoder) ExpectNumSet(kind NumKind, ptr *imap.NumSet) bool {
	return dec.Expect(dec.NumSet(kind, ptr), "sequence-set")
}

func isDateTextChar(ch byte) bool {
	return isDigit(ch) || ch == '-' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

const (
	dateLayout     = "2-Jan-2006"
	dateTimeLayout = "_2-Jan-2006 15:04:05 -0700"
)

// Date 读取一个日期 "d-Mon-yyyy"（可以带引号）。
func (dec *Decoder) Date(ptr *time.Time) bool {
	start := dec.pos
	var s string
	if b, ok := dec.quoted(); ok {
		s = string(b)
	} else if !dec.Func(&s, isDateTextChar) {
		return false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		dec.pos = start
		return dec.fail(&Error{Kind: KindInvalid, Expected: "date", Err: err})
	}
	*ptr = t
	return true
}

func (dec *Decoder) ExpectDate(ptr *time.Time) bool {
	return dec.Expect(dec.Date(ptr), "date")
}

// DateTime 读取一个带引号的日期时间 "dd-Mon-yyyy hh:mm:ss +zzzz"。
func (dec *Decoder) DateTime(ptr *time.Time) bool {
	start := dec.pos
	b, ok := dec.quoted()
	if !ok {
		return false
	}
	t, err := time.Parse(dateTimeLayout, string(b))
	if err != nil || len(b) != len("02-Jan-2006 15:04:05 -0700") {
		dec.pos = start
		if err == nil {
			err = fmt.Errorf("invalid length")
		}
		return dec.fail(&Error{Kind: KindInvalid, Expected: "date-time", Err: err})
	}
	*ptr = t
	return true
}

func (dec *Decoder) ExpectDateTime(ptr *time.Time) bool {
	return dec.Expect(dec.DateTime(ptr), "date-time")
}

// Base64 读取一段 base64 数据并解码。空数据是合法的。
func (dec *Decoder) Base64(ptr *[]byte) bool {
	if dec.err != nil {
		return false
	}
	start := dec.pos
	b, ok := dec.funcBytes(IsBase64Char)
	if !ok {
		if dec.err != nil {
			return false
		}
		*ptr = []byte{}
		return true
	}
	out, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		dec.pos = start
		return dec.fail(&Error{Kind: KindInvalid, Expected: "base64", Err: err})
	}
	*ptr = out
	return true
}
