// Package imapcodec 在字节和 imap 包的类型化消息之间双向转换 IMAP4rev1 消息。
//
// Codec 是无状态的：每次解码调用只看到调用者传入的缓冲区，不在调用之间保存
// 连接状态。解码结果有三种：
//
//   - 成功：返回值和消耗的字节数；
//   - 不完整：errors.Is(err, imapwire.ErrIncomplete)，调用者追加数据后从同一
//     消息的开头重试；
//   - 失败：*imapwire.Error，带有失败类别、偏移和语法上下文。
//
// 编码返回 *imapwire.Encoded，它在同步字面量处切分输出，调用者必须在发送字面量
// 数据之前等待对端的继续请求。
package imapcodec

import (
	"fmt"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// DefaultMaxLiteralSize 是默认的最大字面量长度（64 MiB）。
const DefaultMaxLiteralSize = 64 << 20

// DefaultMaxQuotedSize 是默认的最大引号字符串长度，更长的字符串编码为字面量。
const DefaultMaxQuotedSize = imapwire.DefaultMaxQuotedSize

// Logger 是编解码器使用的日志接口，*log.Logger 满足该接口。
type Logger interface {
	Printf(format string, v ...interface{})
}

// Options 包含 Codec 的配置。nil *Options 等价于零值。
type Options struct {
	// Extensions 是启用的扩展。未启用的扩展语法在解码和编码时都会失败，
	// 错误类别为 imapwire.KindUnsupported。
	Extensions imap.CapSet
	// MaxLiteralSize 是允许的最大字面量长度，0 表示 DefaultMaxLiteralSize。
	MaxLiteralSize int64
	// MaxQuotedSize 是编码为引号字符串的最大长度，0 表示 DefaultMaxQuotedSize。
	MaxQuotedSize int
	// Logger 记录解码失败和编码拒绝，nil 表示不记录。
	Logger Logger
	// Observer 观察每次解码和编码的结果，nil 表示不观察。
	Observer Observer
}

// Validate 检查配置是否合法。
func (options *Options) Validate() error {
	if options == nil {
		return nil
	}
	for c := range options.Extensions {
		if !isSupportedExtension(c) {
			return fmt.Errorf("imapcodec: 不支持的扩展 %q", c)
		}
	}
	if options.MaxLiteralSize < 0 {
		return fmt.Errorf("imapcodec: MaxLiteralSize 不能为负数: %v", options.MaxLiteralSize)
	}
	if options.MaxQuotedSize < 0 {
		return fmt.Errorf("imapcodec: MaxQuotedSize 不能为负数: %v", options.MaxQuotedSize)
	}
	return nil
}

// Codec 是 IMAP 编解码器。Codec 创建后不可变，可以被多个 goroutine 同时使用。
type Codec struct {
	exts           imap.CapSet
	maxLiteralSize int64
	maxQuotedSize  int
	logger         Logger
	observer       Observer
}

// New 创建一个 Codec。
func New(options *Options) (*Codec, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if options == nil {
		options = &Options{}
	}

	c := &Codec{
		exts:           imap.NewCapSet(options.Extensions.Caps()...),
		maxLiteralSize: options.MaxLiteralSize,
		maxQuotedSize:  options.MaxQuotedSize,
		logger:         options.Logger,
		observer:       options.Observer,
	}
	if c.maxLiteralSize == 0 {
		c.maxLiteralSize = DefaultMaxLiteralSize
	}
	if c.maxQuotedSize == 0 {
		c.maxQuotedSize = DefaultMaxQuotedSize
	}
	return c, nil
}

// Extensions 返回启用的扩展集合的副本。
func (c *Codec) Extensions() imap.CapSet {
	return imap.NewCapSet(c.exts.Caps()...)
}

// MaxLiteralSize 返回允许的最大字面量长度。
func (c *Codec) MaxLiteralSize() int64 {
	return c.maxLiteralSize
}

func (c *Codec) has(ext imap.Cap) bool {
	return c.exts.Has(ext)
}

func (c *Codec) newDecoder(b []byte, side imapwire.ConnSide) *imapwire.Decoder {
	dec := imapwire.NewDecoder(b, side)
	dec.MaxLiteralSize = c.maxLiteralSize
	dec.LiteralPlus = c.has(imap.CapLiteralPlus)
	dec.LiteralMinus = c.has(imap.CapLiteralMinus)
	dec.Binary = c.has(imap.CapBinary)
	return dec
}

func (c *Codec) newEncoder(side imapwire.ConnSide) *imapwire.Encoder {
	enc := imapwire.NewEncoder(side)
	enc.LiteralPlus = c.has(imap.CapLiteralPlus)
	enc.LiteralMinus = c.has(imap.CapLiteralMinus)
	enc.Binary = c.has(imap.CapBinary)
	enc.QuotedUTF8 = c.has(imap.CapUTF8Accept)
	enc.MaxQuotedSize = c.maxQuotedSize
	return enc
}

func (c *Codec) logf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}
