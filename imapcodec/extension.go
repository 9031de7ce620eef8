package imapcodec

import (
	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

var supportedExtensions = []imap.Cap{
	imap.CapUIDPlus,
	imap.CapIdle,
	imap.CapLiteralPlus,
	imap.CapLiteralMinus,
	imap.CapCondStore,
	imap.CapSASLIR,
	imap.CapEnable,
	imap.CapMove,
	imap.CapUnselect,
	imap.CapNamespace,
	imap.CapID,
	imap.CapQuota,
	imap.CapCompressDeflate,
	imap.CapBinary,
	imap.CapSearchRes,
	imap.CapESearch,
	imap.CapStatusSize,
	imap.CapAppendLimit,
	imap.CapACL,
	imap.CapSort,
	imap.CapThreadOrderedSubject,
	imap.CapThreadReferences,
	imap.CapUTF8Accept,
}

// SupportedExtensions 返回可以在 Options.Extensions 中启用的扩展。
func SupportedExtensions() []imap.Cap {
	l := make([]imap.Cap, len(supportedExtensions))
	copy(l, supportedExtensions)
	return l
}

func isSupportedExtension(c imap.Cap) bool {
	for _, ext := range supportedExtensions {
		if c == ext {
			return true
		}
	}
	return false
}

// AllExtensions 返回启用所有支持的扩展的集合。
func AllExtensions() imap.CapSet {
	return imap.NewCapSet(supportedExtensions...)
}

// requireDec 在扩展未启用时记录 KindUnsupported 解码错误。
func (c *Codec) requireDec(dec *imapwire.Decoder, ext imap.Cap, what string) bool {
	if c.has(ext) {
		return true
	}
	dec.Unsupported(string(ext), what)
	return false
}

// requireEnc 在扩展未启用时记录 KindUnsupported 编码错误。
func (c *Codec) requireEnc(enc *imapwire.Encoder, ext imap.Cap, what string) bool {
	if c.has(ext) {
		return true
	}
	enc.Unsupported(string(ext), what)
	return false
}

func (c *Codec) hasThread() bool {
	return c.has(imap.CapThreadOrderedSubject) || c.has(imap.CapThreadReferences)
}

func threadCap(alg imap.ThreadAlgorithm) imap.Cap {
	return imap.Cap("THREAD=" + string(alg))
}

// requireNumSet 检查 "$" 是否被允许。
func (c *Codec) requireNumSetDec(dec *imapwire.Decoder, set imap.NumSet) bool {
	if imap.IsSearchRes(set) {
		return c.requireDec(dec, imap.CapSearchRes, "$")
	}
	return true
}

func (c *Codec) writeNumSet(enc *imapwire.Encoder, set imap.NumSet) {
	if set != nil && imap.IsSearchRes(set) && !c.requireEnc(enc, imap.CapSearchRes, "$") {
		return
	}
	enc.NumSet(set)
}
