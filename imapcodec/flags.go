package imapcodec

import (
	"strings"
	"unicode/utf8"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isFetchAttChar 判断字符是否可以出现在 FETCH 数据项名称中。
// "[" 和 "<" 是 ATOM-CHAR，这里不能使用 Atom。
func isFetchAttChar(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '.' || ch == '-'
}

// isSectionTextChar 判断字符是否可以出现在 section-text 名称中。
func isSectionTextChar(ch byte) bool {
	return isAlpha(ch) || ch == '.'
}

// isCodeArgChar 判断字符是否可以出现在响应代码的参数中。
func isCodeArgChar(ch byte) bool {
	return imapwire.IsTextChar(ch) && ch != ']'
}

// readName 读取一个名称并转换为大写。
func readName(dec *imapwire.Decoder, valid func(ch byte) bool, what string) (string, error) {
	var name string
	if !dec.Expect(dec.Func(&name, valid), what) {
		return "", dec.Err()
	}
	return strings.ToUpper(name), nil
}

// readFlag 读取一个标志。allowWildcard 为 true 时接受 "\*"（flag-perm）。
func readFlag(dec *imapwire.Decoder, allowWildcard bool) (imap.Flag, error) {
	isSystem := dec.Special('\\')
	if isSystem && allowWildcard && dec.Special('*') {
		return imap.FlagWildcard, nil
	}
	var name string
	if !dec.Expect(dec.Atom(&name), "flag") {
		return "", dec.Err()
	}
	if isSystem {
		name = "\\" + name
	}
	return imap.Flag(name), nil
}

// readFlagList 读取一个括号内的标志列表。空列表返回 nil。
func readFlagList(dec *imapwire.Decoder, allowWildcard bool) ([]imap.Flag, error) {
	ok := dec.Enter("flag-list")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var flags []imap.Flag
	err := dec.ExpectList(func() error {
		flag, err := readFlag(dec, allowWildcard)
		if err != nil {
			return err
		}
		flags = append(flags, flag)
		return nil
	})
	return flags, err
}

func writeFlag(enc *imapwire.Encoder, flag imap.Flag, allowWildcard bool) {
	if flag == imap.FlagWildcard && !allowWildcard {
		enc.Errorf("%v 只能出现在 PERMANENTFLAGS 中", flag)
		return
	}
	enc.Flag(flag)
}

func writeFlagList(enc *imapwire.Encoder, flags []imap.Flag, allowWildcard bool) {
	enc.List(len(flags), func(i int) {
		writeFlag(enc, flags[i], allowWildcard)
	})
}

// readMailbox 读取一个邮箱名称，"INBOX" 不区分大小写。
func readMailbox(dec *imapwire.Decoder) (string, error) {
	var name string
	if !dec.Expect(dec.AString(&name), "mailbox") {
		return "", dec.Err()
	}
	return imap.CanonicalMailboxName(name), nil
}

// readListMailbox 读取一个 list-mailbox，可以包含通配符。
func readListMailbox(dec *imapwire.Decoder) (string, error) {
	var pattern string
	if dec.Func(&pattern, imapwire.IsListChar) || dec.String(&pattern) {
		return pattern, nil
	}
	dec.Expect(false, "list-mailbox")
	return "", dec.Err()
}

// readCaps 读取以空格分隔的能力列表，直到没有更多的 SP。
func readCaps(dec *imapwire.Decoder) ([]imap.Cap, error) {
	var caps []imap.Cap
	for dec.SP() {
		var name string
		if !dec.Expect(dec.Atom(&name), "capability") {
			return nil, dec.Err()
		}
		caps = append(caps, imap.Cap(name))
	}
	return caps, dec.Err()
}

func writeCaps(enc *imapwire.Encoder, caps []imap.Cap) {
	for _, c := range caps {
		enc.SP().Atom(string(c))
	}
}

// readDelim 读取层级分隔符：NIL 或只含一个字符的引号字符串。
func readDelim(dec *imapwire.Decoder) (rune, error) {
	if dec.NIL() {
		return 0, nil
	}
	var s string
	if !dec.Expect(dec.Quoted(&s), "hierarchy delimiter") {
		return 0, dec.Err()
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) || r == utf8.RuneError {
		return 0, dec.Errorf("层级分隔符必须是一个字符: %q", s)
	}
	return r, nil
}

func writeDelim(enc *imapwire.Encoder, delim rune) {
	if delim == 0 {
		enc.NIL()
		return
	}
	if !utf8.ValidRune(delim) {
		enc.Errorf("无效的层级分隔符 %q", delim)
		return
	}
	enc.Quoted(string(delim))
}

// readNumList 读取以空格分隔的非零数字，直到没有更多的 SP。
func readNumList(dec *imapwire.Decoder) ([]uint32, error) {
	var nums []uint32
	for dec.SP() {
		var num uint32
		if !dec.ExpectNZNumber(&num) {
			return nil, dec.Err()
		}
		nums = append(nums, num)
	}
	return nums, dec.Err()
}

func writeNumList(enc *imapwire.Encoder, nums []uint32) {
	for _, num := range nums {
		enc.SP().NZNumber(num)
	}
}
