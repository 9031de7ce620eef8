// Package utf7 实现 IMAP 邮箱名称使用的修改版 UTF-7 编码（RFC 3501 第 5.1.3 节）。
package utf7

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// 修改版 base64 使用 "," 代替 "/"，并且不带填充。
var b64 = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,").WithPadding(base64.NoPadding)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// ErrInvalid 表示输入不是合法的修改版 UTF-7。
var ErrInvalid = errors.New("utf7: invalid modified UTF-7")

func isDirect(r rune) bool {
	return r >= 0x20 && r <= 0x7e
}

// Encode 将 UTF-8 字符串编码为修改版 UTF-7。
func Encode(s string) (string, error) {
	var sb strings.Builder
	enc := utf16be.NewEncoder()
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return "", ErrInvalid
		}
		if isDirect(r) {
			if r == '&' {
				sb.WriteString("&-")
			} else {
				sb.WriteRune(r)
			}
			i += size
			continue
		}

		// 收集一段需要移位编码的字符
		j := i
		for j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if isDirect(r) {
				break
			}
			if r == utf8.RuneError && size <= 1 {
				return "", ErrInvalid
			}
			j += size
		}
		b, err := enc.Bytes([]byte(s[i:j]))
		if err != nil {
			return "", ErrInvalid
		}
		sb.WriteByte('&')
		sb.WriteString(b64.EncodeToString(b))
		sb.WriteByte('-')
		i = j
	}
	return sb.String(), nil
}

// Decode 将修改版 UTF-7 字符串解码为 UTF-8。
func Decode(s string) (string, error) {
	var sb strings.Builder
	dec := utf16be.NewDecoder()
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '&' {
			if !isDirect(rune(ch)) {
				return "", ErrInvalid
			}
			sb.WriteByte(ch)
			continue
		}
		end := strings.IndexByte(s[i+1:], '-')
		if end < 0 {
			return "", ErrInvalid
		}
		enc := s[i+1 : i+1+end]
		i += end + 1
		if enc == "" {
			sb.WriteByte('&')
			continue
		}
		b, err := b64.DecodeString(enc)
		if err != nil || len(b)%2 != 0 {
			return "", ErrInvalid
		}
		out, err := dec.Bytes(b)
		if err != nil || !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
			return "", ErrInvalid
		}
		sb.Write(out)
	}
	return sb.String(), nil
}
