package imap

import (
	"strings"

	"github.com/luhaoyun888/go-imap-codec/internal/utf7"
)

// Inbox 是收件箱的规范名称。
const Inbox = "INBOX"

// CanonicalMailboxName 把不区分大小写的 "INBOX" 转换为 Inbox，其他名称原样返回。
func CanonicalMailboxName(name string) string {
	if strings.EqualFold(name, Inbox) {
		return Inbox
	}
	return name
}

// DecodeMailboxName 把修改版 UTF-7 编码的邮箱名称解码为 UTF-8。
//
// 编解码器不解释邮箱名称，调用者在启用 UTF8=ACCEPT 之前使用此函数。
func DecodeMailboxName(name string) (string, error) {
	return utf7.Decode(name)
}

// EncodeMailboxName 把 UTF-8 邮箱名称编码为修改版 UTF-7。
func EncodeMailboxName(name string) (string, error) {
	return utf7.Encode(name)
}
