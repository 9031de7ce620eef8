package internal

import (
	"github.com/luhaoyun888/go-imap-codec"
)

// FormatRights 返回 SETACL 命令中权限参数的线路形式，例如 "+lr"。
func FormatRights(rm imap.RightModification, rs imap.RightSet) string {
	s := ""
	if rm != imap.RightModificationReplace {
		s = string(rm)
	}
	return s + string(rs)
}

// ParseRights 是 FormatRights 的逆操作。
func ParseRights(s string) (imap.RightModification, imap.RightSet) {
	rm := imap.RightModificationReplace
	if len(s) > 0 && (s[0] == byte(imap.RightModificationAdd) || s[0] == byte(imap.RightModificationRemove)) {
		rm = imap.RightModification(s[0])
		s = s[1:]
	}
	return rm, imap.RightSet(s)
}
