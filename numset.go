package imap

import (
	"unsafe"

	"github.com/luhaoyun888/go-imap-codec/internal/imapnum"
)

// NumSet 是一组标识消息的数字。NumSet 可以是 SeqSet 或 UIDSet。
//
// 集合中的范围保持给定的顺序，重叠和倒序的范围原样保留。
type NumSet interface {
	// String 返回消息编号集的 IMAP 表示。
	String() string
	// Dynamic 返回如果集合包含 "*" 或 "n:*" 范围，或者集合表示特殊的 SEARCHRES 标记时返回 true。
	Dynamic() bool

	numSet() imapnum.Set // 返回内部的 imapnum.Set
}

var (
	_ NumSet = SeqSet(nil) // 确保 SeqSet 实现了 NumSet 接口
	_ NumSet = UIDSet(nil) // 确保 UIDSet 实现了 NumSet 接口
)

// SeqSet 是一组消息序列号。
type SeqSet []SeqRange

// SeqSetNum 返回包含指定序列号的新 SeqSet。
func SeqSetNum(nums ...uint32) SeqSet {
	var s SeqSet
	s.AddNum(nums...) // 添加序列号
	return s
}

// ParseSeqSet 解析序列集的 IMAP 表示，例如 "1,3:5,7:*"。
func ParseSeqSet(s string) (SeqSet, error) {
	set, err := imapnum.Parse(s)
	if err != nil {
		return nil, err
	}
	return SeqSetFromRanges(set), nil
}

// SeqSetFromRanges 把底层范围列表转换为 SeqSet。
func SeqSetFromRanges(set imapnum.Set) SeqSet {
	return *(*SeqSet)(unsafe.Pointer(&set))
}

func (s *SeqSet) numSetPtr() *imapnum.Set {
	return (*imapnum.Set)(unsafe.Pointer(s))
}

func (s SeqSet) numSet() imapnum.Set {
	return *s.numSetPtr()
}

// String 返回 SeqSet 的 IMAP 表示。
func (s SeqSet) String() string {
	return s.numSet().String()
}

// Dynamic 返回如果 SeqSet 是动态的，则返回 true。
func (s SeqSet) Dynamic() bool {
	return s.numSet().Dynamic()
}

// Contains 返回如果非零的序列号 num 包含在集合中则返回 true。
func (s SeqSet) Contains(num uint32) bool {
	return s.numSet().Contains(num)
}

// Nums 按范围顺序返回集合中的序列号。动态集合返回 false。
func (s SeqSet) Nums() ([]uint32, bool) {
	return s.numSet().Nums()
}

// AddNum 将新的序列号追加到集合中。值 0 表示 "*"。
func (s *SeqSet) AddNum(nums ...uint32) {
	s.numSetPtr().AddNum(nums...)
}

// AddRange 将新的范围追加到集合中。
func (s *SeqSet) AddRange(start, stop uint32) {
	s.numSetPtr().AddRange(start, stop)
}

// AddSet 将其他 SeqSet 的所有范围追加到 s 中。
func (s *SeqSet) AddSet(other SeqSet) {
	s.numSetPtr().AddSet(other.numSet())
}

// SeqRange 是消息序列号的范围。值 0 表示 "*"。
type SeqRange struct {
	Start, Stop uint32 // 范围的起始和结束序列号
}

// UIDSet 是一组消息 UID。
type UIDSet []UIDRange

// UIDSetNum 返回包含指定 UIDs 的新 UIDSet。
func UIDSetNum(uids ...UID) UIDSet {
	var s UIDSet
	s.AddNum(uids...)
	return s
}

// ParseUIDSet 解析 UID 集的 IMAP 表示。"$" 解析为 SearchRes()。
func ParseUIDSet(s string) (UIDSet, error) {
	if s == "$" {
		return SearchRes(), nil
	}
	set, err := imapnum.Parse(s)
	if err != nil {
		return nil, err
	}
	return UIDSetFromRanges(set), nil
}

// UIDSetFromRanges 把底层范围列表转换为 UIDSet。
func UIDSetFromRanges(set imapnum.Set) UIDSet {
	return *(*UIDSet)(unsafe.Pointer(&set))
}

func (s *UIDSet) numSetPtr() *imapnum.Set {
	return (*imapnum.Set)(unsafe.Pointer(s))
}

func (s UIDSet) numSet() imapnum.Set {
	return *s.numSetPtr()
}

// String 返回 UIDSet 的 IMAP 表示。如果是 SEARCHRES，返回 "$"。
func (s UIDSet) String() string {
	if IsSearchRes(s) {
		return "$"
	}
	return s.numSet().String()
}

// Dynamic 返回如果 UIDSet 是动态的，则返回 true。
func (s UIDSet) Dynamic() bool {
	return s.numSet().Dynamic() || IsSearchRes(s)
}

// Contains 返回如果非零的 UID uid 包含在集合中则返回 true。
func (s UIDSet) Contains(uid UID) bool {
	return s.numSet().Contains(uint32(uid))
}

// Nums 按范围顺序返回集合中的 UID。动态集合返回 false。
func (s UIDSet) Nums() ([]UID, bool) {
	if IsSearchRes(s) {
		return nil, false
	}
	nums, ok := s.numSet().Nums()
	return uidListFromNumList(nums), ok
}

// AddNum 将新的 UIDs 追加到集合中。值 0 表示 "*"。
func (s *UIDSet) AddNum(uids ...UID) {
	s.numSetPtr().AddNum(numListFromUIDList(uids)...)
}

// AddRange 将新的范围追加到集合中。
func (s *UIDSet) AddRange(start, stop UID) {
	s.numSetPtr().AddRange(uint32(start), uint32(stop))
}

// AddSet 将其他 UIDSet 的所有范围追加到 s 中。
func (s *UIDSet) AddSet(other UIDSet) {
	s.numSetPtr().AddSet(other.numSet())
}

// UIDRange 是消息 UID 的范围。值 0 表示 "*"。
type UIDRange struct {
	Start, Stop UID // 范围的起始和结束 UID
}

func numListFromUIDList(uids []UID) []uint32 {
	return *(*[]uint32)(unsafe.Pointer(&uids))
}

func uidListFromNumList(nums []uint32) []UID {
	return *(*[]UID)(unsafe.Pointer(&nums))
}
