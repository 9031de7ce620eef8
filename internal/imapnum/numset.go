// Package imapnum 实现消息序列号和 UID 集合的底层存储。
//
// 集合中的范围按照输入顺序保存，不做合并或排序：解码得到的集合再次编码时
// 与原始形式一致。
package imapnum

import (
	"fmt"
	"strconv"
	"strings"
)

// Range 表示一个数字范围。值 0 表示 "*"（当前已知的最大值）。
//
// Start 大于 Stop 的范围按原样保存，含义与 Stop:Start 相同。
type Range struct {
	Start, Stop uint32
}

// IsSingle 报告该范围是否只包含一个数字（或单独的 "*"）。
func (r Range) IsSingle() bool {
	return r.Start == r.Stop
}

// bounds 返回范围的下界和上界，"*" 视为无穷大。
func (r Range) bounds() (low, high uint32, dynamic bool) {
	start, stop := r.Start, r.Stop
	if start == 0 || stop == 0 {
		dynamic = true
	}
	if start == 0 {
		start = stop
		stop = 0
	}
	if stop == 0 {
		return start, ^uint32(0), dynamic
	}
	if start > stop {
		start, stop = stop, start
	}
	return start, stop, dynamic
}

// Contains 报告 num 是否在范围内。
func (r Range) Contains(num uint32) bool {
	if num == 0 || (r.Start == 0 && r.Stop == 0) {
		return false
	}
	low, high, _ := r.bounds()
	return num >= low && num <= high
}

// String 返回范围的 IMAP 表示。
func (r Range) String() string {
	if r.IsSingle() {
		return formatNum(r.Start)
	}
	return formatNum(r.Start) + ":" + formatNum(r.Stop)
}

func formatNum(num uint32) string {
	if num == 0 {
		return "*"
	}
	return strconv.FormatUint(uint64(num), 10)
}

// Set 是有序的范围列表。
type Set []Range

// String 返回集合的 IMAP 表示，例如 "1,3:5,7:*"。
func (s Set) String() string {
	l := make([]string, len(s))
	for i, r := range s {
		l[i] = r.String()
	}
	return strings.Join(l, ",")
}

// Dynamic 报告集合是否包含 "*"。
func (s Set) Dynamic() bool {
	for _, r := range s {
		if r.Start == 0 || r.Stop == 0 {
			return true
		}
	}
	return false
}

// Contains 报告 num 是否包含在集合中。
func (s Set) Contains(num uint32) bool {
	for _, r := range s {
		if r.Contains(num) {
			return true
		}
	}
	return false
}

// Nums 按范围顺序展开集合中的所有数字。如果集合是动态的，返回 false。
func (s Set) Nums() (nums []uint32, ok bool) {
	if s.Dynamic() {
		return nil, false
	}
	for _, r := range s {
		low, high, _ := r.bounds()
		for n := low; ; n++ {
			nums = append(nums, n)
			if n == high {
				break
			}
		}
	}
	return nums, true
}

// AddNum 依次追加单个数字。值 0 表示 "*"。
func (s *Set) AddNum(nums ...uint32) {
	for _, n := range nums {
		*s = append(*s, Range{Start: n, Stop: n})
	}
}

// AddRange 追加一个范围。
func (s *Set) AddRange(start, stop uint32) {
	*s = append(*s, Range{Start: start, Stop: stop})
}

// AddSet 追加另一个集合的所有范围。
func (s *Set) AddSet(other Set) {
	*s = append(*s, other...)
}

// Parse 解析集合的 IMAP 表示。
func Parse(str string) (Set, error) {
	if str == "" {
		return nil, fmt.Errorf("imapnum: empty set")
	}
	var set Set
	for _, part := range strings.Split(str, ",") {
		r, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		set = append(set, r)
	}
	return set, nil
}

func parseRange(str string) (Range, error) {
	start, stop, isRange := strings.Cut(str, ":")
	a, err := parseNum(start)
	if err != nil {
		return Range{}, err
	}
	if !isRange {
		return Range{Start: a, Stop: a}, nil
	}
	b, err := parseNum(stop)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: a, Stop: b}, nil
}

func parseNum(str string) (uint32, error) {
	if str == "*" {
		return 0, nil
	}
	if str == "" || str[0] == '+' || str[0] == '-' {
		return 0, fmt.Errorf("imapnum: invalid number %q", str)
	}
	n, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("imapnum: invalid number %q: %w", str, err)
	} else if n == 0 {
		return 0, fmt.Errorf("imapnum: 0 is not a valid number")
	}
	return uint32(n), nil
}
