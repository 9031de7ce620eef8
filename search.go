package imap

import (
	"reflect"
	"time"
)

// SearchOptions 包含 SEARCH 命令的 RETURN 选项（ESEARCH）。
//
// 所有字段都为 false 时编码为 "RETURN ()"，服务器按 ALL 处理。
type SearchOptions struct {
	ReturnMin   bool // 返回最小值
	ReturnMax   bool // 返回最大值
	ReturnAll   bool // 返回所有结果
	ReturnCount bool // 返回计数
	// 需要 SEARCHRES
	ReturnSave bool // 保存搜索结果
}

// SearchKey 是 SEARCH 命令中的一个搜索键。
//
// 多个搜索键并列时取交集。SearchKey 值可以是 SearchKeyBasic 或某个 *SearchKeyXxx 结构体。
type SearchKey interface {
	searchKey()
}

// SearchKeyBasic 是不带参数的搜索键。
type SearchKeyBasic string

const (
	SearchKeyAll        SearchKeyBasic = "ALL"
	SearchKeyAnswered   SearchKeyBasic = "ANSWERED"
	SearchKeyDeleted    SearchKeyBasic = "DELETED"
	SearchKeyDraft      SearchKeyBasic = "DRAFT"
	SearchKeyFlagged    SearchKeyBasic = "FLAGGED"
	SearchKeyNew        SearchKeyBasic = "NEW"
	SearchKeyOld        SearchKeyBasic = "OLD"
	SearchKeyRecent     SearchKeyBasic = "RECENT"
	SearchKeySeen       SearchKeyBasic = "SEEN"
	SearchKeyUnanswered SearchKeyBasic = "UNANSWERED"
	SearchKeyUndeleted  SearchKeyBasic = "UNDELETED"
	SearchKeyUndraft    SearchKeyBasic = "UNDRAFT"
	SearchKeyUnflagged  SearchKeyBasic = "UNFLAGGED"
	SearchKeyUnseen     SearchKeyBasic = "UNSEEN"
)

// SearchKeyStringName 是带字符串参数的搜索键名称。
type SearchKeyStringName string

const (
	SearchKeyBcc     SearchKeyStringName = "BCC"
	SearchKeyBody    SearchKeyStringName = "BODY"
	SearchKeyCc      SearchKeyStringName = "CC"
	SearchKeyFrom    SearchKeyStringName = "FROM"
	SearchKeySubject SearchKeyStringName = "SUBJECT"
	SearchKeyText    SearchKeyStringName = "TEXT"
	SearchKeyTo      SearchKeyStringName = "TO"
)

// SearchKeyString 是带 astring 参数的搜索键，例如 SUBJECT "hello"。
type SearchKeyString struct {
	Name  SearchKeyStringName
	Value string
}

// SearchKeyDateName 是带日期参数的搜索键名称。
type SearchKeyDateName string

const (
	SearchKeyBefore     SearchKeyDateName = "BEFORE"
	SearchKeyOn         SearchKeyDateName = "ON"
	SearchKeySince      SearchKeyDateName = "SINCE"
	SearchKeySentBefore SearchKeyDateName = "SENTBEFORE"
	SearchKeySentOn     SearchKeyDateName = "SENTON"
	SearchKeySentSince  SearchKeyDateName = "SENTSINCE"
)

// SearchKeyDate 是带日期参数的搜索键。只使用日期部分，解码结果为 UTC 零点。
type SearchKeyDate struct {
	Name SearchKeyDateName
	Date time.Time
}

// SearchKeyKeyword 是 KEYWORD 或 UNKEYWORD（Not 为 true）搜索键。
type SearchKeyKeyword struct {
	Not  bool
	Flag Flag
}

// SearchKeyHeader 是 HEADER 搜索键。
type SearchKeyHeader struct {
	Field, Value string
}

// SearchKeySize 是 LARGER（Larger 为 true）或 SMALLER 搜索键。
type SearchKeySize struct {
	Larger bool
	Size   uint32
}

// SearchKeyNot 是 NOT 搜索键。
type SearchKeyNot struct {
	Key SearchKey
}

// SearchKeyOr 是 OR 搜索键。
type SearchKeyOr struct {
	Left, Right SearchKey
}

// SearchKeySeqSet 是裸序列集搜索键。Set 是 SeqSet，或者 SearchRes()。
type SearchKeySeqSet struct {
	Set NumSet
}

// SearchKeyUID 是 UID 搜索键。
type SearchKeyUID struct {
	Set UIDSet
}

// SearchKeyAnd 是括号内的一组搜索键，至少一个。
type SearchKeyAnd struct {
	Keys []SearchKey
}

// SearchKeyModSeq 是 MODSEQ 搜索键（CONDSTORE）。
//
// MetadataName 为空时不输出条目名称和类型。
type SearchKeyModSeq struct {
	MetadataName string
	MetadataType SearchCriteriaMetadataType
	ModSeq       uint64
}

func (SearchKeyBasic) searchKey()    {}
func (*SearchKeyString) searchKey()  {}
func (*SearchKeyDate) searchKey()    {}
func (*SearchKeyKeyword) searchKey() {}
func (*SearchKeyHeader) searchKey()  {}
func (*SearchKeySize) searchKey()    {}
func (*SearchKeyNot) searchKey()     {}
func (*SearchKeyOr) searchKey()      {}
func (*SearchKeySeqSet) searchKey()  {}
func (*SearchKeyUID) searchKey()     {}
func (*SearchKeyAnd) searchKey()     {}
func (*SearchKeyModSeq) searchKey()  {}

// SearchCriteria 表示 SEARCH 命令的搜索条件。使用 Keys 转换为搜索键列表。
//
// 当多个字段被填充时，结果是符合所有条件消息的交集（"与" 操作）。
//
// "And", "Not" 和 "Or" 可以用来组合多个搜索条件。例如，以下条件匹配不包含 "hello" 的消息：
//
//	SearchCriteria{Not: []SearchCriteria{{
//		Body: []string{"hello"},
//	}}}
//
// 以下条件匹配包含 "hello" 或 "world" 的消息：
//
//	SearchCriteria{Or: [][2]SearchCriteria{{
//		{Body: []string{"hello"}},
//		{Body: []string{"world"}},
//	}}}
type SearchCriteria struct {
	SeqNum []SeqSet // 消息序号
	UID    []UIDSet // 消息UID

	// 仅使用日期，时间和时区被忽略
	Since      time.Time // 自某日期以来
	Before     time.Time // 在某日期之前
	SentSince  time.Time // 自某日期以来发送
	SentBefore time.Time // 在某日期之前发送

	Header []SearchCriteriaHeaderField // 邮件头字段
	Body   []string                    // 邮件正文内容
	Text   []string                    // 邮件文本内容

	Flag    []Flag // 含有的标志
	NotFlag []Flag // 不含有的标志

	Larger  int64 // 大于某个大小
	Smaller int64 // 小于某个大小

	Not []SearchCriteria    // 否定的搜索条件
	Or  [][2]SearchCriteria // "或" 条件组合

	ModSeq *SearchCriteriaModSeq // 条件存储功能（需要 CONDSTORE 扩展）
}

// And 方法用于合并两个搜索条件的交集。
//
// 参数：
// - other: 另一个要合并的搜索条件。
func (criteria *SearchCriteria) And(other *SearchCriteria) {
	criteria.SeqNum = append(criteria.SeqNum, other.SeqNum...)
	criteria.UID = append(criteria.UID, other.UID...)

	criteria.Since = intersectSince(criteria.Since, other.Since)
	criteria.Before = intersectBefore(criteria.Before, other.Before)
	criteria.SentSince = intersectSince(criteria.SentSince, other.SentSince)
	criteria.SentBefore = intersectBefore(criteria.SentBefore, other.SentBefore)

	criteria.Header = append(criteria.Header, other.Header...)
	criteria.Body = append(criteria.Body, other.Body...)
	criteria.Text = append(criteria.Text, other.Text...)

	criteria.Flag = append(criteria.Flag, other.Flag...)
	criteria.NotFlag = append(criteria.NotFlag, other.NotFlag...)

	// 合并 Larger 和 Smaller 条件
	if criteria.Larger == 0 || other.Larger > criteria.Larger {
		criteria.Larger = other.Larger
	}
	if criteria.Smaller == 0 || other.Smaller < criteria.Smaller {
		criteria.Smaller = other.Smaller
	}

	criteria.Not = append(criteria.Not, other.Not...)
	criteria.Or = append(criteria.Or, other.Or...)
}

// Keys 把搜索条件转换为搜索键列表。空条件返回 [ALL]。
//
// 系统标志转换为对应的基本搜索键，其他标志转换为 KEYWORD。
func (criteria *SearchCriteria) Keys() []SearchKey {
	var keys []SearchKey
	for _, seqSet := range criteria.SeqNum {
		keys = append(keys, &SearchKeySeqSet{Set: seqSet})
	}
	for _, uidSet := range criteria.UID {
		keys = append(keys, &SearchKeyUID{Set: uidSet})
	}

	dates := []struct {
		name SearchKeyDateName
		t    time.Time
	}{
		{SearchKeySince, criteria.Since},
		{SearchKeyBefore, criteria.Before},
		{SearchKeySentSince, criteria.SentSince},
		{SearchKeySentBefore, criteria.SentBefore},
	}
	for _, d := range dates {
		if !d.t.IsZero() {
			y, m, day := d.t.Date()
			keys = append(keys, &SearchKeyDate{Name: d.name, Date: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)})
		}
	}

	for _, kv := range criteria.Header {
		keys = append(keys, &SearchKeyHeader{Field: kv.Key, Value: kv.Value})
	}
	for _, s := range criteria.Body {
		keys = append(keys, &SearchKeyString{Name: SearchKeyBody, Value: s})
	}
	for _, s := range criteria.Text {
		keys = append(keys, &SearchKeyString{Name: SearchKeyText, Value: s})
	}

	for _, flag := range criteria.Flag {
		keys = append(keys, flagSearchKey(flag, false))
	}
	for _, flag := range criteria.NotFlag {
		keys = append(keys, flagSearchKey(flag, true))
	}

	if criteria.Larger > 0 {
		keys = append(keys, &SearchKeySize{Larger: true, Size: uint32(criteria.Larger)})
	}
	if criteria.Smaller > 0 {
		keys = append(keys, &SearchKeySize{Size: uint32(criteria.Smaller)})
	}

	for i := range criteria.Not {
		keys = append(keys, &SearchKeyNot{Key: criteria.Not[i].key()})
	}
	for i := range criteria.Or {
		or := &criteria.Or[i]
		keys = append(keys, &SearchKeyOr{Left: or[0].key(), Right: or[1].key()})
	}

	if criteria.ModSeq != nil {
		keys = append(keys, &SearchKeyModSeq{
			MetadataName: criteria.ModSeq.MetadataName,
			MetadataType: criteria.ModSeq.MetadataType,
			ModSeq:       criteria.ModSeq.ModSeq,
		})
	}

	if len(keys) == 0 {
		keys = append(keys, SearchKeyAll)
	}
	return keys
}

// key 把条件转换为单个搜索键，多个键用括号组合。
func (criteria *SearchCriteria) key() SearchKey {
	keys := criteria.Keys()
	if len(keys) == 1 {
		return keys[0]
	}
	return &SearchKeyAnd{Keys: keys}
}

func flagSearchKey(flag Flag, not bool) SearchKey {
	var set, unset SearchKeyBasic
	switch flag {
	case FlagAnswered:
		set, unset = SearchKeyAnswered, SearchKeyUnanswered
	case FlagDeleted:
		set, unset = SearchKeyDeleted, SearchKeyUndeleted
	case FlagDraft:
		set, unset = SearchKeyDraft, SearchKeyUndraft
	case FlagFlagged:
		set, unset = SearchKeyFlagged, SearchKeyUnflagged
	case FlagSeen:
		set, unset = SearchKeySeen, SearchKeyUnseen
	case FlagRecent:
		if not {
			return &SearchKeyNot{Key: SearchKeyRecent}
		}
		return SearchKeyRecent
	default:
		return &SearchKeyKeyword{Not: not, Flag: flag}
	}
	if not {
		return unset
	}
	return set
}

// intersectSince 方法用于返回两个日期中较晚的日期。
func intersectSince(t1, t2 time.Time) time.Time {
	switch {
	case t1.IsZero(): // 如果 t1 未设置，返回 t2
		return t2
	case t2.IsZero(): // 如果 t2 未设置，返回 t1
		return t1
	case t1.After(t2): // 返回较晚的日期
		return t1
	default:
		return t2
	}
}

// intersectBefore 方法用于返回两个日期中较早的日期。
func intersectBefore(t1, t2 time.Time) time.Time {
	switch {
	case t1.IsZero(): // 如果 t1 未设置，返回 t2
		return t2
	case t2.IsZero(): // 如果 t2 未设置，返回 t1
		return t1
	case t1.Before(t2): // 返回较早的日期
		return t1
	default:
		return t2
	}
}

// SearchCriteriaHeaderField 表示邮件头的键值对字段。
type SearchCriteriaHeaderField struct {
	Key, Value string // 键和值
}

// SearchCriteriaModSeq 表示 ModSeq 条件。
type SearchCriteriaModSeq struct {
	ModSeq       uint64
	MetadataName string
	MetadataType SearchCriteriaMetadataType
}

// SearchCriteriaMetadataType 表示元数据类型。
type SearchCriteriaMetadataType string

const (
	SearchCriteriaMetadataAll     SearchCriteriaMetadataType = "all"    // 所有
	SearchCriteriaMetadataPrivate SearchCriteriaMetadataType = "priv"   // 私人
	SearchCriteriaMetadataShared  SearchCriteriaMetadataType = "shared" // 共享
)

// SearchData 是 "* SEARCH" 响应。
type SearchData struct {
	Nums []uint32 // 序列号或 UID，取决于命令

	// 需要 CONDSTORE，0 表示没有
	ModSeq uint64
}

func (*SearchData) response() {}

// ESearchData 是 "* ESEARCH" 响应（ESEARCH）。
type ESearchData struct {
	Tag   string  // 对应命令的标签，可以为空
	UID   bool    // 结果是否是 UID
	Min   uint32  // 最小值，0 表示没有
	Max   uint32  // 最大值，0 表示没有
	Count *uint32 // 计数
	All   NumSet  // 所有结果，UID 为 true 时是 UIDSet，否则是 SeqSet

	// 需要 CONDSTORE
	ModSeq uint64 // ModSeq 值
}

func (*ESearchData) response() {}

// AllSeqNums 方法返回 All 作为消息序号的切片。
func (data *ESearchData) AllSeqNums() []uint32 {
	seqSet, ok := data.All.(SeqSet)
	if !ok {
		return nil
	}

	// 注意：动态序号集将是服务器错误
	nums, ok := seqSet.Nums()
	if !ok {
		return nil
	}
	return nums
}

// AllUIDs 方法返回 All 作为 UID 的切片。
func (data *ESearchData) AllUIDs() []UID {
	uidSet, ok := data.All.(UIDSet)
	if !ok {
		return nil
	}

	uids, ok := uidSet.Nums()
	if !ok {
		return nil
	}
	return uids
}

// searchRes 是一个特殊的空 UIDSet，用作标记。它具有非零容量，因此它的数据指针非 nil，可以用于比较。
//
// 它是 UIDSet 而非 SeqSet，因此它可以传递给 UID EXPUNGE 命令。
var (
	searchRes     = make(UIDSet, 0, 1)
	searchResAddr = reflect.ValueOf(searchRes).Pointer()
)

// SearchRes 方法返回一个特殊的标记，可以替代 UIDSet 引用上次 SEARCH 结果。在传输中，它被编码为 '$'。
//
// 需要 SEARCHRES 扩展。
func SearchRes() UIDSet {
	return searchRes
}

// IsSearchRes 方法检查序号集是否引用了上次 SEARCH 结果。请参阅 SearchRes。
func IsSearchRes(numSet NumSet) bool {
	uidSet, ok := numSet.(UIDSet)
	return ok && cap(uidSet) > 0 && reflect.ValueOf(uidSet).Pointer() == searchResAddr
}
