package imap

// ThreadAlgorithm 表示一个线程算法。
type ThreadAlgorithm string

const (
	ThreadOrderedSubject ThreadAlgorithm = "ORDEREDSUBJECT" // 有序主题算法
	ThreadReferences     ThreadAlgorithm = "REFERENCES"     // 引用算法
)

// ThreadData 是一个线程：先是一串依次回复的消息，然后是若干分支。
type ThreadData struct {
	Chain      []uint32     // 线程链
	SubThreads []ThreadData // 子线程
}

// ThreadResponse 是 "* THREAD" 响应（THREAD）。
type ThreadResponse struct {
	Threads []ThreadData
}

func (*ThreadResponse) response() {}

// SortKey 表示排序关键字。
type SortKey string

const (
	SortKeyArrival SortKey = "ARRIVAL" // 按到达时间排序
	SortKeyCc      SortKey = "CC"      // 按抄送人排序
	SortKeyDate    SortKey = "DATE"    // 按日期排序
	SortKeyFrom    SortKey = "FROM"    // 按发件人排序
	SortKeySize    SortKey = "SIZE"    // 按大小排序
	SortKeySubject SortKey = "SUBJECT" // 按主题排序
	SortKeyTo      SortKey = "TO"      // 按收件人排序
)

// SortCriterion 表示排序标准。
type SortCriterion struct {
	Key     SortKey // 排序关键字
	Reverse bool    // 是否反向排序
}
