package imap

// QuotaResourceType 表示 QUOTA 资源类型。
//
// 参见 RFC 9208 第 5 节。
type QuotaResourceType string

const (
	QuotaResourceStorage           QuotaResourceType = "STORAGE"            // 存储资源类型
	QuotaResourceMessage           QuotaResourceType = "MESSAGE"            // 消息资源类型
	QuotaResourceMailbox           QuotaResourceType = "MAILBOX"            // 邮箱资源类型
	QuotaResourceAnnotationStorage QuotaResourceType = "ANNOTATION-STORAGE" // 注释存储资源类型
)

// QuotaLimit 是 SETQUOTA 命令中的一个资源限制。
type QuotaLimit struct {
	Type  QuotaResourceType
	Limit int64
}

// QuotaResourceData 包含配额资源的使用情况和限制。
type QuotaResourceData struct {
	Type  QuotaResourceType
	Usage int64 // 使用量
	Limit int64 // 限制量
}

// QuotaData 是 "* QUOTA" 响应。资源按线路上的顺序保存。
type QuotaData struct {
	Root      string              // 配额根
	Resources []QuotaResourceData // 资源数据
}

func (*QuotaData) response() {}

// QuotaRootData 是 "* QUOTAROOT" 响应。
type QuotaRootData struct {
	Mailbox string
	Roots   []string
}

func (*QuotaRootData) response() {}
