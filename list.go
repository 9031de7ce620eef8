package imap

// ListData 是 LIST 或 LSUB（Lsub 为 true）命令返回的邮箱数据。
type ListData struct {
	Lsub    bool          // 是否是 LSUB 响应
	Attrs   []MailboxAttr // 邮箱属性的列表
	Delim   rune          // 用于分隔邮箱名称的分隔符，0 表示 NIL
	Mailbox string        // 邮箱的名称
}

func (*ListData) response() {}
