package imap

// SelectOptions 包含 SELECT 或 EXAMINE 命令的选项。
type SelectOptions struct {
	ReadOnly  bool // 是否以只读模式选择邮箱，即 EXAMINE
	CondStore bool // 是否使用条件存储，要求支持 CONDSTORE
}
