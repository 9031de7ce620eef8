package imap

// CopyData 是 COPY 命令返回的数据，即 COPYUID 响应代码的内容。
type CopyData struct {
	UIDValidity uint32 // UID 的有效性，要求支持 UIDPLUS
	SourceUIDs  UIDSet // 源 UID 集，表示被复制邮件的 UID 集合
	DestUIDs    UIDSet // 目标 UID 集，表示复制后邮件在目标邮箱中的 UID 集合
}
