package imap

import (
	"fmt"
)

// Command 是客户端发送的一条命令。
type Command struct {
	Tag  string      // 命令标签
	Body CommandBody // 命令内容
}

// CommandBody 是命令的内容。每种命令对应一个 CommandXxx 结构体。
type CommandBody interface {
	// Name 返回命令名称，例如 "FETCH" 或 "UID FETCH"。
	Name() string
	commandBody()
}

func uidName(uid bool, name string) string {
	if uid {
		return "UID " + name
	}
	return name
}

// CommandCapability 是 CAPABILITY 命令。
type CommandCapability struct{}

// CommandNoop 是 NOOP 命令。
type CommandNoop struct{}

// CommandLogout 是 LOGOUT 命令。
type CommandLogout struct{}

// CommandStartTLS 是 STARTTLS 命令。
type CommandStartTLS struct{}

// CommandAuthenticate 是 AUTHENTICATE 命令。
type CommandAuthenticate struct {
	Mechanism string
	// InitialResponse 是 SASL-IR 初始响应。nil 表示没有初始响应，
	// 非 nil 的空切片在线路上编码为 "="。
	InitialResponse []byte
}

// String 实现 fmt.Stringer 接口，不输出初始响应。
func (cmd *CommandAuthenticate) String() string {
	if cmd.InitialResponse != nil {
		return fmt.Sprintf("AUTHENTICATE %v <redacted>", cmd.Mechanism)
	}
	return "AUTHENTICATE " + cmd.Mechanism
}

// GoString 实现 fmt.GoStringer 接口，不输出初始响应。
func (cmd *CommandAuthenticate) GoString() string {
	return fmt.Sprintf("&imap.CommandAuthenticate{Mechanism:%q, InitialResponse:<redacted>}", cmd.Mechanism)
}

// CommandLogin 是 LOGIN 命令。
type CommandLogin struct {
	Username string
	Password string
}

// String 实现 fmt.Stringer 接口，不输出密码。
func (cmd *CommandLogin) String() string {
	return fmt.Sprintf("LOGIN %q <redacted>", cmd.Username)
}

// GoString 实现 fmt.GoStringer 接口，不输出密码。
func (cmd *CommandLogin) GoString() string {
	return fmt.Sprintf("&imap.CommandLogin{Username:%q, Password:<redacted>}", cmd.Username)
}

// CommandSelect 是 SELECT 命令，Options.ReadOnly 为 true 时是 EXAMINE 命令。
type CommandSelect struct {
	Mailbox string
	Options SelectOptions
}

// CommandCreate 是 CREATE 命令。
type CommandCreate struct {
	Mailbox string
}

// CommandDelete 是 DELETE 命令。
type CommandDelete struct {
	Mailbox string
}

// CommandRename 是 RENAME 命令。
type CommandRename struct {
	Mailbox string
	NewName string
}

// CommandSubscribe 是 SUBSCRIBE 命令。
type CommandSubscribe struct {
	Mailbox string
}

// CommandUnsubscribe 是 UNSUBSCRIBE 命令。
type CommandUnsubscribe struct {
	Mailbox string
}

// CommandList 是 LIST 命令，Lsub 为 true 时是 LSUB 命令。
type CommandList struct {
	Lsub      bool
	Reference string // 引用名称
	Pattern   string // 可以包含通配符 "%" 和 "*"
}

// CommandStatus 是 STATUS 命令。
type CommandStatus struct {
	Mailbox string
	Options StatusOptions
}

// CommandAppend 是 APPEND 命令。
type CommandAppend struct {
	Mailbox string
	Options AppendOptions
	Message *Literal
}

// CommandCheck 是 CHECK 命令。
type CommandCheck struct{}

// CommandClose 是 CLOSE 命令。
type CommandClose struct{}

// CommandExpunge 是 EXPUNGE 命令。UIDs 非 nil 时是 UID EXPUNGE 命令（UIDPLUS）。
type CommandExpunge struct {
	UIDs UIDSet
}

// CommandSearch 是 SEARCH 或 UID SEARCH 命令。
type CommandSearch struct {
	UID     bool
	Return  *SearchOptions // ESEARCH 的 RETURN 选项，nil 表示普通 SEARCH
	Charset string         // 可以为空
	Keys    []SearchKey    // 至少一个
}

// CommandFetch 是 FETCH 或 UID FETCH 命令。
//
// Items 只有一个元素且为宏（ALL、FAST、FULL）时以宏的形式编码。
type CommandFetch struct {
	UID          bool
	Set          NumSet
	Items        []FetchItem
	ChangedSince uint64 // CONDSTORE 的 CHANGEDSINCE 修饰符，0 表示没有
}

// CommandStore 是 STORE 或 UID STORE 命令。
type CommandStore struct {
	UID     bool
	Set     NumSet
	Flags   StoreFlags
	Options StoreOptions
}

// CommandCopy 是 COPY 或 UID COPY 命令，Move 为 true 时是 MOVE 或 UID MOVE 命令（MOVE）。
type CommandCopy struct {
	UID     bool
	Move    bool
	Set     NumSet
	Mailbox string
}

// CommandIdle 是 IDLE 命令（IDLE）。
type CommandIdle struct{}

// CommandEnable 是 ENABLE 命令（ENABLE）。
type CommandEnable struct {
	Caps []Cap
}

// CommandUnselect 是 UNSELECT 命令（UNSELECT）。
type CommandUnselect struct{}

// CommandNamespace 是 NAMESPACE 命令（NAMESPACE）。
type CommandNamespace struct{}

// CommandID 是 ID 命令（ID）。Params 为 nil 时编码为 "ID NIL"。
type CommandID struct {
	Params *IDData
}

// CommandGetQuota 是 GETQUOTA 命令（QUOTA）。
type CommandGetQuota struct {
	Root string
}

// CommandGetQuotaRoot 是 GETQUOTAROOT 命令（QUOTA）。
type CommandGetQuotaRoot struct {
	Mailbox string
}

// CommandSetQuota 是 SETQUOTA 命令（QUOTA）。
type CommandSetQuota struct {
	Root   string
	Limits []QuotaLimit
}

// CommandCompress 是 COMPRESS 命令（COMPRESS=DEFLATE）。
type CommandCompress struct {
	Algorithm string // 目前只有 "DEFLATE"
}

// CommandGetACL 是 GETACL 命令（ACL）。
type CommandGetACL struct {
	Mailbox string
}

// CommandSetACL 是 SETACL 命令（ACL）。
type CommandSetACL struct {
	Mailbox      string
	Identifier   RightsIdentifier
	Modification RightModification
	Rights       RightSet
}

// CommandDeleteACL 是 DELETEACL 命令（ACL）。
type CommandDeleteACL struct {
	Mailbox    string
	Identifier RightsIdentifier
}

// CommandListRights 是 LISTRIGHTS 命令（ACL）。
type CommandListRights struct {
	Mailbox    string
	Identifier RightsIdentifier
}

// CommandMyRights 是 MYRIGHTS 命令（ACL）。
type CommandMyRights struct {
	Mailbox string
}

// CommandSort 是 SORT 或 UID SORT 命令（SORT）。
type CommandSort struct {
	UID      bool
	Criteria []SortCriterion // 至少一个
	Charset  string
	Keys     []SearchKey // 至少一个
}

// CommandThread 是 THREAD 或 UID THREAD 命令（THREAD）。
type CommandThread struct {
	UID       bool
	Algorithm ThreadAlgorithm
	Charset   string
	Keys      []SearchKey // 至少一个
}

func (*CommandCapability) Name() string   { return "CAPABILITY" }
func (*CommandNoop) Name() string         { return "NOOP" }
func (*CommandLogout) Name() string       { return "LOGOUT" }
func (*CommandStartTLS) Name() string     { return "STARTTLS" }
func (*CommandAuthenticate) Name() string { return "AUTHENTICATE" }
func (*CommandLogin) Name() string        { return "LOGIN" }
func (cmd *CommandSelect) Name() string {
	if cmd.Options.ReadOnly {
		return "EXAMINE"
	}
	return "SELECT"
}
func (*CommandCreate) Name() string      { return "CREATE" }
func (*CommandDelete) Name() string      { return "DELETE" }
func (*CommandRename) Name() string      { return "RENAME" }
func (*CommandSubscribe) Name() string   { return "SUBSCRIBE" }
func (*CommandUnsubscribe) Name() string { return "UNSUBSCRIBE" }
func (cmd *CommandList) Name() string {
	if cmd.Lsub {
		return "LSUB"
	}
	return "LIST"
}
func (*CommandStatus) Name() string { return "STATUS" }
func (*CommandAppend) Name() string { return "APPEND" }
func (*CommandCheck) Name() string  { return "CHECK" }
func (*CommandClose) Name() string  { return "CLOSE" }
func (cmd *CommandExpunge) Name() string {
	return uidName(cmd.UIDs != nil, "EXPUNGE")
}
func (cmd *CommandSearch) Name() string { return uidName(cmd.UID, "SEARCH") }
func (cmd *CommandFetch) Name() string  { return uidName(cmd.UID, "FETCH") }
func (cmd *CommandStore) Name() string  { return uidName(cmd.UID, "STORE") }
func (cmd *CommandCopy) Name() string {
	if cmd.Move {
		return uidName(cmd.UID, "MOVE")
	}
	return uidName(cmd.UID, "COPY")
}
func (*CommandIdle) Name() string         { return "IDLE" }
func (*CommandEnable) Name() string       { return "ENABLE" }
func (*CommandUnselect) Name() string     { return "UNSELECT" }
func (*CommandNamespace) Name() string    { return "NAMESPACE" }
func (*CommandID) Name() string           { return "ID" }
func (*CommandGetQuota) Name() string     { return "GETQUOTA" }
func (*CommandGetQuotaRoot) Name() string { return "GETQUOTAROOT" }
func (*CommandSetQuota) Name() string     { return "SETQUOTA" }
func (*CommandCompress) Name() string     { return "COMPRESS" }
func (*CommandGetACL) Name() string       { return "GETACL" }
func (*CommandSetACL) Name() string       { return "SETACL" }
func (*CommandDeleteACL) Name() string    { return "DELETEACL" }
func (*CommandListRights) Name() string   { return "LISTRIGHTS" }
func (*CommandMyRights) Name() string     { return "MYRIGHTS" }
func (cmd *CommandSort) Name() string     { return uidName(cmd.UID, "SORT") }
func (cmd *CommandThread) Name() string   { return uidName(cmd.UID, "THREAD") }

func (*CommandCapability) commandBody()   {}
func (*CommandNoop) commandBody()         {}
func (*CommandLogout) commandBody()       {}
func (*CommandStartTLS) commandBody()     {}
func (*CommandAuthenticate) commandBody() {}
func (*CommandLogin) commandBody()        {}
func (*CommandSelect) commandBody()       {}
func (*CommandCreate) commandBody()       {}
func (*CommandDelete) commandBody()       {}
func (*CommandRename) commandBody()       {}
func (*CommandSubscribe) commandBody()    {}
func (*CommandUnsubscribe) commandBody()  {}
func (*CommandList) commandBody()         {}
func (*CommandStatus) commandBody()       {}
func (*CommandAppend) commandBody()       {}
func (*CommandCheck) commandBody()        {}
func (*CommandClose) commandBody()        {}
func (*CommandExpunge) commandBody()      {}
func (*CommandSearch) commandBody()       {}
func (*CommandFetch) commandBody()        {}
func (*CommandStore) commandBody()        {}
func (*CommandCopy) commandBody()         {}
func (*CommandIdle) commandBody()         {}
func (*CommandEnable) commandBody()       {}
func (*CommandUnselect) commandBody()     {}
func (*CommandNamespace) commandBody()    {}
func (*CommandID) commandBody()           {}
func (*CommandGetQuota) commandBody()     {}
func (*CommandGetQuotaRoot) commandBody() {}
func (*CommandSetQuota) commandBody()     {}
func (*CommandCompress) commandBody()     {}
func (*CommandGetACL) commandBody()       {}
func (*CommandSetACL) commandBody()       {}
func (*CommandDeleteACL) commandBody()    {}
func (*CommandListRights) commandBody()   {}
func (*CommandMyRights) commandBody()     {}
func (*CommandSort) commandBody()         {}
func (*CommandThread) commandBody()       {}

// CommandState 返回命令在语法中所属的最低连接状态：command-any 返回
// ConnStateNone，command-nonauth 返回 ConnStateNotAuthenticated，
// command-auth 返回 ConnStateAuthenticated，command-select 返回 ConnStateSelected。
//
// 编解码器本身不检查连接状态。
func CommandState(body CommandBody) ConnState {
	switch body.(type) {
	case *CommandCapability, *CommandNoop, *CommandLogout, *CommandID, *CommandEnable, *CommandCompress:
		return ConnStateNone
	case *CommandStartTLS, *CommandAuthenticate, *CommandLogin:
		return ConnStateNotAuthenticated
	case *CommandCheck, *CommandClose, *CommandExpunge, *CommandSearch, *CommandFetch,
		*CommandStore, *CommandCopy, *CommandUnselect, *CommandSort, *CommandThread:
		return ConnStateSelected
	default:
		return ConnStateAuthenticated
	}
}

// AuthenticateData 是客户端在 AUTHENTICATE 期间发送的一行：base64 编码的
// SASL 响应，或取消认证的 "*"。
type AuthenticateData struct {
	Data   []byte
	Cancel bool
}

// String 实现 fmt.Stringer 接口，不输出认证数据。
func (data *AuthenticateData) String() string {
	if data.Cancel {
		return "*"
	}
	return fmt.Sprintf("<redacted %v bytes>", len(data.Data))
}

// GoString 实现 fmt.GoStringer 接口，不输出认证数据。
func (data *AuthenticateData) GoString() string {
	return fmt.Sprintf("&imap.AuthenticateData{Data:<redacted>, Cancel:%v}", data.Cancel)
}
