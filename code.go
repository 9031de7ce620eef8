package imap

import (
	"strings"
)

// Code 是状态响应中方括号内的响应代码。
//
// 不带参数的代码使用 ResponseCode；带参数的代码使用对应的 CodeXxx 结构体；
// 未知的带参数代码解码为 *CodeOther。
type Code interface {
	// CodeName 返回代码名称，例如 "UIDNEXT"。
	CodeName() ResponseCode
	code()
}

// ResponseCode 是一种不带参数的响应代码。
type ResponseCode string

const (
	ResponseCodeAlert      ResponseCode = "ALERT"      // 警告
	ResponseCodeParse      ResponseCode = "PARSE"      // 解析错误
	ResponseCodeReadOnly   ResponseCode = "READ-ONLY"  // 只读
	ResponseCodeReadWrite  ResponseCode = "READ-WRITE" // 读写
	ResponseCodeTryCreate  ResponseCode = "TRYCREATE"  // 尝试创建
	ResponseCodeBadCharset ResponseCode = "BADCHARSET" // 字符集错误，带参数时见 CodeBadCharset

	ResponseCodeCapability     ResponseCode = "CAPABILITY"
	ResponseCodePermanentFlags ResponseCode = "PERMANENTFLAGS"
	ResponseCodeUIDNext        ResponseCode = "UIDNEXT"
	ResponseCodeUIDValidity    ResponseCode = "UIDVALIDITY"
	ResponseCodeUnseen         ResponseCode = "UNSEEN"
	ResponseCodeReferral       ResponseCode = "REFERRAL"

	ResponseCodeAlreadyExists        ResponseCode = "ALREADYEXISTS"        // 已存在
	ResponseCodeAuthenticationFailed ResponseCode = "AUTHENTICATIONFAILED" // 身份验证失败
	ResponseCodeAuthorizationFailed  ResponseCode = "AUTHORIZATIONFAILED"  // 授权失败
	ResponseCodeCannot               ResponseCode = "CANNOT"               // 无法执行
	ResponseCodeClientBug            ResponseCode = "CLIENTBUG"            // 客户端错误
	ResponseCodeContactAdmin         ResponseCode = "CONTACTADMIN"         // 联系管理员
	ResponseCodeCorruption           ResponseCode = "CORRUPTION"           // 数据损坏
	ResponseCodeExpired              ResponseCode = "EXPIRED"              // 过期
	ResponseCodeInUse                ResponseCode = "INUSE"                // 正在使用
	ResponseCodeLimit                ResponseCode = "LIMIT"                // 限制
	ResponseCodeNonExistent          ResponseCode = "NONEXISTENT"          // 不存在
	ResponseCodeNoPerm               ResponseCode = "NOPERM"               // 无权限
	ResponseCodePrivacyRequired      ResponseCode = "PRIVACYREQUIRED"      // 需要隐私
	ResponseCodeServerBug            ResponseCode = "SERVERBUG"            // 服务器错误
	ResponseCodeUnavailable          ResponseCode = "UNAVAILABLE"          // 不可用

	// UIDPLUS
	ResponseCodeAppendUID    ResponseCode = "APPENDUID"
	ResponseCodeCopyUID      ResponseCode = "COPYUID"
	ResponseCodeUIDNotSticky ResponseCode = "UIDNOTSTICKY" // UID 不持久

	// CONDSTORE
	ResponseCodeHighestModSeq ResponseCode = "HIGHESTMODSEQ"
	ResponseCodeNoModSeq      ResponseCode = "NOMODSEQ" // 邮箱不支持 mod-sequence
	ResponseCodeModified      ResponseCode = "MODIFIED"

	// QUOTA
	ResponseCodeOverQuota ResponseCode = "OVERQUOTA" // 超出配额

	// COMPRESS
	ResponseCodeCompressionActive ResponseCode = "COMPRESSIONACTIVE" // 压缩已启用

	// APPENDLIMIT
	ResponseCodeTooBig ResponseCode = "TOOBIG" // 太大
)

// CodeName 实现 Code 接口。
func (c ResponseCode) CodeName() ResponseCode { return ResponseCode(strings.ToUpper(string(c))) }
func (ResponseCode) code()                    {}

// CodeBadCharset 是带字符集列表的 BADCHARSET 代码。
type CodeBadCharset struct {
	Charsets []string
}

func (*CodeBadCharset) CodeName() ResponseCode { return ResponseCodeBadCharset }
func (*CodeBadCharset) code()                  {}

// CodeCapability 是 CAPABILITY 代码。
type CodeCapability struct {
	Caps []Cap
}

func (*CodeCapability) CodeName() ResponseCode { return ResponseCodeCapability }
func (*CodeCapability) code()                  {}

// CodePermanentFlags 是 PERMANENTFLAGS 代码，可以包含 FlagWildcard。
type CodePermanentFlags struct {
	Flags []Flag
}

func (*CodePermanentFlags) CodeName() ResponseCode { return ResponseCodePermanentFlags }
func (*CodePermanentFlags) code()                  {}

// CodeUIDNext 是 UIDNEXT 代码。
type CodeUIDNext struct {
	UID UID
}

func (*CodeUIDNext) CodeName() ResponseCode { return ResponseCodeUIDNext }
func (*CodeUIDNext) code()                  {}

// CodeUIDValidity 是 UIDVALIDITY 代码。
type CodeUIDValidity struct {
	UIDValidity uint32
}

func (*CodeUIDValidity) CodeName() ResponseCode { return ResponseCodeUIDValidity }
func (*CodeUIDValidity) code()                  {}

// CodeUnseen 是 UNSEEN 代码：第一个未读消息的序列号。
type CodeUnseen struct {
	SeqNum uint32
}

func (*CodeUnseen) CodeName() ResponseCode { return ResponseCodeUnseen }
func (*CodeUnseen) code()                  {}

// CodeReferral 是 REFERRAL 代码（RFC 2221）。
type CodeReferral struct {
	URL string
}

func (*CodeReferral) CodeName() ResponseCode { return ResponseCodeReferral }
func (*CodeReferral) code()                  {}

// CodeAppendUID 是 APPENDUID 代码（UIDPLUS）。
type CodeAppendUID AppendData

func (*CodeAppendUID) CodeName() ResponseCode { return ResponseCodeAppendUID }
func (*CodeAppendUID) code()                  {}

// CodeCopyUID 是 COPYUID 代码（UIDPLUS）。
type CodeCopyUID CopyData

func (*CodeCopyUID) CodeName() ResponseCode { return ResponseCodeCopyUID }
func (*CodeCopyUID) code()                  {}

// CodeHighestModSeq 是 HIGHESTMODSEQ 代码（CONDSTORE）。
type CodeHighestModSeq struct {
	ModSeq uint64
}

func (*CodeHighestModSeq) CodeName() ResponseCode { return ResponseCodeHighestModSeq }
func (*CodeHighestModSeq) code()                  {}

// CodeModified 是 MODIFIED 代码（CONDSTORE）：未能修改的消息。UID STORE 时集合包含 UID。
type CodeModified struct {
	Set SeqSet
}

func (*CodeModified) CodeName() ResponseCode { return ResponseCodeModified }
func (*CodeModified) code()                  {}

// CodeOther 是未知的带参数代码，Args 保留原始参数文本。
type CodeOther struct {
	Name ResponseCode
	Args string
}

func (c *CodeOther) CodeName() ResponseCode { return c.Name }
func (*CodeOther) code()                    {}
