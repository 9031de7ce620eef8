package imap

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Response 是服务器在问候之后发送的一行：状态响应、数据响应或继续请求。
//
// Response 值可以是 *StatusResponse、*ContinuationRequest 或某个 *XxxData 数据响应。
type Response interface {
	response()
}

// StatusResponseType 是一种通用状态响应类型。
type StatusResponseType string

const (
	StatusResponseTypeOK      StatusResponseType = "OK"      // 表示请求成功
	StatusResponseTypeNo      StatusResponseType = "NO"      // 表示请求失败
	StatusResponseTypeBad     StatusResponseType = "BAD"     // 表示请求无效
	StatusResponseTypePreAuth StatusResponseType = "PREAUTH" // 表示已预先授权
	StatusResponseTypeBye     StatusResponseType = "BYE"     // 表示会话结束
)

// StatusResponse 是一种通用状态响应。
//
// Tag 为空表示未标记的响应（"* OK ..."）。带标签的响应只能是 OK、NO 或 BAD。
//
// 参见 RFC 3501 第 7.1 节。
type StatusResponse struct {
	Tag  string             // 命令标签，未标记时为空
	Type StatusResponseType // 状态响应类型
	Code Code               // 响应代码，可以为 nil
	Text string             // 额外信息
}

func (*StatusResponse) response() {}

// Err 在状态不是 OK 时返回 *Error。
func (resp *StatusResponse) Err() error {
	if resp == nil {
		return fmt.Errorf("imap: missing status response")
	}
	if resp.Type == StatusResponseTypeOK || resp.Type == StatusResponseTypePreAuth {
		return nil
	}
	return &Error{Type: resp.Type, Code: resp.Code, Text: resp.Text}
}

// Greeting 是连接建立后服务器发送的第一行。Type 可以是 OK、PREAUTH 或 BYE。
type Greeting struct {
	Type StatusResponseType
	Code Code
	Text string
}

// ContinuationRequest 是服务器发送的继续请求 "+ ..."。
//
// 在 AUTHENTICATE 期间 Text 是 base64 编码的质询，使用 Challenge 解码。
type ContinuationRequest struct {
	Text string
}

func (*ContinuationRequest) response() {}

// Challenge 把 Text 作为 base64 编码的 SASL 质询解码。
func (req *ContinuationRequest) Challenge() ([]byte, error) {
	return base64.StdEncoding.DecodeString(req.Text)
}

// NewChallenge 返回携带 SASL 质询的继续请求。
func NewChallenge(challenge []byte) *ContinuationRequest {
	return &ContinuationRequest{Text: base64.StdEncoding.EncodeToString(challenge)}
}

// Error 是由状态响应引起的 IMAP 错误。
type Error struct {
	Type StatusResponseType // 状态响应类型
	Code Code               // 响应代码
	Text string             // 额外信息
}

var _ error = (*Error)(nil)

// Error 实现了 error 接口。
func (err *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "imap: %v", err.Type) // 输出状态类型
	if err.Code != nil {
		fmt.Fprintf(&sb, " [%v]", err.Code.CodeName()) // 输出响应代码
	}
	text := err.Text
	if text == "" {
		text = "<unknown>" // 如果文本为空，设置为未知
	}
	fmt.Fprintf(&sb, " %v", text) // 输出额外信息
	return sb.String()
}

// CapabilityData 是 CAPABILITY 响应。
type CapabilityData struct {
	Caps []Cap
}

func (*CapabilityData) response() {}

// Set 返回能力集合。
func (data *CapabilityData) Set() CapSet {
	return NewCapSet(data.Caps...)
}

// FlagsData 是 FLAGS 响应：邮箱中定义的标志。
type FlagsData struct {
	Flags []Flag
}

func (*FlagsData) response() {}

// ExistsData 是 "* n EXISTS" 响应。
type ExistsData struct {
	NumMessages uint32
}

func (*ExistsData) response() {}

// RecentData 是 "* n RECENT" 响应。
type RecentData struct {
	NumRecent uint32
}

func (*RecentData) response() {}

// ExpungeData 是 "* n EXPUNGE" 响应。
type ExpungeData struct {
	SeqNum uint32
}

func (*ExpungeData) response() {}

// EnabledData 是 ENABLED 响应（ENABLE）。
type EnabledData struct {
	Caps []Cap
}

func (*EnabledData) response() {}

// SortData 是 SORT 响应（SORT）。
type SortData struct {
	Nums []uint32
}

func (*SortData) response() {}
