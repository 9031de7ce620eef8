package imap

import (
	"mime"
	netmail "net/mail"
	"time"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Envelope 是消息的信封结构。
//
// 字符串字段保存线路上的原始值：主题可能是 RFC 2047 编码的文本，
// In-Reply-To 和 Message-ID 带有尖括号。NIL 和空字符串等价。
// 使用 DecodedSubject、DateTime、MessageIDs 等方法获取解析后的值。
type Envelope struct {
	Date      string    // 原始日期，参见 net/mail.ParseDate
	Subject   string    // 原始主题
	From      []Address // 发件人地址
	Sender    []Address // 发送者地址
	ReplyTo   []Address // 回复地址
	To        []Address // 收件人地址
	Cc        []Address // 抄送地址
	Bcc       []Address // 密送地址
	InReplyTo string    // 原始 In-Reply-To
	MessageID string    // 原始 Message-ID
}

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

// DateTime 解析 Date 字段。
func (env *Envelope) DateTime() (time.Time, error) {
	return netmail.ParseDate(env.Date)
}

// DecodedSubject 解码 RFC 2047 编码的主题。
func (env *Envelope) DecodedSubject() (string, error) {
	return wordDecoder.DecodeHeader(env.Subject)
}

// MessageIDs 返回不带尖括号的 Message-ID。
func (env *Envelope) MessageIDs() (string, error) {
	if env.MessageID == "" {
		return "", nil
	}
	var h mail.Header
	h.Set("Message-Id", env.MessageID)
	return h.MessageID()
}

// InReplyToIDs 返回 In-Reply-To 中不带尖括号的消息标识符列表。
func (env *Envelope) InReplyToIDs() ([]string, error) {
	if env.InReplyTo == "" {
		return nil, nil
	}
	var h mail.Header
	h.Set("In-Reply-To", env.InReplyTo)
	return h.MsgIDList("In-Reply-To")
}

// Address 表示消息的发送者或接收者。
//
// 各字段为空时编码为 NIL。ADL 是已废弃的源路由，一般为空。
type Address struct {
	Name    string // 名称
	ADL     string // 源路由
	Mailbox string // 邮箱名
	Host    string // 主机
}

// Addr 返回邮件地址，格式为 "foo@example.org"。
//
// 如果地址是组的开始或结束，则返回空字符串。
func (addr *Address) Addr() string {
	if addr.Mailbox == "" || addr.Host == "" {
		return ""
	}
	return addr.Mailbox + "@" + addr.Host
}

// IsGroupStart 返回如果该地址是组的开始标记则为真。
//
// 在这种情况下，Mailbox 包含组名短语。
func (addr *Address) IsGroupStart() bool {
	return addr.Host == "" && addr.Mailbox != ""
}

// IsGroupEnd 返回如果该地址是组的结束标记则为真。
func (addr *Address) IsGroupEnd() bool {
	return addr.Host == "" && addr.Mailbox == ""
}

// MailAddress 把地址转换为 net/mail 地址，名称经过 RFC 2047 解码。
// 组标记返回 nil。
func (addr *Address) MailAddress() (*netmail.Address, error) {
	a := addr.Addr()
	if a == "" {
		return nil, nil
	}
	name, err := wordDecoder.DecodeHeader(addr.Name)
	if err != nil {
		return nil, err
	}
	return &netmail.Address{Name: name, Address: a}, nil
}
