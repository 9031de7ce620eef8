package imapcodec

import (
	"fmt"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// Outcome 是一次解码的结果类别。
type Outcome int

const (
	OutcomeParsed     Outcome = iota // 解码出完整的消息
	OutcomeIncomplete                // 需要更多数据
	OutcomeFailed                    // 确定性失败
)

// String 实现 fmt.Stringer 接口。
func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// OutcomeOf 返回解码错误对应的结果类别。
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeParsed
	case imapwire.IsIncomplete(err):
		return OutcomeIncomplete
	default:
		return OutcomeFailed
	}
}

// Observer 观察编解码器的每次调用。方法被同步调用；
// 如果 Codec 被多个 goroutine 共享，Observer 必须是并发安全的。
type Observer interface {
	// Decoded 在每次解码之后调用。msg 是消息种类，例如 "command"。
	// consumed 是成功时消耗的字节数，否则为 0。
	Decoded(msg string, outcome Outcome, consumed int)
	// Encoded 在每次编码之后调用。size 是成功时编码结果的字节数。
	Encoded(msg string, size int, err error)
}

// 消息种类，传给 Observer。
const (
	MsgCommand          = "command"
	MsgResponse         = "response"
	MsgGreeting         = "greeting"
	MsgAuthenticateData = "authenticate-data"
	MsgIdleDone         = "idle-done"
)

func decode[T any](c *Codec, msg string, b []byte, side imapwire.ConnSide, read func(dec *imapwire.Decoder) (T, error)) (v T, n int, err error) {
	dec := c.newDecoder(b, side)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &imapwire.Error{Kind: imapwire.KindInvalid, Offset: dec.Offset(), Err: fmt.Errorf("%v", r)}
			}
		}()
		v, err = read(dec)
	}()
	if err == nil {
		err = dec.Err()
	}
	if err != nil {
		var zero T
		v = zero
		if !imapwire.IsIncomplete(err) && imapwire.KindOf(err) == 0 {
			err = &imapwire.Error{Kind: imapwire.KindInvalid, Offset: dec.Offset(), Err: err}
		}
	} else {
		n = dec.Offset()
	}

	outcome := OutcomeOf(err)
	if outcome == OutcomeFailed {
		c.logf("imapcodec: 解码 %v 失败: %v", msg, err)
	}
	if c.observer != nil {
		c.observer.Decoded(msg, outcome, n)
	}
	return v, n, err
}

func (c *Codec) encode(msg string, side imapwire.ConnSide, write func(enc *imapwire.Encoder)) (encoded *imapwire.Encoded, err error) {
	enc := c.newEncoder(side)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &imapwire.Error{Kind: imapwire.KindInvalid, Offset: -1, Err: fmt.Errorf("%v", r)}
			}
		}()
		write(enc)
		encoded, err = enc.Encoded()
	}()
	if err != nil {
		encoded = nil
		c.logf("imapcodec: 拒绝编码 %v: %v", msg, err)
	}
	if c.observer != nil {
		size := 0
		if encoded != nil {
			size = encoded.Len()
		}
		c.observer.Encoded(msg, size, err)
	}
	return encoded, err
}

// DecodeCommand 从 b 的开头解码一条命令。
func (c *Codec) DecodeCommand(b []byte) (*imap.Command, int, error) {
	return decode(c, MsgCommand, b, imapwire.ConnSideServer, c.readCommand)
}

// DecodeResponse 从 b 的开头解码问候之后的一行服务器响应：
// 状态响应、数据响应或继续请求。
func (c *Codec) DecodeResponse(b []byte) (imap.Response, int, error) {
	return decode(c, MsgResponse, b, imapwire.ConnSideClient, c.readResponse)
}

// DecodeGreeting 从 b 的开头解码服务器问候。
func (c *Codec) DecodeGreeting(b []byte) (*imap.Greeting, int, error) {
	return decode(c, MsgGreeting, b, imapwire.ConnSideClient, c.readGreeting)
}

// DecodeAuthenticateData 解码客户端在 AUTHENTICATE 期间发送的一行。
func (c *Codec) DecodeAuthenticateData(b []byte) (*imap.AuthenticateData, int, error) {
	return decode(c, MsgAuthenticateData, b, imapwire.ConnSideServer, readAuthenticateData)
}

// DecodeIdleDone 解码结束 IDLE 的 "DONE" 行。
func (c *Codec) DecodeIdleDone(b []byte) (int, error) {
	_, n, err := decode(c, MsgIdleDone, b, imapwire.ConnSideServer, func(dec *imapwire.Decoder) (struct{}, error) {
		if !c.requireDec(dec, imap.CapIdle, "DONE") {
			return struct{}{}, dec.Err()
		}
		if !dec.ExpectKeyword("DONE") || !dec.ExpectCRLF() {
			return struct{}{}, dec.Err()
		}
		return struct{}{}, nil
	})
	return n, err
}

// EncodeCommand 编码一条命令。同步字面量之前会插入等待继续请求的片段。
func (c *Codec) EncodeCommand(cmd *imap.Command) (*imapwire.Encoded, error) {
	return c.encode(MsgCommand, imapwire.ConnSideClient, func(enc *imapwire.Encoder) {
		c.writeCommand(enc, cmd)
	})
}

// EncodeResponse 编码一行服务器响应。
func (c *Codec) EncodeResponse(resp imap.Response) (*imapwire.Encoded, error) {
	return c.encode(MsgResponse, imapwire.ConnSideServer, func(enc *imapwire.Encoder) {
		c.writeResponse(enc, resp)
	})
}

// EncodeGreeting 编码服务器问候。
func (c *Codec) EncodeGreeting(greeting *imap.Greeting) (*imapwire.Encoded, error) {
	return c.encode(MsgGreeting, imapwire.ConnSideServer, func(enc *imapwire.Encoder) {
		c.writeGreeting(enc, greeting)
	})
}

// EncodeAuthenticateData 编码客户端在 AUTHENTICATE 期间发送的一行。
func (c *Codec) EncodeAuthenticateData(data *imap.AuthenticateData) (*imapwire.Encoded, error) {
	return c.encode(MsgAuthenticateData, imapwire.ConnSideClient, func(enc *imapwire.Encoder) {
		writeAuthenticateData(enc, data)
	})
}

// EncodeIdleDone 编码结束 IDLE 的 "DONE" 行。
func (c *Codec) EncodeIdleDone() (*imapwire.Encoded, error) {
	return c.encode(MsgIdleDone, imapwire.ConnSideClient, func(enc *imapwire.Encoder) {
		if c.requireEnc(enc, imap.CapIdle, "DONE") {
			enc.Atom("DONE").CRLF()
		}
	})
}
