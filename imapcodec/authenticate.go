package imapcodec

import (
	"fmt"

	"github.com/emersion/go-sasl"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// readAuthenticateData 读取 AUTHENTICATE 期间的一行：base64 CRLF 或 "*" CRLF。
// 空行表示空响应。
func readAuthenticateData(dec *imapwire.Decoder) (*imap.AuthenticateData, error) {
	ok := dec.Enter("authenticate-data")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var data imap.AuthenticateData
	if dec.Special('*') {
		data.Cancel = true
	} else if !dec.Base64(&data.Data) {
		return nil, dec.Err()
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &data, nil
}

func writeAuthenticateData(enc *imapwire.Encoder, data *imap.AuthenticateData) {
	switch {
	case data == nil:
		enc.Errorf("缺少认证数据")
		return
	case data.Cancel && len(data.Data) > 0:
		enc.Errorf("取消认证时不能携带数据")
		return
	case data.Cancel:
		enc.Special('*')
	default:
		enc.Base64(data.Data)
	}
	enc.CRLF()
}

// SASLStart 启动 SASL 交换并返回 AUTHENTICATE 命令体。
//
// saslIR 表示对端是否支持 SASL-IR。不支持时初始响应不放入命令，而是作为
// pending 返回：调用者在收到第一个空的继续请求时用 &imap.AuthenticateData{Data: pending}
// 回应。
func SASLStart(client sasl.Client, saslIR bool) (cmd *imap.CommandAuthenticate, pending []byte, err error) {
	mech, ir, err := client.Start()
	if err != nil {
		return nil, nil, fmt.Errorf("imapcodec: 启动 SASL 失败: %w", err)
	}
	cmd = &imap.CommandAuthenticate{Mechanism: mech}
	if ir != nil && saslIR {
		cmd.InitialResponse = ir
		ir = nil
	}
	return cmd, ir, nil
}

// SASLNext 把服务器的继续请求作为质询交给 client，返回要发送的下一行。
// client 返回错误时，返回的数据取消交换，错误同时返回给调用者。
func SASLNext(client sasl.Client, req *imap.ContinuationRequest) (*imap.AuthenticateData, error) {
	challenge, err := req.Challenge()
	if err != nil {
		return &imap.AuthenticateData{Cancel: true}, fmt.Errorf("imapcodec: 无效的 SASL 质询: %w", err)
	}
	resp, err := client.Next(challenge)
	if err != nil {
		return &imap.AuthenticateData{Cancel: true}, err
	}
	if resp == nil {
		resp = []byte{}
	}
	return &imap.AuthenticateData{Data: resp}, nil
}
