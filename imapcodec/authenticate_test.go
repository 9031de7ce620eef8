package imapcodec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/google/go-cmp/cmp"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapcodec"
)

const plainIR = "\x00alice\x00secret"

func TestSASLStart(t *testing.T) {
	client := sasl.NewPlainClient("", "alice", "secret")
	cmd, pending, err := imapcodec.SASLStart(client, true)
	if err != nil {
		t.Fatalf("SASLStart() = %v", err)
	}
	if cmd.Mechanism != sasl.Plain {
		t.Errorf("Mechanism = %q, want %q", cmd.Mechanism, sasl.Plain)
	}
	if string(cmd.InitialResponse) != plainIR {
		t.Errorf("InitialResponse = %q, want %q", cmd.InitialResponse, plainIR)
	}
	if pending != nil {
		t.Errorf("pending = %q, want nil", pending)
	}

	c := newCodec(t, imap.CapSASLIR)
	enc, err := c.EncodeCommand(&imap.Command{Tag: "a", Body: cmd})
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	if got, want := string(enc.Bytes()), "a AUTHENTICATE PLAIN AGFsaWNlAHNlY3JldA==\r\n"; got != want {
		t.Errorf("EncodeCommand() = %q, want %q", got, want)
	}
}

func TestSASLStart_noInitialResponse(t *testing.T) {
	client := sasl.NewPlainClient("", "alice", "secret")
	cmd, pending, err := imapcodec.SASLStart(client, false)
	if err != nil {
		t.Fatalf("SASLStart() = %v", err)
	}
	if cmd.InitialResponse != nil {
		t.Errorf("InitialResponse = %q, want nil", cmd.InitialResponse)
	}
	if string(pending) != plainIR {
		t.Errorf("pending = %q, want %q", pending, plainIR)
	}

	c := newCodec(t)
	enc, err := c.EncodeCommand(&imap.Command{Tag: "a", Body: cmd})
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	if got, want := string(enc.Bytes()), "a AUTHENTICATE PLAIN\r\n"; got != want {
		t.Errorf("EncodeCommand() = %q, want %q", got, want)
	}

	enc, err = c.EncodeAuthenticateData(&imap.AuthenticateData{Data: pending})
	if err != nil {
		t.Fatalf("EncodeAuthenticateData() = %v", err)
	}
	if got, want := string(enc.Bytes()), "AGFsaWNlAHNlY3JldA==\r\n"; got != want {
		t.Errorf("EncodeAuthenticateData() = %q, want %q", got, want)
	}
}

// echoClient 回显收到的质询。
type echoClient struct {
	challenges [][]byte
	err        error
}

func (c *echoClient) Start() (string, []byte, error) {
	return "X-ECHO", nil, nil
}

func (c *echoClient) Next(challenge []byte) ([]byte, error) {
	c.challenges = append(c.challenges, challenge)
	if c.err != nil {
		return nil, c.err
	}
	if len(challenge) == 0 {
		return nil, nil
	}
	return bytes.ToUpper(challenge), nil
}

func TestSASLNext(t *testing.T) {
	client := &echoClient{}

	data, err := imapcodec.SASLNext(client, imap.NewChallenge([]byte("hello")))
	if err != nil {
		t.Fatalf("SASLNext() = %v", err)
	}
	if diff := cmp.Diff(&imap.AuthenticateData{Data: []byte("HELLO")}, data); diff != "" {
		t.Errorf("SASLNext() (-want +got):\n%v", diff)
	}

	data, err = imapcodec.SASLNext(client, &imap.ContinuationRequest{})
	if err != nil {
		t.Fatalf("SASLNext() = %v", err)
	}
	if data.Cancel || data.Data == nil || len(data.Data) != 0 {
		t.Errorf("SASLNext() with empty challenge = %+v, want empty non-nil data", data)
	}
	if len(client.challenges) != 2 || len(client.challenges[1]) != 0 {
		t.Errorf("challenges = %q", client.challenges)
	}
}

func TestSASLNext_cancel(t *testing.T) {
	data, err := imapcodec.SASLNext(&echoClient{}, &imap.ContinuationRequest{Text: "not base64!"})
	if err == nil {
		t.Errorf("SASLNext() with invalid challenge succeeded")
	}
	if data == nil || !data.Cancel {
		t.Errorf("SASLNext() with invalid challenge = %+v, want cancel", data)
	}

	errFailed := errors.New("failed")
	data, err = imapcodec.SASLNext(&echoClient{err: errFailed}, imap.NewChallenge(nil))
	if !errors.Is(err, errFailed) {
		t.Errorf("SASLNext() = %v, want %v", err, errFailed)
	}
	if data == nil || !data.Cancel {
		t.Errorf("SASLNext() after client error = %+v, want cancel", data)
	}

	c := newCodec(t)
	enc, err := c.EncodeAuthenticateData(data)
	if err != nil {
		t.Fatalf("EncodeAuthenticateData() = %v", err)
	}
	if got := string(enc.Bytes()); got != "*\r\n" {
		t.Errorf("EncodeAuthenticateData() = %q, want %q", got, "*\r\n")
	}
}

func TestDecodeAuthenticateData(t *testing.T) {
	c := newCodec(t)

	tests := []struct {
		in   string
		want *imap.AuthenticateData
	}{
		{"AGFsaWNlAHNlY3JldA==\r\n", &imap.AuthenticateData{Data: []byte(plainIR)}},
		{"*\r\n", &imap.AuthenticateData{Cancel: true}},
		{"\r\n", &imap.AuthenticateData{Data: []byte{}}},
	}
	for _, tc := range tests {
		got, n, err := c.DecodeAuthenticateData([]byte(tc.in))
		if err != nil {
			t.Errorf("DecodeAuthenticateData(%q) = %v", tc.in, err)
			continue
		}
		if n != len(tc.in) {
			t.Errorf("DecodeAuthenticateData(%q) consumed %v bytes, want %v", tc.in, n, len(tc.in))
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("DecodeAuthenticateData(%q) (-want +got):\n%v", tc.in, diff)
		}

		enc, err := c.EncodeAuthenticateData(got)
		if err != nil {
			t.Errorf("EncodeAuthenticateData() = %v", err)
		} else if string(enc.Bytes()) != tc.in {
			t.Errorf("EncodeAuthenticateData() = %q, want %q", enc.Bytes(), tc.in)
		}
	}

	for _, s := range []string{"AGFsa", "*"} {
		if _, _, err := c.DecodeAuthenticateData([]byte(s)); err == nil {
			t.Errorf("DecodeAuthenticateData(%q) succeeded", s)
		}
	}
	for _, s := range []string{"!!!\r\n", "AGF\r\n", "* x\r\n"} {
		if _, _, err := c.DecodeAuthenticateData([]byte(s)); err == nil {
			t.Errorf("DecodeAuthenticateData(%q) succeeded", s)
		}
	}
}

func TestEncodeAuthenticateData_invalid(t *testing.T) {
	c := newCodec(t)
	for _, data := range []*imap.AuthenticateData{
		nil,
		{Cancel: true, Data: []byte("x")},
	} {
		if _, err := c.EncodeAuthenticateData(data); err == nil {
			t.Errorf("EncodeAuthenticateData(%+v) succeeded", data)
		}
	}
}
