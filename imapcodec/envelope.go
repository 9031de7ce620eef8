package imapcodec

import (
	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// readEnvelope 读取信封结构。字符串字段保留线路上的原始值。
func readEnvelope(dec *imapwire.Decoder) (*imap.Envelope, error) {
	ok := dec.Enter("envelope")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var env imap.Envelope
	if !dec.ExpectSpecial('(') ||
		!dec.ExpectNString(&env.Date) || !dec.ExpectSP() ||
		!dec.ExpectNString(&env.Subject) || !dec.ExpectSP() {
		return nil, dec.Err()
	}

	addrLists := []*[]imap.Address{
		&env.From,
		&env.Sender,
		&env.ReplyTo,
		&env.To,
		&env.Cc,
		&env.Bcc,
	}
	for _, out := range addrLists {
		l, err := readAddressList(dec)
		if err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		*out = l
	}

	if !dec.ExpectNString(&env.InReplyTo) || !dec.ExpectSP() ||
		!dec.ExpectNString(&env.MessageID) || !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return &env, nil
}

// readAddressList 读取 NIL 或 "(" 1*address ")"。地址之间允许有多余的 SP。
func readAddressList(dec *imapwire.Decoder) ([]imap.Address, error) {
	if dec.NIL() {
		return nil, nil
	}
	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}
	var l []imap.Address
	for !dec.Special(')') {
		if dec.Err() != nil {
			return nil, dec.Err()
		}
		if len(l) > 0 {
			dec.SP()
		}
		addr, err := readAddress(dec)
		if err != nil {
			return nil, err
		}
		l = append(l, *addr)
	}
	return l, nil
}

func readAddress(dec *imapwire.Decoder) (*imap.Address, error) {
	var addr imap.Address
	if !dec.ExpectSpecial('(') ||
		!dec.ExpectNString(&addr.Name) || !dec.ExpectSP() ||
		!dec.ExpectNString(&addr.ADL) || !dec.ExpectSP() ||
		!dec.ExpectNString(&addr.Mailbox) || !dec.ExpectSP() ||
		!dec.ExpectNString(&addr.Host) || !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return &addr, nil
}

func writeEnvelope(enc *imapwire.Encoder, env *imap.Envelope) {
	if env == nil {
		enc.Errorf("缺少信封")
		return
	}
	enc.Special('(')
	enc.NString(env.Date).SP()
	enc.NString(env.Subject).SP()
	for _, l := range [][]imap.Address{env.From, env.Sender, env.ReplyTo, env.To, env.Cc, env.Bcc} {
		writeAddressList(enc, l)
		enc.SP()
	}
	enc.NString(env.InReplyTo).SP()
	enc.NString(env.MessageID)
	enc.Special(')')
}

func writeAddressList(enc *imapwire.Encoder, l []imap.Address) {
	if len(l) == 0 {
		enc.NIL()
		return
	}
	enc.Special('(')
	for i := range l {
		writeAddress(enc, &l[i])
	}
	enc.Special(')')
}

func writeAddress(enc *imapwire.Encoder, addr *imap.Address) {
	enc.Special('(')
	enc.NString(addr.Name).SP()
	enc.NString(addr.ADL).SP()
	enc.NString(addr.Mailbox).SP()
	enc.NString(addr.Host)
	enc.Special(')')
}
