package imapcodec

import (
	"strings"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// readResponse 读取问候之后的一行服务器响应。
func (c *Codec) readResponse(dec *imapwire.Decoder) (imap.Response, error) {
	ok := dec.Enter("response")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var (
		resp imap.Response
		err  error
	)
	switch {
	case dec.Special('+'):
		resp, err = readContinuationRequest(dec)
	case dec.Special('*'):
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		resp, err = c.readUntagged(dec)
	default:
		if dec.Err() != nil {
			return nil, dec.Err()
		}
		resp, err = c.readTagged(dec)
	}
	if err != nil {
		return nil, err
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return resp, nil
}

// readContinuationRequest 读取 "+" 之后的 [SP text]。
func readContinuationRequest(dec *imapwire.Decoder) (*imap.ContinuationRequest, error) {
	var req imap.ContinuationRequest
	if dec.SP() {
		if !dec.ExpectText(&req.Text) {
			return nil, dec.Err()
		}
	}
	return &req, dec.Err()
}

func (c *Codec) readTagged(dec *imapwire.Decoder) (*imap.StatusResponse, error) {
	var resp imap.StatusResponse
	if !dec.Expect(dec.Func(&resp.Tag, imapwire.IsTagChar), "tag") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	name, err := readName(dec, imapwire.IsAtomChar, "resp-cond-state")
	if err != nil {
		return nil, err
	}
	resp.Type = imap.StatusResponseType(name)
	switch resp.Type {
	case imap.StatusResponseTypeOK, imap.StatusResponseTypeNo, imap.StatusResponseTypeBad:
	default:
		return nil, dec.Errorf("带标签的响应不能是 %q", name)
	}
	if resp.Code, resp.Text, err = c.readRespText(dec); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Codec) readUntagged(dec *imapwire.Decoder) (imap.Response, error) {
	if ch, ok := dec.Peek(); ok && isDigit(ch) {
		return c.readNumbered(dec)
	} else if !ok {
		return nil, dec.Err()
	}

	name, err := readName(dec, imapwire.IsAtomChar, "response-data")
	if err != nil {
		return nil, err
	}
	switch name {
	case "OK", "NO", "BAD", "PREAUTH", "BYE":
		resp := &imap.StatusResponse{Type: imap.StatusResponseType(name)}
		if resp.Code, resp.Text, err = c.readRespText(dec); err != nil {
			return nil, err
		}
		return resp, nil
	case "CAPABILITY":
		caps, err := readCaps(dec)
		if err != nil {
			return nil, err
		}
		return &imap.CapabilityData{Caps: caps}, nil
	case "LIST", "LSUB":
		return readListData(dec, name == "LSUB")
	case "STATUS":
		return c.readStatusData(dec)
	case "SEARCH":
		return c.readSearchData(dec)
	case "FLAGS":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		flags, err := readFlagList(dec, false)
		if err != nil {
			return nil, err
		}
		return &imap.FlagsData{Flags: flags}, nil
	case "ENABLED":
		if !c.requireDec(dec, imap.CapEnable, name) {
			return nil, dec.Err()
		}
		caps, err := readCaps(dec)
		if err != nil {
			return nil, err
		}
		return &imap.EnabledData{Caps: caps}, nil
	case "ESEARCH":
		if !c.requireDec(dec, imap.CapESearch, name) {
			return nil, dec.Err()
		}
		return c.readESearchData(dec)
	case "SORT":
		if !c.requireDec(dec, imap.CapSort, name) {
			return nil, dec.Err()
		}
		nums, err := readNumList(dec)
		if err != nil {
			return nil, err
		}
		return &imap.SortData{Nums: nums}, nil
	case "THREAD":
		if !c.hasThread() {
			dec.Unsupported("THREAD", name)
			return nil, dec.Err()
		}
		return readThreadResponse(dec)
	case "NAMESPACE":
		if !c.requireDec(dec, imap.CapNamespace, name) {
			return nil, dec.Err()
		}
		return readNamespaceData(dec)
	case "ID":
		if !c.requireDec(dec, imap.CapID, name) || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		params, err := readIDParams(dec)
		if err != nil {
			return nil, err
		}
		return &imap.IDResponse{Params: params}, nil
	case "QUOTA":
		if !c.requireDec(dec, imap.CapQuota, name) {
			return nil, dec.Err()
		}
		return readQuotaData(dec)
	case "QUOTAROOT":
		if !c.requireDec(dec, imap.CapQuota, name) {
			return nil, dec.Err()
		}
		return readQuotaRootData(dec)
	case "ACL", "LISTRIGHTS", "MYRIGHTS":
		if !c.requireDec(dec, imap.CapACL, name) {
			return nil, dec.Err()
		}
		return readACLResponse(dec, name)
	default:
		return nil, dec.Errorf("未知的未标记响应 %q", name)
	}
}

// readNumbered 读取 number SP ("EXISTS" / "RECENT" / "EXPUNGE" / "FETCH" SP msg-att)。
func (c *Codec) readNumbered(dec *imapwire.Decoder) (imap.Response, error) {
	var num uint32
	if !dec.ExpectNumber(&num) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	name, err := readName(dec, imapwire.IsAtomChar, "message-data")
	if err != nil {
		return nil, err
	}
	switch name {
	case "EXISTS":
		return &imap.ExistsData{NumMessages: num}, nil
	case "RECENT":
		return &imap.RecentData{NumRecent: num}, nil
	case "EXPUNGE", "FETCH":
		if num == 0 {
			return nil, dec.Errorf("%v 的序列号不能为 0", name)
		}
		if name == "EXPUNGE" {
			return &imap.ExpungeData{SeqNum: num}, nil
		}
		return c.readFetchData(dec, num)
	default:
		return nil, dec.Errorf("未知的消息数据 %q", name)
	}
}

// readRespText 读取 [SP ["[" resp-text-code "]" [SP]] text]。
func (c *Codec) readRespText(dec *imapwire.Decoder) (imap.Code, string, error) {
	if !dec.SP() {
		return nil, "", dec.Err()
	}

	var code imap.Code
	if dec.Special('[') {
		var err error
		if code, err = c.readCode(dec); err != nil {
			return nil, "", err
		}
		if !dec.ExpectSpecial(']') {
			return nil, "", dec.Err()
		}
		dec.SP()
	}

	var text string
	if !dec.ExpectText(&text) {
		return nil, "", dec.Err()
	}
	return code, text, nil
}

// readCode 读取响应代码。已知代码的参数无法解析时退回到 CodeOther。
func (c *Codec) readCode(dec *imapwire.Decoder) (imap.Code, error) {
	ok := dec.Enter("resp-text-code")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	name, err := readName(dec, imapwire.IsAtomChar, "resp-text-code")
	if err != nil {
		return nil, err
	}
	ch, ok := dec.Peek()
	if !ok {
		return nil, dec.Err()
	} else if ch == ']' {
		return imap.ResponseCode(name), nil
	}

	if parse := c.codeParser(imap.ResponseCode(name)); parse != nil {
		var code imap.Code
		typed := dec.Try(func() bool {
			if !dec.SP() {
				return false
			}
			code = parse(dec)
			if code == nil {
				return false
			}
			ch, ok := dec.Peek()
			return ok && ch == ']'
		})
		if typed {
			return code, nil
		} else if dec.Err() != nil {
			return nil, dec.Err()
		}
	}

	var args string
	if !dec.ExpectSP() || !dec.Expect(dec.Func(&args, isCodeArgChar), "resp-text-code argument") {
		return nil, dec.Err()
	}
	return &imap.CodeOther{Name: imap.ResponseCode(name), Args: args}, nil
}

// codeParser 返回带参数的已知代码的解析函数。扩展未启用时返回 nil。
// 解析函数在失败时返回 nil。
func (c *Codec) codeParser(name imap.ResponseCode) func(dec *imapwire.Decoder) imap.Code {
	switch name {
	case imap.ResponseCodeBadCharset:
		return func(dec *imapwire.Decoder) imap.Code {
			var code imap.CodeBadCharset
			err := dec.ExpectList(func() error {
				var charset string
				if !dec.Expect(dec.AString(&charset), "charset") {
					return dec.Err()
				}
				code.Charsets = append(code.Charsets, charset)
				return nil
			})
			if err != nil || len(code.Charsets) == 0 {
				return nil
			}
			return &code
		}
	case imap.ResponseCodeCapability:
		return func(dec *imapwire.Decoder) imap.Code {
			var first string
			if !dec.Atom(&first) {
				return nil
			}
			rest, err := readCaps(dec)
			if err != nil {
				return nil
			}
			return &imap.CodeCapability{Caps: append([]imap.Cap{imap.Cap(first)}, rest...)}
		}
	case imap.ResponseCodePermanentFlags:
		return func(dec *imapwire.Decoder) imap.Code {
			flags, err := readFlagList(dec, true)
			if err != nil {
				return nil
			}
			return &imap.CodePermanentFlags{Flags: flags}
		}
	case imap.ResponseCodeUIDNext:
		return func(dec *imapwire.Decoder) imap.Code {
			var uid uint32
			if !dec.NZNumber(&uid) {
				return nil
			}
			return &imap.CodeUIDNext{UID: imap.UID(uid)}
		}
	case imap.ResponseCodeUIDValidity:
		return func(dec *imapwire.Decoder) imap.Code {
			var code imap.CodeUIDValidity
			if !dec.NZNumber(&code.UIDValidity) {
				return nil
			}
			return &code
		}
	case imap.ResponseCodeUnseen:
		return func(dec *imapwire.Decoder) imap.Code {
			var code imap.CodeUnseen
			if !dec.NZNumber(&code.SeqNum) {
				return nil
			}
			return &code
		}
	case imap.ResponseCodeReferral:
		return func(dec *imapwire.Decoder) imap.Code {
			var code imap.CodeReferral
			if !dec.Func(&code.URL, isCodeArgChar) {
				return nil
			}
			return &code
		}
	case imap.ResponseCodeAppendUID:
		if !c.has(imap.CapUIDPlus) {
			return nil
		}
		return func(dec *imapwire.Decoder) imap.Code {
			var (
				code imap.CodeAppendUID
				uid  uint32
			)
			if !dec.NZNumber(&code.UIDValidity) || !dec.SP() || !dec.NZNumber(&uid) {
				return nil
			}
			code.UID = imap.UID(uid)
			return &code
		}
	case imap.ResponseCodeCopyUID:
		if !c.has(imap.CapUIDPlus) {
			return nil
		}
		return func(dec *imapwire.Decoder) imap.Code {
			var (
				code      imap.CodeCopyUID
				src, dest imap.NumSet
			)
			if !dec.NZNumber(&code.UIDValidity) || !dec.SP() ||
				!dec.NumSet(imapwire.NumKindUID, &src) || imap.IsSearchRes(src) || !dec.SP() ||
				!dec.NumSet(imapwire.NumKindUID, &dest) || imap.IsSearchRes(dest) {
				return nil
			}
			code.SourceUIDs = src.(imap.UIDSet)
			code.DestUIDs = dest.(imap.UIDSet)
			return &code
		}
	case imap.ResponseCodeHighestModSeq:
		if !c.has(imap.CapCondStore) {
			return nil
		}
		return func(dec *imapwire.Decoder) imap.Code {
			var code imap.CodeHighestModSeq
			if !dec.ModSeq(&code.ModSeq) {
				return nil
			}
			return &code
		}
	case imap.ResponseCodeModified:
		if !c.has(imap.CapCondStore) {
			return nil
		}
		return func(dec *imapwire.Decoder) imap.Code {
			var set imap.NumSet
			if !dec.NumSet(imapwire.NumKindSeq, &set) || imap.IsSearchRes(set) {
				return nil
			}
			return &imap.CodeModified{Set: set.(imap.SeqSet)}
		}
	default:
		return nil
	}
}

func readListData(dec *imapwire.Decoder, lsub bool) (*imap.ListData, error) {
	data := &imap.ListData{Lsub: lsub}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	flags, err := readFlagList(dec, false)
	if err != nil {
		return nil, err
	}
	for _, flag := range flags {
		data.Attrs = append(data.Attrs, imap.MailboxAttr(flag))
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if data.Delim, err = readDelim(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if data.Mailbox, err = readMailbox(dec); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Codec) readStatusData(dec *imapwire.Decoder) (*imap.StatusData, error) {
	var data imap.StatusData
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if data.Mailbox, err = readMailbox(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	err = dec.ExpectList(func() error {
		name, err := readName(dec, imapwire.IsAtomChar, "status-att")
		if err != nil {
			return err
		}
		var options imap.StatusOptions
		if _, ext := statusOptionField(&options, name); ext != "" && !c.requireDec(dec, ext, "STATUS "+name) {
			return dec.Err()
		}
		if !dec.ExpectSP() {
			return dec.Err()
		}

		var (
			num   uint32
			num64 int64
			ok    bool
		)
		switch name {
		case "MESSAGES", "RECENT", "UNSEEN", "DELETED":
			if ok = dec.ExpectNumber(&num); ok {
				v := num
				switch name {
				case "MESSAGES":
					data.NumMessages = &v
				case "RECENT":
					data.NumRecent = &v
				case "UNSEEN":
					data.NumUnseen = &v
				default:
					data.NumDeleted = &v
				}
			}
		case "UIDNEXT":
			if ok = dec.ExpectNZNumber(&num); ok {
				data.UIDNext = imap.UID(num)
			}
		case "UIDVALIDITY":
			ok = dec.ExpectNZNumber(&data.UIDValidity)
		case "SIZE", "DELETED-STORAGE":
			if ok = dec.ExpectNumber64(&num64); ok {
				v := num64
				if name == "SIZE" {
					data.Size = &v
				} else {
					data.DeletedStorage = &v
				}
			}
		case "APPENDLIMIT":
			if dec.NIL() {
				data.AppendLimit = nil
				ok = true
			} else if ok = dec.ExpectNumber(&num); ok {
				v := num
				data.AppendLimit = &v
			}
		case "HIGHESTMODSEQ":
			if ok = dec.ExpectNumber64(&num64); ok {
				data.HighestModSeq = uint64(num64)
			}
		default:
			return dec.Errorf("未知的 STATUS 属性 %q", name)
		}
		if !ok {
			return dec.Err()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// readThreadResponse 读取 "THREAD" 之后的 [SP 1*thread-list]。列表之间的 SP 被宽松地接受。
func readThreadResponse(dec *imapwire.Decoder) (*imap.ThreadResponse, error) {
	var resp imap.ThreadResponse
	dec.SP()
	for {
		ch, ok := dec.Peek()
		if !ok {
			return nil, dec.Err()
		} else if ch != '(' {
			break
		}
		thread, err := readThread(dec)
		if err != nil {
			return nil, err
		}
		resp.Threads = append(resp.Threads, *thread)
		dec.SP()
	}
	return &resp, dec.Err()
}

// readThread 读取 "(" (thread-members / thread-nested) ")"。
func readThread(dec *imapwire.Decoder) (*imap.ThreadData, error) {
	ok := dec.Enter("thread-list")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var thread imap.ThreadData
	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}
	for {
		var num uint32
		if !dec.NZNumber(&num) {
			break
		}
		thread.Chain = append(thread.Chain, num)
		if !dec.SP() {
			break
		}
	}
	for {
		ch, ok := dec.Peek()
		if !ok {
			return nil, dec.Err()
		} else if ch != '(' {
			break
		}
		sub, err := readThread(dec)
		if err != nil {
			return nil, err
		}
		thread.SubThreads = append(thread.SubThreads, *sub)
		dec.SP()
	}
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	if len(thread.Chain) == 0 && len(thread.SubThreads) == 0 {
		return nil, dec.Errorf("空的 thread-list")
	}
	return &thread, nil
}

func readNamespaceData(dec *imapwire.Decoder) (*imap.NamespaceData, error) {
	var data imap.NamespaceData
	for _, out := range []*[]imap.NamespaceDescriptor{&data.Personal, &data.Other, &data.Shared} {
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		l, err := readNamespace(dec)
		if err != nil {
			return nil, err
		}
		*out = l
	}
	return &data, nil
}

// readNamespace 读取 NIL 或 "(" 1*namespace-descr ")"。
func readNamespace(dec *imapwire.Decoder) ([]imap.NamespaceDescriptor, error) {
	if dec.NIL() {
		return nil, nil
	}
	ok := dec.Enter("namespace")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}
	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}

	var l []imap.NamespaceDescriptor
	for !dec.Special(')') {
		if dec.Err() != nil {
			return nil, dec.Err()
		}
		var (
			descr imap.NamespaceDescriptor
			err   error
		)
		if !dec.ExpectSpecial('(') || !dec.ExpectString(&descr.Prefix) || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if descr.Delim, err = readDelim(dec); err != nil {
			return nil, err
		}
		for dec.SP() {
			if err := skipNamespaceExtension(dec); err != nil {
				return nil, err
			}
		}
		if !dec.ExpectSpecial(')') {
			return nil, dec.Err()
		}
		l = append(l, descr)
	}
	if len(l) == 0 {
		return nil, dec.Errorf("空的命名空间列表")
	}
	return l, nil
}

// skipNamespaceExtension 跳过 string SP "(" string *(SP string) ")"。
func skipNamespaceExtension(dec *imapwire.Decoder) error {
	var s string
	if !dec.ExpectString(&s) || !dec.ExpectSP() {
		return dec.Err()
	}
	return dec.ExpectList(func() error {
		var v string
		if !dec.ExpectString(&v) {
			return dec.Err()
		}
		return nil
	})
}

func readQuotaData(dec *imapwire.Decoder) (*imap.QuotaData, error) {
	var data imap.QuotaData
	if !dec.ExpectSP() || !dec.Expect(dec.AString(&data.Root), "quota-root") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	err := dec.ExpectList(func() error {
		var (
			typ string
			res imap.QuotaResourceData
		)
		if !dec.Expect(dec.Atom(&typ), "resource-name") || !dec.ExpectSP() ||
			!dec.ExpectNumber64(&res.Usage) || !dec.ExpectSP() || !dec.ExpectNumber64(&res.Limit) {
			return dec.Err()
		}
		res.Type = imap.QuotaResourceType(typ)
		data.Resources = append(data.Resources, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func readQuotaRootData(dec *imapwire.Decoder) (*imap.QuotaRootData, error) {
	var data imap.QuotaRootData
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if data.Mailbox, err = readMailbox(dec); err != nil {
		return nil, err
	}
	for dec.SP() {
		var root string
		if !dec.Expect(dec.AString(&root), "quota-root") {
			return nil, dec.Err()
		}
		data.Roots = append(data.Roots, root)
	}
	return &data, dec.Err()
}

func readACLResponse(dec *imapwire.Decoder, name string) (imap.Response, error) {
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	mailbox, err := readMailbox(dec)
	if err != nil {
		return nil, err
	}

	readAString := func(what string) (string, bool) {
		var s string
		return s, dec.Expect(dec.AString(&s), what)
	}

	switch name {
	case "ACL":
		data := &imap.ACLData{Mailbox: mailbox}
		for dec.SP() {
			identifier, ok := readAString("identifier")
			if !ok || !dec.ExpectSP() {
				return nil, dec.Err()
			}
			rights, ok := readAString("rights")
			if !ok {
				return nil, dec.Err()
			}
			data.Entries = append(data.Entries, imap.ACLEntry{
				Identifier: imap.RightsIdentifier(identifier),
				Rights:     imap.RightSet(rights),
			})
		}
		return data, dec.Err()
	case "LISTRIGHTS":
		data := &imap.ListRightsData{Mailbox: mailbox}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		identifier, ok := readAString("identifier")
		if !ok || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		required, ok := readAString("rights")
		if !ok {
			return nil, dec.Err()
		}
		data.Identifier = imap.RightsIdentifier(identifier)
		data.Required = imap.RightSet(required)
		for dec.SP() {
			optional, ok := readAString("rights")
			if !ok {
				return nil, dec.Err()
			}
			data.Optional = append(data.Optional, imap.RightSet(optional))
		}
		return data, dec.Err()
	default:
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		rights, ok := readAString("rights")
		if !ok {
			return nil, dec.Err()
		}
		return &imap.MyRightsData{Mailbox: mailbox, Rights: imap.RightSet(rights)}, nil
	}
}

// readGreeting 读取 "*" SP (OK / PREAUTH / BYE) resp-text CRLF。
func (c *Codec) readGreeting(dec *imapwire.Decoder) (*imap.Greeting, error) {
	ok := dec.Enter("greeting")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	if !dec.ExpectSpecial('*') || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	name, err := readName(dec, imapwire.IsAtomChar, "greeting")
	if err != nil {
		return nil, err
	}
	greeting := &imap.Greeting{Type: imap.StatusResponseType(name)}
	switch greeting.Type {
	case imap.StatusResponseTypeOK, imap.StatusResponseTypePreAuth, imap.StatusResponseTypeBye:
	default:
		return nil, dec.Errorf("问候不能是 %q", name)
	}
	if greeting.Code, greeting.Text, err = c.readRespText(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return greeting, nil
}

func (c *Codec) writeGreeting(enc *imapwire.Encoder, greeting *imap.Greeting) {
	if greeting == nil {
		enc.Errorf("缺少问候")
		return
	}
	switch greeting.Type {
	case imap.StatusResponseTypeOK, imap.StatusResponseTypePreAuth, imap.StatusResponseTypeBye:
	default:
		enc.Errorf("问候不能是 %q", greeting.Type)
		return
	}
	enc.Special('*').SP().Atom(string(greeting.Type))
	c.writeRespText(enc, greeting.Code, greeting.Text)
	enc.CRLF()
}

// writeResponse 写出一行完整的服务器响应，包括结尾的 CRLF。
func (c *Codec) writeResponse(enc *imapwire.Encoder, resp imap.Response) {
	switch resp := resp.(type) {
	case *imap.ContinuationRequest:
		enc.Special('+').SP().Text(resp.Text)
	case *imap.StatusResponse:
		c.writeStatusResponse(enc, resp)
	case *imap.ExistsData:
		enc.Special('*').SP().Number(resp.NumMessages).SP().Atom("EXISTS")
	case *imap.RecentData:
		enc.Special('*').SP().Number(resp.NumRecent).SP().Atom("RECENT")
	case *imap.ExpungeData:
		enc.Special('*').SP().NZNumber(resp.SeqNum).SP().Atom("EXPUNGE")
	case *imap.FetchData:
		enc.Special('*').SP()
		c.writeFetchData(enc, resp)
	case nil:
		enc.Errorf("缺少响应")
		return
	default:
		enc.Special('*').SP()
		c.writeResponseData(enc, resp)
	}
	enc.CRLF()
}

func (c *Codec) writeStatusResponse(enc *imapwire.Encoder, resp *imap.StatusResponse) {
	if resp.Tag == "" {
		switch resp.Type {
		case imap.StatusResponseTypeOK, imap.StatusResponseTypeNo, imap.StatusResponseTypeBad,
			imap.StatusResponseTypePreAuth, imap.StatusResponseTypeBye:
		default:
			enc.Errorf("未知的状态响应类型 %q", resp.Type)
			return
		}
		enc.Special('*')
	} else {
		switch resp.Type {
		case imap.StatusResponseTypeOK, imap.StatusResponseTypeNo, imap.StatusResponseTypeBad:
		default:
			enc.Errorf("带标签的响应不能是 %q", resp.Type)
			return
		}
		enc.Tag(resp.Tag)
	}
	enc.SP().Atom(string(resp.Type))
	c.writeRespText(enc, resp.Code, resp.Text)
}

func (c *Codec) writeRespText(enc *imapwire.Encoder, code imap.Code, text string) {
	if code == nil && text == "" {
		return
	}
	enc.SP()
	if code != nil {
		enc.Special('[')
		c.writeCode(enc, code)
		enc.Special(']')
		if text != "" {
			enc.SP()
		}
	} else if strings.HasPrefix(text, "[") {
		enc.Errorf("没有响应代码的文本不能以 '[' 开头")
		return
	}
	enc.Text(text)
}

func validCodeArgs(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isCodeArgChar(s[i]) {
			return false
		}
	}
	return true
}

func (c *Codec) writeCode(enc *imapwire.Encoder, code imap.Code) {
	switch code := code.(type) {
	case imap.ResponseCode:
		enc.Atom(string(code))
	case *imap.CodeBadCharset:
		if len(code.Charsets) == 0 {
			enc.Errorf("BADCHARSET 代码的字符集列表为空，应使用 ResponseCodeBadCharset")
			return
		}
		enc.Atom("BADCHARSET").SP().List(len(code.Charsets), func(i int) {
			enc.AString(code.Charsets[i])
		})
	case *imap.CodeCapability:
		if len(code.Caps) == 0 {
			enc.Errorf("CAPABILITY 代码至少需要一个能力")
			return
		}
		enc.Atom("CAPABILITY")
		writeCaps(enc, code.Caps)
	case *imap.CodePermanentFlags:
		enc.Atom("PERMANENTFLAGS").SP()
		writeFlagList(enc, code.Flags, true)
	case *imap.CodeUIDNext:
		enc.Atom("UIDNEXT").SP().NZNumber(uint32(code.UID))
	case *imap.CodeUIDValidity:
		enc.Atom("UIDVALIDITY").SP().NZNumber(code.UIDValidity)
	case *imap.CodeUnseen:
		enc.Atom("UNSEEN").SP().NZNumber(code.SeqNum)
	case *imap.CodeReferral:
		if !validCodeArgs(code.URL) {
			enc.Errorf("无效的 REFERRAL URL %q", code.URL)
			return
		}
		enc.Atom("REFERRAL").SP().Raw(code.URL)
	case *imap.CodeAppendUID:
		if !c.requireEnc(enc, imap.CapUIDPlus, "APPENDUID") {
			return
		}
		enc.Atom("APPENDUID").SP().NZNumber(code.UIDValidity).SP().NZNumber(uint32(code.UID))
	case *imap.CodeCopyUID:
		if !c.requireEnc(enc, imap.CapUIDPlus, "COPYUID") {
			return
		}
		if imap.IsSearchRes(code.SourceUIDs) || imap.IsSearchRes(code.DestUIDs) {
			enc.Errorf("COPYUID 不能使用 $")
			return
		}
		enc.Atom("COPYUID").SP().NZNumber(code.UIDValidity).SP()
		enc.NumSet(code.SourceUIDs).SP().NumSet(code.DestUIDs)
	case *imap.CodeHighestModSeq:
		if !c.requireEnc(enc, imap.CapCondStore, "HIGHESTMODSEQ") {
			return
		}
		enc.Atom("HIGHESTMODSEQ").SP().ModSeq(code.ModSeq)
	case *imap.CodeModified:
		if !c.requireEnc(enc, imap.CapCondStore, "MODIFIED") {
			return
		}
		enc.Atom("MODIFIED").SP().NumSet(code.Set)
	case *imap.CodeOther:
		if !validCodeArgs(code.Args) {
			enc.Errorf("响应代码 %v 的参数无效: %q", code.Name, code.Args)
			return
		}
		enc.Atom(string(code.Name)).SP().Raw(code.Args)
	default:
		enc.Errorf("未知的响应代码类型 %T", code)
	}
}

func (c *Codec) writeResponseData(enc *imapwire.Encoder, resp imap.Response) {
	switch data := resp.(type) {
	case *imap.CapabilityData:
		enc.Atom("CAPABILITY")
		writeCaps(enc, data.Caps)
	case *imap.ListData:
		name := "LIST"
		if data.Lsub {
			name = "LSUB"
		}
		enc.Atom(name).SP().List(len(data.Attrs), func(i int) {
			writeFlag(enc, imap.Flag(data.Attrs[i]), false)
		})
		enc.SP()
		writeDelim(enc, data.Delim)
		enc.SP().Mailbox(data.Mailbox)
	case *imap.StatusData:
		c.writeStatusData(enc, data)
	case *imap.SearchData:
		c.writeSearchData(enc, data)
	case *imap.FlagsData:
		enc.Atom("FLAGS").SP()
		writeFlagList(enc, data.Flags, false)
	case *imap.EnabledData:
		if c.requireEnc(enc, imap.CapEnable, "ENABLED") {
			enc.Atom("ENABLED")
			writeCaps(enc, data.Caps)
		}
	case *imap.ESearchData:
		if c.requireEnc(enc, imap.CapESearch, "ESEARCH") {
			c.writeESearchData(enc, data)
		}
	case *imap.SortData:
		if c.requireEnc(enc, imap.CapSort, "SORT") {
			enc.Atom("SORT")
			writeNumList(enc, data.Nums)
		}
	case *imap.ThreadResponse:
		if !c.hasThread() {
			enc.Unsupported("THREAD", "THREAD")
			return
		}
		enc.Atom("THREAD")
		if len(data.Threads) > 0 {
			enc.SP()
		}
		for i := range data.Threads {
			writeThread(enc, &data.Threads[i], 0)
		}
	case *imap.NamespaceData:
		if c.requireEnc(enc, imap.CapNamespace, "NAMESPACE") {
			enc.Atom("NAMESPACE")
			for _, l := range [][]imap.NamespaceDescriptor{data.Personal, data.Other, data.Shared} {
				enc.SP()
				writeNamespace(enc, l)
			}
		}
	case *imap.IDResponse:
		if c.requireEnc(enc, imap.CapID, "ID") {
			enc.Atom("ID").SP()
			writeIDParams(enc, data.Params)
		}
	case *imap.QuotaData:
		if c.requireEnc(enc, imap.CapQuota, "QUOTA") {
			enc.Atom("QUOTA").SP().AString(data.Root).SP()
			enc.List(len(data.Resources), func(i int) {
				res := data.Resources[i]
				enc.Atom(string(res.Type)).SP().Number64(res.Usage).SP().Number64(res.Limit)
			})
		}
	case *imap.QuotaRootData:
		if c.requireEnc(enc, imap.CapQuota, "QUOTAROOT") {
			enc.Atom("QUOTAROOT").SP().Mailbox(data.Mailbox)
			for _, root := range data.Roots {
				enc.SP().AString(root)
			}
		}
	case *imap.ACLData:
		if c.requireEnc(enc, imap.CapACL, "ACL") {
			enc.Atom("ACL").SP().Mailbox(data.Mailbox)
			for _, entry := range data.Entries {
				enc.SP().AString(string(entry.Identifier)).SP().AString(string(entry.Rights))
			}
		}
	case *imap.ListRightsData:
		if c.requireEnc(enc, imap.CapACL, "LISTRIGHTS") {
			enc.Atom("LISTRIGHTS").SP().Mailbox(data.Mailbox).SP().AString(string(data.Identifier))
			enc.SP().AString(string(data.Required))
			for _, rs := range data.Optional {
				enc.SP().AString(string(rs))
			}
		}
	case *imap.MyRightsData:
		if c.requireEnc(enc, imap.CapACL, "MYRIGHTS") {
			enc.Atom("MYRIGHTS").SP().Mailbox(data.Mailbox).SP().AString(string(data.Rights))
		}
	default:
		enc.Errorf("未知的响应类型 %T", resp)
	}
}

func (c *Codec) writeStatusData(enc *imapwire.Encoder, data *imap.StatusData) {
	type item struct {
		name  string
		write func()
	}
	var items []item
	addNum := func(name string, v *uint32) {
		if v != nil {
			items = append(items, item{name, func() { enc.Number(*v) }})
		}
	}
	addNum64 := func(name string, v *int64) {
		if v != nil {
			items = append(items, item{name, func() { enc.Number64(*v) }})
		}
	}

	addNum("MESSAGES", data.NumMessages)
	addNum("RECENT", data.NumRecent)
	if data.UIDNext != 0 {
		items = append(items, item{"UIDNEXT", func() { enc.NZNumber(uint32(data.UIDNext)) }})
	}
	if data.UIDValidity != 0 {
		items = append(items, item{"UIDVALIDITY", func() { enc.NZNumber(data.UIDValidity) }})
	}
	addNum("UNSEEN", data.NumUnseen)
	addNum("DELETED", data.NumDeleted)
	addNum64("SIZE", data.Size)
	addNum("APPENDLIMIT", data.AppendLimit)
	addNum64("DELETED-STORAGE", data.DeletedStorage)
	if data.HighestModSeq != 0 {
		items = append(items, item{"HIGHESTMODSEQ", func() { enc.ModSeq(data.HighestModSeq) }})
	}

	var options imap.StatusOptions
	for _, it := range items {
		if _, ext := statusOptionField(&options, it.name); ext != "" && !c.requireEnc(enc, ext, "STATUS "+it.name) {
			return
		}
	}

	enc.Atom("STATUS").SP().Mailbox(data.Mailbox).SP()
	enc.List(len(items), func(i int) {
		enc.Atom(items[i].name).SP()
		items[i].write()
	})
}

func writeThread(enc *imapwire.Encoder, thread *imap.ThreadData, depth int) {
	// 解码时 response 和每层 thread-list 各占一层
	if depth > imapwire.DefaultMaxDepth-2 {
		enc.Errorf("线程嵌套太深")
		return
	}
	if len(thread.Chain) == 0 && len(thread.SubThreads) == 0 {
		enc.Errorf("空的线程")
		return
	}
	enc.Special('(')
	for i, num := range thread.Chain {
		if i > 0 {
			enc.SP()
		}
		enc.NZNumber(num)
	}
	if len(thread.Chain) > 0 && len(thread.SubThreads) > 0 {
		enc.SP()
	}
	for i := range thread.SubThreads {
		writeThread(enc, &thread.SubThreads[i], depth+1)
	}
	enc.Special(')')
}

func writeNamespace(enc *imapwire.Encoder, l []imap.NamespaceDescriptor) {
	if len(l) == 0 {
		enc.NIL()
		return
	}
	enc.Special('(')
	for _, descr := range l {
		enc.Special('(').String(descr.Prefix).SP()
		writeDelim(enc, descr.Delim)
		enc.Special(')')
	}
	enc.Special(')')
}
