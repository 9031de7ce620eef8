package imapcodec

import (
	"strings"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
	"github.com/luhaoyun888/go-imap-codec/internal"
)

// readCommand 读取 tag SP command-body CRLF。
func (c *Codec) readCommand(dec *imapwire.Decoder) (*imap.Command, error) {
	ok := dec.Enter("command")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var cmd imap.Command
	if !dec.Expect(dec.Func(&cmd.Tag, imapwire.IsTagChar), "tag") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	name, err := readName(dec, imapwire.IsAtomChar, "command")
	if err != nil {
		return nil, err
	}

	uid := false
	if name == "UID" {
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if name, err = readName(dec, imapwire.IsAtomChar, "command"); err != nil {
			return nil, err
		}
		switch name {
		case "FETCH", "STORE", "COPY", "MOVE", "SEARCH", "EXPUNGE", "SORT", "THREAD":
		default:
			return nil, dec.Errorf("命令 %q 不能使用 UID 前缀", name)
		}
		uid = true
	}

	if cmd.Body, err = c.readCommandBody(dec, name, uid); err != nil {
		return nil, err
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}

func (c *Codec) readCommandBody(dec *imapwire.Decoder, name string, uid bool) (imap.CommandBody, error) {
	switch name {
	case "CAPABILITY":
		return &imap.CommandCapability{}, nil
	case "NOOP":
		return &imap.CommandNoop{}, nil
	case "LOGOUT":
		return &imap.CommandLogout{}, nil
	case "STARTTLS":
		return &imap.CommandStartTLS{}, nil
	case "CHECK":
		return &imap.CommandCheck{}, nil
	case "CLOSE":
		return &imap.CommandClose{}, nil
	case "AUTHENTICATE":
		return c.readAuthenticate(dec)
	case "LOGIN":
		var cmd imap.CommandLogin
		if !dec.ExpectSP() || !dec.Expect(dec.AString(&cmd.Username), "userid") ||
			!dec.ExpectSP() || !dec.Expect(dec.AString(&cmd.Password), "password") {
			return nil, dec.Err()
		}
		return &cmd, nil
	case "SELECT", "EXAMINE":
		cmd := &imap.CommandSelect{Options: imap.SelectOptions{ReadOnly: name == "EXAMINE"}}
		var err error
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Mailbox, err = readMailbox(dec); err != nil {
			return nil, err
		}
		if dec.SP() {
			if !c.requireDec(dec, imap.CapCondStore, name+" (CONDSTORE)") {
				return nil, dec.Err()
			}
			if !dec.ExpectSpecial('(') || !dec.ExpectKeyword("CONDSTORE") || !dec.ExpectSpecial(')') {
				return nil, dec.Err()
			}
			cmd.Options.CondStore = true
		}
		return cmd, dec.Err()
	case "CREATE", "DELETE", "SUBSCRIBE", "UNSUBSCRIBE":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		mailbox, err := readMailbox(dec)
		if err != nil {
			return nil, err
		}
		switch name {
		case "CREATE":
			return &imap.CommandCreate{Mailbox: mailbox}, nil
		case "DELETE":
			return &imap.CommandDelete{Mailbox: mailbox}, nil
		case "SUBSCRIBE":
			return &imap.CommandSubscribe{Mailbox: mailbox}, nil
		default:
			return &imap.CommandUnsubscribe{Mailbox: mailbox}, nil
		}
	case "RENAME":
		var cmd imap.CommandRename
		var err error
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Mailbox, err = readMailbox(dec); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.NewName, err = readMailbox(dec); err != nil {
			return nil, err
		}
		return &cmd, nil
	case "LIST", "LSUB":
		cmd := &imap.CommandList{Lsub: name == "LSUB"}
		var err error
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Reference, err = readMailbox(dec); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Pattern, err = readListMailbox(dec); err != nil {
			return nil, err
		}
		return cmd, nil
	case "STATUS":
		return c.readStatusCommand(dec)
	case "APPEND":
		return c.readAppend(dec)
	case "EXPUNGE":
		if !uid {
			return &imap.CommandExpunge{}, nil
		}
		if !c.requireDec(dec, imap.CapUIDPlus, "UID EXPUNGE") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		set, err := c.readCommandSet(dec, true)
		if err != nil {
			return nil, err
		}
		return &imap.CommandExpunge{UIDs: set.(imap.UIDSet)}, nil
	case "SEARCH":
		return c.readSearchCommand(dec, uid)
	case "FETCH":
		return c.readFetchCommand(dec, uid)
	case "STORE":
		return c.readStoreCommand(dec, uid)
	case "COPY", "MOVE":
		if name == "MOVE" && !c.requireDec(dec, imap.CapMove, name) {
			return nil, dec.Err()
		}
		cmd := &imap.CommandCopy{UID: uid, Move: name == "MOVE"}
		var err error
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Set, err = c.readCommandSet(dec, uid); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Mailbox, err = readMailbox(dec); err != nil {
			return nil, err
		}
		return cmd, nil
	case "IDLE":
		if !c.requireDec(dec, imap.CapIdle, name) {
			return nil, dec.Err()
		}
		return &imap.CommandIdle{}, nil
	case "UNSELECT":
		if !c.requireDec(dec, imap.CapUnselect, name) {
			return nil, dec.Err()
		}
		return &imap.CommandUnselect{}, nil
	case "NAMESPACE":
		if !c.requireDec(dec, imap.CapNamespace, name) {
			return nil, dec.Err()
		}
		return &imap.CommandNamespace{}, nil
	case "ENABLE":
		if !c.requireDec(dec, imap.CapEnable, name) {
			return nil, dec.Err()
		}
		caps, err := readCaps(dec)
		if err != nil {
			return nil, err
		}
		if len(caps) == 0 {
			dec.Expect(false, "SP capability")
			return nil, dec.Err()
		}
		return &imap.CommandEnable{Caps: caps}, nil
	case "ID":
		if !c.requireDec(dec, imap.CapID, name) || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		params, err := readIDParams(dec)
		if err != nil {
			return nil, err
		}
		return &imap.CommandID{Params: params}, nil
	case "GETQUOTA", "GETQUOTAROOT", "SETQUOTA":
		return c.readQuotaCommand(dec, name)
	case "COMPRESS":
		var cmd imap.CommandCompress
		if !c.requireDec(dec, imap.CapCompressDeflate, name) {
			return nil, dec.Err()
		}
		if !dec.ExpectSP() || !dec.Expect(dec.Atom(&cmd.Algorithm), "algorithm") {
			return nil, dec.Err()
		}
		return &cmd, nil
	case "GETACL", "SETACL", "DELETEACL", "LISTRIGHTS", "MYRIGHTS":
		return c.readACLCommand(dec, name)
	case "SORT":
		return c.readSortCommand(dec, uid)
	case "THREAD":
		return c.readThreadCommand(dec, uid)
	default:
		return nil, dec.Errorf("未知的命令 %q", name)
	}
}

// readCommandSet 读取命令中的序列集。UID 命令得到 UIDSet，其他命令得到 SeqSet
// （"$" 总是 imap.SearchRes()）。
func (c *Codec) readCommandSet(dec *imapwire.Decoder, uid bool) (imap.NumSet, error) {
	kind := imapwire.NumKindSeq
	if uid {
		kind = imapwire.NumKindUID
	}
	var set imap.NumSet
	if !dec.ExpectNumSet(kind, &set) || !c.requireNumSetDec(dec, set) {
		return nil, dec.Err()
	}
	return set, nil
}

func (c *Codec) readAuthenticate(dec *imapwire.Decoder) (*imap.CommandAuthenticate, error) {
	var cmd imap.CommandAuthenticate
	if !dec.ExpectSP() || !dec.Expect(dec.Atom(&cmd.Mechanism), "auth-type") {
		return nil, dec.Err()
	}
	if !dec.SP() {
		return &cmd, dec.Err()
	}
	if !c.requireDec(dec, imap.CapSASLIR, "initial response") {
		return nil, dec.Err()
	}
	if dec.Special('=') {
		cmd.InitialResponse = []byte{}
		return &cmd, nil
	}
	var ir []byte
	if !dec.Base64(&ir) {
		return nil, dec.Err()
	}
	if len(ir) == 0 {
		dec.Expect(false, "initial-resp")
		return nil, dec.Err()
	}
	cmd.InitialResponse = ir
	return &cmd, nil
}

func (c *Codec) readStatusCommand(dec *imapwire.Decoder) (*imap.CommandStatus, error) {
	var cmd imap.CommandStatus
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Mailbox, err = readMailbox(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	n := 0
	err = dec.ExpectList(func() error {
		name, err := readName(dec, imapwire.IsAtomChar, "status-att")
		if err != nil {
			return err
		}
		ptr, ext := statusOptionField(&cmd.Options, name)
		if ptr == nil {
			return dec.Errorf("未知的 STATUS 属性 %q", name)
		}
		if ext != "" && !c.requireDec(dec, ext, "STATUS "+name) {
			return dec.Err()
		}
		*ptr = true
		n++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, dec.Errorf("STATUS 至少需要一个属性")
	}
	return &cmd, nil
}

// statusItem 是一个 STATUS 属性，按编码顺序排列。
type statusItem struct {
	name string
	ext  imap.Cap
}

var statusItems = []statusItem{
	{"MESSAGES", ""},
	{"RECENT", ""},
	{"UIDNEXT", ""},
	{"UIDVALIDITY", ""},
	{"UNSEEN", ""},
	{"DELETED", imap.CapQuota},
	{"SIZE", imap.CapStatusSize},
	{"APPENDLIMIT", imap.CapAppendLimit},
	{"DELETED-STORAGE", imap.CapQuota},
	{"HIGHESTMODSEQ", imap.CapCondStore},
}

func statusOptionField(options *imap.StatusOptions, name string) (*bool, imap.Cap) {
	switch name {
	case "MESSAGES":
		return &options.NumMessages, ""
	case "RECENT":
		return &options.NumRecent, ""
	case "UIDNEXT":
		return &options.UIDNext, ""
	case "UIDVALIDITY":
		return &options.UIDValidity, ""
	case "UNSEEN":
		return &options.NumUnseen, ""
	case "DELETED":
		return &options.NumDeleted, imap.CapQuota
	case "SIZE":
		return &options.Size, imap.CapStatusSize
	case "APPENDLIMIT":
		return &options.AppendLimit, imap.CapAppendLimit
	case "DELETED-STORAGE":
		return &options.DeletedStorage, imap.CapQuota
	case "HIGHESTMODSEQ":
		return &options.HighestModSeq, imap.CapCondStore
	default:
		return nil, ""
	}
}

func (c *Codec) readAppend(dec *imapwire.Decoder) (*imap.CommandAppend, error) {
	var cmd imap.CommandAppend
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Mailbox, err = readMailbox(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	if ch, ok := dec.Peek(); ok && ch == '(' {
		if cmd.Options.Flags, err = readFlagList(dec, false); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
	}
	if ch, ok := dec.Peek(); ok && ch == '"' {
		if !dec.ExpectDateTime(&cmd.Options.Time) || !dec.ExpectSP() {
			return nil, dec.Err()
		}
	}

	var (
		b   []byte
		hdr imapwire.LiteralHeader
	)
	if !dec.Expect(dec.Literal8(&b, &hdr), "literal") {
		return nil, dec.Err()
	}
	cmd.Message = imap.BorrowLiteral(b)
	cmd.Message.NonSync = hdr.NonSync
	cmd.Message.Binary = hdr.Binary
	return &cmd, nil
}

func (c *Codec) readSearchCommand(dec *imapwire.Decoder, uid bool) (*imap.CommandSearch, error) {
	cmd := &imap.CommandSearch{UID: uid}
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if dec.Keyword("RETURN") {
		if !c.requireDec(dec, imap.CapESearch, "SEARCH RETURN") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if cmd.Return, err = c.readSearchReturn(dec); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
	}
	if cmd.Charset, err = readSearchCharset(dec); err != nil {
		return nil, err
	}
	if cmd.Keys, err = c.readSearchKeys(dec); err != nil {
		return nil, err
	}
	return cmd, nil
}

// readSearchCharset 读取可选的 "CHARSET" SP astring SP。
func readSearchCharset(dec *imapwire.Decoder) (string, error) {
	if !dec.Keyword("CHARSET") {
		return "", dec.Err()
	}
	var charset string
	if !dec.ExpectSP() || !dec.Expect(dec.AString(&charset), "charset") || !dec.ExpectSP() {
		return "", dec.Err()
	}
	return charset, nil
}

func (c *Codec) readFetchCommand(dec *imapwire.Decoder, uid bool) (*imap.CommandFetch, error) {
	cmd := &imap.CommandFetch{UID: uid}
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Set, err = c.readCommandSet(dec, uid); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Items, err = c.readFetchAtts(dec); err != nil {
		return nil, err
	}
	if dec.SP() {
		if cmd.ChangedSince, err = c.readFetchModifier(dec); err != nil {
			return nil, err
		}
	}
	return cmd, dec.Err()
}

func isStoreOpChar(ch byte) bool {
	return isAlpha(ch) || ch == '+' || ch == '-' || ch == '.'
}

func (c *Codec) readStoreCommand(dec *imapwire.Decoder, uid bool) (*imap.CommandStore, error) {
	cmd := &imap.CommandStore{UID: uid}
	var err error
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Set, err = c.readCommandSet(dec, uid); err != nil {
		return nil, err
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	if dec.Special('(') {
		if !c.requireDec(dec, imap.CapCondStore, "UNCHANGEDSINCE") {
			return nil, dec.Err()
		}
		var modSeq int64
		if !dec.ExpectKeyword("UNCHANGEDSINCE") || !dec.ExpectSP() || !dec.ExpectNumber64(&modSeq) ||
			!dec.ExpectSpecial(')') || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if modSeq == 0 {
			return nil, dec.Errorf("UNCHANGEDSINCE 0 无法表示")
		}
		cmd.Options.UnchangedSince = uint64(modSeq)
	}

	op, err := readName(dec, isStoreOpChar, "store-att-flags")
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(op, "+"):
		cmd.Flags.Op = imap.StoreFlagsAdd
		op = op[1:]
	case strings.HasPrefix(op, "-"):
		cmd.Flags.Op = imap.StoreFlagsDel
		op = op[1:]
	default:
		cmd.Flags.Op = imap.StoreFlagsSet
	}
	switch op {
	case "FLAGS":
	case "FLAGS.SILENT":
		cmd.Flags.Silent = true
	default:
		return nil, dec.Errorf("未知的 STORE 操作 %q", op)
	}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	if ch, ok := dec.Peek(); ok && ch == '(' {
		if cmd.Flags.Flags, err = readFlagList(dec, false); err != nil {
			return nil, err
		}
		return cmd, nil
	} else if !ok {
		return nil, dec.Err()
	}
	for {
		flag, err := readFlag(dec, false)
		if err != nil {
			return nil, err
		}
		cmd.Flags.Flags = append(cmd.Flags.Flags, flag)
		if !dec.SP() {
			return cmd, dec.Err()
		}
	}
}

// readIDParams 读取 ID 参数列表：NIL 或 "(" [string SP nstring *(SP string SP nstring)] ")"。
func readIDParams(dec *imapwire.Decoder) (*imap.IDData, error) {
	if dec.NIL() {
		return nil, nil
	}
	data := &imap.IDData{}
	err := dec.ExpectList(func() error {
		var key, value string
		if !dec.Expect(dec.String(&key), "id field") || !dec.ExpectSP() || !dec.ExpectNString(&value) {
			return dec.Err()
		}
		data.Set(key, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func writeIDParams(enc *imapwire.Encoder, data *imap.IDData) {
	if data == nil {
		enc.NIL()
		return
	}
	params := data.Params()
	enc.List(len(params), func(i int) {
		enc.String(params[i].Key).SP().NString(params[i].Value)
	})
}

func (c *Codec) readQuotaCommand(dec *imapwire.Decoder, name string) (imap.CommandBody, error) {
	if !c.requireDec(dec, imap.CapQuota, name) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	switch name {
	case "GETQUOTA":
		var cmd imap.CommandGetQuota
		if !dec.Expect(dec.AString(&cmd.Root), "quota-root") {
			return nil, dec.Err()
		}
		return &cmd, nil
	case "GETQUOTAROOT":
		mailbox, err := readMailbox(dec)
		if err != nil {
			return nil, err
		}
		return &imap.CommandGetQuotaRoot{Mailbox: mailbox}, nil
	default:
		var cmd imap.CommandSetQuota
		if !dec.Expect(dec.AString(&cmd.Root), "quota-root") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		err := dec.ExpectList(func() error {
			var (
				typ   string
				limit imap.QuotaLimit
			)
			if !dec.Expect(dec.Atom(&typ), "resource-name") || !dec.ExpectSP() || !dec.ExpectNumber64(&limit.Limit) {
				return dec.Err()
			}
			limit.Type = imap.QuotaResourceType(typ)
			cmd.Limits = append(cmd.Limits, limit)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cmd, nil
	}
}

func (c *Codec) readACLCommand(dec *imapwire.Decoder, name string) (imap.CommandBody, error) {
	if !c.requireDec(dec, imap.CapACL, name) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	mailbox, err := readMailbox(dec)
	if err != nil {
		return nil, err
	}
	if name == "GETACL" {
		return &imap.CommandGetACL{Mailbox: mailbox}, nil
	} else if name == "MYRIGHTS" {
		return &imap.CommandMyRights{Mailbox: mailbox}, nil
	}

	var identifier string
	if !dec.ExpectSP() || !dec.Expect(dec.AString(&identifier), "identifier") {
		return nil, dec.Err()
	}
	switch name {
	case "SETACL":
		var rights string
		if !dec.ExpectSP() || !dec.Expect(dec.AString(&rights), "mod-rights") {
			return nil, dec.Err()
		}
		rm, rs := internal.ParseRights(rights)
		return &imap.CommandSetACL{
			Mailbox:      mailbox,
			Identifier:   imap.RightsIdentifier(identifier),
			Modification: rm,
			Rights:       rs,
		}, nil
	case "DELETEACL":
		return &imap.CommandDeleteACL{Mailbox: mailbox, Identifier: imap.RightsIdentifier(identifier)}, nil
	default:
		return &imap.CommandListRights{Mailbox: mailbox, Identifier: imap.RightsIdentifier(identifier)}, nil
	}
}

func (c *Codec) readSortCommand(dec *imapwire.Decoder, uid bool) (*imap.CommandSort, error) {
	if !c.requireDec(dec, imap.CapSort, "SORT") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	cmd := &imap.CommandSort{UID: uid}
	err := dec.ExpectList(func() error {
		var criterion imap.SortCriterion
		name, err := readName(dec, imapwire.IsAtomChar, "sort-key")
		if err != nil {
			return err
		}
		if name == "REVERSE" {
			criterion.Reverse = true
			if !dec.ExpectSP() {
				return dec.Err()
			}
			if name, err = readName(dec, imapwire.IsAtomChar, "sort-key"); err != nil {
				return err
			}
		}
		criterion.Key = imap.SortKey(name)
		if !isSortKey(criterion.Key) {
			return dec.Errorf("未知的排序关键字 %q", name)
		}
		cmd.Criteria = append(cmd.Criteria, criterion)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cmd.Criteria) == 0 {
		return nil, dec.Errorf("SORT 至少需要一个排序标准")
	}
	if !dec.ExpectSP() || !dec.Expect(dec.AString(&cmd.Charset), "charset") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Keys, err = c.readSearchKeys(dec); err != nil {
		return nil, err
	}
	return cmd, nil
}

func isSortKey(key imap.SortKey) bool {
	switch key {
	case imap.SortKeyArrival, imap.SortKeyCc, imap.SortKeyDate, imap.SortKeyFrom,
		imap.SortKeySize, imap.SortKeySubject, imap.SortKeyTo:
		return true
	}
	return false
}

func (c *Codec) readThreadCommand(dec *imapwire.Decoder, uid bool) (*imap.CommandThread, error) {
	if !c.hasThread() {
		dec.Unsupported("THREAD", "THREAD")
		return nil, dec.Err()
	}
	cmd := &imap.CommandThread{UID: uid}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	alg, err := readName(dec, imapwire.IsAtomChar, "thread-alg")
	if err != nil {
		return nil, err
	}
	cmd.Algorithm = imap.ThreadAlgorithm(alg)
	if !c.requireDec(dec, threadCap(cmd.Algorithm), "THREAD") {
		return nil, dec.Err()
	}
	if !dec.ExpectSP() || !dec.Expect(dec.AString(&cmd.Charset), "charset") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if cmd.Keys, err = c.readSearchKeys(dec); err != nil {
		return nil, err
	}
	return cmd, nil
}

// writeCommand 写出一条完整的命令，包括结尾的 CRLF。
func (c *Codec) writeCommand(enc *imapwire.Encoder, cmd *imap.Command) {
	if cmd == nil || cmd.Body == nil {
		enc.Errorf("缺少命令")
		return
	}
	enc.Tag(cmd.Tag).SP()
	c.writeCommandBody(enc, cmd.Body)
	enc.CRLF()
}

func writeCommandName(enc *imapwire.Encoder, uid bool, name string) {
	if uid {
		enc.Atom("UID").SP()
	}
	enc.Atom(name)
}

func (c *Codec) writeCommandBody(enc *imapwire.Encoder, body imap.CommandBody) {
	switch cmd := body.(type) {
	case *imap.CommandCapability, *imap.CommandNoop, *imap.CommandLogout, *imap.CommandStartTLS,
		*imap.CommandCheck, *imap.CommandClose:
		enc.Atom(cmd.Name())
	case *imap.CommandAuthenticate:
		enc.Atom("AUTHENTICATE").SP().Atom(cmd.Mechanism)
		if cmd.InitialResponse != nil {
			if !c.requireEnc(enc, imap.CapSASLIR, "initial response") {
				return
			}
			enc.SP()
			if len(cmd.InitialResponse) == 0 {
				enc.Special('=')
			} else {
				enc.Base64(cmd.InitialResponse)
			}
		}
	case *imap.CommandLogin:
		enc.Atom("LOGIN").SP().AString(cmd.Username).SP().AString(cmd.Password)
	case *imap.CommandSelect:
		enc.Atom(cmd.Name()).SP().Mailbox(cmd.Mailbox)
		if cmd.Options.CondStore {
			if !c.requireEnc(enc, imap.CapCondStore, cmd.Name()+" (CONDSTORE)") {
				return
			}
			enc.SP().Special('(').Atom("CONDSTORE").Special(')')
		}
	case *imap.CommandCreate:
		enc.Atom("CREATE").SP().Mailbox(cmd.Mailbox)
	case *imap.CommandDelete:
		enc.Atom("DELETE").SP().Mailbox(cmd.Mailbox)
	case *imap.CommandSubscribe:
		enc.Atom("SUBSCRIBE").SP().Mailbox(cmd.Mailbox)
	case *imap.CommandUnsubscribe:
		enc.Atom("UNSUBSCRIBE").SP().Mailbox(cmd.Mailbox)
	case *imap.CommandRename:
		enc.Atom("RENAME").SP().Mailbox(cmd.Mailbox).SP().Mailbox(cmd.NewName)
	case *imap.CommandList:
		enc.Atom(cmd.Name()).SP().Mailbox(cmd.Reference).SP().ListMailbox(cmd.Pattern)
	case *imap.CommandStatus:
		c.writeStatusCommand(enc, cmd)
	case *imap.CommandAppend:
		c.writeAppend(enc, cmd)
	case *imap.CommandExpunge:
		if cmd.UIDs == nil {
			enc.Atom("EXPUNGE")
			return
		}
		if !c.requireEnc(enc, imap.CapUIDPlus, "UID EXPUNGE") {
			return
		}
		enc.Atom("UID").SP().Atom("EXPUNGE").SP()
		c.writeNumSet(enc, cmd.UIDs)
	case *imap.CommandSearch:
		writeCommandName(enc, cmd.UID, "SEARCH")
		if cmd.Return != nil {
			if !c.requireEnc(enc, imap.CapESearch, "SEARCH RETURN") {
				return
			}
			enc.SP()
			c.writeSearchReturn(enc, cmd.Return)
		}
		if cmd.Charset != "" {
			enc.SP().Atom("CHARSET").SP().AString(cmd.Charset)
		}
		c.writeSearchKeys(enc, cmd.Keys)
	case *imap.CommandFetch:
		writeCommandName(enc, cmd.UID, "FETCH")
		enc.SP()
		c.writeCommandSet(enc, cmd.UID, cmd.Set)
		enc.SP()
		c.writeFetchAtts(enc, cmd.Items)
		if cmd.ChangedSince != 0 {
			if !c.requireEnc(enc, imap.CapCondStore, "CHANGEDSINCE") {
				return
			}
			enc.SP().Special('(').Atom("CHANGEDSINCE").SP().ModSeq(cmd.ChangedSince).Special(')')
		}
	case *imap.CommandStore:
		c.writeStoreCommand(enc, cmd)
	case *imap.CommandCopy:
		name := "COPY"
		if cmd.Move {
			if !c.requireEnc(enc, imap.CapMove, "MOVE") {
				return
			}
			name = "MOVE"
		}
		writeCommandName(enc, cmd.UID, name)
		enc.SP()
		c.writeCommandSet(enc, cmd.UID, cmd.Set)
		enc.SP().Mailbox(cmd.Mailbox)
	case *imap.CommandIdle:
		if c.requireEnc(enc, imap.CapIdle, "IDLE") {
			enc.Atom("IDLE")
		}
	case *imap.CommandUnselect:
		if c.requireEnc(enc, imap.CapUnselect, "UNSELECT") {
			enc.Atom("UNSELECT")
		}
	case *imap.CommandNamespace:
		if c.requireEnc(enc, imap.CapNamespace, "NAMESPACE") {
			enc.Atom("NAMESPACE")
		}
	case *imap.CommandEnable:
		if !c.requireEnc(enc, imap.CapEnable, "ENABLE") {
			return
		}
		if len(cmd.Caps) == 0 {
			enc.Errorf("ENABLE 至少需要一个能力")
			return
		}
		enc.Atom("ENABLE")
		writeCaps(enc, cmd.Caps)
	case *imap.CommandID:
		if !c.requireEnc(enc, imap.CapID, "ID") {
			return
		}
		enc.Atom("ID").SP()
		writeIDParams(enc, cmd.Params)
	case *imap.CommandGetQuota:
		if c.requireEnc(enc, imap.CapQuota, "GETQUOTA") {
			enc.Atom("GETQUOTA").SP().AString(cmd.Root)
		}
	case *imap.CommandGetQuotaRoot:
		if c.requireEnc(enc, imap.CapQuota, "GETQUOTAROOT") {
			enc.Atom("GETQUOTAROOT").SP().Mailbox(cmd.Mailbox)
		}
	case *imap.CommandSetQuota:
		if !c.requireEnc(enc, imap.CapQuota, "SETQUOTA") {
			return
		}
		enc.Atom("SETQUOTA").SP().AString(cmd.Root).SP()
		enc.List(len(cmd.Limits), func(i int) {
			limit := cmd.Limits[i]
			enc.Atom(string(limit.Type)).SP().Number64(limit.Limit)
		})
	case *imap.CommandCompress:
		if c.requireEnc(enc, imap.CapCompressDeflate, "COMPRESS") {
			enc.Atom("COMPRESS").SP().Atom(cmd.Algorithm)
		}
	case *imap.CommandGetACL:
		if c.requireEnc(enc, imap.CapACL, "GETACL") {
			enc.Atom("GETACL").SP().Mailbox(cmd.Mailbox)
		}
	case *imap.CommandSetACL:
		if c.requireEnc(enc, imap.CapACL, "SETACL") {
			enc.Atom("SETACL").SP().Mailbox(cmd.Mailbox).SP().AString(string(cmd.Identifier)).SP()
			enc.AString(internal.FormatRights(cmd.Modification, cmd.Rights))
		}
	case *imap.CommandDeleteACL:
		if c.requireEnc(enc, imap.CapACL, "DELETEACL") {
			enc.Atom("DELETEACL").SP().Mailbox(cmd.Mailbox).SP().AString(string(cmd.Identifier))
		}
	case *imap.CommandListRights:
		if c.requireEnc(enc, imap.CapACL, "LISTRIGHTS") {
			enc.Atom("LISTRIGHTS").SP().Mailbox(cmd.Mailbox).SP().AString(string(cmd.Identifier))
		}
	case *imap.CommandMyRights:
		if c.requireEnc(enc, imap.CapACL, "MYRIGHTS") {
			enc.Atom("MYRIGHTS").SP().Mailbox(cmd.Mailbox)
		}
	case *imap.CommandSort:
		c.writeSortCommand(enc, cmd)
	case *imap.CommandThread:
		if !c.requireEnc(enc, threadCap(cmd.Algorithm), "THREAD") {
			return
		}
		if cmd.Charset == "" {
			enc.Errorf("THREAD 需要字符集")
			return
		}
		writeCommandName(enc, cmd.UID, "THREAD")
		enc.SP().Atom(string(cmd.Algorithm)).SP().AString(cmd.Charset)
		c.writeSearchKeys(enc, cmd.Keys)
	default:
		enc.Errorf("未知的命令类型 %T", body)
	}
}

// writeCommandSet 写出命令中的序列集，检查集合类型与 UID 前缀一致。
func (c *Codec) writeCommandSet(enc *imapwire.Encoder, uid bool, set imap.NumSet) {
	switch set := set.(type) {
	case imap.SeqSet:
		if uid {
			enc.Errorf("UID 命令不能使用 SeqSet")
			return
		}
	case imap.UIDSet:
		if !uid && !imap.IsSearchRes(set) {
			enc.Errorf("非 UID 命令不能使用 UIDSet")
			return
		}
	}
	c.writeNumSet(enc, set)
}

func (c *Codec) writeStatusCommand(enc *imapwire.Encoder, cmd *imap.CommandStatus) {
	var names []string
	for _, item := range statusItems {
		ptr, _ := statusOptionField(&cmd.Options, item.name)
		if !*ptr {
			continue
		}
		if item.ext != "" && !c.requireEnc(enc, item.ext, "STATUS "+item.name) {
			return
		}
		names = append(names, item.name)
	}
	if len(names) == 0 {
		enc.Errorf("STATUS 至少需要一个属性")
		return
	}
	enc.Atom("STATUS").SP().Mailbox(cmd.Mailbox).SP()
	enc.List(len(names), func(i int) {
		enc.Atom(names[i])
	})
}

func (c *Codec) writeAppend(enc *imapwire.Encoder, cmd *imap.CommandAppend) {
	if cmd.Message == nil {
		enc.Errorf("APPEND 缺少消息")
		return
	}
	enc.Atom("APPEND").SP().Mailbox(cmd.Mailbox).SP()
	if len(cmd.Options.Flags) > 0 {
		writeFlagList(enc, cmd.Options.Flags, false)
		enc.SP()
	}
	if !cmd.Options.Time.IsZero() {
		enc.DateTime(cmd.Options.Time).SP()
	}
	enc.Literal(cmd.Message.Bytes(), cmd.Message.Binary)
}

func (c *Codec) writeStoreCommand(enc *imapwire.Encoder, cmd *imap.CommandStore) {
	writeCommandName(enc, cmd.UID, "STORE")
	enc.SP()
	c.writeCommandSet(enc, cmd.UID, cmd.Set)
	enc.SP()
	if cmd.Options.UnchangedSince != 0 {
		if !c.requireEnc(enc, imap.CapCondStore, "UNCHANGEDSINCE") {
			return
		}
		enc.Special('(').Atom("UNCHANGEDSINCE").SP().ModSeq(cmd.Options.UnchangedSince).Special(')').SP()
	}

	var op string
	switch cmd.Flags.Op {
	case imap.StoreFlagsSet:
	case imap.StoreFlagsAdd:
		op = "+"
	case imap.StoreFlagsDel:
		op = "-"
	default:
		enc.Errorf("未知的 STORE 操作 %v", cmd.Flags.Op)
		return
	}
	op += "FLAGS"
	if cmd.Flags.Silent {
		op += ".SILENT"
	}
	enc.Raw(op).SP()
	writeFlagList(enc, cmd.Flags.Flags, false)
}

func (c *Codec) writeSortCommand(enc *imapwire.Encoder, cmd *imap.CommandSort) {
	if !c.requireEnc(enc, imap.CapSort, "SORT") {
		return
	}
	if len(cmd.Criteria) == 0 {
		enc.Errorf("SORT 至少需要一个排序标准")
		return
	}
	if cmd.Charset == "" {
		enc.Errorf("SORT 需要字符集")
		return
	}
	writeCommandName(enc, cmd.UID, "SORT")
	enc.SP().List(len(cmd.Criteria), func(i int) {
		criterion := cmd.Criteria[i]
		if !isSortKey(criterion.Key) {
			enc.Errorf("未知的排序关键字 %q", criterion.Key)
			return
		}
		if criterion.Reverse {
			enc.Atom("REVERSE").SP()
		}
		enc.Atom(string(criterion.Key))
	})
	enc.SP().AString(cmd.Charset)
	c.writeSearchKeys(enc, cmd.Keys)
}
