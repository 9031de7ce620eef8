package imapcodec_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapcodec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func TestDecodeCommand_unsupported(t *testing.T) {
	bare := newCodec(t)
	full := newFullCodec(t)

	for _, s := range []string{
		"a IDLE\r\n",
		"a UNSELECT\r\n",
		"a NAMESPACE\r\n",
		"a ENABLE CONDSTORE\r\n",
		"a ID NIL\r\n",
		"a GETQUOTA \"\"\r\n",
		"a GETQUOTAROOT INBOX\r\n",
		"a COMPRESS DEFLATE\r\n",
		"a GETACL INBOX\r\n",
		"a MYRIGHTS INBOX\r\n",
		"a SORT (DATE) UTF-8 ALL\r\n",
		"a THREAD REFERENCES UTF-8 ALL\r\n",
		"a MOVE 1 Trash\r\n",
		"a UID EXPUNGE 1\r\n",
		"a SELECT INBOX (CONDSTORE)\r\n",
		"a FETCH 1 (MODSEQ)\r\n",
		"a FETCH 1 (FLAGS) (CHANGEDSINCE 5)\r\n",
		"a FETCH 1 BINARY[]\r\n",
		"a FETCH 1 BINARY.SIZE[1]\r\n",
		"a STORE 1 (UNCHANGEDSINCE 5) FLAGS ()\r\n",
		"a SEARCH $\r\n",
		"a SEARCH MODSEQ 5\r\n",
		"a SEARCH RETURN (MIN) ALL\r\n",
		"a STATUS INBOX (SIZE)\r\n",
		"a STATUS INBOX (APPENDLIMIT)\r\n",
		"a STATUS INBOX (HIGHESTMODSEQ)\r\n",
		"a AUTHENTICATE PLAIN =\r\n",
		"a LOGIN {5+}\r\nalice bob\r\n",
		"a APPEND INBOX ~{1}\r\nx\r\n",
	} {
		_, _, err := bare.DecodeCommand([]byte(s))
		if kind := imapwire.KindOf(err); kind != imapwire.KindUnsupported {
			t.Errorf("DecodeCommand(%q) without extensions = %v (kind %v), want unsupported", s, err, kind)
		}
		if _, _, err := full.DecodeCommand([]byte(s)); err != nil {
			t.Errorf("DecodeCommand(%q) with all extensions = %v", s, err)
		}
	}
}

func TestDecodeResponse_unsupported(t *testing.T) {
	bare := newCodec(t)
	full := newFullCodec(t)

	for _, s := range []string{
		"* ENABLED CONDSTORE\r\n",
		"* ESEARCH COUNT 1\r\n",
		"* SORT 1\r\n",
		"* THREAD (1)\r\n",
		"* NAMESPACE NIL NIL NIL\r\n",
		"* ID NIL\r\n",
		"* QUOTA \"\" (STORAGE 1 2)\r\n",
		"* QUOTAROOT INBOX\r\n",
		"* MYRIGHTS INBOX lr\r\n",
		"* SEARCH 1 (MODSEQ 5)\r\n",
		"* STATUS INBOX (SIZE 10)\r\n",
		"* 1 FETCH (MODSEQ (5))\r\n",
		"* 1 FETCH (BINARY.SIZE[1] 5)\r\n",
	} {
		_, _, err := bare.DecodeResponse([]byte(s))
		if kind := imapwire.KindOf(err); kind != imapwire.KindUnsupported {
			t.Errorf("DecodeResponse(%q) without extensions = %v (kind %v), want unsupported", s, err, kind)
		}
		if _, _, err := full.DecodeResponse([]byte(s)); err != nil {
			t.Errorf("DecodeResponse(%q) with all extensions = %v", s, err)
		}
	}
}

func TestDecodeResponse_codeWithoutExtension(t *testing.T) {
	c := newCodec(t)

	resp, _, err := c.DecodeResponse([]byte("a OK [APPENDUID 38505 3955] APPEND completed\r\n"))
	if err != nil {
		t.Fatalf("DecodeResponse() = %v", err)
	}
	want := &imap.StatusResponse{
		Tag:  "a",
		Type: imap.StatusResponseTypeOK,
		Code: &imap.CodeOther{Name: imap.ResponseCodeAppendUID, Args: "38505 3955"},
		Text: "APPEND completed",
	}
	if diff := cmp.Diff(want, resp, cmpOpts...); diff != "" {
		t.Errorf("DecodeResponse() (-want +got):\n%v", diff)
	}

	// 未知代码按原样重新编码
	enc, err := c.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse() = %v", err)
	}
	if got, want := string(enc.Bytes()), "a OK [APPENDUID 38505 3955] APPEND completed\r\n"; got != want {
		t.Errorf("EncodeResponse() = %q, want %q", got, want)
	}
}

func TestEncode_unsupported(t *testing.T) {
	c := newCodec(t)

	commands := []imap.CommandBody{
		&imap.CommandIdle{},
		&imap.CommandUnselect{},
		&imap.CommandNamespace{},
		&imap.CommandEnable{Caps: []imap.Cap{imap.CapCondStore}},
		&imap.CommandID{},
		&imap.CommandGetQuota{Root: ""},
		&imap.CommandCompress{Algorithm: "DEFLATE"},
		&imap.CommandGetACL{Mailbox: "INBOX"},
		&imap.CommandCopy{Move: true, Set: imap.SeqSetNum(1), Mailbox: "Trash"},
		&imap.CommandExpunge{UIDs: imap.UIDSetNum(1)},
		&imap.CommandSelect{Mailbox: "INBOX", Options: imap.SelectOptions{CondStore: true}},
		&imap.CommandAuthenticate{Mechanism: "PLAIN", InitialResponse: []byte("x")},
		&imap.CommandFetch{Set: imap.SeqSetNum(1), Items: []imap.FetchItem{imap.FetchItemModSeq}},
		&imap.CommandFetch{Set: imap.SeqSetNum(1), Items: []imap.FetchItem{&imap.FetchItemBinarySection{}}},
		&imap.CommandFetch{Set: imap.SearchRes(), Items: []imap.FetchItem{imap.FetchItemFlags}},
		&imap.CommandStatus{Mailbox: "INBOX", Options: imap.StatusOptions{Size: true}},
		&imap.CommandSearch{Return: &imap.SearchOptions{ReturnMin: true}, Keys: []imap.SearchKey{imap.SearchKeyAll}},
		&imap.CommandAppend{Mailbox: "INBOX", Message: &imap.Literal{Binary: true}},
	}
	for _, body := range commands {
		_, err := c.EncodeCommand(&imap.Command{Tag: "a", Body: body})
		if kind := imapwire.KindOf(err); kind != imapwire.KindUnsupported {
			t.Errorf("EncodeCommand(%T) without extensions = %v (kind %v), want unsupported", body, err, kind)
		}
	}

	responses := []imap.Response{
		&imap.EnabledData{Caps: []imap.Cap{imap.CapCondStore}},
		&imap.SortData{Nums: []uint32{1}},
		&imap.IDResponse{},
		&imap.MyRightsData{Mailbox: "INBOX", Rights: imap.RightSet("lr")},
		&imap.SearchData{Nums: []uint32{1}, ModSeq: 5},
		&imap.StatusResponse{Type: imap.StatusResponseTypeOK, Code: &imap.CodeHighestModSeq{ModSeq: 5}, Text: "x"},
		&imap.StatusResponse{Tag: "a", Type: imap.StatusResponseTypeOK, Code: &imap.CodeAppendUID{UIDValidity: 1, UID: 2}, Text: "x"},
	}
	for _, resp := range responses {
		_, err := c.EncodeResponse(resp)
		if kind := imapwire.KindOf(err); kind != imapwire.KindUnsupported {
			t.Errorf("EncodeResponse(%T) without extensions = %v (kind %v), want unsupported", resp, err, kind)
		}
	}
}

func TestIdleDone(t *testing.T) {
	bare := newCodec(t)
	if _, err := bare.DecodeIdleDone([]byte("DONE\r\n")); imapwire.KindOf(err) != imapwire.KindUnsupported {
		t.Errorf("DecodeIdleDone() without IDLE = %v, want unsupported", err)
	}
	if _, err := bare.EncodeIdleDone(); imapwire.KindOf(err) != imapwire.KindUnsupported {
		t.Errorf("EncodeIdleDone() without IDLE = %v, want unsupported", err)
	}

	c := newCodec(t, imap.CapIdle)
	enc, err := c.EncodeIdleDone()
	if err != nil {
		t.Fatalf("EncodeIdleDone() = %v", err)
	}
	if got := string(enc.Bytes()); got != "DONE\r\n" {
		t.Errorf("EncodeIdleDone() = %q, want %q", got, "DONE\r\n")
	}

	tests := []struct {
		in      string
		n       int
		wantErr bool
	}{
		{"DONE\r\n", 6, false},
		{"done\r\n", 6, false},
		{"DONE\r\na NOOP\r\n", 6, false},
		{"DON", 0, true},
		{"DONE\r", 0, true},
		{"NOOP\r\n", 0, true},
		{"DONE \r\n", 0, true},
	}
	for _, tc := range tests {
		n, err := c.DecodeIdleDone([]byte(tc.in))
		if (err != nil) != tc.wantErr {
			t.Errorf("DecodeIdleDone(%q) = %v, want error: %v", tc.in, err, tc.wantErr)
		}
		if n != tc.n {
			t.Errorf("DecodeIdleDone(%q) consumed %v bytes, want %v", tc.in, n, tc.n)
		}
	}
	if _, err := c.DecodeIdleDone([]byte("DON")); !imapwire.IsIncomplete(err) {
		t.Errorf("DecodeIdleDone(%q) = %v, want incomplete", "DON", err)
	}
}

func TestNonSyncLiterals(t *testing.T) {
	cmd := &imap.Command{Tag: "a", Body: &imap.CommandLogin{Username: "a\r\nb", Password: "pass"}}

	tests := []struct {
		name string
		exts []imap.Cap
		want string
		sync bool
	}{
		{"无扩展", nil, "a LOGIN {4}\r\na\r\nb pass\r\n", true},
		{"LITERAL+", []imap.Cap{imap.CapLiteralPlus}, "a LOGIN {4+}\r\na\r\nb pass\r\n", false},
		{"LITERAL-", []imap.Cap{imap.CapLiteralMinus}, "a LOGIN {4+}\r\na\r\nb pass\r\n", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := newCodec(t, tc.exts...)
			enc, err := c.EncodeCommand(cmd)
			if err != nil {
				t.Fatalf("EncodeCommand() = %v", err)
			}
			if got := string(enc.Bytes()); got != tc.want {
				t.Errorf("EncodeCommand() = %q, want %q", got, tc.want)
			}
			if enc.HasContinuation() != tc.sync {
				t.Errorf("HasContinuation() = %v, want %v", enc.HasContinuation(), tc.sync)
			}
		})
	}
}

func TestNonSyncLiterals_literalMinusLimit(t *testing.T) {
	c := newCodec(t, imap.CapLiteralMinus)

	small := "a APPEND INBOX {4096+}\r\n" + strings.Repeat("x", 4096) + "\r\n"
	if _, _, err := c.DecodeCommand([]byte(small)); err != nil {
		t.Errorf("DecodeCommand() with 4096-byte non-sync literal = %v", err)
	}

	large := "a APPEND INBOX {4097+}\r\n" + strings.Repeat("x", 4097) + "\r\n"
	_, _, err := c.DecodeCommand([]byte(large))
	var wireErr *imapwire.Error
	if !errors.As(err, &wireErr) || wireErr.Kind != imapwire.KindUnsupported || wireErr.Size != 4097 {
		t.Errorf("DecodeCommand() with 4097-byte non-sync literal = %v, want unsupported", err)
	}

	msg := bytes.Repeat([]byte("y"), 4097)
	enc, err := c.EncodeCommand(&imap.Command{Tag: "a", Body: &imap.CommandAppend{
		Mailbox: "INBOX",
		Message: imap.NewLiteral(msg),
	}})
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	if !enc.HasContinuation() {
		t.Errorf("EncodeCommand() of a 4097-byte literal with LITERAL- has no continuation")
	}
	if !bytes.HasPrefix(enc.Bytes(), []byte("a APPEND INBOX {4097}\r\n")) {
		t.Errorf("EncodeCommand() = %q...", enc.Bytes()[:24])
	}
}

func TestNonSyncLiterals_response(t *testing.T) {
	c := newFullCodec(t)

	// 服务器不能发送非同步字面量
	_, _, err := c.DecodeResponse([]byte("* 1 FETCH (BODY[] {5+}\r\nhello)\r\n"))
	if kind := imapwire.KindOf(err); kind != imapwire.KindInvalid {
		t.Errorf("DecodeResponse() with non-sync literal = %v (kind %v), want invalid", err, kind)
	}
}

func TestLiteralPlusImpliesLiteralMinus(t *testing.T) {
	c := newCodec(t, imap.CapLiteralPlus)
	if !c.Extensions().Has(imap.CapLiteralMinus) {
		t.Errorf("Extensions().Has(LITERAL-) = false with LITERAL+ enabled")
	}
	if _, _, err := c.DecodeCommand([]byte("a LOGIN {5+}\r\nalice {3+}\r\nbob\r\n")); err != nil {
		t.Errorf("DecodeCommand() = %v", err)
	}
}

func TestUTF8Accept(t *testing.T) {
	cmd := &imap.Command{Tag: "a", Body: &imap.CommandCreate{Mailbox: "Überweisung"}}

	enc, err := newCodec(t).EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	if !enc.HasContinuation() {
		t.Errorf("EncodeCommand() without UTF8=ACCEPT = %q, want a literal", enc.Bytes())
	}

	enc, err = newCodec(t, imap.CapUTF8Accept).EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	if got, want := string(enc.Bytes()), "a CREATE \"Überweisung\"\r\n"; got != want {
		t.Errorf("EncodeCommand() with UTF8=ACCEPT = %q, want %q", got, want)
	}
}

func TestExtensions(t *testing.T) {
	all := imapcodec.AllExtensions()
	for _, ext := range imapcodec.SupportedExtensions() {
		if !all.Has(ext) {
			t.Errorf("AllExtensions() is missing %v", ext)
		}
	}

	c := newCodec(t, imap.CapIdle)
	exts := c.Extensions()
	delete(exts, imap.CapIdle)
	if !c.Extensions().Has(imap.CapIdle) {
		t.Errorf("modifying Extensions() changed the codec")
	}
}

var baseCommands = []string{
	"a CAPABILITY\r\n",
	"a LOGIN {5}\r\nalice {4}\r\npass\r\n",
	"a AUTHENTICATE PLAIN\r\n",
	"a SELECT inbox\r\n",
	"a LIST \"\" %/x\r\n",
	"a STATUS blurdybloop (UIDNEXT MESSAGES)\r\n",
	"a APPEND INBOX (\\Seen $Junk) \"05-Jan-2024 10:00:00 +0100\" {3}\r\nabc\r\n",
	"a SEARCH OR SEEN NOT DELETED (SINCE 1-Feb-1994 LARGER 1000) 1:5 UID 3:*\r\n",
	"a FETCH 2 (BODY[HEADER.FIELDS (From To)] BODY[TEXT] BODY[] BODYSTRUCTURE BODY)\r\n",
	"a UID FETCH 1,2:* (BODY.PEEK[1.2.3.4.MIME]<42.1337>)\r\n",
	"a STORE 1 -FLAGS.SILENT \\Seen \\Flagged\r\n",
	"a UID COPY 4:5 Trash\r\n",
}

var baseResponses = []string{
	"+ Ready for literal\r\n",
	"a OK [READ-WRITE] SELECT completed\r\n",
	"* OK [UIDVALIDITY 3857529045] UIDs valid\r\n",
	"* OK [PERMANENTFLAGS (\\Deleted \\Seen \\*)] Limited\r\n",
	"* OK [X-CUSTOM some args] hi\r\n",
	"* CAPABILITY IMAP4rev1 STARTTLS AUTH=PLAIN\r\n",
	"* LIST (\\HasNoChildren) \"/\" INBOX\r\n",
	"* STATUS blurdybloop (MESSAGES 231 UIDNEXT 44292)\r\n",
	"* SEARCH 2 3 6\r\n",
	"* 172 EXISTS\r\n",
	"* 12 FETCH (ENVELOPE " + envelopeRFC3501 + ")\r\n",
	"* 1 FETCH (BODY[] {5}\r\nhello)\r\n",
	"* 5 FETCH (BODY (\"TEXT\" \"PLAIN\" (\"CHARSET\" \"US-ASCII\") NIL NIL \"7BIT\" 3028 92))\r\n",
}

// 不使用扩展语法的输入在任何扩展组合下都得到相同的结果
func TestExtensions_backwardCompatible(t *testing.T) {
	// 空集、每个单独的扩展、每对扩展以及全部扩展
	all := imapcodec.SupportedExtensions()
	subsets := [][]imap.Cap{nil}
	for i, ext := range all {
		subsets = append(subsets, []imap.Cap{ext})
		for _, other := range all[i+1:] {
			subsets = append(subsets, []imap.Cap{ext, other})
		}
	}
	subsets = append(subsets, all)

	bare := newCodec(t)
	for _, caps := range subsets {
		c := newCodec(t, caps...)
		for _, s := range baseCommands {
			want, _, err := bare.DecodeCommand([]byte(s))
			if err != nil {
				t.Fatalf("DecodeCommand(%q) = %v", s, err)
			}
			got, n, err := c.DecodeCommand([]byte(s))
			if err != nil || n != len(s) {
				t.Errorf("DecodeCommand(%q) with %v = %v, %v", s, caps, n, err)
				continue
			}
			if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
				t.Errorf("DecodeCommand(%q) with %v (-bare +got):\n%v", s, caps, diff)
			}
		}
		for _, s := range baseResponses {
			want, _, err := bare.DecodeResponse([]byte(s))
			if err != nil {
				t.Fatalf("DecodeResponse(%q) = %v", s, err)
			}
			got, n, err := c.DecodeResponse([]byte(s))
			if err != nil || n != len(s) {
				t.Errorf("DecodeResponse(%q) with %v = %v, %v", s, caps, n, err)
				continue
			}
			if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
				t.Errorf("DecodeResponse(%q) with %v (-bare +got):\n%v", s, caps, diff)
			}
		}
	}
}
