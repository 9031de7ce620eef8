package imapcodec_test

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapcodec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

var cmpOpts = []cmp.Option{cmpopts.EquateEmpty()}

func newCodec(t testing.TB, caps ...imap.Cap) *imapcodec.Codec {
	t.Helper()
	c, err := imapcodec.New(&imapcodec.Options{Extensions: imap.NewCapSet(caps...)})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return c
}

func newFullCodec(t testing.TB) *imapcodec.Codec {
	t.Helper()
	c, err := imapcodec.New(&imapcodec.Options{Extensions: imapcodec.AllExtensions()})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	if _, err := imapcodec.New(nil); err != nil {
		t.Errorf("New(nil) = %v", err)
	}

	c := newFullCodec(t)
	if got := c.MaxLiteralSize(); got != imapcodec.DefaultMaxLiteralSize {
		t.Errorf("MaxLiteralSize() = %v, want %v", got, imapcodec.DefaultMaxLiteralSize)
	}
	for _, ext := range imapcodec.SupportedExtensions() {
		if !c.Extensions().Has(ext) {
			t.Errorf("Extensions() is missing %v", ext)
		}
	}

	// 返回的集合是副本
	c.Extensions()[imap.Cap("X-FOO")] = struct{}{}
	if c.Extensions().Has("X-FOO") {
		t.Errorf("Extensions() returned the internal set")
	}
}

func TestNew_invalid(t *testing.T) {
	tests := []struct {
		name    string
		options imapcodec.Options
	}{
		{"未知扩展", imapcodec.Options{Extensions: imap.NewCapSet("X-UNKNOWN")}},
		{"已知但不支持的扩展", imapcodec.Options{Extensions: imap.NewCapSet(imap.CapQResync)}},
		{"负的字面量限制", imapcodec.Options{MaxLiteralSize: -1}},
		{"负的引号字符串限制", imapcodec.Options{MaxQuotedSize: -1}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := imapcodec.New(&tc.options); err == nil {
				t.Errorf("New() succeeded, want error")
			}
		})
	}
}

func TestDecodeCommand_uidFetch(t *testing.T) {
	c := newFullCodec(t)
	const s = "ABCD UID FETCH 1,2:* (BODY.PEEK[1.2.3.4.MIME]<42.1337>)\r\n"

	cmd, n, err := c.DecodeCommand([]byte(s))
	if err != nil {
		t.Fatalf("DecodeCommand() = %v", err)
	}
	if n != len(s) {
		t.Errorf("DecodeCommand() consumed %v bytes, want %v", n, len(s))
	}
	want := &imap.Command{
		Tag: "ABCD",
		Body: &imap.CommandFetch{
			UID: true,
			Set: imap.UIDSet{{Start: 1, Stop: 1}, {Start: 2, Stop: 0}},
			Items: []imap.FetchItem{&imap.FetchItemBodySection{
				Specifier: imap.PartSpecifierMIME,
				Part:      []int{1, 2, 3, 4},
				Partial:   &imap.SectionPartial{Offset: 42, Size: 1337},
				Peek:      true,
			}},
		},
	}
	if diff := cmp.Diff(want, cmd, cmpOpts...); diff != "" {
		t.Errorf("DecodeCommand() mismatch (-want +got):\n%v", diff)
	}

	encoded, err := c.EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand() = %v", err)
	}
	const wantEnc = "ABCD UID FETCH 1,2:* BODY.PEEK[1.2.3.4.MIME]<42.1337>\r\n"
	if got := string(encoded.Bytes()); got != wantEnc {
		t.Errorf("EncodeCommand() = %q, want %q", got, wantEnc)
	}
	again, _, err := c.DecodeCommand(encoded.Bytes())
	if err != nil {
		t.Fatalf("DecodeCommand(EncodeCommand()) = %v", err)
	}
	if diff := cmp.Diff(cmd, again, cmpOpts...); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%v", diff)
	}
}

func TestDecodeResponse_fetchFlags(t *testing.T) {
	c := newCodec(t)
	const s = "* 1 FETCH (FLAGS (\\Seen))\r\n"

	resp, n, err := c.DecodeResponse([]byte(s))
	if err != nil {
		t.Fatalf("DecodeResponse() = %v", err)
	}
	if n != len(s) {
		t.Errorf("DecodeResponse() consumed %v bytes, want %v", n, len(s))
	}
	want := &imap.FetchData{
		SeqNum: 1,
		Items:  []imap.FetchItemData{&imap.FetchItemDataFlags{Flags: []imap.Flag{imap.FlagSeen}}},
	}
	if diff := cmp.Diff(want, resp, cmpOpts...); diff != "" {
		t.Errorf("DecodeResponse() mismatch (-want +got):\n%v", diff)
	}

	encoded, err := c.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse() = %v", err)
	}
	if got := string(encoded.Bytes()); got != s {
		t.Errorf("EncodeResponse() = %q, want %q", got, s)
	}
}

func TestDecodeCommand_loginLiterals(t *testing.T) {
	c := newCodec(t)

	buf := []byte("A1 LOGIN {5}\r\n")
	_, _, err := c.DecodeCommand(buf)
	var incomplete *imapwire.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("DecodeCommand() = %v, want IncompleteError", err)
	}
	if incomplete.Literal == nil || incomplete.Literal.Size != 5 || incomplete.Literal.NonSync {
		t.Errorf("IncompleteError.Literal = %v, want {5}", incomplete.Literal)
	}

	buf = append(buf, "alice {3}\r\n"...)
	_, _, err = c.DecodeCommand(buf)
	if !errors.As(err, &incomplete) {
		t.Fatalf("DecodeCommand() = %v, want IncompleteError", err)
	}
	if incomplete.Literal == nil || incomplete.Literal.Size != 3 {
		t.Errorf("IncompleteError.Literal = %v, want {3}", incomplete.Literal)
	}

	buf = append(buf, "bob\r\n"...)
	cmd, n, err := c.DecodeCommand(buf)
	if err != nil {
		t.Fatalf("DecodeCommand() = %v", err)
	}
	if n != len(buf) {
		t.Errorf("DecodeCommand() consumed %v bytes, want %v", n, len(buf))
	}
	want := &imap.Command{Tag: "A1", Body: &imap.CommandLogin{Username: "alice", Password: "bob"}}
	if diff := cmp.Diff(want, cmd, cmpOpts...); diff != "" {
		t.Errorf("DecodeCommand() mismatch (-want +got):\n%v", diff)
	}
}

func TestDecodeCommand_trailingData(t *testing.T) {
	c := newCodec(t)
	const first, second = "a NOOP\r\n", "b LOGOUT\r\n"

	buf := []byte(first + second)
	cmd, n, err := c.DecodeCommand(buf)
	if err != nil {
		t.Fatalf("DecodeCommand() = %v", err)
	}
	if n != len(first) || cmd.Tag != "a" {
		t.Fatalf("DecodeCommand() = %v, %v, want tag a and %v bytes", cmd.Tag, n, len(first))
	}
	cmd, n, err = c.DecodeCommand(buf[n:])
	if err != nil {
		t.Fatalf("DecodeCommand() = %v", err)
	}
	if _, ok := cmd.Body.(*imap.CommandLogout); !ok || n != len(second) {
		t.Errorf("DecodeCommand() = %T, %v, want *CommandLogout and %v bytes", cmd.Body, n, len(second))
	}
}

func TestDecodeCommand_borrowsInput(t *testing.T) {
	c := newCodec(t)
	buf := []byte("a APPEND INBOX {5}\r\nhello\r\n")

	cmd, _, err := c.DecodeCommand(buf)
	if err != nil {
		t.Fatalf("DecodeCommand() = %v", err)
	}
	msg := cmd.Body.(*imap.CommandAppend).Message
	if !msg.Borrowed() {
		t.Errorf("Literal.Borrowed() = false, want true")
	}
	owned := msg.Own()

	copy(buf, bytes.Repeat([]byte{'x'}, len(buf)))
	if got := string(owned.Bytes()); got != "hello" {
		t.Errorf("owned literal = %q, want %q", got, "hello")
	}
	if got := string(msg.Bytes()); got == "hello" {
		t.Errorf("borrowed literal did not alias the input buffer")
	}
}

func TestDecode_errorOffset(t *testing.T) {
	c := newCodec(t)

	_, _, err := c.DecodeCommand([]byte("a FETCH 1 (FLAGS BOGUS)\r\n"))
	var e *imapwire.Error
	if !errors.As(err, &e) {
		t.Fatalf("DecodeCommand() = %v, want *imapwire.Error", err)
	}
	if e.Kind != imapwire.KindInvalid {
		t.Errorf("Kind = %v, want %v", e.Kind, imapwire.KindInvalid)
	}
	if e.Offset < len("a FETCH 1 (FLAGS ") || e.Offset > len("a FETCH 1 (FLAGS BOGUS") {
		t.Errorf("Offset = %v, want the offset of BOGUS", e.Offset)
	}
	if len(e.Context) == 0 || e.Context[0] != "command" {
		t.Errorf("Context = %v, want it to start with command", e.Context)
	}
}

func TestDecode_invalid(t *testing.T) {
	c := newFullCodec(t)

	commands := []string{
		"\r\n",
		"a\r\n",
		"a BOGUS\r\n",
		"+a NOOP\r\n",
		"a UID NOOP\r\n",
		"a NOOP extra\r\n",
		"a NOOP\n",
		"a LOGIN alice\r\n",
		"a SELECT\r\n",
		"a FETCH 0 FLAGS\r\n",
		"a FETCH 1 ()\r\n",
		"a FETCH 1 (ALL)\r\n",
		"a FETCH 1 BODY[MIME]\r\n",
		"a STATUS INBOX ()\r\n",
		"a STORE 1 FLAGZ (\\Seen)\r\n",
		"a SEARCH\r\n",
		"a SEARCH ()\r\n",
		"a SEARCH BOGUS\r\n",
		"a SORT () UTF-8 ALL\r\n",
		"a ENABLE\r\n",
		"a APPEND INBOX {3}\r\na\x00b\r\n",
		"a LOGIN \"a\rb\" c\r\n",
		"a LOGIN \"a\\b\" c\r\n",
		"0 SEARCH MODSEQ \"\" All 0\r\n",
		"a SEARCH MODSEQ \"/flags/\" all 5\r\n",
		"a SEARCH MODSEQ \"/private/comment\" shared 5\r\n",
	}
	for _, s := range commands {
		_, _, err := c.DecodeCommand([]byte(s))
		if err == nil || imapwire.IsIncomplete(err) {
			t.Errorf("DecodeCommand(%q) = %v, want a failure", s, err)
		}
	}

	responses := []string{
		"a PREAUTH hi\r\n",
		"* 0 EXPUNGE\r\n",
		"* 0 FETCH (FLAGS ())\r\n",
		"* 1 FROB\r\n",
		"* FROB\r\n",
		"* THREAD ()\r\n",
		"* LIST () \"ab\" INBOX\r\n",
		"* NAMESPACE () NIL NIL\r\n",
		"+\n",
	}
	for _, s := range responses {
		_, _, err := c.DecodeResponse([]byte(s))
		if err == nil || imapwire.IsIncomplete(err) {
			t.Errorf("DecodeResponse(%q) = %v, want a failure", s, err)
		}
	}

	for _, s := range []string{"* NO nope\r\n", "a OK hi\r\n", "+ ready\r\n"} {
		if _, _, err := c.DecodeGreeting([]byte(s)); err == nil || imapwire.IsIncomplete(err) {
			t.Errorf("DecodeGreeting(%q) = %v, want a failure", s, err)
		}
	}
}

func TestDecode_literalLimit(t *testing.T) {
	c, err := imapcodec.New(&imapcodec.Options{MaxLiteralSize: 16})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	// 限制在读取数据之前生效
	_, _, err = c.DecodeCommand([]byte("a LOGIN {17}\r\n"))
	var e *imapwire.Error
	if !errors.As(err, &e) {
		t.Fatalf("DecodeCommand() = %v, want *imapwire.Error", err)
	}
	if e.Kind != imapwire.KindResourceLimit || e.Size != 17 {
		t.Errorf("DecodeCommand() = %v, want resource limit with size 17", err)
	}

	if _, _, err := c.DecodeCommand([]byte("a LOGIN {16}\r\n0123456789abcdef x\r\n")); err != nil {
		t.Errorf("DecodeCommand() at the limit = %v", err)
	}

	_, _, err = c.DecodeResponse([]byte("* 1 FETCH (BODY[] {99999999999999999999}\r\n"))
	if imapwire.KindOf(err) != imapwire.KindResourceLimit {
		t.Errorf("DecodeResponse() = %v, want resource limit", err)
	}
}

func TestDecode_nestingLimit(t *testing.T) {
	c := newCodec(t)
	s := "a SEARCH " + strings.Repeat("(", 1000) + "ALL" + strings.Repeat(")", 1000) + "\r\n"
	if _, _, err := c.DecodeCommand([]byte(s)); imapwire.KindOf(err) != imapwire.KindResourceLimit {
		t.Errorf("DecodeCommand() = %v, want resource limit", err)
	}
}

func TestEncode_nestingLimit(t *testing.T) {
	c := newFullCodec(t)

	nestedNot := func(n int) *imap.Command {
		var key imap.SearchKey = imap.SearchKeyAll
		for i := 0; i < n; i++ {
			key = &imap.SearchKeyNot{Key: key}
		}
		return &imap.Command{Tag: "a", Body: &imap.CommandSearch{Keys: []imap.SearchKey{key}}}
	}
	nestedBody := func(n int) imap.Response {
		var bs imap.BodyStructure = &imap.BodyStructureSinglePart{
			Type:     "text",
			Subtype:  "plain",
			Encoding: "7bit",
			Size:     1,
			Text:     &imap.BodyStructureText{NumLines: 1},
		}
		for i := 0; i < n; i++ {
			bs = &imap.BodyStructureMultiPart{Children: []imap.BodyStructure{bs}, Subtype: "mixed"}
		}
		return &imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{&imap.FetchItemDataBodyStructure{BodyStructure: bs}}}
	}
	nestedThread := func(n int) imap.Response {
		thread := imap.ThreadData{Chain: []uint32{1}}
		for i := 0; i < n; i++ {
			thread = imap.ThreadData{SubThreads: []imap.ThreadData{thread}}
		}
		return &imap.ThreadResponse{Threads: []imap.ThreadData{thread}}
	}

	// 能编码的最深嵌套也必须能解码
	cmd := nestedNot(imapwire.DefaultMaxDepth - 2)
	encoded, err := c.EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand() at the limit = %v", err)
	}
	got, _, err := c.DecodeCommand(encoded.Bytes())
	if err != nil {
		t.Fatalf("DecodeCommand() at the limit = %v", err)
	}
	if diff := cmp.Diff(cmd, got, cmpOpts...); diff != "" {
		t.Errorf("nested NOT (-want +got):\n%v", diff)
	}
	if _, err := c.EncodeCommand(nestedNot(imapwire.DefaultMaxDepth - 1)); imapwire.KindOf(err) != imapwire.KindInvalid {
		t.Errorf("EncodeCommand() beyond the limit = %v, want invalid", err)
	}

	for _, tc := range []struct {
		name  string
		build func(n int) imap.Response
		limit int
	}{
		{"体结构", nestedBody, imapwire.DefaultMaxDepth - 3},
		{"线程", nestedThread, imapwire.DefaultMaxDepth - 2},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resp := tc.build(tc.limit)
			encoded, err := c.EncodeResponse(resp)
			if err != nil {
				t.Fatalf("EncodeResponse() at the limit = %v", err)
			}
			got, _, err := c.DecodeResponse(encoded.Bytes())
			if err != nil {
				t.Fatalf("DecodeResponse() at the limit = %v", err)
			}
			if diff := cmp.Diff(resp, got, cmpOpts...); diff != "" {
				t.Errorf("nested response (-want +got):\n%v", diff)
			}
			if _, err := c.EncodeResponse(tc.build(tc.limit + 1)); imapwire.KindOf(err) != imapwire.KindInvalid {
				t.Errorf("EncodeResponse() beyond the limit = %v, want invalid", err)
			}
		})
	}
}

func TestEncode_exact(t *testing.T) {
	c := newCodec(t)

	commands := []struct {
		cmd  *imap.Command
		want string
	}{
		{&imap.Command{Tag: "a", Body: &imap.CommandNoop{}}, "a NOOP\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandLogin{Username: "alice", Password: "pass word"}}, "a LOGIN alice \"pass word\"\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandLogin{Username: "\"q\"", Password: ""}}, "a LOGIN \"\\\"q\\\"\" \"\"\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandSelect{Mailbox: "inbox"}}, "a SELECT INBOX\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandSelect{Mailbox: "Archive", Options: imap.SelectOptions{ReadOnly: true}}}, "a EXAMINE Archive\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandList{Reference: "", Pattern: "*"}}, "a LIST \"\" *\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandStatus{Mailbox: "INBOX", Options: imap.StatusOptions{NumUnseen: true, NumMessages: true}}}, "a STATUS INBOX (MESSAGES UNSEEN)\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandSearch{Keys: []imap.SearchKey{&imap.SearchKeyNot{Key: imap.SearchKeySeen}, &imap.SearchKeySize{Larger: true, Size: 10}}}}, "a SEARCH NOT SEEN LARGER 10\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandFetch{Set: imap.SeqSetNum(1, 3), Items: []imap.FetchItem{imap.FetchItemFlags, imap.FetchItemUID}}}, "a FETCH 1,3 (FLAGS UID)\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandFetch{Set: imap.SeqSet{{Start: 1, Stop: 0}}, Items: []imap.FetchItem{imap.FetchItemAll}}}, "a FETCH 1:* ALL\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandStore{Set: imap.SeqSetNum(2), Flags: imap.StoreFlags{Op: imap.StoreFlagsAdd, Silent: true, Flags: []imap.Flag{imap.FlagDeleted}}}}, "a STORE 2 +FLAGS.SILENT (\\Deleted)\r\n"},
		{&imap.Command{Tag: "a", Body: &imap.CommandCopy{UID: true, Set: imap.UIDSet{{Start: 4, Stop: 5}}, Mailbox: "Trash"}}, "a UID COPY 4:5 Trash\r\n"},
	}
	for _, tc := range commands {
		encoded, err := c.EncodeCommand(tc.cmd)
		if err != nil {
			t.Errorf("EncodeCommand(%v) = %v", tc.want, err)
			continue
		}
		if got := string(encoded.Bytes()); got != tc.want {
			t.Errorf("EncodeCommand() = %q, want %q", got, tc.want)
		}
	}

	responses := []struct {
		resp imap.Response
		want string
	}{
		{&imap.ContinuationRequest{}, "+ \r\n"},
		{&imap.ContinuationRequest{Text: "Ready"}, "+ Ready\r\n"},
		{&imap.StatusResponse{Tag: "a", Type: imap.StatusResponseTypeOK}, "a OK\r\n"},
		{&imap.StatusResponse{Tag: "a", Type: imap.StatusResponseTypeOK, Code: imap.ResponseCode("READ-WRITE"), Text: "done"}, "a OK [READ-WRITE] done\r\n"},
		{&imap.StatusResponse{Type: imap.StatusResponseTypeOK, Code: &imap.CodeUIDNext{UID: 4392}}, "* OK [UIDNEXT 4392]\r\n"},
		{&imap.StatusResponse{Type: imap.StatusResponseTypeBye, Text: "bye"}, "* BYE bye\r\n"},
		{&imap.ExistsData{NumMessages: 0}, "* 0 EXISTS\r\n"},
		{&imap.ExpungeData{SeqNum: 3}, "* 3 EXPUNGE\r\n"},
		{&imap.CapabilityData{Caps: []imap.Cap{imap.CapIMAP4rev1, imap.CapIdle}}, "* CAPABILITY IMAP4rev1 IDLE\r\n"},
		{&imap.ListData{Attrs: []imap.MailboxAttr{imap.MailboxAttrHasNoChildren}, Delim: '/', Mailbox: "INBOX"}, "* LIST (\\HasNoChildren) \"/\" INBOX\r\n"},
		{&imap.SearchData{Nums: []uint32{2, 84}}, "* SEARCH 2 84\r\n"},
		{&imap.SearchData{}, "* SEARCH\r\n"},
		{&imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{&imap.FetchItemDataBodySection{Section: &imap.FetchItemBodySection{}, Literal: imap.NewLiteral([]byte("a\r\nb"))}}}, "* 1 FETCH (BODY[] {4}\r\na\r\nb)\r\n"},
		{&imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{&imap.FetchItemDataRFC822{Item: imap.FetchItemRFC822Text}}}, "* 1 FETCH (RFC822.TEXT NIL)\r\n"},
	}
	for _, tc := range responses {
		encoded, err := c.EncodeResponse(tc.resp)
		if err != nil {
			t.Errorf("EncodeResponse(%q) = %v", tc.want, err)
			continue
		}
		if got := string(encoded.Bytes()); got != tc.want {
			t.Errorf("EncodeResponse() = %q, want %q", got, tc.want)
		}
		if encoded.HasContinuation() {
			t.Errorf("EncodeResponse(%q) has a continuation point", tc.want)
		}
	}

	greeting := &imap.Greeting{
		Type: imap.StatusResponseTypeOK,
		Code: &imap.CodeCapability{Caps: []imap.Cap{imap.CapIMAP4rev1}},
		Text: "ready",
	}
	encoded, err := c.EncodeGreeting(greeting)
	if err != nil {
		t.Fatalf("EncodeGreeting() = %v", err)
	}
	if got, want := string(encoded.Bytes()), "* OK [CAPABILITY IMAP4rev1] ready\r\n"; got != want {
		t.Errorf("EncodeGreeting() = %q, want %q", got, want)
	}
}

func TestEncode_invalid(t *testing.T) {
	c := newFullCodec(t)

	commands := []*imap.Command{
		nil,
		{Tag: "a"},
		{Tag: "", Body: &imap.CommandNoop{}},
		{Tag: "a+b", Body: &imap.CommandNoop{}},
		{Tag: "a", Body: &imap.CommandFetch{Set: imap.SeqSetNum(1)}},
		{Tag: "a", Body: &imap.CommandFetch{UID: true, Set: imap.SeqSetNum(1), Items: []imap.FetchItem{imap.FetchItemFlags}}},
		{Tag: "a", Body: &imap.CommandFetch{Set: imap.UIDSetNum(1), Items: []imap.FetchItem{imap.FetchItemFlags}}},
		{Tag: "a", Body: &imap.CommandFetch{Set: imap.SeqSetNum(1), Items: []imap.FetchItem{imap.FetchItemAll, imap.FetchItemUID}}},
		{Tag: "a", Body: &imap.CommandSearch{}},
		{Tag: "a", Body: &imap.CommandStatus{Mailbox: "INBOX"}},
		{Tag: "a", Body: &imap.CommandAppend{Mailbox: "INBOX"}},
		{Tag: "a", Body: &imap.CommandAppend{Mailbox: "INBOX", Message: imap.NewLiteral([]byte("a\x00b"))}},
		{Tag: "a", Body: &imap.CommandStore{Set: imap.SeqSetNum(1), Flags: imap.StoreFlags{Flags: []imap.Flag{imap.FlagWildcard}}}},
		{Tag: "a", Body: &imap.CommandStore{Set: imap.SeqSetNum(1), Flags: imap.StoreFlags{Flags: []imap.Flag{"two words"}}}},
		{Tag: "a", Body: &imap.CommandEnable{}},
		{Tag: "a", Body: &imap.CommandSort{Charset: "UTF-8", Keys: []imap.SearchKey{imap.SearchKeyAll}}},
		{Tag: "a", Body: &imap.CommandThread{Algorithm: imap.ThreadReferences, Keys: []imap.SearchKey{imap.SearchKeyAll}}},
		{Tag: "a", Body: &imap.CommandSearch{Keys: []imap.SearchKey{&imap.SearchKeyModSeq{MetadataType: imap.SearchCriteriaMetadataAll, ModSeq: 5}}}},
		{Tag: "a", Body: &imap.CommandSearch{Keys: []imap.SearchKey{&imap.SearchKeyModSeq{MetadataName: "/shared/x", MetadataType: imap.SearchCriteriaMetadataAll, ModSeq: 5}}}},
	}
	for _, cmd := range commands {
		if _, err := c.EncodeCommand(cmd); imapwire.KindOf(err) != imapwire.KindInvalid {
			t.Errorf("EncodeCommand(%+v) = %v, want an invalid error", cmd, err)
		}
	}

	responses := []imap.Response{
		nil,
		&imap.ContinuationRequest{Text: "a\r\nb"},
		&imap.StatusResponse{Tag: "a", Type: imap.StatusResponseTypeBye},
		&imap.StatusResponse{Type: "MAYBE"},
		&imap.StatusResponse{Type: imap.StatusResponseTypeOK, Text: "[not a code"},
		&imap.StatusResponse{Type: imap.StatusResponseTypeOK, Code: &imap.CodeOther{Name: "X", Args: "a]b"}},
		&imap.StatusResponse{Type: imap.StatusResponseTypeOK, Code: &imap.CodeBadCharset{}},
		&imap.ExpungeData{SeqNum: 0},
		&imap.ListData{Delim: '/', Mailbox: "INBOX", Attrs: []imap.MailboxAttr{"no space"}},
		&imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{nil}},
		&imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{&imap.FetchItemDataRFC822{Item: imap.FetchItemUID}}},
		&imap.ThreadResponse{Threads: []imap.ThreadData{{}}},
		&imap.FetchData{SeqNum: 1, Items: []imap.FetchItemData{&imap.FetchItemDataBodyStructure{
			BodyStructure: &imap.BodyStructureSinglePart{Type: "text", Subtype: "plain", Encoding: "7bit", Extended: &imap.BodyStructureSinglePartExt{}},
			IsExtended:    true,
		}}},
	}
	for _, resp := range responses {
		if _, err := c.EncodeResponse(resp); imapwire.KindOf(err) != imapwire.KindInvalid {
			t.Errorf("EncodeResponse(%#v) = %v, want an invalid error", resp, err)
		}
	}

	for _, greeting := range []*imap.Greeting{nil, {Type: imap.StatusResponseTypeNo}} {
		if _, err := c.EncodeGreeting(greeting); imapwire.KindOf(err) != imapwire.KindInvalid {
			t.Errorf("EncodeGreeting(%v) = %v, want an invalid error", greeting, err)
		}
	}
}

type testObserver struct {
	decoded []imapcodec.Outcome
	encoded []error
}

func (o *testObserver) Decoded(msg string, outcome imapcodec.Outcome, consumed int) {
	o.decoded = append(o.decoded, outcome)
}

func (o *testObserver) Encoded(msg string, size int, err error) {
	o.encoded = append(o.encoded, err)
}

func TestOptions_loggerAndObserver(t *testing.T) {
	var (
		logBuf   bytes.Buffer
		observer testObserver
	)
	c, err := imapcodec.New(&imapcodec.Options{
		Logger:   log.New(&logBuf, "", 0),
		Observer: &observer,
	})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	c.DecodeCommand([]byte("a NOOP\r\n"))
	c.DecodeCommand([]byte("a NOOP"))
	c.DecodeCommand([]byte("a FROB\r\n"))
	c.EncodeCommand(&imap.Command{Tag: "a", Body: &imap.CommandIdle{}})

	wantDecoded := []imapcodec.Outcome{imapcodec.OutcomeParsed, imapcodec.OutcomeIncomplete, imapcodec.OutcomeFailed}
	if diff := cmp.Diff(wantDecoded, observer.decoded); diff != "" {
		t.Errorf("observed outcomes mismatch (-want +got):\n%v", diff)
	}
	if len(observer.encoded) != 1 || imapwire.KindOf(observer.encoded[0]) != imapwire.KindUnsupported {
		t.Errorf("observed encodes = %v, want one unsupported error", observer.encoded)
	}

	// 只有确定性失败会被记录
	lines := strings.Split(strings.TrimSpace(logBuf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("logged %v lines, want 2:\n%v", len(lines), logBuf.String())
	}
}

func TestOutcome_String(t *testing.T) {
	for outcome, want := range map[imapcodec.Outcome]string{
		imapcodec.OutcomeParsed:     "parsed",
		imapcodec.OutcomeIncomplete: "incomplete",
		imapcodec.OutcomeFailed:     "failed",
	} {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(outcome), got, want)
		}
	}
	if got := imapcodec.OutcomeOf(imapwire.ErrIncomplete); got != imapcodec.OutcomeIncomplete {
		t.Errorf("OutcomeOf(ErrIncomplete) = %v", got)
	}
}
