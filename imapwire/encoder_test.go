package imapwire_test

import (
	"strings"
	"testing"
	"time"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func encodeString(t *testing.T, enc *imapwire.Encoder) string {
	t.Helper()
	encoded, err := enc.Encoded()
	if err != nil {
		t.Fatalf("Encoded() = %v", err)
	}
	return string(encoded.Bytes())
}

func TestEncoder_AString(t *testing.T) {
	tests := []struct {
		in         string
		want       string
		quotedUTF8 bool
	}{
		{"foo", "foo", false},
		{"foo]", "foo]", false},
		{"", `""`, false},
		{"hello world", `"hello world"`, false},
		{`a"b\c`, `"a\"b\\c"`, false},
		{"a\r\nb", "{4}\r\na\r\nb", false},
		{"café", "{5}\r\ncafé", false},
		{"café", `"café"`, true},
		{"a*b", `"a*b"`, false},
	}
	for _, tc := range tests {
		enc := imapwire.NewEncoder(imapwire.ConnSideServer)
		enc.QuotedUTF8 = tc.quotedUTF8
		enc.AString(tc.in)
		if got := encodeString(t, enc); got != tc.want {
			t.Errorf("AString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncoder_maxQuotedSize(t *testing.T) {
	enc := imapwire.NewEncoder(imapwire.ConnSideServer)
	enc.MaxQuotedSize = 4
	enc.String("abcd").SP().String("abcde")
	if got, want := encodeString(t, enc), "\"abcd\" {5}\r\nabcde"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	enc = imapwire.NewEncoder(imapwire.ConnSideServer)
	long := strings.Repeat("x", imapwire.DefaultMaxQuotedSize+1)
	enc.String(long)
	if got := encodeString(t, enc); !strings.HasPrefix(got, "{1025}\r\n") {
		t.Errorf("String() of a long string is not a literal (%v bytes)", len(got))
	}
}

func TestEncoder_NString(t *testing.T) {
	enc := imapwire.NewEncoder(imapwire.ConnSideServer)
	enc.NString("").SP().NString("x").SP().NStringBytes(nil, false).SP().NStringBytes([]byte{}, false)
	if got, want := encodeString(t, enc), `NIL "x" NIL ""`; got != want {
		t.Errorf("encoding = %q, want %q", got, want)
	}
}

func TestEncoder_Mailbox(t *testing.T) {
	enc := imapwire.NewEncoder(imapwire.ConnSideClient)
	enc.Mailbox("inbox").SP().Mailbox("Sent Items").SP().ListMailbox("%/x").SP().ListMailbox("a b*")
	if got, want := encodeString(t, enc), `INBOX "Sent Items" %/x "a b*"`; got != want {
		t.Errorf("encoding = %q, want %q", got, want)
	}
}

func TestEncoder_invalid(t *testing.T) {
	tests := []struct {
		name  string
		write func(enc *imapwire.Encoder)
	}{
		{"空原子", func(enc *imapwire.Encoder) { enc.Atom("") }},
		{"原子中的空格", func(enc *imapwire.Encoder) { enc.Atom("a b") }},
		{"标签中的加号", func(enc *imapwire.Encoder) { enc.Tag("a+") }},
		{"无效标志", func(enc *imapwire.Encoder) { enc.Flag("\\a b") }},
		{"引号字符串中的换行", func(enc *imapwire.Encoder) { enc.Quoted("a\nb") }},
		{"文本中的换行", func(enc *imapwire.Encoder) { enc.Text("a\r\n") }},
		{"零 nz-number", func(enc *imapwire.Encoder) { enc.NZNumber(0) }},
		{"负数", func(enc *imapwire.Encoder) { enc.Number64(-1) }},
		{"零 mod-sequence", func(enc *imapwire.Encoder) { enc.ModSeq(0) }},
		{"空序列集", func(enc *imapwire.Encoder) { enc.NumSet(imap.SeqSet{}) }},
		{"nil 序列集", func(enc *imapwire.Encoder) { enc.NumSet(nil) }},
		{"零日期", func(enc *imapwire.Encoder) { enc.Date(time.Time{}) }},
		{"字面量中的 NUL", func(enc *imapwire.Encoder) { enc.Literal([]byte("a\x00b"), false) }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			enc := imapwire.NewEncoder(imapwire.ConnSideClient)
			tc.write(enc)
			if _, err := enc.Encoded(); imapwire.KindOf(err) != imapwire.KindInvalid {
				t.Errorf("Encoded() = %v, want invalid", err)
			}
		})
	}

	enc := imapwire.NewEncoder(imapwire.ConnSideClient)
	enc.Literal([]byte("a\x00b"), true)
	if _, err := enc.Encoded(); imapwire.KindOf(err) != imapwire.KindUnsupported {
		t.Errorf("Literal() binary without Binary = %v, want unsupported", err)
	}
}

func TestEncoder_flags(t *testing.T) {
	enc := imapwire.NewEncoder(imapwire.ConnSideServer)
	enc.Flag(imap.FlagSeen).SP().Flag("$Junk").SP().Flag(imap.FlagWildcard)
	if got, want := encodeString(t, enc), `\Seen $Junk \*`; got != want {
		t.Errorf("encoding = %q, want %q", got, want)
	}
}

func TestEncoder_dates(t *testing.T) {
	loc := time.FixedZone("", -7*60*60)
	tm := time.Date(1996, time.July, 7, 2, 44, 25, 0, loc)

	enc := imapwire.NewEncoder(imapwire.ConnSideServer)
	enc.DateTime(tm).SP().Date(tm)
	if got, want := encodeString(t, enc), `"07-Jul-1996 02:44:25 -0700" 7-Jul-1996`; got != want {
		t.Errorf("encoding = %q, want %q", got, want)
	}
}

func TestEncoder_literalFragments(t *testing.T) {
	tests := []struct {
		name    string
		side    imapwire.ConnSide
		plus    bool
		binary  bool
		want    string
		waiting bool
	}{
		{"客户端同步", imapwire.ConnSideClient, false, false, "{3}\r\nabc", true},
		{"客户端 LITERAL+", imapwire.ConnSideClient, true, false, "{3+}\r\nabc", false},
		{"服务器", imapwire.ConnSideServer, true, false, "{3}\r\nabc", false},
		{"literal8", imapwire.ConnSideServer, false, true, "~{3}\r\nabc", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			enc := imapwire.NewEncoder(tc.side)
			enc.LiteralPlus = tc.plus
			enc.Binary = tc.binary
			enc.Literal([]byte("abc"), tc.binary)
			encoded, err := enc.Encoded()
			if err != nil {
				t.Fatalf("Encoded() = %v", err)
			}
			if got := string(encoded.Bytes()); got != tc.want {
				t.Errorf("Bytes() = %q, want %q", got, tc.want)
			}
			if encoded.HasContinuation() != tc.waiting {
				t.Errorf("HasContinuation() = %v, want %v", encoded.HasContinuation(), tc.waiting)
			}
		})
	}
}

func TestLiteralHeader_String(t *testing.T) {
	tests := []struct {
		hdr  imapwire.LiteralHeader
		want string
	}{
		{imapwire.LiteralHeader{Size: 5}, "{5}"},
		{imapwire.LiteralHeader{Size: 5, NonSync: true}, "{5+}"},
		{imapwire.LiteralHeader{Size: 0, Binary: true}, "~{0}"},
		{imapwire.LiteralHeader{Size: 12, NonSync: true, Binary: true}, "~{12+}"},
	}
	for _, tc := range tests {
		if got := tc.hdr.String(); got != tc.want {
			t.Errorf("LiteralHeader%+v.String() = %q, want %q", tc.hdr, got, tc.want)
		}
	}
}

func TestCharClasses(t *testing.T) {
	for _, ch := range []byte("(){ %*\"\\]\x00\x7f\x80\r") {
		if imapwire.IsAtomChar(ch) {
			t.Errorf("IsAtomChar(%q) = true", ch)
		}
	}
	if !imapwire.IsAStringChar(']') || imapwire.IsTagChar('+') || !imapwire.IsListChar('%') {
		t.Errorf("unexpected character classes for ']', '+' or '%%'")
	}
	for _, ch := range []byte("aZ09+/=") {
		if !imapwire.IsBase64Char(ch) {
			t.Errorf("IsBase64Char(%q) = false", ch)
		}
	}
}

func TestErrorKind_String(t *testing.T) {
	for kind, want := range map[imapwire.ErrorKind]string{
		imapwire.KindInvalid:       "invalid",
		imapwire.KindUnsupported:   "unsupported",
		imapwire.KindResourceLimit: "resource limit",
	} {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
