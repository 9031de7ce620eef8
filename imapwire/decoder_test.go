package imapwire_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func newDecoder(s string) *imapwire.Decoder {
	return imapwire.NewDecoder([]byte(s), imapwire.ConnSideServer)
}

func TestDecoder_AString(t *testing.T) {
	tests := []struct {
		in   string
		want string
		n    int
	}{
		{"foo bar", "foo", 3},
		{"foo]bar ", "foo]bar", 7},
		{`"hello world" `, "hello world", 13},
		{`"a\"b\\c" `, `a"b\c`, 9},
		{`"" `, "", 2},
		{"{5}\r\nhello ", "hello", 10},
		{"{0}\r\n ", "", 5},
	}
	for _, tc := range tests {
		dec := newDecoder(tc.in)
		var s string
		if !dec.ExpectAString(&s) {
			t.Errorf("AString(%q) = %v", tc.in, dec.Err())
			continue
		}
		if s != tc.want {
			t.Errorf("AString(%q) = %q, want %q", tc.in, s, tc.want)
		}
		if dec.Offset() != tc.n {
			t.Errorf("AString(%q) offset = %v, want %v", tc.in, dec.Offset(), tc.n)
		}
	}
}

func TestDecoder_quotedInvalid(t *testing.T) {
	for _, s := range []string{
		"\"a\rb\" ",
		"\"a\nb\" ",
		"\"a\\xb\" ",
		"\"a\x00b\" ",
	} {
		dec := newDecoder(s)
		var out string
		if dec.Quoted(&out) {
			t.Errorf("Quoted(%q) succeeded", s)
			continue
		}
		if imapwire.KindOf(dec.Err()) != imapwire.KindInvalid {
			t.Errorf("Quoted(%q) = %v, want invalid", s, dec.Err())
		}
	}
}

func TestDecoder_incomplete(t *testing.T) {
	tests := []struct {
		in   string
		read func(dec *imapwire.Decoder) bool
	}{
		{"foo", func(dec *imapwire.Decoder) bool { var s string; return dec.Atom(&s) }},
		{`"foo`, func(dec *imapwire.Decoder) bool { var s string; return dec.Quoted(&s) }},
		{`"foo\`, func(dec *imapwire.Decoder) bool { var s string; return dec.Quoted(&s) }},
		{"{5}", func(dec *imapwire.Decoder) bool { var s string; return dec.String(&s) }},
		{"{5}\r\nhel", func(dec *imapwire.Decoder) bool { var s string; return dec.String(&s) }},
		{"123", func(dec *imapwire.Decoder) bool { var n uint32; return dec.Number(&n) }},
		{"N", func(dec *imapwire.Decoder) bool { return dec.NIL() }},
		{"\r", func(dec *imapwire.Decoder) bool { return dec.CRLF() }},
		{"", func(dec *imapwire.Decoder) bool { return dec.SP() }},
		{"1:*,3", func(dec *imapwire.Decoder) bool {
			var set imap.NumSet
			return dec.NumSet(imapwire.NumKindSeq, &set)
		}},
	}
	for _, tc := range tests {
		dec := newDecoder(tc.in)
		if tc.read(dec) {
			t.Errorf("reading %q succeeded", tc.in)
			continue
		}
		if !imapwire.IsIncomplete(dec.Err()) {
			t.Errorf("reading %q = %v, want incomplete", tc.in, dec.Err())
		}
	}
}

func TestDecoder_stickyError(t *testing.T) {
	dec := newDecoder("(foo")
	if dec.ExpectSP() {
		t.Fatalf("ExpectSP() succeeded on '('")
	}
	err := dec.Err()
	if imapwire.KindOf(err) != imapwire.KindInvalid {
		t.Fatalf("Err() = %v, want invalid", err)
	}
	if dec.Special('(') {
		t.Errorf("Special() succeeded after an error")
	}
	if dec.Err() != err {
		t.Errorf("Err() changed after a later failure")
	}
}

func TestDecoder_Try(t *testing.T) {
	dec := newDecoder("123 abc")
	var n uint32
	ok := dec.Try(func() bool {
		return dec.ExpectNumber(&n) && dec.ExpectSP() && dec.ExpectNumber(&n)
	})
	if ok {
		t.Fatalf("Try() succeeded")
	}
	if dec.Err() != nil || dec.Offset() != 0 {
		t.Errorf("after Try() err = %v, offset = %v, want nil, 0", dec.Err(), dec.Offset())
	}

	// 不完整的错误不会被清除
	dec = newDecoder("123")
	if dec.Try(func() bool { return dec.ExpectNumber(&n) && dec.ExpectSP() }) {
		t.Fatalf("Try() succeeded")
	}
	if !imapwire.IsIncomplete(dec.Err()) {
		t.Errorf("after Try() err = %v, want incomplete", dec.Err())
	}
}

func TestDecoder_literalLimits(t *testing.T) {
	dec := newDecoder("{17}\r\n")
	dec.MaxLiteralSize = 16
	var s string
	if dec.String(&s) {
		t.Fatalf("String() succeeded")
	}
	var wireErr *imapwire.Error
	if !errors.As(dec.Err(), &wireErr) || wireErr.Kind != imapwire.KindResourceLimit || wireErr.Size != 17 {
		t.Errorf("String() = %v, want resource limit with size 17", dec.Err())
	}

	dec = newDecoder("{99999999999999999999}\r\n")
	dec.MaxLiteralSize = 1 << 20
	if dec.String(&s) || imapwire.KindOf(dec.Err()) != imapwire.KindResourceLimit {
		t.Errorf("String() with overflowing size = %v, want resource limit", dec.Err())
	}

	dec = newDecoder("{3}\r\na\x00b")
	if dec.String(&s) || imapwire.KindOf(dec.Err()) != imapwire.KindInvalid {
		t.Errorf("String() with NUL = %v, want invalid", dec.Err())
	}

	dec = newDecoder("~{3}\r\na\x00b")
	var b []byte
	if dec.Literal8(&b, nil) || imapwire.KindOf(dec.Err()) != imapwire.KindUnsupported {
		t.Errorf("Literal8() without Binary = %v, want unsupported", dec.Err())
	}

	dec = newDecoder("~{3}\r\na\x00b")
	dec.Binary = true
	var hdr imapwire.LiteralHeader
	if !dec.Literal8(&b, &hdr) || string(b) != "a\x00b" || !hdr.Binary {
		t.Errorf("Literal8() = %q %+v, %v", b, hdr, dec.Err())
	}
}

func TestDecoder_nonSyncLiteral(t *testing.T) {
	tests := []struct {
		name  string
		side  imapwire.ConnSide
		plus  bool
		minus bool
		size  int
		kind  imapwire.ErrorKind
	}{
		{"无扩展", imapwire.ConnSideServer, false, false, 3, imapwire.KindUnsupported},
		{"LITERAL+", imapwire.ConnSideServer, true, false, 5000, 0},
		{"LITERAL- 小", imapwire.ConnSideServer, false, true, 4096, 0},
		{"LITERAL- 大", imapwire.ConnSideServer, false, true, 4097, imapwire.KindUnsupported},
		{"客户端", imapwire.ConnSideClient, true, true, 3, imapwire.KindInvalid},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in := "{" + itoa(tc.size) + "+}\r\n" + strings.Repeat("x", tc.size)
			dec := imapwire.NewDecoder([]byte(in), tc.side)
			dec.LiteralPlus = tc.plus
			dec.LiteralMinus = tc.minus
			var (
				b   []byte
				hdr imapwire.LiteralHeader
			)
			ok := dec.Literal(&b, &hdr)
			if tc.kind == 0 {
				if !ok || len(b) != tc.size || !hdr.NonSync {
					t.Errorf("Literal() = %v %+v, %v", ok, hdr, dec.Err())
				}
			} else if ok || imapwire.KindOf(dec.Err()) != tc.kind {
				t.Errorf("Literal() = %v, want kind %v", dec.Err(), tc.kind)
			}
		})
	}
}

func itoa(n int) string {
	var b []byte
	for {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
		if n == 0 {
			return string(b)
		}
	}
}

func TestDecoder_NumSet(t *testing.T) {
	tests := []struct {
		in   string
		kind imapwire.NumKind
		want string
	}{
		{"1:3,5 ", imapwire.NumKindSeq, "1:3,5"},
		{"4:* ", imapwire.NumKindUID, "4:*"},
		{"$ ", imapwire.NumKindSeq, "$"},
	}
	for _, tc := range tests {
		dec := newDecoder(tc.in)
		var set imap.NumSet
		if !dec.ExpectNumSet(tc.kind, &set) {
			t.Errorf("NumSet(%q) = %v", tc.in, dec.Err())
			continue
		}
		if set.String() != tc.want {
			t.Errorf("NumSet(%q) = %q, want %q", tc.in, set.String(), tc.want)
		}
		if tc.in != "$ " {
			_, isUID := set.(imap.UIDSet)
			if isUID != (tc.kind == imapwire.NumKindUID) {
				t.Errorf("NumSet(%q) = %T", tc.in, set)
			}
		}
	}

	for _, s := range []string{"0 ", "1:0 ", "1,,2 ", ":3 "} {
		dec := newDecoder(s)
		var set imap.NumSet
		if dec.NumSet(imapwire.NumKindSeq, &set) {
			t.Errorf("NumSet(%q) succeeded", s)
		}
	}
}

func TestDecoder_dates(t *testing.T) {
	dec := newDecoder(`"17-Jul-1996 02:44:25 -0700" 1-Feb-1994 " 5-Jan-2024 10:00:00 +0100"`)
	var t1, t2, t3 time.Time
	if !dec.ExpectDateTime(&t1) || !dec.ExpectSP() || !dec.ExpectDate(&t2) || !dec.ExpectSP() || !dec.ExpectDateTime(&t3) {
		t.Fatalf("decoding dates = %v", dec.Err())
	}
	if want := time.Date(1996, time.July, 17, 9, 44, 25, 0, time.UTC); !t1.Equal(want) {
		t.Errorf("DateTime() = %v, want %v", t1, want)
	}
	if want := time.Date(1994, time.February, 1, 0, 0, 0, 0, time.UTC); !t2.Equal(want) {
		t.Errorf("Date() = %v, want %v", t2, want)
	}
	if want := time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC); !t3.Equal(want) {
		t.Errorf("DateTime() = %v, want %v", t3, want)
	}

	for _, s := range []string{`"17-Jul-1996"`, `"17-Foo-1996 02:44:25 -0700"`, `"17-Jul-1996  02:44:25 -0700"`} {
		dec := newDecoder(s)
		var tm time.Time
		if dec.DateTime(&tm) {
			t.Errorf("DateTime(%q) succeeded", s)
		}
	}
}

func TestDecoder_maxDepth(t *testing.T) {
	dec := newDecoder("")
	dec.MaxDepth = 2
	if !dec.Enter("a") || !dec.Enter("b") {
		t.Fatalf("Enter() = %v", dec.Err())
	}
	if dec.Enter("c") {
		t.Errorf("Enter() beyond MaxDepth succeeded")
	}
	var wireErr *imapwire.Error
	if !errors.As(dec.Err(), &wireErr) || wireErr.Kind != imapwire.KindResourceLimit {
		t.Fatalf("Err() = %v, want resource limit", dec.Err())
	}
	if len(wireErr.Context) != 3 || wireErr.Context[0] != "a" {
		t.Errorf("Context = %v", wireErr.Context)
	}
}

func TestError_repeatedContext(t *testing.T) {
	dec := newDecoder("")
	dec.Enter("command")
	for dec.Enter("search-key") {
	}
	msg := dec.Err().Error()
	if n := strings.Count(msg, "search-key"); n != 1 {
		t.Errorf("Error() mentions search-key %v times: %q", n, msg)
	}
	want := fmt.Sprintf("在 search-key 中 (×%v): ", imapwire.DefaultMaxDepth)
	if !strings.Contains(msg, "在 command 中: "+want) {
		t.Errorf("Error() = %q, want it to contain %q", msg, want)
	}
}

func TestDecoder_errorOffset(t *testing.T) {
	dec := newDecoder("a b(")
	var s string
	if !dec.ExpectAString(&s) || !dec.ExpectSP() || !dec.ExpectAString(&s) {
		t.Fatalf("decoding = %v", dec.Err())
	}
	if dec.ExpectSP() {
		t.Fatalf("ExpectSP() succeeded")
	}
	var wireErr *imapwire.Error
	if !errors.As(dec.Err(), &wireErr) || wireErr.Offset != 3 || wireErr.Expected != "SP" {
		t.Errorf("Err() = %#v, want offset 3", dec.Err())
	}
}
