package imapcodec

import (
	"strings"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func isMessageRFC822(typ, subtype string) bool {
	return strings.EqualFold(typ, "message") && (strings.EqualFold(subtype, "rfc822") || strings.EqualFold(subtype, "global"))
}

// readBody 读取消息体结构。参数值保留线路上的原始值，不做 RFC 2047 解码。
func (c *Codec) readBody(dec *imapwire.Decoder) (imap.BodyStructure, error) {
	ok := dec.Enter("body")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}

	var (
		mediaType string
		bs        imap.BodyStructure
		err       error
	)
	if dec.String(&mediaType) {
		bs, err = c.readBodyType1part(dec, mediaType)
	} else if dec.Err() != nil {
		return nil, dec.Err()
	} else {
		bs, err = c.readBodyTypeMpart(dec)
	}
	if err != nil {
		return nil, err
	}

	for dec.SP() {
		if err := skipBodyExtension(dec); err != nil {
			return nil, err
		}
	}

	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return bs, nil
}

func (c *Codec) readBodyType1part(dec *imapwire.Decoder, typ string) (*imap.BodyStructureSinglePart, error) {
	bs := imap.BodyStructureSinglePart{Type: typ}

	if !dec.ExpectSP() || !dec.ExpectString(&bs.Subtype) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	var err error
	if bs.Params, err = readBodyFldParam(dec); err != nil {
		return nil, err
	}

	if !dec.ExpectSP() || !dec.ExpectNString(&bs.ID) || !dec.ExpectSP() ||
		!dec.ExpectNString(&bs.Description) || !dec.ExpectSP() ||
		!dec.ExpectNString(&bs.Encoding) || !dec.ExpectSP() ||
		!dec.Expect(dec.Number(&bs.Size), "body-fld-octets") {
		return nil, dec.Err()
	}

	hasSP := dec.SP()
	if !hasSP {
		return &bs, dec.Err()
	}

	if isMessageRFC822(bs.Type, bs.Subtype) {
		var msg imap.BodyStructureMessageRFC822
		if msg.Envelope, err = readEnvelope(dec); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if msg.BodyStructure, err = c.readBody(dec); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() || !dec.ExpectNumber64(&msg.NumLines) {
			return nil, dec.Err()
		}
		bs.MessageRFC822 = &msg
		hasSP = false
	} else if strings.EqualFold(bs.Type, "text") {
		var text imap.BodyStructureText
		if !dec.ExpectNumber64(&text.NumLines) {
			return nil, dec.Err()
		}
		bs.Text = &text
		hasSP = false
	}

	if !hasSP {
		hasSP = dec.SP()
	}
	if hasSP {
		if bs.Extended, err = readBodyExt1part(dec); err != nil {
			return nil, err
		}
	}
	return &bs, dec.Err()
}

func readBodyExt1part(dec *imapwire.Decoder) (*imap.BodyStructureSinglePartExt, error) {
	var ext imap.BodyStructureSinglePartExt
	if !dec.ExpectNString(&ext.MD5) {
		return nil, dec.Err()
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	var err error
	if ext.Disposition, err = readBodyFldDsp(dec); err != nil {
		return nil, err
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	if ext.Language, err = readBodyFldLang(dec); err != nil {
		return nil, err
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	if !dec.ExpectNString(&ext.Location) {
		return nil, dec.Err()
	}
	return &ext, nil
}

// readBodyTypeMpart 读取 1*body SP media-subtype [SP body-ext-mpart]。
// 子部分之间按照语法不应有 SP，这里宽松地接受。
func (c *Codec) readBodyTypeMpart(dec *imapwire.Decoder) (*imap.BodyStructureMultiPart, error) {
	var bs imap.BodyStructureMultiPart
	for {
		child, err := c.readBody(dec)
		if err != nil {
			return nil, err
		}
		bs.Children = append(bs.Children, child)

		if dec.SP() && dec.String(&bs.Subtype) {
			break
		}
		if dec.Err() != nil {
			return nil, dec.Err()
		}
	}

	if dec.SP() {
		var err error
		if bs.Extended, err = readBodyExtMpart(dec); err != nil {
			return nil, err
		}
	}
	return &bs, dec.Err()
}

func readBodyExtMpart(dec *imapwire.Decoder) (*imap.BodyStructureMultiPartExt, error) {
	var ext imap.BodyStructureMultiPartExt

	var err error
	if ext.Params, err = readBodyFldParam(dec); err != nil {
		return nil, err
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	if ext.Disposition, err = readBodyFldDsp(dec); err != nil {
		return nil, err
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	if ext.Language, err = readBodyFldLang(dec); err != nil {
		return nil, err
	}
	if !dec.SP() {
		return &ext, dec.Err()
	}

	if !dec.ExpectNString(&ext.Location) {
		return nil, dec.Err()
	}
	return &ext, nil
}

func readBodyFldDsp(dec *imapwire.Decoder) (*imap.BodyStructureDisposition, error) {
	if !dec.Special('(') {
		if !dec.ExpectNIL() {
			return nil, dec.Err()
		}
		return nil, nil
	}

	var disp imap.BodyStructureDisposition
	if !dec.ExpectString(&disp.Value) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	var err error
	if disp.Params, err = readBodyFldParam(dec); err != nil {
		return nil, err
	}
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return &disp, nil
}

// readBodyFldParam 读取参数列表。键转换为小写，空列表和 NIL 都返回 nil。
func readBodyFldParam(dec *imapwire.Decoder) (map[string]string, error) {
	var (
		params map[string]string
		k      string
		hasKey bool
	)
	err := dec.ExpectNList(func() error {
		var s string
		if !dec.ExpectString(&s) {
			return dec.Err()
		}
		if !hasKey {
			k = s
			hasKey = true
			return nil
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[strings.ToLower(k)] = s
		hasKey = false
		return nil
	})
	if err != nil {
		return nil, err
	} else if hasKey {
		return nil, dec.Errorf("body-fld-param 中的参数 %q 缺少值", k)
	}
	return params, nil
}

// readBodyFldLang 读取语言：nstring 或字符串列表。
func readBodyFldLang(dec *imapwire.Decoder) ([]string, error) {
	var l []string
	isList, err := dec.List(func() error {
		var s string
		if !dec.ExpectString(&s) {
			return dec.Err()
		}
		l = append(l, s)
		return nil
	})
	if err != nil || isList {
		return l, err
	}

	var s string
	if !dec.ExpectNString(&s) {
		return nil, dec.Err()
	}
	if s == "" {
		return nil, nil
	}
	return []string{s}, nil
}

// skipBodyExtension 跳过一个 body-extension：nstring、数字或它们的括号列表。
func skipBodyExtension(dec *imapwire.Decoder) error {
	ok := dec.Enter("body-extension")
	defer dec.Leave()
	if !ok {
		return dec.Err()
	}

	isList, err := dec.List(func() error {
		return skipBodyExtension(dec)
	})
	if err != nil || isList {
		return err
	}

	var (
		s   string
		num int64
	)
	if dec.Number64(&num) || dec.NString(&s) {
		return nil
	}
	dec.Expect(false, "body-extension")
	return dec.Err()
}

func (c *Codec) writeBody(enc *imapwire.Encoder, bs imap.BodyStructure, depth int) {
	// 解码时 response、msg-att 和每层 body 各占一层
	if depth > imapwire.DefaultMaxDepth-3 {
		enc.Errorf("体结构嵌套太深")
		return
	}
	switch bs := bs.(type) {
	case *imap.BodyStructureSinglePart:
		c.writeBodyType1part(enc, bs, depth)
	case *imap.BodyStructureMultiPart:
		c.writeBodyTypeMpart(enc, bs, depth)
	case nil:
		enc.Errorf("缺少体结构")
	default:
		enc.Errorf("未知的体结构类型 %T", bs)
	}
}

func (c *Codec) writeBodyType1part(enc *imapwire.Encoder, bs *imap.BodyStructureSinglePart, depth int) {
	isMessage := isMessageRFC822(bs.Type, bs.Subtype)
	isText := strings.EqualFold(bs.Type, "text")
	// 没有扩展数据时允许省略 Text 和 MessageRFC822，与解码一致
	switch {
	case isMessage && bs.MessageRFC822 == nil && bs.Extended != nil:
		enc.Errorf("%v 体结构缺少 MessageRFC822", bs.MediaType())
		return
	case !isMessage && bs.MessageRFC822 != nil:
		enc.Errorf("%v 体结构不能有 MessageRFC822", bs.MediaType())
		return
	case isText && bs.Text == nil && bs.Extended != nil:
		enc.Errorf("%v 体结构缺少 Text", bs.MediaType())
		return
	case !isText && bs.Text != nil:
		enc.Errorf("%v 体结构不能有 Text", bs.MediaType())
		return
	}

	enc.Special('(')
	enc.String(bs.Type).SP().String(bs.Subtype).SP()
	writeBodyFldParam(enc, bs.Params)
	enc.SP().NString(bs.ID)
	enc.SP().NString(bs.Description)
	enc.SP().String(bs.Encoding)
	enc.SP().Number(bs.Size)

	if msg := bs.MessageRFC822; msg != nil {
		enc.SP()
		writeEnvelope(enc, msg.Envelope)
		enc.SP()
		c.writeBody(enc, msg.BodyStructure, depth+1)
		enc.SP().Number64(msg.NumLines)
	}
	if bs.Text != nil {
		enc.SP().Number64(bs.Text.NumLines)
	}

	if ext := bs.Extended; ext != nil {
		enc.SP().NString(ext.MD5)
		enc.SP()
		writeBodyFldDsp(enc, ext.Disposition)
		enc.SP()
		writeBodyFldLang(enc, ext.Language)
		enc.SP().NString(ext.Location)
	}
	enc.Special(')')
}

func (c *Codec) writeBodyTypeMpart(enc *imapwire.Encoder, bs *imap.BodyStructureMultiPart, depth int) {
	if len(bs.Children) == 0 {
		enc.Errorf("multipart 体结构至少需要一个子部分")
		return
	}

	enc.Special('(')
	for _, child := range bs.Children {
		c.writeBody(enc, child, depth+1)
	}
	enc.SP().String(bs.Subtype)

	if ext := bs.Extended; ext != nil {
		enc.SP()
		writeBodyFldParam(enc, ext.Params)
		enc.SP()
		writeBodyFldDsp(enc, ext.Disposition)
		enc.SP()
		writeBodyFldLang(enc, ext.Language)
		enc.SP().NString(ext.Location)
	}
	enc.Special(')')
}

// writeBodyFldParam 按键的字典序写出参数，空参数写出 NIL。
func writeBodyFldParam(enc *imapwire.Encoder, params map[string]string) {
	if len(params) == 0 {
		enc.NIL()
		return
	}
	keys := imap.SortedParamKeys(params)
	enc.List(len(keys), func(i int) {
		enc.String(keys[i]).SP().String(params[keys[i]])
	})
}

func writeBodyFldDsp(enc *imapwire.Encoder, disp *imap.BodyStructureDisposition) {
	if disp == nil {
		enc.NIL()
		return
	}
	enc.Special('(').String(disp.Value).SP()
	writeBodyFldParam(enc, disp.Params)
	enc.Special(')')
}

func writeBodyFldLang(enc *imapwire.Encoder, l []string) {
	switch len(l) {
	case 0:
		enc.NIL()
	case 1:
		if l[0] == "" {
			enc.Errorf("空的 body-fld-lang")
			return
		}
		enc.String(l[0])
	default:
		enc.List(len(l), func(i int) {
			enc.String(l[i])
		})
	}
}
