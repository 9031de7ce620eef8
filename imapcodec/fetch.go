package imapcodec

import (
	"math"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// readFetchAtts 读取 FETCH 命令的数据项：宏、单个 fetch-att 或括号列表。
func (c *Codec) readFetchAtts(dec *imapwire.Decoder) ([]imap.FetchItem, error) {
	ok := dec.Enter("fetch-att")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var items []imap.FetchItem
	isList, err := dec.List(func() error {
		item, err := c.readFetchAtt(dec, false)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	} else if isList {
		if len(items) == 0 {
			return nil, dec.Errorf("空的 FETCH 数据项列表")
		}
		return items, nil
	}

	item, err := c.readFetchAtt(dec, true)
	if err != nil {
		return nil, err
	}
	return []imap.FetchItem{item}, nil
}

func (c *Codec) readFetchAtt(dec *imapwire.Decoder, allowMacro bool) (imap.FetchItem, error) {
	name, err := readName(dec, isFetchAttChar, "fetch-att")
	if err != nil {
		return nil, err
	}

	switch kw := imap.FetchItemKeyword(name); kw {
	case imap.FetchItemAll, imap.FetchItemFast, imap.FetchItemFull:
		if !allowMacro {
			return nil, dec.Errorf("宏 %v 不能出现在列表中", name)
		}
		return kw, nil
	case imap.FetchItemEnvelope, imap.FetchItemFlags, imap.FetchItemInternalDate,
		imap.FetchItemRFC822, imap.FetchItemRFC822Header, imap.FetchItemRFC822Size,
		imap.FetchItemRFC822Text, imap.FetchItemUID:
		return kw, nil
	case imap.FetchItemModSeq:
		if !c.requireDec(dec, imap.CapCondStore, "FETCH MODSEQ") {
			return nil, dec.Err()
		}
		return kw, nil
	}

	switch name {
	case "BODYSTRUCTURE":
		return &imap.FetchItemBodyStructure{Extended: true}, nil
	case "BODY", "BODY.PEEK":
		if !dec.Special('[') {
			if dec.Err() != nil || name == "BODY.PEEK" {
				dec.Expect(false, "'['")
				return nil, dec.Err()
			}
			return &imap.FetchItemBodyStructure{}, nil
		}
		section, err := readSection(dec)
		if err != nil {
			return nil, err
		}
		section.Peek = name == "BODY.PEEK"
		if section.Partial, err = readPartial(dec, true); err != nil {
			return nil, err
		}
		return section, nil
	case "BINARY", "BINARY.PEEK":
		if !c.requireDec(dec, imap.CapBinary, name) {
			return nil, dec.Err()
		}
		part, err := readSectionBinary(dec)
		if err != nil {
			return nil, err
		}
		item := &imap.FetchItemBinarySection{Part: part, Peek: name == "BINARY.PEEK"}
		if item.Partial, err = readPartial(dec, true); err != nil {
			return nil, err
		}
		return item, nil
	case "BINARY.SIZE":
		if !c.requireDec(dec, imap.CapBinary, name) {
			return nil, dec.Err()
		}
		part, err := readSectionBinary(dec)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemBinarySectionSize{Part: part}, nil
	default:
		return nil, dec.Errorf("未知的 FETCH 数据项 %q", name)
	}
}

func (c *Codec) writeFetchAtts(enc *imapwire.Encoder, items []imap.FetchItem) {
	switch len(items) {
	case 0:
		enc.Errorf("FETCH 至少需要一个数据项")
	case 1:
		c.writeFetchAtt(enc, items[0], true)
	default:
		enc.List(len(items), func(i int) {
			c.writeFetchAtt(enc, items[i], false)
		})
	}
}

func (c *Codec) writeFetchAtt(enc *imapwire.Encoder, item imap.FetchItem, allowMacro bool) {
	switch item := item.(type) {
	case imap.FetchItemKeyword:
		switch item {
		case imap.FetchItemAll, imap.FetchItemFast, imap.FetchItemFull:
			if !allowMacro {
				enc.Errorf("宏 %v 不能出现在列表中", item)
				return
			}
		case imap.FetchItemEnvelope, imap.FetchItemFlags, imap.FetchItemInternalDate,
			imap.FetchItemRFC822, imap.FetchItemRFC822Header, imap.FetchItemRFC822Size,
			imap.FetchItemRFC822Text, imap.FetchItemUID:
		case imap.FetchItemModSeq:
			if !c.requireEnc(enc, imap.CapCondStore, "FETCH MODSEQ") {
				return
			}
		default:
			enc.Errorf("未知的 FETCH 数据项 %q", item)
			return
		}
		enc.Atom(string(item))
	case *imap.FetchItemBodyStructure:
		if item.Extended {
			enc.Atom("BODYSTRUCTURE")
		} else {
			enc.Atom("BODY")
		}
	case *imap.FetchItemBodySection:
		if item.Peek {
			enc.Atom("BODY.PEEK")
		} else {
			enc.Atom("BODY")
		}
		writeSection(enc, item)
		writePartial(enc, item.Partial, true)
	case *imap.FetchItemBinarySection:
		if !c.requireEnc(enc, imap.CapBinary, "BINARY") {
			return
		}
		if item.Peek {
			enc.Atom("BINARY.PEEK")
		} else {
			enc.Atom("BINARY")
		}
		writeSectionBinary(enc, item.Part)
		writePartial(enc, item.Partial, true)
	case *imap.FetchItemBinarySectionSize:
		if !c.requireEnc(enc, imap.CapBinary, "BINARY.SIZE") {
			return
		}
		enc.Atom("BINARY.SIZE")
		writeSectionBinary(enc, item.Part)
	case nil:
		enc.Errorf("缺少 FETCH 数据项")
	default:
		enc.Errorf("未知的 FETCH 数据项类型 %T", item)
	}
}

// readSectionPart 读取 nz-number *("." nz-number)。dot 报告最后是否读取了一个
// 后面没有数字的 "."，此时后面必须是 section-text。
func readSectionPart(dec *imapwire.Decoder) (part []int, dot bool) {
	for {
		var num uint32
		if !dec.NZNumber(&num) {
			return part, dot
		}
		part = append(part, int(num))
		dot = dec.Special('.')
		if !dot {
			return part, false
		}
	}
}

// readSection 读取 "[" 之后的 section-spec 和 "]"。
func readSection(dec *imapwire.Decoder) (*imap.FetchItemBodySection, error) {
	ok := dec.Enter("section")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	var section imap.FetchItemBodySection
	var dot bool
	section.Part, dot = readSectionPart(dec)
	if dec.Err() != nil {
		return nil, dec.Err()
	}
	if len(section.Part) > 0 && !dot {
		if !dec.ExpectSpecial(']') {
			return nil, dec.Err()
		}
		return &section, nil
	}
	if len(section.Part) == 0 && dec.Special(']') {
		return &section, nil
	}

	name, err := readName(dec, isSectionTextChar, "section-text")
	if err != nil {
		return nil, err
	}
	switch name {
	case "HEADER":
		section.Specifier = imap.PartSpecifierHeader
	case "HEADER.FIELDS", "HEADER.FIELDS.NOT":
		section.Specifier = imap.PartSpecifierHeader
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		var fields []string
		err := dec.ExpectList(func() error {
			var field string
			if !dec.Expect(dec.AString(&field), "header-fld-name") {
				return dec.Err()
			}
			fields = append(fields, field)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, dec.Errorf("空的 header-list")
		}
		if name == "HEADER.FIELDS" {
			section.HeaderFields = fields
		} else {
			section.HeaderFieldsNot = fields
		}
	case "TEXT":
		section.Specifier = imap.PartSpecifierText
	case "MIME":
		if len(section.Part) == 0 {
			return nil, dec.Errorf("MIME 需要部分编号")
		}
		section.Specifier = imap.PartSpecifierMIME
	default:
		return nil, dec.Errorf("未知的 section-text %q", name)
	}
	if !dec.ExpectSpecial(']') {
		return nil, dec.Err()
	}
	return &section, nil
}

func writeSectionPart(enc *imapwire.Encoder, part []int) {
	for i, num := range part {
		if num <= 0 || num > math.MaxUint32 {
			enc.Errorf("无效的部分编号 %v", num)
			return
		}
		if i > 0 {
			enc.Special('.')
		}
		enc.Number(uint32(num))
	}
}

func writeSection(enc *imapwire.Encoder, section *imap.FetchItemBodySection) {
	if len(section.HeaderFields) > 0 && len(section.HeaderFieldsNot) > 0 {
		enc.Errorf("HeaderFields 和 HeaderFieldsNot 不能同时使用")
		return
	}
	hasFields := len(section.HeaderFields) > 0 || len(section.HeaderFieldsNot) > 0
	if hasFields && section.Specifier != imap.PartSpecifierHeader {
		enc.Errorf("HEADER.FIELDS 需要 PartSpecifierHeader")
		return
	}

	enc.Special('[')
	writeSectionPart(enc, section.Part)
	if len(section.Part) > 0 && section.Specifier != imap.PartSpecifierNone {
		enc.Special('.')
	}
	switch section.Specifier {
	case imap.PartSpecifierNone:
	case imap.PartSpecifierHeader:
		var fields []string
		switch {
		case len(section.HeaderFields) > 0:
			enc.Atom("HEADER.FIELDS")
			fields = section.HeaderFields
		case len(section.HeaderFieldsNot) > 0:
			enc.Atom("HEADER.FIELDS.NOT")
			fields = section.HeaderFieldsNot
		default:
			enc.Atom("HEADER")
		}
		if fields != nil {
			enc.SP().List(len(fields), func(i int) {
				enc.AString(fields[i])
			})
		}
	case imap.PartSpecifierText:
		enc.Atom("TEXT")
	case imap.PartSpecifierMIME:
		if len(section.Part) == 0 {
			enc.Errorf("MIME 需要部分编号")
			return
		}
		enc.Atom("MIME")
	default:
		enc.Errorf("未知的 PartSpecifier %q", section.Specifier)
		return
	}
	enc.Special(']')
}

// readSectionBinary 读取 "[" [section-part] "]"。
func readSectionBinary(dec *imapwire.Decoder) ([]int, error) {
	if !dec.ExpectSpecial('[') {
		return nil, dec.Err()
	}
	part, dot := readSectionPart(dec)
	if dot {
		dec.Expect(false, "nz-number")
		return nil, dec.Err()
	}
	if !dec.ExpectSpecial(']') {
		return nil, dec.Err()
	}
	return part, nil
}

func writeSectionBinary(enc *imapwire.Encoder, part []int) {
	enc.Special('[')
	writeSectionPart(enc, part)
	enc.Special(']')
}

// readPartial 读取可选的 "<" number "." nz-number ">"（命令）或 "<" number ">"（响应）。
func readPartial(dec *imapwire.Decoder, withSize bool) (*imap.SectionPartial, error) {
	if !dec.Special('<') {
		return nil, dec.Err()
	}
	var offset, size uint32
	if !dec.ExpectNumber(&offset) {
		return nil, dec.Err()
	}
	if withSize && (!dec.ExpectSpecial('.') || !dec.ExpectNZNumber(&size)) {
		return nil, dec.Err()
	}
	if !dec.ExpectSpecial('>') {
		return nil, dec.Err()
	}
	return &imap.SectionPartial{Offset: int64(offset), Size: int64(size)}, nil
}

func writePartial(enc *imapwire.Encoder, partial *imap.SectionPartial, withSize bool) {
	if partial == nil {
		return
	}
	if partial.Offset < 0 || partial.Offset > math.MaxUint32 {
		enc.Errorf("无效的部分偏移 %v", partial.Offset)
		return
	}
	enc.Special('<').Number(uint32(partial.Offset))
	if withSize {
		if partial.Size <= 0 || partial.Size > math.MaxUint32 {
			enc.Errorf("无效的部分大小 %v", partial.Size)
			return
		}
		enc.Special('.').Number(uint32(partial.Size))
	}
	enc.Special('>')
}

// readFetchModifier 读取 FETCH 的 "(" "CHANGEDSINCE" SP mod-sequence-value ")"。
func (c *Codec) readFetchModifier(dec *imapwire.Decoder) (uint64, error) {
	if !c.requireDec(dec, imap.CapCondStore, "CHANGEDSINCE") {
		return 0, dec.Err()
	}
	var modSeq uint64
	if !dec.ExpectSpecial('(') || !dec.ExpectKeyword("CHANGEDSINCE") || !dec.ExpectSP() || !dec.ExpectModSeq(&modSeq) || !dec.ExpectSpecial(')') {
		return 0, dec.Err()
	}
	return modSeq, nil
}

// readFetchData 读取 "* n FETCH" 之后的 SP msg-att。
func (c *Codec) readFetchData(dec *imapwire.Decoder, seqNum uint32) (*imap.FetchData, error) {
	ok := dec.Enter("msg-att")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	data := &imap.FetchData{SeqNum: seqNum}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	err := dec.ExpectList(func() error {
		item, err := c.readMsgAtt(dec)
		if err != nil {
			return err
		}
		data.Items = append(data.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Codec) readMsgAtt(dec *imapwire.Decoder) (imap.FetchItemData, error) {
	name, err := readName(dec, isFetchAttChar, "msg-att")
	if err != nil {
		return nil, err
	}

	switch name {
	case "FLAGS":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		flags, err := readFlagList(dec, false)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemDataFlags{Flags: flags}, nil
	case "ENVELOPE":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		envelope, err := readEnvelope(dec)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemDataEnvelope{Envelope: envelope}, nil
	case "INTERNALDATE":
		var item imap.FetchItemDataInternalDate
		if !dec.ExpectSP() || !dec.ExpectDateTime(&item.Time) {
			return nil, dec.Err()
		}
		return &item, nil
	case "RFC822.SIZE":
		var item imap.FetchItemDataRFC822Size
		if !dec.ExpectSP() || !dec.ExpectNumber64(&item.Size) {
			return nil, dec.Err()
		}
		return &item, nil
	case "UID":
		var uid uint32
		if !dec.ExpectSP() || !dec.ExpectNZNumber(&uid) {
			return nil, dec.Err()
		}
		return &imap.FetchItemDataUID{UID: imap.UID(uid)}, nil
	case "RFC822", "RFC822.HEADER", "RFC822.TEXT":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		lit, err := readNStringLiteral(dec, false)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemDataRFC822{Item: imap.FetchItemKeyword(name), Literal: lit}, nil
	case "MODSEQ":
		var item imap.FetchItemDataModSeq
		if !c.requireDec(dec, imap.CapCondStore, "FETCH MODSEQ") {
			return nil, dec.Err()
		}
		if !dec.ExpectSP() || !dec.ExpectSpecial('(') || !dec.ExpectModSeq(&item.ModSeq) || !dec.ExpectSpecial(')') {
			return nil, dec.Err()
		}
		return &item, nil
	case "BODY", "BODYSTRUCTURE":
		if name == "BODY" && dec.Special('[') {
			section, err := readSection(dec)
			if err != nil {
				return nil, err
			}
			if section.Partial, err = readPartial(dec, false); err != nil {
				return nil, err
			}
			if !dec.ExpectSP() {
				return nil, dec.Err()
			}
			lit, err := readNStringLiteral(dec, false)
			if err != nil {
				return nil, err
			}
			return &imap.FetchItemDataBodySection{Section: section, Literal: lit}, nil
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		bs, err := c.readBody(dec)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemDataBodyStructure{BodyStructure: bs, IsExtended: name == "BODYSTRUCTURE"}, nil
	case "BINARY":
		if !c.requireDec(dec, imap.CapBinary, "BINARY") {
			return nil, dec.Err()
		}
		part, err := readSectionBinary(dec)
		if err != nil {
			return nil, err
		}
		section := &imap.FetchItemBinarySection{Part: part}
		if section.Partial, err = readPartial(dec, false); err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		lit, err := readNStringLiteral(dec, true)
		if err != nil {
			return nil, err
		}
		return &imap.FetchItemDataBinarySection{Section: section, Literal: lit}, nil
	case "BINARY.SIZE":
		if !c.requireDec(dec, imap.CapBinary, "BINARY.SIZE") {
			return nil, dec.Err()
		}
		part, err := readSectionBinary(dec)
		if err != nil {
			return nil, err
		}
		item := &imap.FetchItemDataBinarySectionSize{Part: part}
		if !dec.ExpectSP() || !dec.ExpectNumber(&item.Size) {
			return nil, dec.Err()
		}
		return item, nil
	default:
		return nil, dec.Errorf("未知的 FETCH 响应数据项 %q", name)
	}
}

// readNStringLiteral 读取一个 nstring（binary 为 true 时也接受 literal8）。
// 返回的 Literal 借用输入缓冲区，NIL 返回 nil。
func readNStringLiteral(dec *imapwire.Decoder, binary bool) (*imap.Literal, error) {
	var (
		b   []byte
		hdr imapwire.LiteralHeader
	)
	if !dec.ExpectNStringBytes(&b, &hdr, binary) {
		return nil, dec.Err()
	}
	if b == nil {
		return nil, nil
	}
	lit := imap.BorrowLiteral(b)
	if hdr.Size >= 0 {
		lit.NonSync = hdr.NonSync
		lit.Binary = hdr.Binary
	}
	return lit, nil
}

func writeNStringLiteral(enc *imapwire.Encoder, lit *imap.Literal, allowBinary bool) {
	if lit == nil {
		enc.NIL()
		return
	}
	if lit.Binary {
		if !allowBinary {
			enc.Errorf("literal8 只能用于 BINARY 数据")
			return
		}
		enc.Literal(lit.Bytes(), true)
		return
	}
	enc.NStringBytes(lit.Bytes(), false)
}

func (c *Codec) writeFetchData(enc *imapwire.Encoder, data *imap.FetchData) {
	enc.NZNumber(data.SeqNum).SP().Atom("FETCH").SP()
	enc.List(len(data.Items), func(i int) {
		c.writeMsgAtt(enc, data.Items[i])
	})
}

func (c *Codec) writeMsgAtt(enc *imapwire.Encoder, item imap.FetchItemData) {
	switch item := item.(type) {
	case *imap.FetchItemDataFlags:
		enc.Atom("FLAGS").SP()
		writeFlagList(enc, item.Flags, false)
	case *imap.FetchItemDataEnvelope:
		enc.Atom("ENVELOPE").SP()
		writeEnvelope(enc, item.Envelope)
	case *imap.FetchItemDataInternalDate:
		enc.Atom("INTERNALDATE").SP().DateTime(item.Time)
	case *imap.FetchItemDataRFC822Size:
		enc.Atom("RFC822.SIZE").SP().Number64(item.Size)
	case *imap.FetchItemDataUID:
		enc.Atom("UID").SP().NZNumber(uint32(item.UID))
	case *imap.FetchItemDataRFC822:
		switch item.Item {
		case imap.FetchItemRFC822, imap.FetchItemRFC822Header, imap.FetchItemRFC822Text:
		default:
			enc.Errorf("无效的 RFC822 数据项 %q", item.Item)
			return
		}
		enc.Atom(string(item.Item)).SP()
		writeNStringLiteral(enc, item.Literal, false)
	case *imap.FetchItemDataModSeq:
		if !c.requireEnc(enc, imap.CapCondStore, "FETCH MODSEQ") {
			return
		}
		enc.Atom("MODSEQ").SP().Special('(').ModSeq(item.ModSeq).Special(')')
	case *imap.FetchItemDataBodyStructure:
		if item.IsExtended {
			enc.Atom("BODYSTRUCTURE")
		} else {
			enc.Atom("BODY")
		}
		enc.SP()
		c.writeBody(enc, item.BodyStructure, 0)
	case *imap.FetchItemDataBodySection:
		section := item.Section
		if section == nil {
			section = &imap.FetchItemBodySection{}
		}
		enc.Atom("BODY")
		writeSection(enc, section)
		writePartial(enc, section.Partial, false)
		enc.SP()
		writeNStringLiteral(enc, item.Literal, false)
	case *imap.FetchItemDataBinarySection:
		if !c.requireEnc(enc, imap.CapBinary, "BINARY") {
			return
		}
		section := item.Section
		if section == nil {
			section = &imap.FetchItemBinarySection{}
		}
		enc.Atom("BINARY")
		writeSectionBinary(enc, section.Part)
		writePartial(enc, section.Partial, false)
		enc.SP()
		writeNStringLiteral(enc, item.Literal, true)
	case *imap.FetchItemDataBinarySectionSize:
		if !c.requireEnc(enc, imap.CapBinary, "BINARY.SIZE") {
			return
		}
		enc.Atom("BINARY.SIZE")
		writeSectionBinary(enc, item.Part)
		enc.SP().Number(item.Size)
	case nil:
		enc.Errorf("缺少 FETCH 响应数据项")
	default:
		enc.Errorf("未知的 FETCH 响应数据项类型 %T", item)
	}
}

func isFetchMacro(items []imap.FetchItem) bool {
	if len(items) != 1 {
		return false
	}
	kw, ok := items[0].(imap.FetchItemKeyword)
	return ok && kw.IsMacro()
}
