package imapcodec

import (
	"math"
	"strings"

	"github.com/luhaoyun888/go-imap-codec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

func searchKeyBasic(name string) (imap.SearchKeyBasic, bool) {
	switch k := imap.SearchKeyBasic(name); k {
	case imap.SearchKeyAll, imap.SearchKeyAnswered, imap.SearchKeyDeleted, imap.SearchKeyDraft,
		imap.SearchKeyFlagged, imap.SearchKeyNew, imap.SearchKeyOld, imap.SearchKeyRecent,
		imap.SearchKeySeen, imap.SearchKeyUnanswered, imap.SearchKeyUndeleted, imap.SearchKeyUndraft,
		imap.SearchKeyUnflagged, imap.SearchKeyUnseen:
		return k, true
	}
	return "", false
}

func searchKeyStringName(name string) (imap.SearchKeyStringName, bool) {
	switch k := imap.SearchKeyStringName(name); k {
	case imap.SearchKeyBcc, imap.SearchKeyBody, imap.SearchKeyCc, imap.SearchKeyFrom,
		imap.SearchKeySubject, imap.SearchKeyText, imap.SearchKeyTo:
		return k, true
	}
	return "", false
}

func searchKeyDateName(name string) (imap.SearchKeyDateName, bool) {
	switch k := imap.SearchKeyDateName(name); k {
	case imap.SearchKeyBefore, imap.SearchKeyOn, imap.SearchKeySince,
		imap.SearchKeySentBefore, imap.SearchKeySentOn, imap.SearchKeySentSince:
		return k, true
	}
	return "", false
}

// readSearchKeys 读取 1*(SP search-key)，第一个 SP 已被调用者读取。
func (c *Codec) readSearchKeys(dec *imapwire.Decoder) ([]imap.SearchKey, error) {
	var keys []imap.SearchKey
	for {
		key, err := c.readSearchKey(dec)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		if !dec.SP() {
			return keys, dec.Err()
		}
	}
}

func (c *Codec) readSearchKey(dec *imapwire.Decoder) (imap.SearchKey, error) {
	ok := dec.Enter("search-key")
	defer dec.Leave()
	if !ok {
		return nil, dec.Err()
	}

	ch, ok := dec.Peek()
	if !ok {
		return nil, dec.Err()
	}
	switch {
	case ch == '(':
		var and imap.SearchKeyAnd
		err := dec.ExpectList(func() error {
			key, err := c.readSearchKey(dec)
			if err != nil {
				return err
			}
			and.Keys = append(and.Keys, key)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(and.Keys) == 0 {
			return nil, dec.Errorf("空的搜索键列表")
		}
		return &and, nil
	case isDigit(ch) || ch == '*' || ch == '$':
		var set imap.NumSet
		if !dec.ExpectNumSet(imapwire.NumKindSeq, &set) || !c.requireNumSetDec(dec, set) {
			return nil, dec.Err()
		}
		return &imap.SearchKeySeqSet{Set: set}, nil
	}

	name, err := readName(dec, imapwire.IsAtomChar, "search-key")
	if err != nil {
		return nil, err
	}
	if k, ok := searchKeyBasic(name); ok {
		return k, nil
	}
	if k, ok := searchKeyStringName(name); ok {
		key := &imap.SearchKeyString{Name: k}
		if !dec.ExpectSP() || !dec.ExpectAString(&key.Value) {
			return nil, dec.Err()
		}
		return key, nil
	}
	if k, ok := searchKeyDateName(name); ok {
		key := &imap.SearchKeyDate{Name: k}
		if !dec.ExpectSP() || !dec.ExpectDate(&key.Date) {
			return nil, dec.Err()
		}
		return key, nil
	}

	switch name {
	case "KEYWORD", "UNKEYWORD":
		var flag string
		if !dec.ExpectSP() || !dec.Expect(dec.Atom(&flag), "flag-keyword") {
			return nil, dec.Err()
		}
		return &imap.SearchKeyKeyword{Not: name == "UNKEYWORD", Flag: imap.Flag(flag)}, nil
	case "HEADER":
		var key imap.SearchKeyHeader
		if !dec.ExpectSP() || !dec.Expect(dec.AString(&key.Field), "header-fld-name") || !dec.ExpectSP() || !dec.ExpectAString(&key.Value) {
			return nil, dec.Err()
		}
		return &key, nil
	case "LARGER", "SMALLER":
		key := &imap.SearchKeySize{Larger: name == "LARGER"}
		if !dec.ExpectSP() || !dec.ExpectNumber(&key.Size) {
			return nil, dec.Err()
		}
		return key, nil
	case "NOT":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		key, err := c.readSearchKey(dec)
		if err != nil {
			return nil, err
		}
		return &imap.SearchKeyNot{Key: key}, nil
	case "OR":
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		left, err := c.readSearchKey(dec)
		if err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		right, err := c.readSearchKey(dec)
		if err != nil {
			return nil, err
		}
		return &imap.SearchKeyOr{Left: left, Right: right}, nil
	case "UID":
		var set imap.NumSet
		if !dec.ExpectSP() || !dec.ExpectNumSet(imapwire.NumKindUID, &set) || !c.requireNumSetDec(dec, set) {
			return nil, dec.Err()
		}
		return &imap.SearchKeyUID{Set: set.(imap.UIDSet)}, nil
	case "MODSEQ":
		if !c.requireDec(dec, imap.CapCondStore, "MODSEQ search-key") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		return readSearchKeyModSeq(dec)
	default:
		return nil, dec.Errorf("未知的搜索键 %q", name)
	}
}

// readSearchKeyModSeq 读取 MODSEQ 之后的 [entry-name SP entry-type-req SP] mod-sequence-value。
func readSearchKeyModSeq(dec *imapwire.Decoder) (imap.SearchKey, error) {
	var key imap.SearchKeyModSeq
	if dec.Quoted(&key.MetadataName) {
		if !validEntryFlagName(key.MetadataName) {
			return nil, dec.Errorf("无效的 entry-name %q", key.MetadataName)
		}
		var typ string
		if !dec.ExpectSP() || !dec.Expect(dec.Atom(&typ), "entry-type-req") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		key.MetadataType = imap.SearchCriteriaMetadataType(strings.ToLower(typ))
		switch key.MetadataType {
		case imap.SearchCriteriaMetadataAll, imap.SearchCriteriaMetadataPrivate, imap.SearchCriteriaMetadataShared:
		default:
			return nil, dec.Errorf("未知的 entry-type-req %q", typ)
		}
	}
	var modSeq int64
	if !dec.ExpectNumber64(&modSeq) {
		return nil, dec.Err()
	}
	key.ModSeq = uint64(modSeq)
	return &key, nil
}

// validEntryFlagName 报告 name 是否为 "/flags/" 加非空的标志名。
func validEntryFlagName(name string) bool {
	const prefix = "/flags/"
	return len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}

func (c *Codec) writeSearchKeys(enc *imapwire.Encoder, keys []imap.SearchKey) {
	if len(keys) == 0 {
		enc.Errorf("SEARCH 至少需要一个搜索键")
		return
	}
	for _, key := range keys {
		enc.SP()
		c.writeSearchKey(enc, key, 0)
	}
}

func (c *Codec) writeSearchKey(enc *imapwire.Encoder, key imap.SearchKey, depth int) {
	// 解码时 command 和每层 search-key 各占一层
	if depth > imapwire.DefaultMaxDepth-2 {
		enc.Errorf("搜索键嵌套太深")
		return
	}
	switch key := key.(type) {
	case imap.SearchKeyBasic:
		if _, ok := searchKeyBasic(string(key)); !ok {
			enc.Errorf("未知的搜索键 %q", key)
			return
		}
		enc.Atom(string(key))
	case *imap.SearchKeyString:
		if _, ok := searchKeyStringName(string(key.Name)); !ok {
			enc.Errorf("未知的搜索键 %q", key.Name)
			return
		}
		enc.Atom(string(key.Name)).SP().AString(key.Value)
	case *imap.SearchKeyDate:
		if _, ok := searchKeyDateName(string(key.Name)); !ok {
			enc.Errorf("未知的搜索键 %q", key.Name)
			return
		}
		enc.Atom(string(key.Name)).SP().Date(key.Date)
	case *imap.SearchKeyKeyword:
		name := "KEYWORD"
		if key.Not {
			name = "UNKEYWORD"
		}
		enc.Atom(name).SP().Atom(string(key.Flag))
	case *imap.SearchKeyHeader:
		enc.Atom("HEADER").SP().AString(key.Field).SP().AString(key.Value)
	case *imap.SearchKeySize:
		name := "SMALLER"
		if key.Larger {
			name = "LARGER"
		}
		enc.Atom(name).SP().Number(key.Size)
	case *imap.SearchKeyNot:
		enc.Atom("NOT").SP()
		c.writeSearchKey(enc, key.Key, depth+1)
	case *imap.SearchKeyOr:
		enc.Atom("OR").SP()
		c.writeSearchKey(enc, key.Left, depth+1)
		enc.SP()
		c.writeSearchKey(enc, key.Right, depth+1)
	case *imap.SearchKeySeqSet:
		if uidSet, ok := key.Set.(imap.UIDSet); ok && !imap.IsSearchRes(uidSet) {
			enc.Errorf("序列号搜索键不能使用 UIDSet")
			return
		}
		c.writeNumSet(enc, key.Set)
	case *imap.SearchKeyUID:
		enc.Atom("UID").SP()
		c.writeNumSet(enc, key.Set)
	case *imap.SearchKeyAnd:
		if len(key.Keys) == 0 {
			enc.Errorf("空的搜索键列表")
			return
		}
		enc.List(len(key.Keys), func(i int) {
			c.writeSearchKey(enc, key.Keys[i], depth+1)
		})
	case *imap.SearchKeyModSeq:
		if !c.requireEnc(enc, imap.CapCondStore, "MODSEQ search-key") {
			return
		}
		if key.ModSeq > math.MaxInt64 {
			enc.Errorf("无效的 mod-sequence-value %v", key.ModSeq)
			return
		}
		if key.MetadataName == "" && key.MetadataType != "" {
			enc.Errorf("entry-type-req %q 缺少 entry-name", key.MetadataType)
			return
		}
		enc.Atom("MODSEQ").SP()
		if key.MetadataName != "" {
			if !validEntryFlagName(key.MetadataName) {
				enc.Errorf("无效的 entry-name %q", key.MetadataName)
				return
			}
			switch key.MetadataType {
			case imap.SearchCriteriaMetadataAll, imap.SearchCriteriaMetadataPrivate, imap.SearchCriteriaMetadataShared:
			default:
				enc.Errorf("未知的 entry-type-req %q", key.MetadataType)
				return
			}
			enc.Quoted(key.MetadataName).SP().Atom(string(key.MetadataType)).SP()
		}
		enc.Number64(int64(key.ModSeq))
	case nil:
		enc.Errorf("缺少搜索键")
	default:
		enc.Errorf("未知的搜索键类型 %T", key)
	}
}

// readSearchReturn 读取 RETURN 之后的 "(" [search-return-opt *(SP search-return-opt)] ")"。
func (c *Codec) readSearchReturn(dec *imapwire.Decoder) (*imap.SearchOptions, error) {
	var options imap.SearchOptions
	err := dec.ExpectList(func() error {
		name, err := readName(dec, imapwire.IsAtomChar, "search-return-opt")
		if err != nil {
			return err
		}
		switch name {
		case "MIN":
			options.ReturnMin = true
		case "MAX":
			options.ReturnMax = true
		case "ALL":
			options.ReturnAll = true
		case "COUNT":
			options.ReturnCount = true
		case "SAVE":
			if !c.requireDec(dec, imap.CapSearchRes, "SAVE") {
				return dec.Err()
			}
			options.ReturnSave = true
		default:
			return dec.Errorf("未知的 RETURN 选项 %q", name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &options, nil
}

func (c *Codec) writeSearchReturn(enc *imapwire.Encoder, options *imap.SearchOptions) {
	var l []string
	if options.ReturnMin {
		l = append(l, "MIN")
	}
	if options.ReturnMax {
		l = append(l, "MAX")
	}
	if options.ReturnAll {
		l = append(l, "ALL")
	}
	if options.ReturnCount {
		l = append(l, "COUNT")
	}
	if options.ReturnSave {
		if !c.requireEnc(enc, imap.CapSearchRes, "SAVE") {
			return
		}
		l = append(l, "SAVE")
	}
	enc.Atom("RETURN").SP().List(len(l), func(i int) {
		enc.Atom(l[i])
	})
}

func (c *Codec) readSearchData(dec *imapwire.Decoder) (*imap.SearchData, error) {
	var data imap.SearchData
	for dec.SP() {
		if dec.Special('(') {
			if !c.requireDec(dec, imap.CapCondStore, "SEARCH MODSEQ") {
				return nil, dec.Err()
			}
			if !dec.ExpectKeyword("MODSEQ") || !dec.ExpectSP() || !dec.ExpectModSeq(&data.ModSeq) || !dec.ExpectSpecial(')') {
				return nil, dec.Err()
			}
			break
		}
		var num uint32
		if !dec.ExpectNZNumber(&num) {
			return nil, dec.Err()
		}
		data.Nums = append(data.Nums, num)
	}
	return &data, dec.Err()
}

func (c *Codec) writeSearchData(enc *imapwire.Encoder, data *imap.SearchData) {
	enc.Atom("SEARCH")
	writeNumList(enc, data.Nums)
	if data.ModSeq != 0 {
		if !c.requireEnc(enc, imap.CapCondStore, "SEARCH MODSEQ") {
			return
		}
		enc.SP().Special('(').Atom("MODSEQ").SP().ModSeq(data.ModSeq).Special(')')
	}
}

func (c *Codec) readESearchData(dec *imapwire.Decoder) (*imap.ESearchData, error) {
	var data imap.ESearchData
	first, seenData := true, false
	for dec.SP() {
		if first && dec.Special('(') {
			first = false
			if !dec.ExpectKeyword("TAG") || !dec.ExpectSP() || !dec.ExpectString(&data.Tag) || !dec.ExpectSpecial(')') {
				return nil, dec.Err()
			}
			continue
		}
		first = false

		name, err := readName(dec, imapwire.IsAtomChar, "search-return-data")
		if err != nil {
			return nil, err
		}
		if name == "UID" {
			if seenData || data.UID {
				return nil, dec.Errorf("UID 必须出现在返回数据之前")
			}
			data.UID = true
			continue
		}
		seenData = true
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		switch name {
		case "MIN":
			if !dec.ExpectNZNumber(&data.Min) {
				return nil, dec.Err()
			}
		case "MAX":
			if !dec.ExpectNZNumber(&data.Max) {
				return nil, dec.Err()
			}
		case "ALL":
			kind := imapwire.NumKindSeq
			if data.UID {
				kind = imapwire.NumKindUID
			}
			if !dec.ExpectNumSet(kind, &data.All) || !c.requireNumSetDec(dec, data.All) {
				return nil, dec.Err()
			}
		case "COUNT":
			var count uint32
			if !dec.ExpectNumber(&count) {
				return nil, dec.Err()
			}
			data.Count = &count
		case "MODSEQ":
			if !c.requireDec(dec, imap.CapCondStore, "ESEARCH MODSEQ") || !dec.ExpectModSeq(&data.ModSeq) {
				return nil, dec.Err()
			}
		default:
			return nil, dec.Errorf("未知的 ESEARCH 返回数据 %q", name)
		}
	}
	return &data, dec.Err()
}

func (c *Codec) writeESearchData(enc *imapwire.Encoder, data *imap.ESearchData) {
	enc.Atom("ESEARCH")
	if data.Tag != "" {
		enc.SP().Special('(').Atom("TAG").SP().String(data.Tag).Special(')')
	}
	if data.UID {
		enc.SP().Atom("UID")
	}
	if data.Min != 0 {
		enc.SP().Atom("MIN").SP().NZNumber(data.Min)
	}
	if data.Max != 0 {
		enc.SP().Atom("MAX").SP().NZNumber(data.Max)
	}
	if data.All != nil {
		switch data.All.(type) {
		case imap.UIDSet:
			if !data.UID && !imap.IsSearchRes(data.All) {
				enc.Errorf("ESEARCH ALL 是 UIDSet，但 UID 为 false")
				return
			}
		case imap.SeqSet:
			if data.UID {
				enc.Errorf("ESEARCH ALL 是 SeqSet，但 UID 为 true")
				return
			}
		}
		enc.SP().Atom("ALL").SP()
		c.writeNumSet(enc, data.All)
	}
	if data.Count != nil {
		enc.SP().Atom("COUNT").SP().Number(*data.Count)
	}
	if data.ModSeq != 0 {
		if !c.requireEnc(enc, imap.CapCondStore, "ESEARCH MODSEQ") {
			return
		}
		enc.SP().Atom("MODSEQ").SP().ModSeq(data.ModSeq)
	}
}
