package imap

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FetchItem 是 FETCH 命令请求的一个数据项。
//
// FetchItem 值可以是 FetchItemKeyword、*FetchItemBodyStructure、
// *FetchItemBodySection、*FetchItemBinarySection 或 *FetchItemBinarySectionSize。
type FetchItem interface {
	fetchItem()
}

// FetchItemKeyword 是不带参数的 FETCH 数据项。
type FetchItemKeyword string

const (
	FetchItemEnvelope     FetchItemKeyword = "ENVELOPE"
	FetchItemFlags        FetchItemKeyword = "FLAGS"
	FetchItemInternalDate FetchItemKeyword = "INTERNALDATE"
	FetchItemRFC822       FetchItemKeyword = "RFC822"
	FetchItemRFC822Header FetchItemKeyword = "RFC822.HEADER"
	FetchItemRFC822Size   FetchItemKeyword = "RFC822.SIZE"
	FetchItemRFC822Text   FetchItemKeyword = "RFC822.TEXT"
	FetchItemUID          FetchItemKeyword = "UID"
	FetchItemModSeq       FetchItemKeyword = "MODSEQ" // CONDSTORE

	// 宏只能单独出现，不能放在列表中。
	FetchItemAll  FetchItemKeyword = "ALL"  // FLAGS INTERNALDATE RFC822.SIZE ENVELOPE
	FetchItemFast FetchItemKeyword = "FAST" // FLAGS INTERNALDATE RFC822.SIZE
	FetchItemFull FetchItemKeyword = "FULL" // FLAGS INTERNALDATE RFC822.SIZE ENVELOPE BODY
)

// IsMacro 报告 item 是否是 ALL、FAST 或 FULL 宏。
func (item FetchItemKeyword) IsMacro() bool {
	switch item {
	case FetchItemAll, FetchItemFast, FetchItemFull:
		return true
	}
	return false
}

// Expand 把宏展开为对应的数据项。非宏返回只包含 item 本身的列表。
func (item FetchItemKeyword) Expand() []FetchItem {
	switch item {
	case FetchItemAll:
		return []FetchItem{FetchItemFlags, FetchItemInternalDate, FetchItemRFC822Size, FetchItemEnvelope}
	case FetchItemFast:
		return []FetchItem{FetchItemFlags, FetchItemInternalDate, FetchItemRFC822Size}
	case FetchItemFull:
		return []FetchItem{FetchItemFlags, FetchItemInternalDate, FetchItemRFC822Size, FetchItemEnvelope, &FetchItemBodyStructure{}}
	default:
		return []FetchItem{item}
	}
}

func (FetchItemKeyword) fetchItem() {}

// FetchOptions 包含 FETCH 命令的选项。使用 Items 转换为数据项列表。
type FetchOptions struct {
	// 要获取的字段
	BodyStructure     *FetchItemBodyStructure       // 消息的体结构
	Envelope          bool                          // 是否获取信封信息
	Flags             bool                          // 是否获取标志
	InternalDate      bool                          // 是否获取内部日期
	RFC822Size        bool                          // 是否获取 RFC822 大小
	UID               bool                          // 是否获取 UID
	BodySection       []*FetchItemBodySection       // 体部分
	BinarySection     []*FetchItemBinarySection     // 二进制部分（要求支持 BINARY）
	BinarySectionSize []*FetchItemBinarySectionSize // 二进制部分大小（要求支持 BINARY）
	ModSeq            bool                          // 是否获取修改序列（要求支持 CONDSTORE）

	ChangedSince uint64 // 从某个修改时间点后获取
}

// Items 返回选项对应的数据项列表，顺序固定。
func (options *FetchOptions) Items() []FetchItem {
	var items []FetchItem
	if options.UID {
		items = append(items, FetchItemUID)
	}
	if options.Flags {
		items = append(items, FetchItemFlags)
	}
	if options.InternalDate {
		items = append(items, FetchItemInternalDate)
	}
	if options.RFC822Size {
		items = append(items, FetchItemRFC822Size)
	}
	if options.Envelope {
		items = append(items, FetchItemEnvelope)
	}
	if options.BodyStructure != nil {
		items = append(items, options.BodyStructure)
	}
	for _, bs := range options.BodySection {
		items = append(items, bs)
	}
	for _, bs := range options.BinarySection {
		items = append(items, bs)
	}
	for _, bss := range options.BinarySectionSize {
		items = append(items, bss)
	}
	if options.ModSeq {
		items = append(items, FetchItemModSeq)
	}
	return items
}

// FetchItemBodyStructure 是 BODY 或 BODYSTRUCTURE 数据项。
type FetchItemBodyStructure struct {
	Extended bool // 为 true 时是 BODYSTRUCTURE，包含扩展信息
}

func (*FetchItemBodyStructure) fetchItem() {}

// PartSpecifier 描述要获取的部分的头、体或两者。
type PartSpecifier string

const (
	PartSpecifierNone   PartSpecifier = ""       // 不获取任何部分
	PartSpecifierHeader PartSpecifier = "HEADER" // 获取头部
	PartSpecifierMIME   PartSpecifier = "MIME"   // 获取 MIME 部分
	PartSpecifierText   PartSpecifier = "TEXT"   // 获取文本部分
)

// SectionPartial 描述获取消息有效载荷时的字节范围。
//
// 在 FETCH 响应中只有 Offset 会被传输，Size 为 0。
type SectionPartial struct {
	Offset, Size int64 // 偏移量和大小
}

// FetchItemBodySection 是一个 FETCH BODY[] 数据项。
//
// 要获取消息的完整体，使用零的 FetchItemBodySection：
// imap.FetchItemBodySection{}
//
// 要仅获取特定部分，使用 Part 字段：
// imap.FetchItemBodySection{Part: []int{1, 2, 3}}
//
// 要仅获取消息的头部，使用 Specifier 字段：
// imap.FetchItemBodySection{Specifier: imap.PartSpecifierHeader}
//
// HeaderFields 或 HeaderFieldsNot 非空时 Specifier 必须是 PartSpecifierHeader，
// 线路上对应 HEADER.FIELDS 和 HEADER.FIELDS.NOT。
type FetchItemBodySection struct {
	Specifier       PartSpecifier   // 指定获取的部分类型
	Part            []int           // 指定部分的索引
	HeaderFields    []string        // 指定要获取的头部字段
	HeaderFieldsNot []string        // 指定不获取的头部字段
	Partial         *SectionPartial // 指定部分内容的偏移和大小
	Peek            bool            // 是否使用 Peek 模式
}

func (*FetchItemBodySection) fetchItem() {}

// FetchItemBinarySection 是一个 FETCH BINARY[] 数据项。
type FetchItemBinarySection struct {
	Part    []int           // 指定部分的索引
	Partial *SectionPartial // 指定部分内容的偏移和大小
	Peek    bool            // 是否使用 Peek 模式
}

func (*FetchItemBinarySection) fetchItem() {}

// FetchItemBinarySectionSize 是一个 FETCH BINARY.SIZE[] 数据项。
type FetchItemBinarySectionSize struct {
	Part []int // 指定部分的索引
}

func (*FetchItemBinarySectionSize) fetchItem() {}

// FetchData 是 "* n FETCH (...)" 响应。
type FetchData struct {
	SeqNum uint32
	Items  []FetchItemData
}

func (*FetchData) response() {}

// UID 返回 UID 数据项的值，没有时返回 0。
func (data *FetchData) UID() UID {
	for _, item := range data.Items {
		if item, ok := item.(*FetchItemDataUID); ok {
			return item.UID
		}
	}
	return 0
}

// FetchItemData 是 FETCH 响应中的一个数据项。
type FetchItemData interface {
	fetchItemData()
}

// FetchItemDataFlags 是 FLAGS 数据项。
type FetchItemDataFlags struct {
	Flags []Flag
}

// FetchItemDataEnvelope 是 ENVELOPE 数据项。
type FetchItemDataEnvelope struct {
	Envelope *Envelope
}

// FetchItemDataInternalDate 是 INTERNALDATE 数据项。
type FetchItemDataInternalDate struct {
	Time time.Time
}

// FetchItemDataRFC822Size 是 RFC822.SIZE 数据项。
type FetchItemDataRFC822Size struct {
	Size int64
}

// FetchItemDataUID 是 UID 数据项。
type FetchItemDataUID struct {
	UID UID
}

// FetchItemDataBodyStructure 是 BODY 或 BODYSTRUCTURE 数据项。
//
// IsExtended 只决定数据项名称是 BODY 还是 BODYSTRUCTURE，扩展数据只要存在就会输出。
type FetchItemDataBodyStructure struct {
	BodyStructure BodyStructure
	IsExtended    bool
}

// FetchItemDataBodySection 是 BODY[] 数据项。Literal 为 nil 表示 NIL。
type FetchItemDataBodySection struct {
	Section *FetchItemBodySection
	Literal *Literal
}

// FetchItemDataBinarySection 是 BINARY[] 数据项（BINARY）。Literal 为 nil 表示 NIL。
type FetchItemDataBinarySection struct {
	Section *FetchItemBinarySection
	Literal *Literal
}

// FetchItemDataBinarySectionSize 是 BINARY.SIZE[] 数据项（BINARY）。
type FetchItemDataBinarySectionSize struct {
	Part []int
	Size uint32
}

// FetchItemDataRFC822 是 RFC822、RFC822.HEADER 或 RFC822.TEXT 数据项。
type FetchItemDataRFC822 struct {
	Item    FetchItemKeyword
	Literal *Literal
}

// FetchItemDataModSeq 是 MODSEQ 数据项（CONDSTORE）。
type FetchItemDataModSeq struct {
	ModSeq uint64
}

func (*FetchItemDataFlags) fetchItemData()             {}
func (*FetchItemDataEnvelope) fetchItemData()          {}
func (*FetchItemDataInternalDate) fetchItemData()      {}
func (*FetchItemDataRFC822Size) fetchItemData()        {}
func (*FetchItemDataUID) fetchItemData()               {}
func (*FetchItemDataBodyStructure) fetchItemData()     {}
func (*FetchItemDataBodySection) fetchItemData()       {}
func (*FetchItemDataBinarySection) fetchItemData()     {}
func (*FetchItemDataBinarySectionSize) fetchItemData() {}
func (*FetchItemDataRFC822) fetchItemData()            {}
func (*FetchItemDataModSeq) fetchItemData()            {}

// BodyStructure 描述消息的体结构。
//
// BodyStructure 值可以是 *BodyStructureSinglePart 或 *BodyStructureMultiPart。
type BodyStructure interface {
	// MediaType 返回该体结构的 MIME 类型，例如 "text/plain"。
	MediaType() string
	// Walk 遍历体结构树，对每个部分调用 f，
	// 包括 bs 本身。部分按 DFS 前序访问。
	Walk(f BodyStructureWalkFunc)
	// Disposition 返回体结构的处置方式（如果可用）。
	Disposition() *BodyStructureDisposition

	bodyStructure()
}

// BodyStructureSinglePart 是具有单个部分的体结构。
//
// Params 的键为小写。ID 和 Description 为空时编码为 NIL。
type BodyStructureSinglePart struct {
	Type, Subtype string            // MIME 类型和子类型
	Params        map[string]string // 参数
	ID            string            // ID
	Description   string            // 描述
	Encoding      string            // 编码
	Size          uint32            // 大小

	MessageRFC822 *BodyStructureMessageRFC822 // 仅适用于 "message/rfc822"
	Text          *BodyStructureText          // 仅适用于 "text/*"
	Extended      *BodyStructureSinglePartExt // 扩展数据
}

func (bs *BodyStructureSinglePart) MediaType() string {
	return strings.ToLower(bs.Type) + "/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureSinglePart) Walk(f BodyStructureWalkFunc) {
	f([]int{1}, bs)
}

func (bs *BodyStructureSinglePart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

// Filename 解码体结构的文件名（如果有的话），RFC 2047 编码的文件名会被解码。
func (bs *BodyStructureSinglePart) Filename() string {
	var filename string
	if bs.Extended != nil && bs.Extended.Disposition != nil {
		filename = bs.Extended.Disposition.Params["filename"]
	}
	if filename == "" {
		// 注意：在 Content-Type 中使用 "name" 是不建议的
		filename = bs.Params["name"]
	}
	if dec, err := wordDecoder.DecodeHeader(filename); err == nil {
		filename = dec
	}
	return filename
}

func (*BodyStructureSinglePart) bodyStructure() {}

// BodyStructureMessageRFC822 包含针对 BodyStructureSinglePart 的 RFC 822 部分的元数据。
type BodyStructureMessageRFC822 struct {
	Envelope      *Envelope     // 消息信封
	BodyStructure BodyStructure // 消息体结构
	NumLines      int64         // 行数
}

// BodyStructureText 包含针对 BodyStructureSinglePart 的文本部分的元数据。
type BodyStructureText struct {
	NumLines int64 // 行数
}

// BodyStructureSinglePartExt 包含针对 BodyStructureSinglePart 的扩展体结构数据。
type BodyStructureSinglePartExt struct {
	MD5         string                    // 内容 MD5，为空时编码为 NIL
	Disposition *BodyStructureDisposition // 处置方式
	Language    []string                  // 语言
	Location    string                    // 位置
}

// BodyStructureMultiPart 是具有多个部分的体结构。
type BodyStructureMultiPart struct {
	Children []BodyStructure // 子部分，至少一个
	Subtype  string          // 子类型

	Extended *BodyStructureMultiPartExt // 扩展数据
}

func (bs *BodyStructureMultiPart) MediaType() string {
	return "multipart/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureMultiPart) Walk(f BodyStructureWalkFunc) {
	bs.walk(f, nil)
}

func (bs *BodyStructureMultiPart) walk(f BodyStructureWalkFunc, path []int) {
	if !f(path, bs) {
		return
	}

	pathBuf := make([]int, len(path))
	copy(pathBuf, path)
	for i, part := range bs.Children {
		num := i + 1
		partPath := append(pathBuf, num)

		switch part := part.(type) {
		case *BodyStructureSinglePart:
			f(partPath, part)
		case *BodyStructureMultiPart:
			part.walk(f, partPath)
		default:
			panic(fmt.Errorf("unsupported body structure type %T", part))
		}
	}
}

func (bs *BodyStructureMultiPart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

func (*BodyStructureMultiPart) bodyStructure() {}

// BodyStructureMultiPartExt 包含针对 BodyStructureMultiPart 的扩展体结构数据。
type BodyStructureMultiPartExt struct {
	Params      map[string]string         // 参数
	Disposition *BodyStructureDisposition // 处置方式
	Language    []string                  // 语言
	Location    string                    // 位置
}

// BodyStructureDisposition 描述部分的内容处置（在 Content-Disposition 头字段中指定）。
type BodyStructureDisposition struct {
	Value  string            // 处置方式
	Params map[string]string // 参数
}

// BodyStructureWalkFunc 是一个函数，用于访问 BodyStructure.Walk 遍历的每个体结构。
//
// path 参数包含 IMAP 部分路径。
//
// 函数应返回 true 以访问所有部分的子项，或 false 以跳过它们。
type BodyStructureWalkFunc func(path []int, part BodyStructure) (walkChildren bool)

// SortedParamKeys 按字典序返回参数的键，用于确定性的编码。
func SortedParamKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
