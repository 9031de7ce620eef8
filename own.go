package imap

// OwnCommand 把命令中所有借用输入缓冲区的字面量复制出来，之后可以重用缓冲区。
// cmd 本身被修改并返回。
func OwnCommand(cmd *Command) *Command {
	if cmd == nil {
		return nil
	}
	if body, ok := cmd.Body.(*CommandAppend); ok {
		body.Message = body.Message.Own()
	}
	return cmd
}

// OwnResponse 把响应中所有借用输入缓冲区的字面量复制出来，之后可以重用缓冲区。
// resp 本身被修改并返回。
func OwnResponse(resp Response) Response {
	data, ok := resp.(*FetchData)
	if !ok {
		return resp
	}
	for _, item := range data.Items {
		switch item := item.(type) {
		case *FetchItemDataBodySection:
			item.Literal = item.Literal.Own()
		case *FetchItemDataBinarySection:
			item.Literal = item.Literal.Own()
		case *FetchItemDataRFC822:
			item.Literal = item.Literal.Own()
		}
	}
	return resp
}
