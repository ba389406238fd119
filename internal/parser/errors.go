package parser

import "fmt"

// DecodeError 字节流不是可识别的表格容器（致命，中止导入）
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s as a spreadsheet: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EmptyFileError 文件没有任何可用数据（致命，中止导入）
type EmptyFileError struct {
	Filename string
}

func (e *EmptyFileError) Error() string {
	return fmt.Sprintf("%s contains no usable sheets", e.Filename)
}
