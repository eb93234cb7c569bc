package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// MessageType 区分不同类型的输出消息。
type MessageType int

const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
)

const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
)

// colorOutput 仅当标准输出是终端时才输出颜色。
var colorOutput = term.IsTerminal(int(os.Stdout.Fd()))

// decorateText 按消息类型为文本着色
func decorateText(s string, msgType MessageType) string {
	if !colorOutput {
		return s
	}
	switch msgType {
	case DefaultMessage:
		s = DefaultColor + s
	case StatusMessage:
		s = StatusColor + s
	case SuccessMessage:
		s = SuccessColor + s
	case ErrorMessage:
		s = ErrorColor + s
	default:
		return s
	}
	return s + DefaultColor
}

// DebugInfo 记录各阶段耗时
type DebugInfo struct {
	IsDebug              bool
	TotalTime            time.Duration
	PackTime             time.Duration
	FileSortTime         time.Duration
	ProcessImageTime     time.Duration
	CreateAtlasImageTime time.Duration
	CreateJsonTime       time.Duration
}

var debugInfo DebugInfo

// track 返回一个在 defer 中调用的函数，把耗时累加到 d 上
func track(d *time.Duration) func() {
	if !debugInfo.IsDebug {
		return func() {}
	}
	start := time.Now()
	return func() {
		*d += time.Since(start)
	}
}

func printDebugInfo() {
	fmt.Printf("图片预处理(解码等)耗时: %v\n", debugInfo.ProcessImageTime)
	fmt.Printf("文件排序耗时: %v\n", debugInfo.FileSortTime)
	fmt.Printf("算法耗时: %v\n", debugInfo.PackTime)
	fmt.Printf("图集创建耗时: %v\n", debugInfo.CreateAtlasImageTime)
	fmt.Printf("JSON元数据创建耗时: %v\n", debugInfo.CreateJsonTime)
	fmt.Printf("总耗时: %v\n", debugInfo.TotalTime)
}
