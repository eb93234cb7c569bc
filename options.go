package main

import (
	"flag"
	"fmt"
	"math"
	"runtime"

	"atlaspack/rectpack"

	"github.com/BurntSushi/toml"
)

// Options 是命令行工具的全部配置。优先级：默认值 < 配置文件 < 命令行显式参数。
type Options struct {
	ConfigPath  string `toml:"-"`            // 配置文件路径
	UnpackPath  string `toml:"unpack"`       // 解包路径
	InputDir    string `toml:"input"`        // 输入目录
	OutputDir   string `toml:"output"`       // 输出目录
	MaxSize     int    `toml:"max_size"`     // 页面最大尺寸
	Spacing     int    `toml:"spacing"`      // 间距
	Padding     int    `toml:"padding"`      // 出血边距
	PowerOfTwo  bool   `toml:"power_of_two"` // 是否使用2的幂
	Threshold   uint   `toml:"threshold"`    // 透明度阈值
	NaturalSort bool   `toml:"natural_sort"` // 是否按文件名自然排序
	Sort        string `toml:"sort"`         // 打包排序方式
	Workers     int    `toml:"workers"`      // 并发解码数量
	Debug       bool   `toml:"debug"`        // 输出各阶段耗时
}

func defaultOptions() Options {
	return Options{
		InputDir:    "input",
		OutputDir:   "output",
		MaxSize:     rectpack.DefaultSize,
		NaturalSort: true,
		Sort:        "area",
		Workers:     runtime.NumCPU(),
	}
}

// parseOptions 解析命令行参数，如果指定了 -config 则先加载配置文件，
// 再重新应用命令行中显式给出的参数。
func parseOptions(args []string) (*Options, error) {
	opts := defaultOptions()
	fs := flag.NewFlagSet("atlaspack", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "TOML 配置文件路径")
	fs.StringVar(&opts.UnpackPath, "unpack", opts.UnpackPath, "解包路径(atlases.json)")
	fs.StringVar(&opts.InputDir, "input", opts.InputDir, "输入目录")
	fs.StringVar(&opts.OutputDir, "output", opts.OutputDir, "输出目录")
	fs.IntVar(&opts.MaxSize, "max-size", opts.MaxSize, "页面最大宽度/高度")
	fs.IntVar(&opts.Spacing, "spacing", opts.Spacing, "精灵之间的间距")
	fs.IntVar(&opts.Padding, "padding", opts.Padding, "出血边距")
	fs.BoolVar(&opts.PowerOfTwo, "pow-of-two", opts.PowerOfTwo, "页面尺寸取整到2的幂")
	fs.UintVar(&opts.Threshold, "threshold", opts.Threshold, "透明度阈值(0-255)")
	fs.BoolVar(&opts.NaturalSort, "natural-sort", opts.NaturalSort, "按文件名自然排序")
	fs.StringVar(&opts.Sort, "sort", opts.Sort, "打包排序方式 (area, perimeter, maxside, minside, diff, ratio)")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "并发解码的图片数量")
	fs.BoolVar(&opts.Debug, "debug", opts.Debug, "输出各阶段耗时")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.ConfigPath != "" {
		explicit := make(map[string]string)
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if _, err := toml.DecodeFile(opts.ConfigPath, &opts); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return nil, err
			}
		}
	}

	if opts.Threshold > math.MaxUint8 {
		return nil, fmt.Errorf("透明度阈值必须在 0-255 之间 (给定 %d)", opts.Threshold)
	}
	if _, err := rectpack.ResolveSorter(opts.Sort); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &opts, nil
}

// newPacker 根据配置创建打包器
func newPacker(opts *Options) (*rectpack.Packer, error) {
	packer, err := rectpack.NewPacker(opts.MaxSize)
	if err != nil {
		return nil, err
	}
	sorter, err := rectpack.ResolveSorter(opts.Sort)
	if err != nil {
		return nil, err
	}
	packer.Sorter(sorter, false)
	packer.Spacing = opts.Spacing
	packer.Padding = opts.Padding
	packer.PowerOfTwo = opts.PowerOfTwo
	packer.AlphaThreshold = uint8(opts.Threshold)
	return packer, nil
}
