package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"atlaspack/rectpack"
)

const (
	VERSION = "0.2.0"
)

// Region 描述一个矩形区域
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Dimension 描述宽高
type Dimension struct {
	W int `json:"w"`
	H int `json:"h"`
}

// SpriteInfo 存储精灵图的信息
type SpriteInfo struct {
	Filename   string    `json:"filename"`
	ID         uint64    `json:"id"`
	Region     Region    `json:"region"`     // 在图集中的位置和裁剪后尺寸
	SourceSize Dimension `json:"sourceSize"` // 原始尺寸
	SourceRect Region    `json:"sourceRect"` // 裁剪区域在原图中的位置
	Trimmed    bool      `json:"trimmed"`
}

// EmptySprite 是完全透明、没有放进任何图集的图片
type EmptySprite struct {
	Filename   string    `json:"filename"`
	ID         uint64    `json:"id"`
	SourceSize Dimension `json:"sourceSize"`
}

// AtlasInfo 存储单个图集的信息
type AtlasInfo struct {
	AtlasName  string                `json:"atlasName"`
	SpriteList map[string]SpriteInfo `json:"spriteList"`
	TotalSize  Dimension             `json:"totalSize"`
	Used       float64               `json:"used"`
}

// MultiAtlasData 存储多个图集的信息
type MultiAtlasData struct {
	Meta struct {
		Version    string `json:"version"`
		Timestamp  string `json:"timestamp"`
		MaxSize    int    `json:"maxSize"`
		Padding    int    `json:"padding"`
		Spacing    int    `json:"spacing"`
		PowerOfTwo bool   `json:"powerOfTwo"`
	} `json:"meta"`
	Atlases []AtlasInfo   `json:"atlases"`
	Empty   []EmptySprite `json:"empty,omitempty"`
}

// buildAtlasData 根据打包结果生成图集元数据，条目 ID 是 imagePaths 的下标
func buildAtlasData(packer *rectpack.Packer, imagePaths, atlasImagePaths []string) *MultiAtlasData {
	data := &MultiAtlasData{}
	data.Meta.Version = VERSION
	data.Meta.Timestamp = time.Now().Format("2006-01-02 15:04:05")
	data.Meta.MaxSize = packer.MaxSize
	data.Meta.Padding = packer.Padding
	data.Meta.Spacing = packer.Spacing
	data.Meta.PowerOfTwo = packer.PowerOfTwo

	data.Atlases = make([]AtlasInfo, len(packer.Pages()))
	for i, page := range packer.Pages() {
		b := page.Bounds()
		data.Atlases[i] = AtlasInfo{
			AtlasName:  filepath.Base(atlasImagePaths[i]),
			SpriteList: make(map[string]SpriteInfo),
			TotalSize:  Dimension{W: b.Dx(), H: b.Dy()},
			Used:       packer.Used(i),
		}
	}

	for _, e := range packer.Entries() {
		name := filepath.Base(imagePaths[e.ID])
		if e.Empty {
			data.Empty = append(data.Empty, EmptySprite{
				Filename:   name,
				ID:         e.ID,
				SourceSize: Dimension{W: e.Frame.Width, H: e.Frame.Height},
			})
			continue
		}
		data.Atlases[e.Page].SpriteList[name] = SpriteInfo{
			Filename:   name,
			ID:         e.ID,
			Region:     Region{X: e.Packed.X, Y: e.Packed.Y, W: e.Packed.Width, H: e.Packed.Height},
			SourceSize: Dimension{W: e.Frame.Width, H: e.Frame.Height},
			SourceRect: Region{X: -e.Frame.X, Y: -e.Frame.Y, W: e.Packed.Width, H: e.Packed.Height},
			Trimmed:    e.Trimmed(),
		}
	}
	return data
}

// generateMultiAtlasJSON 生成包含多个图集信息的JSON元数据
func generateMultiAtlasJSON(data *MultiAtlasData, outputPath string) error {
	defer track(&debugInfo.CreateJsonTime)()
	// 将数据编码为JSON
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, jsonData, 0644)
}

// outputResult 输出打包结果
func outputResult(packer *rectpack.Packer) {
	empty := 0
	for _, e := range packer.Entries() {
		if e.Empty {
			empty++
		}
	}
	fmt.Printf("已打包图片数量: %d\n", len(packer.Entries())-empty)
	fmt.Printf("完全透明图片数量: %d\n", empty)
	for i, page := range packer.Pages() {
		b := page.Bounds()
		fmt.Printf("图集 #%d: %dx%d, 空间利用率: %.2f%%\n", i, b.Dx(), b.Dy(), packer.Used(i)*100)
	}
}

// run 读取输入目录中的图片，打包并写出图集与元数据
func run(opts *Options) error {
	imagePaths, err := listImageFiles(opts)
	if err != nil {
		return err
	}
	fmt.Printf("找到 %d 个图片文件\n", len(imagePaths))

	images, err := decodeImages(imagePaths, opts.Workers)
	if err != nil {
		return err
	}

	packer, err := newPacker(opts)
	if err != nil {
		return err
	}
	if err := packing(packer, images); err != nil {
		var oversized *rectpack.OversizedError
		if errors.As(err, &oversized) {
			return fmt.Errorf("图片 %s 超过最大图集尺寸: %w", imagePaths[oversized.ID], err)
		}
		return err
	}
	outputResult(packer)

	atlasImagePaths, err := writePages(packer, opts.OutputDir)
	if err != nil {
		return err
	}
	// 图集的JSON元数据
	multiAtlasJsonPath := filepath.Join(opts.OutputDir, "atlases.json")
	data := buildAtlasData(packer, imagePaths, atlasImagePaths)
	if err := generateMultiAtlasJSON(data, multiAtlasJsonPath); err != nil {
		return fmt.Errorf("生成JSON元数据失败: %w", err)
	}

	fmt.Println(decorateText(fmt.Sprintf("成功生成 %d 个图集:", len(atlasImagePaths)), SuccessMessage))
	for i, path := range atlasImagePaths {
		fmt.Printf("- 图集 #%d: %s\n", i, path)
	}
	fmt.Printf("- 图集元数据: %s\n", multiAtlasJsonPath)
	return nil
}

func main() {
	log.SetFlags(0)

	opts, err := parseOptions(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(decorateText(err.Error(), ErrorMessage))
	}
	debugInfo.IsDebug = opts.Debug

	start := time.Now()
	if opts.UnpackPath != "" {
		err = unpack(opts)
	} else {
		err = run(opts)
	}
	if err != nil {
		log.Fatal(decorateText(err.Error(), ErrorMessage))
	}
	debugInfo.TotalTime = time.Since(start)
	if debugInfo.IsDebug {
		printDebugInfo()
	}
}
