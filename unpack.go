package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// unpackName 返回解包输出的文件名，统一保存为 PNG
func unpackName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// 解包图集函数：按元数据把每个精灵恢复为原始(未裁剪)尺寸
func unpack(opts *Options) error {
	if opts.UnpackPath == "" {
		return fmt.Errorf("未指定解包路径")
	}

	// 读取JSON文件
	jsonData, err := os.ReadFile(opts.UnpackPath)
	if err != nil {
		return fmt.Errorf("读取图集JSON文件失败: %w", err)
	}

	// 解析JSON
	var multiAtlasData MultiAtlasData
	if err := json.Unmarshal(jsonData, &multiAtlasData); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}

	// 创建输出目录
	outputDir := opts.OutputDir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	count := 0
	atlasDir := filepath.Dir(opts.UnpackPath)
	for _, atlas := range multiAtlasData.Atlases {
		// 加载图集图片
		atlasImg, err := imaging.Open(filepath.Join(atlasDir, atlas.AtlasName))
		if err != nil {
			return fmt.Errorf("打开图集图片失败: %w", err)
		}

		// 处理每个子图
		for name, sprite := range atlas.SpriteList {
			r := sprite.Region
			subImg := imaging.Crop(atlasImg, image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H))
			// 把裁剪后的子图放回原始尺寸的透明画布
			if sprite.Trimmed {
				canvas := imaging.New(sprite.SourceSize.W, sprite.SourceSize.H, color.NRGBA{0, 0, 0, 0})
				subImg = imaging.Paste(canvas, subImg, image.Pt(sprite.SourceRect.X, sprite.SourceRect.Y))
			}
			if err := imaging.Save(subImg, filepath.Join(outputDir, unpackName(name))); err != nil {
				return fmt.Errorf("保存子图 %s 失败: %w", name, err)
			}
			count++
		}
	}

	// 完全透明的图片恢复为同尺寸的透明图片
	for _, sprite := range multiAtlasData.Empty {
		img := imaging.New(sprite.SourceSize.W, sprite.SourceSize.H, color.NRGBA{0, 0, 0, 0})
		if err := imaging.Save(img, filepath.Join(outputDir, unpackName(sprite.Filename))); err != nil {
			return fmt.Errorf("保存子图 %s 失败: %w", sprite.Filename, err)
		}
		count++
	}
	fmt.Printf("图集解包完成，共 %d 个图片，输出到: %s\n", count, outputDir)
	return nil
}
