package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"atlaspack/rectpack"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageExtensions 是输入目录中会被读取的文件扩展名
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Parallel 把 [0, n) 分成最多 workers 批并行执行 fn
func Parallel(n, workers int, fn func(i int)) {
	if workers <= 1 || n < workers {
		// 如果任务数量少于并发数，直接顺序执行
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	batchSize := (n + workers - 1) / workers
	for from := 0; from < n; from += batchSize {
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			for i := from; i < to; i++ {
				fn(i)
			}
		}(from, min(from+batchSize, n))
	}
	wg.Wait()
}

// listImageFiles 列出输入目录中的图片文件，并按文件名排序
func listImageFiles(opts *Options) ([]string, error) {
	defer track(&debugInfo.FileSortTime)()
	// 确保输入目录存在
	if _, err := os.Stat(opts.InputDir); err != nil {
		return nil, fmt.Errorf("输入目录 %s 不存在: %w", opts.InputDir, err)
	}
	dirEntries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(opts.InputDir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("输入目录 %s 中没有找到任何图片文件", opts.InputDir)
	}
	// 是否按文件名自然排序
	if opts.NaturalSort {
		sort.Sort(natural.StringSlice(paths))
	} else {
		sort.Strings(paths)
	}
	return paths, nil
}

// decodeImages 并行解码所有图片，结果与 paths 一一对应
func decodeImages(paths []string, workers int) ([]image.Image, error) {
	defer track(&debugInfo.ProcessImageTime)()
	images := make([]image.Image, len(paths))
	errs := make([]error, len(paths))
	Parallel(len(paths), workers, func(i int) {
		file, err := os.Open(paths[i])
		if err != nil {
			errs[i] = err
			return
		}
		defer file.Close()
		img, err := imaging.Decode(file)
		if err != nil {
			errs[i] = fmt.Errorf("无法解码图片 %s: %w", paths[i], err)
			return
		}
		images[i] = img
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return images, nil
}

// packing 把所有图片加入打包器并打包，图片在 paths 中的下标作为 ID
func packing(packer *rectpack.Packer, images []image.Image) error {
	defer track(&debugInfo.PackTime)()
	for i, img := range images {
		packer.Add(uint64(i), img)
	}
	return packer.Pack()
}

// writePages 把所有页面保存为 PNG，返回文件路径
func writePages(packer *rectpack.Packer, outputDir string) ([]string, error) {
	defer track(&debugInfo.CreateAtlasImageTime)()
	// 确保输出目录存在
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	pages := packer.Pages()
	atlasPaths := make([]string, len(pages))
	for i, page := range pages {
		imageName := "atlas.png"
		if len(pages) > 1 {
			imageName = fmt.Sprintf("atlas_%d.png", i)
		}
		atlasPaths[i] = filepath.Join(outputDir, imageName)
		if err := savePNG(page, atlasPaths[i]); err != nil {
			return nil, err
		}
	}
	return atlasPaths, nil
}

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := imaging.Encode(file, img, imaging.PNG); err != nil {
		file.Close()
		return fmt.Errorf("保存图像失败: %w", err)
	}
	return file.Close()
}
