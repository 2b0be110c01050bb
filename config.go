package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/colgrip/layout"
	"github.com/ByLCY/colgrip/resize"
)

// config 是 -config 指向的 JSON 文件内容，命令行参数会覆盖其中的值。
type config struct {
	Resize       resize.Options `json:"resize"`
	Layout       layout.Options `json:"layout"`
	HistoryLimit int            `json:"historyLimit"`
	Font         string         `json:"font"`
}

// loadConfig 读取配置文件；path 为空时返回默认配置。
func loadConfig(path string) (config, error) {
	cfg := config{Resize: resize.DefaultOptions()}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// dragScript 描述一次脚本化拖拽：在 Column 的手柄上按下，然后依次移动 Deltas（相对按下位置）。
type dragScript struct {
	Column int
	Deltas []int
}

// parseDrag 解析 "col:dx[,dx...]"。
func parseDrag(s string) (dragScript, error) {
	col, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return dragScript{}, errors.New("拖拽脚本格式应为 col:dx[,dx...]")
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil || c < 0 {
		return dragScript{}, fmt.Errorf("列下标 %q 无效", col)
	}
	script := dragScript{Column: c}
	for _, part := range strings.Split(rest, ",") {
		dx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return dragScript{}, fmt.Errorf("位移 %q 无效", part)
		}
		script.Deltas = append(script.Deltas, dx)
	}
	return script, nil
}
