package xutil

import "os"

// FileExist 路径存在且为文件
func FileExist(p string) bool {
	stat, err := os.Stat(p)
	return err == nil && !stat.IsDir()
}

// DirExist 路径存在且为目录
func DirExist(p string) bool {
	stat, err := os.Stat(p)
	return err == nil && stat.IsDir()
}
