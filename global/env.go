package global

import (
	"os"
	"path/filepath"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Papyrus Table Engine"
)

func init() {
	exe, err := os.Executable()
	if err != nil {
		ROOT = "./"
		return
	}
	ROOT = filepath.Dir(exe) + "/"
}
