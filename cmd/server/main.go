package main

import (
	"os"

	cmd "github.com/vera-byte/vgo-booking/cmd"
)

// main VGO Booking 网关主入口
func main() {
	// cobra 已输出错误信息
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
