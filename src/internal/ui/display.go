package ui

import (
	"fmt"
	"io"
	"sync"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	Bold   = "\033[1m"
)

var mu sync.Mutex

func PrintBanner(w io.Writer) {
	banner := `
  ____        _       _
 / ___|  ___ | |_   _(_) _____      __
 \___ \ / _ \| \ \ / / |/ _ \ \ /\ / /
  ___) | (_) | |\ V /| |  __/\ V  V /
 |____/ \___/|_| \_/ |_|\___| \_/\_/
`
	fmt.Fprintln(w, Cyan+banner+Reset)
	fmt.Fprintln(w, Gray+"  v1.0.0 - Solidity contract model, ABI and docs builder"+Reset)
	fmt.Fprintln(w)
}

func LogSuccess(w io.Writer, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(w, Green+"[SUCCESS] "+Reset+format+"\n", a...)
}

func LogInfo(w io.Writer, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(w, Blue+"[INFO] "+Reset+format+"\n", a...)
}

func LogWarn(w io.Writer, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(w, Yellow+"[WARN] "+Reset+format+"\n", a...)
}

func LogError(w io.Writer, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(w, Red+"[ERROR] "+Reset+format+"\n", a...)
}
