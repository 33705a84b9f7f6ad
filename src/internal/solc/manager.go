package solc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/VectorBits/Solview/src/internal/astparser"
	"github.com/VectorBits/Solview/src/internal/logger"
)

// Options configures a Manager.
type Options struct {
	// Binary, when set, is used for every version.
	Binary      string
	AutoInstall bool
	// ParseOnly stops solc after parsing, so unresolved imports and type
	// errors do not prevent AST output.
	ParseOnly bool
	Timeout   time.Duration
}

// Manager solc 版本管理器
type Manager struct {
	opts Options

	mu           sync.RWMutex
	versionCache map[string]string // version -> solc path
	resolve      singleflight.Group
}

var (
	defaultManager *Manager
	once           sync.Once
)

// GetManager returns the process-wide manager with default options.
func GetManager() *Manager {
	once.Do(func() {
		defaultManager = NewManager(Options{AutoInstall: true, ParseOnly: true, Timeout: time.Minute})
	})
	return defaultManager
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts, versionCache: make(map[string]string)}
}

var (
	pragmaRe  = regexp.MustCompile(`pragma\s+solidity\s+([^;]+);`)
	versionRe = regexp.MustCompile(`(\d+\.\d+\.\d+)`)
)

// ExtractPragmaVersion 从合约源码中提取 pragma solidity 版本
// 多个 pragma 时取最高版本
func ExtractPragmaVersion(source string) string {
	var versions []string
	for _, match := range pragmaRe.FindAllStringSubmatch(source, -1) {
		versions = append(versions, versionRe.FindAllString(match[1], -1)...)
	}
	if len(versions) == 0 {
		return ""
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
	return versions[0]
}

func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")
	for i := 0; i < 3; i++ {
		var n1, n2 int
		if i < len(parts1) {
			fmt.Sscanf(parts1[i], "%d", &n1)
		}
		if i < len(parts2) {
			fmt.Sscanf(parts2[i], "%d", &n2)
		}
		if n1 != n2 {
			return n1 - n2
		}
	}
	return 0
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "v")
	for _, prefix := range []string{"^", ">=", "<=", ">", "<", "~", "="} {
		version = strings.TrimPrefix(version, prefix)
	}
	return strings.TrimSpace(version)
}

// GetSolcPath 获取指定版本的 solc 路径（带缓存）
// An empty version resolves to the configured binary or `solc` on PATH.
func (m *Manager) GetSolcPath(version string) (string, error) {
	if m.opts.Binary != "" {
		return m.opts.Binary, nil
	}
	version = normalizeVersion(version)
	if version == "" {
		return exec.LookPath("solc")
	}

	m.mu.RLock()
	path, ok := m.versionCache[version]
	m.mu.RUnlock()
	if ok && fileExists(path) {
		return path, nil
	}

	v, err, _ := m.resolve.Do(version, func() (interface{}, error) {
		path, err := m.locate(version)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.versionCache[version] = path
		m.mu.Unlock()
		logger.Debug("solc %s resolved to %s", version, path)
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) locate(version string) (string, error) {
	// 方法1: solc-select 已安装的版本
	if path := solcSelectPath(version); path != "" {
		return path, nil
	}
	// 方法2: ~/.solcx 目录（py-solc-x 安装位置）
	if path := solcxPath(version); path != "" {
		return path, nil
	}
	// 方法3: PATH 中的 solc 版本刚好匹配
	if path, err := exec.LookPath("solc"); err == nil && binaryVersion(path) == version {
		return path, nil
	}
	// 方法4: 尝试安装
	if m.opts.AutoInstall {
		if _, err := exec.LookPath("solc-select"); err == nil {
			logger.Info("installing solc %s via solc-select", version)
			if out, err := exec.Command("solc-select", "install", version).CombinedOutput(); err != nil {
				return "", fmt.Errorf("solc-select install %s failed: %v: %s", version, err, strings.TrimSpace(string(out)))
			}
			if path := solcSelectPath(version); path != "" {
				return path, nil
			}
		}
	}
	if path, err := exec.LookPath("solc"); err == nil {
		logger.Warn("solc %s not found, falling back to %s", version, path)
		return path, nil
	}
	return "", fmt.Errorf("failed to get solc %s, please install manually: solc-select install %s", version, version)
}

func solcSelectPath(version string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(homeDir, ".solc-select", "artifacts", "solc-"+version)
	candidates := []string{
		filepath.Join(dir, "solc-"+version),
		filepath.Join(homeDir, ".solc-select", "artifacts", version, "solc-"+version),
	}
	if runtime.GOOS == "windows" {
		candidates = []string{
			filepath.Join(dir, "solc-"+version+".exe"),
			filepath.Join(dir, "solc.exe"),
		}
	}
	return firstExecutable(candidates)
}

func solcxPath(version string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(homeDir, ".solcx")
	candidates := []string{
		filepath.Join(dir, "solc-v"+version),
		filepath.Join(dir, "solc-"+version),
	}
	if runtime.GOOS == "darwin" {
		candidates = append(candidates, filepath.Join(dir, "solc-v"+version, "bin", "solc"))
	}
	return firstExecutable(candidates)
}

func binaryVersion(path string) string {
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return ""
	}
	return versionRe.FindString(string(out))
}

func firstExecutable(paths []string) string {
	for _, p := range paths {
		if fileExists(p) && isExecutable(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return !info.IsDir()
	}
	return info.Mode()&0111 != 0
}

// ASTResult is the compact-JSON AST of every source in one solc run.
type ASTResult struct {
	Version string
	ASTs    map[string][]byte // source path -> SourceUnit JSON
}

// ParseAST runs solc once over sources and returns the AST of each. The
// sources are written into a scratch directory so relative imports between
// them resolve. The compiler version is the highest one named in any pragma.
func (m *Manager) ParseAST(ctx context.Context, sources []Source) (*ASTResult, error) {
	if len(sources) == 0 {
		return &ASTResult{ASTs: map[string][]byte{}}, nil
	}
	var all strings.Builder
	for _, s := range sources {
		all.WriteString(s.Content)
		all.WriteByte('\n')
	}
	version := ExtractPragmaVersion(all.String())
	solcPath, err := m.GetSolcPath(version)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "solview_*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	args := []string{"--ast-compact-json"}
	if m.opts.ParseOnly && (version == "" || compareVersions(version, "0.8.0") >= 0) {
		args = append(args, "--stop-after", "parsing")
	}
	args = append(args, "--base-path", ".", "--allow-paths", ".")

	names := make(map[string]string, len(sources))
	for _, s := range sources {
		rel := CleanPath(s.Path)
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(abs, []byte(s.Content), 0644); err != nil {
			return nil, err
		}
		names[rel] = s.Path
		args = append(args, rel)
	}

	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, solcPath, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("solc execution failed: %v, output: %s", err, strings.TrimSpace(stderr.String()))
	}

	result := &ASTResult{Version: version, ASTs: make(map[string][]byte, len(sources))}
	for header, body := range astparser.SplitCompilerOutput(stdout.Bytes()) {
		if original, ok := names[CleanPath(header)]; ok {
			result.ASTs[original] = body
		}
	}
	if len(sources) == 1 && len(result.ASTs) == 0 {
		if body, ok := astparser.SplitCompilerOutput(stdout.Bytes())[""]; ok {
			result.ASTs[sources[0].Path] = body
		}
	}
	return result, nil
}
