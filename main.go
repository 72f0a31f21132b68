package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diskcache/diskcache/internal/cache"
	"github.com/diskcache/diskcache/internal/config"
	"github.com/diskcache/diskcache/internal/logging"
)

const (
	envConfigPath = "DISKCACHE_CONFIG"
	envLogLevel   = "DISKCACHE_LOG_LEVEL"
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

// exitError 携带退出码；err 为 nil 时不输出任何信息（例如缓存未命中）。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 执行 CLI 并返回退出码，方便测试：0 成功，1 操作失败或未命中，2 参数错误。
func run(args []string) int {
	app := &cliApp{}
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(stdErr, exitErr.err.Error())
		}
		return exitErr.code
	}
	fmt.Fprintln(stdErr, err.Error())
	return 2
}

// cliApp 汇总 CLI 标志解析后的结果以及懒加载的配置、日志与缓存实例。
type cliApp struct {
	configFlag   string
	logLevelFlag string

	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
	cache      *cache.Cache
}

// flagOrEnv 优先使用命令行标志，其次环境变量，最后回退默认值。
func flagOrEnv(flagValue, envName, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok && val != "" {
		return val
	}
	return defaultValue
}

// loadConfig 按“配置 → 日志”顺序初始化，保证后续缓存操作共享同一 logger。
func (a *cliApp) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	a.configPath = flagOrEnv(a.configFlag, envConfigPath, "config.toml")

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fail(1, fmt.Errorf("load config: %w", err))
	}
	cfg.Global.LogLevel = flagOrEnv(a.logLevelFlag, envLogLevel, cfg.Global.LogLevel)

	logger, err := logging.InitLogger(cfg.Global, stdErr)
	if err != nil {
		return fail(1, fmt.Errorf("init logger: %w", err))
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openCache 在配置加载完成后构建缓存实例。
func (a *cliApp) openCache() (*cache.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	c, err := cache.New(a.cfg.Cache.Options(a.logger))
	if err != nil {
		return nil, fail(1, fmt.Errorf("init cache: %w", err))
	}
	a.cache = c
	return c, nil
}

// withCache 包装需要缓存实例的子命令。
func (a *cliApp) withCache(fn func(cmd *cobra.Command, args []string, c *cache.Cache) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := a.openCache()
		if err != nil {
			return err
		}
		return fn(cmd, args, c)
	}
}
