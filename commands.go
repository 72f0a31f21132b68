package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diskcache/diskcache/internal/cache"
	"github.com/diskcache/diskcache/internal/logging"
	"github.com/diskcache/diskcache/internal/render"
)

func newRootCommand(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "diskcache",
		Short:         "Inspect and manage a filesystem key/value cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.configFlag, "config", "", "config file path (default ./config.toml, overridable via "+envConfigPath+")")
	root.PersistentFlags().StringVar(&app.logLevelFlag, "log-level", "", "log level override (env "+envLogLevel+")")

	root.AddCommand(
		newGetCommand(app),
		newPutCommand(app),
		newForeverCommand(app),
		newPullCommand(app),
		newHasCommand(app),
		newExpiredCommand(app),
		newForgetCommand(app),
		newFlushCommand(app),
		newPathCommand(app),
		newCheckConfigCommand(app),
		newRenderCommand(),
		newVersionCommand(),
	)
	return root
}

func newGetCommand(app *cliApp) *cobra.Command {
	var fallback string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a cached value; exits 1 on miss",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&fallback, "default", "", "store and print this value on miss")
	cmd.RunE = app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		key := args[0]
		if cmd.Flags().Changed("default") {
			fmt.Fprintln(cmd.OutOrStdout(), c.GetOr(key, fallback))
			return nil
		}
		value, ok := c.Get(key)
		app.logger.WithFields(logging.CacheFields("get", key, c.Path(key), ok)).Debug("cache lookup")
		if !ok {
			return fail(1, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	})
	return cmd
}

func newPutCommand(app *cliApp) *cobra.Command {
	var ttlFlag string
	cmd := &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a string value (default TTL unless --ttl is given)",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&ttlFlag, "ttl", "", `lifetime: seconds, Go duration, "1d", or -1 for forever`)
	cmd.RunE = app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		ttl := c.TTL()
		if ttlFlag != "" {
			parsed, err := cache.ParseTTL(ttlFlag)
			if err != nil {
				return fail(2, err)
			}
			ttl = parsed
		}
		if !c.PutFor(args[0], args[1], ttl) {
			return fail(1, fmt.Errorf("put %s failed", args[0]))
		}
		app.logger.WithFields(logging.CacheFields("put", args[0], c.Path(args[0]), false)).Debug("cache stored")
		return nil
	})
	return cmd
}

func newForeverCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "forever <key> <value>",
		Short: "Store a string value that never expires",
		Args:  cobra.ExactArgs(2),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			if _, ok := c.Forever(args[0], args[1]); !ok {
				return fail(1, fmt.Errorf("forever %s failed", args[0]))
			}
			return nil
		}),
	}
}

func newPullCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <key>",
		Short: "Print a cached value and delete it; exits 1 on miss",
		Args:  cobra.ExactArgs(1),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			value, ok := c.Pull(args[0])
			if !ok {
				return fail(1, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}
}

func newHasCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Report whether a cache file exists (no expiry check)",
		Args:  cobra.ExactArgs(1),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			ok := c.Has(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				return fail(1, nil)
			}
			return nil
		}),
	}
}

func newExpiredCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "expired <key>",
		Short: "Report whether an entry is absent, corrupt or expired",
		Args:  cobra.ExactArgs(1),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.IsExpired(args[0]))
			return nil
		}),
	}
}

func newForgetCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <key>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			c.Forget(args[0])
			return nil
		}),
	}
}

func newFlushCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Delete every entry under the cache root",
		Args:  cobra.NoArgs,
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			if err := c.Flush(); err != nil {
				return fail(1, fmt.Errorf("flush: %w", err))
			}
			fields := logging.BaseFields("flush", app.configPath)
			fields["root"] = c.Root()
			app.logger.WithFields(fields).Info("cache flushed")
			return nil
		}),
	}
}

func newPathCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "path <key>",
		Short: "Print the file path an entry is stored at",
		Args:  cobra.ExactArgs(1),
		RunE: app.withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.Path(args[0]))
			return nil
		}),
	}
}

func newCheckConfigCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the config file and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(); err != nil {
				return err
			}
			fields := logging.BaseFields("check_config", app.configPath)
			fields["root"] = app.cfg.Cache.Path
			fields["prefix"] = app.cfg.Cache.Prefix
			fields["ttl"] = app.cfg.Cache.TTLLabel()
			fields["result"] = "ok"
			app.logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

func newRenderCommand() *cobra.Command {
	var (
		dir  string
		vars map[string]string
	)
	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render <dir>/<name>.tmpl with --var key=value pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := make(map[string]any, len(vars))
			for k, v := range vars {
				data[k] = v
			}
			data["now"] = time.Now()
			if err := render.New(dir, nil).Render(cmd.OutOrStdout(), args[0], data); err != nil {
				return fail(1, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "templates", "template directory")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "template variable, repeatable (key=value)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}
