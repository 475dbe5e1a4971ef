package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jimezsa/vacli/internal/config"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config and proxies files."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print the effective configuration."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
	} else {
		ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	}
	if strings.TrimSpace(ctx.Config.SuperJob.AppID) == "" {
		ctx.UI.Warnf("SuperJob needs an app id: set superjob.app_id in config.json or VACLI_SJ_APP_ID")
	}
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

// Run prints the merged file and environment config with secrets masked.
func (c *ShowConfigCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	cfg.SuperJob.AppID = maskSecret(cfg.SuperJob.AppID)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, string(data))
	return err
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
