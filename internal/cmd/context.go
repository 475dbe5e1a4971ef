package cmd

import (
	"io"

	"github.com/jimezsa/vacli/internal/config"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/ui"
	"github.com/rs/zerolog"
)

// Context is what every command's Run receives.
type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

// providerLogger returns a pointer since zerolog's level methods have
// pointer receivers.
func (c *Context) providerLogger(tag models.Provider) *zerolog.Logger {
	logger := c.Logger.With().Str("provider", string(tag)).Logger()
	return &logger
}
