package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Search  SearchCmd  `cmd:"" help:"Collect vacancies from HeadHunter and SuperJob into the store."`
	List    ListCmd    `cmd:"" help:"Filter, sort and print stored vacancies."`
	Areas   AreasCmd   `cmd:"" help:"List the areas a provider can search in."`
	Dict    DictCmd    `cmd:"" help:"Print a provider's filter dictionaries."`
	Store   StoreCmd   `cmd:"" help:"Vacancy store utilities."`
	Proxies ProxiesCmd `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
