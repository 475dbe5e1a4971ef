package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/provider"
)

type AreasCmd struct {
	Provider string `arg:"" help:"Provider: hh or sj."`
	Match    string `help:"Only areas whose name contains this text."`

	NetworkOptions
}

type DictCmd struct {
	Provider string `arg:"" help:"Provider: hh or sj."`
	Param    string `help:"Only print this parameter."`

	NetworkOptions
}

func lookupProvider(registry map[models.Provider]provider.Provider, name string) (provider.Provider, error) {
	tag, ok := models.ParseProvider(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	p, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("provider not registered: %s", tag)
	}
	return p, nil
}

func (a *AreasCmd) Run(ctx *Context) error {
	deps, err := newClients(ctx, a.NetworkOptions)
	if err != nil {
		return err
	}
	defer deps.Close()

	p, err := lookupProvider(deps.registry, a.Provider)
	if err != nil {
		return err
	}
	areas, err := p.Areas(context.Background())
	if err != nil {
		return err
	}

	match := strings.ToLower(strings.TrimSpace(a.Match))
	filtered := make([]provider.Area, 0, len(areas))
	for _, area := range areas {
		if match == "" || strings.Contains(strings.ToLower(area.Name), match) {
			filtered = append(filtered, area)
		}
	}

	if ctx.JSONOutput {
		return encodeJSON(ctx, filtered)
	}
	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	if !ctx.PlainText {
		fmt.Fprintln(tw, "id\tname")
	}
	for _, area := range filtered {
		fmt.Fprintf(tw, "%s\t%s\n", area.ID, area.Name)
	}
	return tw.Flush()
}

func (d *DictCmd) Run(ctx *Context) error {
	deps, err := newClients(ctx, d.NetworkOptions)
	if err != nil {
		return err
	}
	defer deps.Close()

	p, err := lookupProvider(deps.registry, d.Provider)
	if err != nil {
		return err
	}
	dict, err := p.Dictionary(context.Background())
	if err != nil {
		return err
	}

	names := dict.Params()
	if param := strings.TrimSpace(d.Param); param != "" {
		if _, ok := dict.Enums[param]; !ok {
			return fmt.Errorf("%s has no dictionary for %q (have: %s)", p.Name(), param, strings.Join(names, ", "))
		}
		names = []string{param}
	}

	if ctx.JSONOutput {
		subset := make(map[string][]provider.Option, len(names))
		for _, name := range names {
			subset[name] = dict.Enums[name]
		}
		return encodeJSON(ctx, subset)
	}
	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	if !ctx.PlainText {
		fmt.Fprintln(tw, "param\tvalue\tname")
	}
	for _, name := range names {
		for _, option := range dict.Enums[name] {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, option.ID, option.Name)
		}
	}
	return tw.Flush()
}

func encodeJSON(ctx *Context, value any) error {
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
