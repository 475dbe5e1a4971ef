package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/store"
	"github.com/jimezsa/vacli/internal/vacancy"
)

type StoreCmd struct {
	Path  StorePathCmd  `cmd:"" help:"Print the store file path."`
	Stats StoreStatsCmd `cmd:"" help:"Count stored vacancies per provider."`
	Clear StoreClearCmd `cmd:"" help:"Remove every stored vacancy."`
}

type StorePathCmd struct {
	Store string `help:"Store file path (default from config)."`
}

type StoreStatsCmd struct {
	Store string `help:"Store file path (default from config)."`
}

type StoreClearCmd struct {
	Store string `help:"Store file path (default from config)."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (s *StorePathCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, s.Store)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, st.Path())
	return err
}

type storeStats struct {
	Path       string         `json:"path"`
	Total      int            `json:"total"`
	ByProvider map[string]int `json:"by_provider"`
}

func (s *StoreStatsCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, s.Store)
	if err != nil {
		return err
	}
	records, err := st.Load()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	stats := countRecords(records)
	stats.Path = st.Path()
	if ctx.JSONOutput {
		return encodeJSON(ctx, stats)
	}
	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	if !ctx.PlainText {
		fmt.Fprintln(tw, "provider\tvacancies")
	}
	for _, tag := range models.Providers() {
		fmt.Fprintf(tw, "%s\t%d\n", tag, stats.ByProvider[string(tag)])
	}
	if n := stats.ByProvider["unknown"]; n > 0 {
		fmt.Fprintf(tw, "unknown\t%d\n", n)
	}
	fmt.Fprintf(tw, "total\t%d\n", stats.Total)
	return tw.Flush()
}

func countRecords(records []models.RawRecord) storeStats {
	stats := storeStats{Total: len(records), ByProvider: map[string]int{}}
	for _, raw := range records {
		tag, ok := vacancy.Classify(raw)
		if !ok {
			stats.ByProvider["unknown"]++
			continue
		}
		stats.ByProvider[string(tag)]++
	}
	return stats
}

func (s *StoreClearCmd) Run(ctx *Context) error {
	if !s.Yes {
		return fmt.Errorf("refusing to clear the store without --yes")
	}
	st, err := openStore(ctx, s.Store)
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return err
	}
	ctx.UI.Successf("Cleared %s", st.Path())
	return nil
}
