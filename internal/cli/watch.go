package cli

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Search as you type: each stdin line is the current query text",
	Long: `Reads the query as it is being typed, one state per line, and prints
suggestions once typing pauses for the debounce interval (SEARCH_DEBOUNCE).
Results of a query overtaken by newer input are dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, in io.Reader, out io.Writer) error {
	w := &watcher{
		cmd:     cmd,
		out:     out,
		session: uuid.NewString(),
	}
	debouncer := service.NewDebouncer(application.Config.Search.Debounce)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		w.push(scanner.Text())
		debouncer.Trigger(w.flush)
	}
	if err := scanner.Err(); err != nil {
		debouncer.Stop()
		return err
	}

	// Input ended: run whatever is still waiting instead of sleeping out the delay.
	debouncer.Stop()
	w.flush()
	return nil
}

// watcher holds the latest unsent query of a watch session.
type watcher struct {
	cmd     *cobra.Command
	out     io.Writer
	session string

	mu      sync.Mutex
	seq     uint64
	pending *model.SearchRequest

	runMu sync.Mutex // one search prints at a time
}

func (w *watcher) push(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.pending = &model.SearchRequest{Query: query, SessionID: w.session, Seq: w.seq}
}

func (w *watcher) take() *model.SearchRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	req := w.pending
	w.pending = nil
	return req
}

func (w *watcher) flush() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	req := w.take()
	if req == nil {
		return
	}
	resp, err := application.Search.Search(w.cmd.Context(), req)
	if err != nil {
		fmt.Fprintf(w.out, "error: %v\n", err)
		return
	}
	if resp.Superseded {
		return
	}
	fmt.Fprintf(w.out, "> %s\n", req.Query)
	if jsonOutput {
		_ = writeJSON(w.out, resp)
		return
	}
	printResults(w.out, resp)
}
