package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"assistant/internal/ipc"
	"assistant/internal/session"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

type ctlOptions struct {
	socket  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &ctlOptions{}

	root := &cobra.Command{
		Use:   "assistant-ctl",
		Short: "Control a running assistant-daemon",
		Long: `Send commands to a running assistant-daemon over its control socket.

  assistant-ctl say "what time is it"   # classify and answer typed text
  assistant-ctl listen                  # capture one utterance from the microphone
  assistant-ctl history -n 10           # show the latest interactions`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.socket, "socket", ipc.DefaultSocketPath, "Daemon control socket")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "How long to wait for the daemon")

	root.AddCommand(newSayCmd(opts), newListenCmd(opts), newHistoryCmd(opts))
	return root
}

func newSayCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text...>",
		Short: "Send a typed command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			reply, err := send(opts, ipc.ControlMessage{Cmd: ipc.CmdSay, Text: text})
			if err != nil {
				return err
			}
			printReply(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func newListenCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Capture and answer one spoken command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := send(opts, ipc.ControlMessage{Cmd: ipc.CmdListen})
			if err != nil {
				if reply.Transcript != "" {
					fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("heard: "+reply.Transcript))
				}
				return err
			}
			printReply(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func newHistoryCmd(opts *ctlOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := send(opts, ipc.ControlMessage{Cmd: ipc.CmdHistory, Limit: limit})
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), reply.Entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Entries to show (0 = daemon display cap)")
	return cmd
}

func send(opts *ctlOptions, msg ipc.ControlMessage) (ipc.ControlReply, error) {
	reply, err := ipc.Send(opts.socket, msg, opts.timeout)
	if err != nil && reply.Error == "" {
		return reply, fmt.Errorf("assistant-daemon not running: %w", err)
	}
	return reply, err
}

func printReply(w io.Writer, r ipc.ControlReply) {
	if r.Transcript != "" {
		fmt.Fprintf(w, "%s %s\n", userStyle.Render("You:"), r.Transcript)
	}
	fmt.Fprintf(w, "%s %s %s\n", assistantStyle.Render("Assistant:"), r.Reply, dimStyle.Render("["+r.Intent+"]"))
}

func printHistory(w io.Writer, entries []ipc.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No interactions yet."))
		return
	}
	for _, e := range entries {
		style := userStyle
		if e.Speaker == string(session.Assistant) {
			style = assistantStyle
		}
		fmt.Fprintf(w, "%s %s\n", style.Render(e.Speaker+":"), e.Message)
	}
}
