package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/Strob0t/TaskRelay/internal/adapter/wrike"
	"github.com/Strob0t/TaskRelay/internal/config"
	"github.com/Strob0t/TaskRelay/internal/domain/room"
	"github.com/Strob0t/TaskRelay/internal/domain/webhook"
	"github.com/Strob0t/TaskRelay/internal/logger"
	"github.com/Strob0t/TaskRelay/internal/secrets"
	"github.com/Strob0t/TaskRelay/internal/service"
)

const adminTimeout = 30 * time.Second

var adminCommands = map[string]func(args []string) error{
	"rooms":            runAdminRooms,
	"render":           runAdminRender,
	"register-webhook": runAdminRegisterWebhook,
	"list-webhooks":    runAdminListWebhooks,
	"help":             func([]string) error { printAdminHelp(); return nil },
}

func isAdminCommand(name string) bool {
	_, ok := adminCommands[name]
	return ok
}

// runAdmin dispatches admin subcommands (rooms, render, register-webhook, list-webhooks).
func runAdmin(args []string) error {
	if len(args) == 0 {
		printAdminHelp()
		return nil
	}
	cmd, ok := adminCommands[args[0]]
	if !ok {
		printAdminHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd(args[1:])
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: taskrelay [serve] [options]
       taskrelay <command> [options]

Commands:
  serve              Run the webhook relay (default)
  rooms              Print the resolved folder-to-room table
  render             Fetch and format a task without delivering it
  register-webhook   Register a Wrike webhook pointing at the relay
  list-webhooks      List the Wrike webhooks on the account
  help               Show this help message

Examples:
  taskrelay --config taskrelay.yaml
  taskrelay rooms
  taskrelay render --task IEAAAAAQKQAAAAAB --event TaskStatusChanged
  taskrelay register-webhook --hook-url https://relay.example.com/wrike-webhook --folder IEAAAAAQI4AAAAAB
  taskrelay list-webhooks
`)
}

// loadAdminConfig loads configuration the same way serve does, with only
// the config path overridable.
func loadAdminConfig(configPath string) (*config.Config, error) {
	var flags config.CLIFlags
	if configPath != "" {
		flags.ConfigPath = &configPath
	}
	cfg, _, err := config.LoadWithCLI(flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, _ := logger.NewWithWriter(config.Logging{Level: "warn", Service: cfg.Logging.Service}, os.Stderr)
	slog.SetDefault(log)
	return cfg, nil
}

// newAdminWrike builds a Wrike client, prompting for the token when none
// is configured.
func newAdminWrike(cfg *config.Config) (*wrike.Client, error) {
	vault, err := newVault(cfg)
	if err != nil {
		return nil, err
	}
	token := vault.Source(secrets.KeyWrikeToken)
	if token() == "" {
		entered, err := promptSecret("Wrike API token: ")
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if entered == "" {
			return nil, fmt.Errorf("a Wrike token is required")
		}
		token = func() string { return entered }
	}
	return wrike.NewClient(cfg.Wrike.BaseURL, token, cfg.Wrike.Timeout), nil
}

func runAdminRooms(args []string) error {
	fs := flag.NewFlagSet("rooms", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAdminConfig(*configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Source: %s\n", cfg.RoomSource)
	return printRooms(os.Stdout, cfg.Rooms)
}

func printRooms(out io.Writer, rooms room.Table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FOLDER\tROOM\tROOM_DESCRIPTION\tPROJECT_DESCRIPTION")
	for _, folderID := range rooms.FolderIDs() {
		e, _ := rooms.Get(folderID)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", folderID, e.RoomID, e.RoomLabel(), e.ProjectLabel())
	}
	return w.Flush()
}

func runAdminRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	taskID := fs.String("task", "", "Wrike task id (required)")
	eventType := fs.String("event", webhook.DefaultEventType, "event type to render")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *taskID == "" {
		return fmt.Errorf("--task is required")
	}

	cfg, err := loadAdminConfig(*configPath)
	if err != nil {
		return err
	}
	wc, err := newAdminWrike(cfg)
	if err != nil {
		return err
	}

	deps := service.RelayDeps{Tasks: wc, Rooms: cfg.Rooms, Format: formatOptions(cfg)}
	if cfg.Wrike.ResolveAssignees {
		deps.Contacts = service.NewContactResolver(wc, nil, cfg.Cache.TTL, nil)
	}
	svc := service.NewRelayService(deps)

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	p, err := svc.Render(ctx, webhook.Event{TaskID: *taskID, EventType: *eventType})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !p.Matched {
		fmt.Fprintf(os.Stderr, "No room mapped for task %s (parents: %v); it would be ignored.\n", *taskID, p.Task.ParentIDs)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Folder %s -> room %s\n\n", p.FolderID, p.Entry.RoomID)
	fmt.Println(p.Markdown)
	return nil
}

func runAdminRegisterWebhook(args []string) error {
	fs := flag.NewFlagSet("register-webhook", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	hookURL := fs.String("hook-url", "", "public URL of the relay's /wrike-webhook endpoint (required)")
	folderID := fs.String("folder", "", "limit the webhook to one folder")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *hookURL == "" {
		return fmt.Errorf("--hook-url is required")
	}

	cfg, err := loadAdminConfig(*configPath)
	if err != nil {
		return err
	}
	wc, err := newAdminWrike(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	hook, err := wc.RegisterWebhook(ctx, *hookURL, *folderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Webhook registered: %s (status=%s)\n", hook.ID, hook.Status)
	return nil
}

func runAdminListWebhooks(args []string) error {
	fs := flag.NewFlagSet("list-webhooks", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAdminConfig(*configPath)
	if err != nil {
		return err
	}
	wc, err := newAdminWrike(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	hooks, err := wc.ListWebhooks(ctx)
	if err != nil {
		return err
	}
	if len(hooks) == 0 {
		fmt.Println("No webhooks found.")
		return nil
	}
	return printWebhooks(os.Stdout, hooks)
}

func printWebhooks(out io.Writer, hooks []wrike.Webhook) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFOLDER\tSTATUS\tHOOK_URL")
	for _, h := range hooks {
		folder := h.FolderID
		if folder == "" {
			folder = "(account)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.ID, folder, h.Status, h.HookURL)
	}
	return w.Flush()
}

// promptSecret reads a secret from the terminal without echoing. Without a
// terminal it returns an empty string.
func promptSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) { //nolint:unconvert // int conversion needed on some platforms
		return "", nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
