package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"zclawbridge/internal/bridge"
	"zclawbridge/internal/config"
	"zclawbridge/internal/provider"
	"zclawbridge/internal/tui"
)

// ExitError carries the child's non-zero exit status so main can mirror it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("child exited with code %d", e.Code)
}

func NewRootCmd() *cobra.Command {
	var providerFlag string
	var apiTimeout int
	var anthropicTimeout int
	var bridgeLogs bool
	var compat bool

	root := &cobra.Command{
		Use:           "zclawbridge [flags] -- <qemu command...>",
		Short:         "Live LLM bridge between a zclaw emulator and its controlling terminal",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := childCommand(args, cmd.ArgsLenAtDash())
			if len(argv) == 0 {
				return fmt.Errorf("missing QEMU command (pass it after --)")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			mode := provider.Provider(cfg.Provider)
			if cmd.Flags().Changed("provider") {
				mode = provider.Provider(strings.ToLower(strings.TrimSpace(providerFlag)))
			}
			if !provider.Valid(mode) {
				return fmt.Errorf("invalid provider %q (want auto, anthropic, or openai)", providerFlag)
			}

			timeoutSeconds := cfg.TimeoutSeconds
			switch {
			case cmd.Flags().Changed("api-timeout"):
				timeoutSeconds = apiTimeout
			case cmd.Flags().Changed("anthropic-timeout"):
				timeoutSeconds = anthropicTimeout
			}
			if timeoutSeconds <= 0 {
				return fmt.Errorf("timeout must be positive, got %d", timeoutSeconds)
			}

			opts := bridgeOptions{
				Mode:       mode,
				Timeout:    time.Duration(timeoutSeconds) * time.Second,
				BridgeLogs: bridgeLogs || cfg.BridgeLogs,
				Compat:     compat || cfg.Compat,
			}
			return runBridge(cmd, cfg, opts, argv)
		},
	}

	root.Flags().StringVar(&providerFlag, "provider", "auto",
		"Host API provider: auto-detect from request format (default), anthropic, or openai")
	root.Flags().IntVar(&apiTimeout, "api-timeout", 50,
		"Timeout in seconds for provider API requests")
	root.Flags().BoolVar(&bridgeLogs, "bridge-logs", false,
		"Print per-request bridge forwarding/timing logs")
	root.Flags().BoolVar(&compat, "compat", false,
		"Translate Anthropic-shaped requests for OpenAI-compatible endpoints")
	root.Flags().IntVar(&anthropicTimeout, "anthropic-timeout", 0, "")
	_ = root.Flags().MarkHidden("anthropic-timeout")

	root.AddCommand(newConfigCmd())
	root.AddCommand(newDoctorCmd())
	return root
}

type bridgeOptions struct {
	Mode       provider.Provider
	Timeout    time.Duration
	BridgeLogs bool
	Compat     bool
}

func runBridge(cmd *cobra.Command, cfg *config.RootConfig, opts bridgeOptions, argv []string) error {
	client := provider.NewClient(provider.Options{
		Timeout: opts.Timeout,
		Compat:  opts.Compat,
		Anthropic: provider.Endpoint{
			URL:    cfg.ProviderByName("anthropic").BaseURL,
			APIKey: cfg.ProviderByName("anthropic").APIKey,
		},
		OpenAI: provider.Endpoint{
			URL:    cfg.ProviderByName("openai").BaseURL,
			APIKey: cfg.ProviderByName("openai").APIKey,
		},
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[zclaw-bridge] Bridge active (provider: %s).\r\n", providerNote(opts.Mode))
	fmt.Fprintf(out, "[zclaw-bridge] Press Ctrl+A then X to exit QEMU.\r\n")

	code, err := bridge.Run(bridge.Options{
		Argv:       argv,
		Mode:       opts.Mode,
		Call:       client.Call,
		BridgeLogs: opts.BridgeLogs,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// childCommand returns everything after the "--" separator, or all
// positional args when no separator was given.
func childCommand(args []string, dash int) []string {
	if dash >= 0 {
		return args[dash:]
	}
	return args
}

func providerNote(p provider.Provider) string {
	if p == provider.Auto {
		return "auto-detect (anthropic/openai)"
	}
	return string(p)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Edit bridge defaults interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEditor(cmd)
		},
	}
}

func runConfigEditor(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for {
		options := []string{
			fmt.Sprintf("Provider mode (%s)", cfg.Provider),
			fmt.Sprintf("API timeout (%ds)", cfg.TimeoutSeconds),
			fmt.Sprintf("Bridge logs (%s)", onOff(cfg.BridgeLogs)),
			fmt.Sprintf("Compat translation (%s)", onOff(cfg.Compat)),
			"Anthropic endpoint",
			"OpenAI endpoint",
			"Show config file",
			"Quit",
		}
		choice, err := tui.SelectOne("zclawbridge config", options)
		if err != nil {
			return err
		}
		switch {
		case strings.HasPrefix(choice, "Provider mode"):
			mode, err := tui.SelectOne("Default provider:", []string{"auto", "anthropic", "openai"})
			if err != nil {
				return err
			}
			cfg.Provider = mode
		case strings.HasPrefix(choice, "API timeout"):
			line, err := tui.InputWithDefault("Timeout seconds", strconv.Itoa(cfg.TimeoutSeconds))
			if err != nil {
				return err
			}
			secs, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || secs <= 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Invalid timeout: %s\n", line)
				continue
			}
			cfg.TimeoutSeconds = secs
		case strings.HasPrefix(choice, "Bridge logs"):
			on, err := tui.Confirm("Enable per-request bridge logs", cfg.BridgeLogs)
			if err != nil {
				return err
			}
			cfg.BridgeLogs = on
		case strings.HasPrefix(choice, "Compat translation"):
			on, err := tui.Confirm("Translate Anthropic requests for OpenAI endpoints", cfg.Compat)
			if err != nil {
				return err
			}
			cfg.Compat = on
		case choice == "Anthropic endpoint":
			if err := editEndpoint(cfg, "anthropic"); err != nil {
				return err
			}
		case choice == "OpenAI endpoint":
			if err := editEndpoint(cfg, "openai"); err != nil {
				return err
			}
		case choice == "Show config file":
			path, _ := config.ConfigPath()
			fmt.Fprintln(cmd.OutOrStdout(), path)
			continue
		case choice == "Quit":
			return nil
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
	}
}

func editEndpoint(cfg *config.RootConfig, name string) error {
	ps := cfg.ProviderByName(name)
	url, err := tui.InputWithDefault("Endpoint URL (empty for the provider default)", ps.BaseURL)
	if err != nil {
		return err
	}
	key, err := tui.InputWithDefault("API key (empty to rely on the environment)", ps.APIKey)
	if err != nil {
		return err
	}
	ps.BaseURL = strings.TrimSpace(url)
	ps.APIKey = strings.TrimSpace(key)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [provider]",
		Short: "Check connectivity to the configured providers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			names := []string{"anthropic", "openai"}
			if len(args) == 1 {
				p := provider.Provider(strings.ToLower(strings.TrimSpace(args[0])))
				if !provider.Valid(p) || p == provider.Auto {
					return fmt.Errorf("unknown provider: %s", args[0])
				}
				names = []string{string(p)}
			}

			failed := false
			for _, name := range names {
				ps := cfg.ProviderByName(name)
				res := tui.CheckProvider(name, ps.BaseURL, ps.APIKey, cfg.Timeout())
				status := "OK"
				if !res.Success {
					status = "FAIL"
					failed = true
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %-4s %s (%dms)\n",
					name, status, res.Message, res.Latency.Milliseconds())
			}
			if failed {
				return fmt.Errorf("one or more providers unreachable")
			}
			return nil
		},
	}
}
