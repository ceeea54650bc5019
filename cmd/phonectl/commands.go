package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PhoneOS/internal/client"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
)

type options struct {
	server  string
	timeout time.Duration
	retries int
	trace   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "phonectl",
		Short:         "Control a running PhoneOS emulator",
		Long:          `phonectl reads device state and dispatches actions against an emulator server over its REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	def := client.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", envOr("PHONEOS_SERVER", def.BaseURL), "emulator base URL")
	flags.DurationVar(&opts.timeout, "timeout", def.Timeout, "request timeout")
	flags.IntVar(&opts.retries, "retries", def.Retries, "retries for reads")
	flags.StringVar(&opts.trace, "trace-id", "", "trace id to send (generated when empty)")

	root.AddCommand(
		viewCmd(opts, "state", "Print the whole device state", func(ctx context.Context, c *client.Client) (interface{}, error) { return c.State(ctx) }),
		viewCmd(opts, "status", "Print the status bar", func(ctx context.Context, c *client.Client) (interface{}, error) { return c.Status(ctx) }),
		viewCmd(opts, "apps", "Print the launcher layout and task stack", func(ctx context.Context, c *client.Client) (interface{}, error) { return c.Apps(ctx) }),
		viewCmd(opts, "notifications", "Print the notification shade", func(ctx context.Context, c *client.Client) (interface{}, error) { return c.Notifications(ctx) }),
		viewCmd(opts, "health", "Print server health", func(ctx context.Context, c *client.Client) (interface{}, error) { return c.Health(ctx) }),

		actionCmd(opts, "boot", "Finish booting", cobra.NoArgs, func([]string) (system.Action, error) {
			return system.Boot{}, nil
		}),
		actionCmd(opts, "lock", "Lock the screen", cobra.NoArgs, func([]string) (system.Action, error) {
			return system.Lock{Locked: true}, nil
		}),
		actionCmd(opts, "unlock", "Unlock the screen", cobra.NoArgs, func([]string) (system.Action, error) {
			return system.Lock{Locked: false}, nil
		}),
		actionCmd(opts, "open [app-id]", "Open an app on top of the stack", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.OpenApp{ID: system.AppID(args[0])}, nil
		}),
		actionCmd(opts, "close [instance-id]", "Close an instance, or the top app when none is given", cobra.MaximumNArgs(1), func(args []string) (system.Action, error) {
			if len(args) == 0 {
				return system.CloseTopApp{}, nil
			}
			return system.CloseApp{InstanceID: args[0]}, nil
		}),
		actionCmd(opts, "front [instance-id]", "Bring a running instance to the front", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.BringToFront{InstanceID: args[0]}, nil
		}),
		notifyCmd(opts),
		actionCmd(opts, "dismiss [notification-id]", "Remove a notification", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.DismissNotification{ID: args[0]}, nil
		}),
		actionCmd(opts, "read [notification-id]", "Mark a notification as read", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.MarkNotificationRead{ID: args[0]}, nil
		}),
		actionCmd(opts, "toggle [key]", "Flip a quick setting ("+joinKeys()+")", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			key := system.QuickSettingKey(args[0])
			if !key.Valid() {
				return nil, fmt.Errorf("unknown quick setting %q, want one of %s", args[0], joinKeys())
			}
			return system.ToggleQS{Key: key}, nil
		}),
		actionCmd(opts, "brightness [0-1]", "Set screen brightness", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			v, err := parseUnit(args[0])
			return system.SetBrightness{Value: v}, err
		}),
		actionCmd(opts, "volume [0-1]", "Set media volume", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			v, err := parseUnit(args[0])
			return system.SetVolume{Value: v}, err
		}),
		actionCmd(opts, "theme [light|dark|amoled]", "Switch the theme", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.SetTheme{Value: system.Theme(args[0])}, nil
		}),
		actionCmd(opts, "wallpaper [css]", "Set the wallpaper to a CSS background value", cobra.ExactArgs(1), func(args []string) (system.Action, error) {
			return system.SetWallpaper{CSS: args[0]}, nil
		}),
		batteryCmd(opts),
		dispatchCmd(opts),
	)

	return root
}

func (o *options) client() *client.Client {
	return client.New(client.Config{
		BaseURL: o.server,
		Timeout: o.timeout,
		Retries: o.retries,
		TraceID: o.trace,
	})
}

func viewCmd(opts *options, use, short string, fetch func(context.Context, *client.Client) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := fetch(cmd.Context(), opts.client())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func actionCmd(opts *options, use, short string, args cobra.PositionalArgs, build func([]string) (system.Action, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := build(args)
			if err != nil {
				return err
			}
			return dispatch(cmd, opts, action)
		},
	}
}

func notifyCmd(opts *options) *cobra.Command {
	var app, title, body string
	var buttons []string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := make([]system.NotificationAction, 0, len(buttons))
			for _, b := range buttons {
				actionID, label, ok := strings.Cut(b, "=")
				if !ok || actionID == "" {
					return fmt.Errorf("invalid --action %q, want id=label", b)
				}
				actions = append(actions, system.NotificationAction{ID: actionID, Label: label})
			}
			return dispatch(cmd, opts, system.AddNotification{Notification: system.Notification{
				AppID:   system.AppID(app),
				Title:   title,
				Body:    body,
				Actions: actions,
			}})
		},
	}

	cmd.Flags().StringVar(&app, "app", "settings", "app the notification belongs to")
	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&body, "body", "", "notification body")
	cmd.Flags().StringArrayVar(&buttons, "action", nil, "button as id=label, repeatable")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func batteryCmd(opts *options) *cobra.Command {
	var charging bool

	cmd := &cobra.Command{
		Use:   "battery [0-1]",
		Short: "Set the battery level, and optionally the charging flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseUnit(args[0])
			if err != nil {
				return err
			}
			action := system.SetBattery{Level: level}
			if cmd.Flags().Changed("charging") {
				action.Charging = &charging
			}
			return dispatch(cmd, opts, action)
		},
	}
	cmd.Flags().BoolVar(&charging, "charging", false, "charging state; unchanged when omitted")
	return cmd
}

func dispatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch [json|-]",
		Short: "Send a raw wire action, reading stdin when the argument is -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := []byte(args[0])
			if args[0] == "-" {
				var err error
				if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if err := opts.client().DispatchRaw(cmd.Context(), body); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "accepted")
			return nil
		},
	}
}

func dispatch(cmd *cobra.Command, opts *options, action system.Action) error {
	if err := opts.client().Dispatch(cmd.Context(), action); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "accepted", action.Kind())
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func parseUnit(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("value %v out of range [0, 1]", v)
	}
	return v, nil
}

func joinKeys() string {
	keys := make([]string, len(system.QuickSettingKeys))
	for i, k := range system.QuickSettingKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
