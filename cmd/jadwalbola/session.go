package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/matthewjhunter/jadwalbola/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Evaluate the navigation guard against identity tokens",
	}
	cmd.AddCommand(sessionCheckCmd())
	cmd.AddCommand(sessionWatchCmd())
	return cmd
}

func newSession(navigate func(string)) *jadwalbola.Session {
	return jadwalbola.NewSession(jadwalbola.SessionConfig{
		TokenSecret: []byte(cfg.Auth.TokenSecret),
		Issuer:      cfg.Auth.Issuer,
		LoginRoute:  cfg.Routes.Login,
		HomeRoute:   cfg.Routes.Home,
		Logger:      logger,
	}, navigate)
}

func sessionCheckCmd() *cobra.Command {
	var token, route string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the guard decision for a route with or without a signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}

			var target string
			s := newSession(func(r string) { target = r })
			s.Navigate(route)

			var d jadwalbola.Decision
			if token == "" {
				d = s.SignOut()
			} else if _, d, err = s.SignIn(token); err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			return formatter.OutputSessionCheck(&output.SessionCheck{
				Route:    route,
				State:    s.State(),
				User:     s.User(),
				Decision: d.String(),
				Target:   target,
			})
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "ID token of the signed-in user (empty means signed out)")
	cmd.Flags().StringVarP(&route, "route", "r", "/(tabs)/home", "route the app is showing")
	return cmd
}

func sessionWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Drive the guard from commands on stdin",
		Long: `Reads one command per line until EOF or SIGINT/SIGTERM:

  route <path>     the app navigated to <path>
  signin <token>   the identity provider signed a user in
  refresh <token>  the identity provider refreshed the token
  signout          the user signed out, or startup found no stored token

Every redirect the guard performs is printed as it happens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, cmd.InOrStdin(), newWatchSession(formatter), formatter)
		},
	}
}

// newWatchSession prints every redirect and then follows it, so the guard
// sees the route the app actually lands on.
func newWatchSession(formatter *output.Formatter) *jadwalbola.Session {
	var s *jadwalbola.Session
	s = newSession(func(route string) {
		formatter.OutputWriteResult(&output.WriteResult{Action: "redirected", Target: route})
		s.Navigate(route)
	})
	return s
}

func watch(ctx context.Context, in io.Reader, s *jadwalbola.Session, formatter *output.Formatter) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	logger.Info("session watch started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("session watch: received shutdown signal, exiting")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := applyWatchLine(s, line); err != nil {
				formatter.Warning("%v", err)
				logger.Debug("watch command rejected", zap.Error(err))
			}
		}
	}
}

// applyWatchLine runs one watch command against s. Blank lines and lines
// starting with # are ignored.
func applyWatchLine(s *jadwalbola.Session, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "route":
		if arg == "" {
			return fmt.Errorf("route: missing path")
		}
		s.Navigate(arg)
	case "signin":
		if _, _, err := s.SignIn(arg); err != nil {
			return fmt.Errorf("signin: %w", err)
		}
	case "refresh":
		if _, _, err := s.Refresh(arg); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
	case "signout":
		s.SignOut()
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
	return nil
}
