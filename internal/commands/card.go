package commands

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardview-dev/cardview/internal/cardview"
	"github.com/cardview-dev/cardview/internal/cvv"
	"github.com/cardview-dev/cardview/internal/notify"
	"github.com/cardview-dev/cardview/internal/source"
)

const msgCardUnavailable = "Card details unavailable"

func newCardCommand(opts *globalOptions) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Card details and actions",
	}
	cardCmd.AddCommand(newCardShowCommand(opts))
	cardCmd.AddCommand(newCardRevealCommand(opts))
	for _, action := range []string{"freeze", "replace", "cancel"} {
		cardCmd.AddCommand(newCardActionCommand(action))
	}
	return cardCmd
}

func newCardShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the card details with the CVV masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			client := newClient(cfg, logger)
			card := source.NewResource(logger, source.EndpointCard, client.Card).Load(cmd.Context())

			v := cardview.New(card, nil)
			defer v.Close()
			return writeCard(cmd.OutOrStdout(), v)
		},
	}
}

// writeCard prints the card face followed by the details list.
func writeCard(out io.Writer, v *cardview.View) error {
	if !v.Loaded() {
		_, err := fmt.Fprintln(out, msgCardUnavailable)
		return err
	}

	fmt.Fprintln(out, v.Brand())
	fmt.Fprintln(out, v.Number())
	fmt.Fprintf(out, "%s  %s\n\n", v.Name(), v.Expiry())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Card Number\t%s\n", v.Number())
	fmt.Fprintf(tw, "Expiry Date\t%s\n", v.ExpiryFull())
	fmt.Fprintf(tw, "Cardholder\t%s\n", v.Name())
	fmt.Fprintf(tw, "CVV\t%s\n", v.CVV())
	fmt.Fprintf(tw, "Card Type\t%s\n", v.Brand())
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing card: %w", err)
	}
	return nil
}

func newCardRevealCommand(opts *globalOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Show the CVV until Enter is pressed or the reveal times out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = cfg.CVV.RevealTimeout.Std()
			}

			client := newClient(cfg, logger)
			card := source.NewResource(logger, source.EndpointCard, client.Card).Load(cmd.Context())
			out := cmd.OutOrStdout()
			if card == nil {
				_, err := fmt.Fprintln(out, msgCardUnavailable)
				return err
			}

			// The expiry notification arrives on the timer goroutine; hand
			// it to this one so all output is written from a single place.
			notes := make(chan notify.Notification, 1)
			v := cardview.New(card, notify.Func(func(n notify.Notification) {
				select {
				case notes <- n:
				default:
				}
			}), cvv.WithTimeout(timeout))
			defer v.Close()

			v.ToggleCVV()
			fmt.Fprintf(out, "CVV: %s (hides in %s, press Enter to hide)\n", v.CVV(), timeout)

			enter := make(chan struct{})
			go func() {
				// At EOF nothing is closed and the reveal runs to its timeout.
				if _, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n'); err == nil {
					close(enter)
				}
			}()

			printer := notify.NewPrinter(out)
			select {
			case n := <-notes:
				printer.Notify(n)
			case <-enter:
				v.HideCVV()
			case <-cmd.Context().Done():
				v.HideCVV()
			}

			fmt.Fprintf(out, "CVV: %s\n", v.CVV())
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "reveal duration (default from config)")
	return cmd
}

var cardActionShort = map[string]string{
	"freeze":  "Freeze the card",
	"replace": "Request a replacement card",
	"cancel":  "Cancel the card",
}

// newCardActionCommand reports a card action. The card itself is not changed.
func newCardActionCommand(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: cardActionShort[action],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := cardview.New(nil, notify.NewPrinter(cmd.OutOrStdout()))
			defer v.Close()
			if !v.Action(action) {
				return fmt.Errorf("unknown card action %q", action)
			}
			return nil
		},
	}
}
