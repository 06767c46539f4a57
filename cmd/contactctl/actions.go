package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spachava753/phonebook/dial"
	"github.com/spachava753/phonebook/mail"
	"github.com/spachava753/phonebook/settings"
)

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call CONTACT_ID",
		Short: "Call a contact with the system dialer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			c, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := dial.Call(cmd.Context(), a.opener(), c.PhoneNumber); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "calling %s at %s\n", c.FullName(), dial.URI(c.PhoneNumber))
			return nil
		},
	}
}

func newTextCmd(a *app) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "text CONTACT_ID",
		Short: "Open a text message to a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			c, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := dial.Text(cmd.Context(), a.opener(), c.PhoneNumber, body); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "texting %s at %s\n", c.FullName(), c.PhoneNumber)
			return nil
		},
	}
	cmd.Flags().StringVarP(&body, "body", "b", "", "Prefilled message body")
	return cmd
}

func newEmailCmd(a *app) *cobra.Command {
	var subject, body string

	cmd := &cobra.Command{
		Use:   "email CONTACT_ID",
		Short: "Send a plain-text email to a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			c, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if strings.TrimSpace(c.Email) == "" {
				return fmt.Errorf("contact %d has no email address", id)
			}
			messageID, err := a.mailer().Send(cmd.Context(), mail.Message{
				To:       []string{c.Email},
				Subject:  subject,
				TextBody: body,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s\n", messageID, c.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject line")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Message body (required)")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the day/night theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := a.settings().Theme()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}

	themeCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between day and night",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := a.settings().ToggleTheme()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	})

	themeCmd.AddCommand(&cobra.Command{
		Use:   "set THEME",
		Short: "Set the theme to follow_system, day or night",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := settings.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := a.settings().SetTheme(theme); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	})

	return themeCmd
}
