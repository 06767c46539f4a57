package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spachava753/phonebook/contacts"
)

// badge renders the contact initial on its avatar colour.
func badge(w io.Writer, c contacts.Contact) string {
	initial := c.Initial()
	return lipgloss.NewRenderer(w).NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(contacts.AvatarColor(initial))).
		Padding(0, 1).
		Render(initial)
}

func newListCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			list, err := svc.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				_, _ = fmt.Fprintln(out, "no contacts")
				return nil
			}
			for _, c := range list {
				_, _ = fmt.Fprintf(out, "%s %-6d %-28s %-16s %s\n", badge(out, c), c.ID, c.FullName(), c.PhoneNumber, c.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show contacts whose name or number contains this text")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show CONTACT_ID",
		Short: "Show one contact",
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
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, badge(out, c))
			_, _ = fmt.Fprint(out, c.Details())
			if c.PhotoURI != "" {
				_, _ = fmt.Fprintf(out, "Photo: %s\n", c.PhotoURI)
			}
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var form contacts.NewContact

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// validate before touching the store
			if err := contacts.ValidateNew(form); err != nil {
				return err
			}
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created raw contact %d\n", res.RawContactID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.FirstName, "first", "f", "", "First name (required)")
	cmd.Flags().StringVarP(&form.LastName, "last", "l", "", "Last name")
	cmd.Flags().StringVarP(&form.PhoneNumber, "phone", "p", "", "Phone number, 10 to 15 digits with optional leading + (required)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var first, last, phone, email, photo string

	cmd := &cobra.Command{
		Use:   "edit CONTACT_ID",
		Short: "Edit a contact; unset flags keep their current value",
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

			current, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			u := contacts.ContactUpdate{
				ID:          id,
				FirstName:   current.FirstName,
				LastName:    current.LastName,
				PhoneNumber: current.PhoneNumber,
			}
			flags := cmd.Flags()
			if flags.Changed("first") {
				u.FirstName = first
			}
			if flags.Changed("last") {
				u.LastName = last
			}
			if flags.Changed("phone") {
				u.PhoneNumber = phone
			}
			if flags.Changed("email") {
				u.Email = email
			}
			if flags.Changed("photo") {
				u.PhotoURI = photo
			}

			res, err := svc.Update(cmd.Context(), u)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "updated contact %d (%d operations)\n", id, res.Operations)
			if u.Email != "" && !res.EmailUpdated {
				_, _ = fmt.Fprintln(out, "email not saved: contact has no email to update")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&first, "first", "f", "", "First name")
	cmd.Flags().StringVarP(&last, "last", "l", "", "Last name")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address; only updates an existing email")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo URI")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete CONTACT_ID",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete contact %d without --yes", id)
			}
			svc, done, err := a.openContacts()
			if err != nil {
				return err
			}
			defer done()

			n, err := svc.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("contact %d not found", id)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted contact %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the delete")
	return cmd
}
