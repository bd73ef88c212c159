package main

import (
	"github.com/spf13/cobra"

	"github.com/PabloGalante/lifeline-agent/internal/app/profile"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit the emergency profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Profiles.Current(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	signIn := &cobra.Command{
		Use:   "sign-in <identity>",
		Short: "Start a fresh profile bound to an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.Profiles.SignIn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	signOut := &cobra.Command{
		Use:   "sign-out",
		Short: "Delete the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Profiles.SignOut(cmd.Context())
		},
	}

	var (
		notes     domain.MedicalNotes
		location  bool
		onboarded bool
	)
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Update medical notes, location permission and onboarding state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			current, err := c.app.Profiles.Current(ctx)
			if err != nil {
				return err
			}

			// Only flags given on the command line change the stored values.
			merged := current.MedicalNotes
			flags := cmd.Flags()
			if flags.Changed("history") {
				merged.MedicalHistory = notes.MedicalHistory
			}
			if flags.Changed("allergies") {
				merged.Allergies = notes.Allergies
			}
			if flags.Changed("medications") {
				merged.Medications = notes.Medications
			}
			if flags.Changed("blood-type") {
				merged.BloodType = notes.BloodType
			}

			patch := profile.Patch{MedicalNotes: &merged}
			if flags.Changed("location-permission") {
				patch.HasGrantedLocationPermission = &location
			}
			if flags.Changed("onboarded") {
				patch.HasCompletedOnboarding = &onboarded
			}

			p, err := c.app.Profiles.UpdateProfile(ctx, patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	notesCmd.Flags().StringVar(&notes.MedicalHistory, "history", "", "Medical history")
	notesCmd.Flags().StringVar(&notes.Allergies, "allergies", "", "Known allergies")
	notesCmd.Flags().StringVar(&notes.Medications, "medications", "", "Current medications")
	notesCmd.Flags().StringVar(&notes.BloodType, "blood-type", "", "Blood type, e.g. O+")
	notesCmd.Flags().BoolVar(&location, "location-permission", false, "Allow alerts to use the configured location")
	notesCmd.Flags().BoolVar(&onboarded, "onboarded", false, "Mark onboarding as completed")

	cmd.AddCommand(show, signIn, signOut, notesCmd)
	return cmd
}

func (c *cli) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage emergency contacts (at most 3)",
	}

	var name, phone string

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an emergency contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Profiles.AddContact(cmd.Context(), domain.ContactInput{Name: name, PhoneNumber: phone})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p.EmergencyContacts)
		},
	}
	add.Flags().StringVar(&name, "name", "", "Contact name")
	add.Flags().StringVar(&phone, "phone", "", "Phone number, 10 to 14 digits with optional leading +")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("phone")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the name and phone of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contact := domain.Contact{ID: domain.ContactID(args[0]), Name: name, PhoneNumber: phone}
			p, err := c.app.Profiles.UpdateContact(cmd.Context(), contact)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p.EmergencyContacts)
		},
	}
	update.Flags().StringVar(&name, "name", "", "Contact name")
	update.Flags().StringVar(&phone, "phone", "", "Phone number")
	_ = update.MarkFlagRequired("name")
	_ = update.MarkFlagRequired("phone")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.Profiles.RemoveContact(cmd.Context(), domain.ContactID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p.EmergencyContacts)
		},
	}

	cmd.AddCommand(add, update, rm)
	return cmd
}

func (c *cli) conditionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Select medical conditions from the fixed catalog",
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the selection of a condition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.Profiles.ToggleCondition(cmd.Context(), domain.ConditionID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p.MedicalConditions)
		},
	}

	cmd.AddCommand(toggle)
	return cmd
}
