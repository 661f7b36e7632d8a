package cmd

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
)

var (
	setPAT          string
	setPATExpiry    string
	setOrganization string
	setClientSecret string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the personal access token, organization and client secret",
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save settings; only the given flags are changed",
	Example: `  adolog settings set --pat xxxxx --expiry 2026-12-31 --org acme
  adolog settings set --client-secret s3cr3t`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved settings with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved settings, the cached profile and the sign-in",
	Args:  cobra.NoArgs,
	RunE:  runSettingsClear,
}

func init() {
	settingsSetCmd.Flags().StringVar(&setPAT, "pat", "", "Azure DevOps personal access token")
	settingsSetCmd.Flags().StringVar(&setPATExpiry, "expiry", "", "Token expiry date (YYYY-MM-DD)")
	settingsSetCmd.Flags().StringVar(&setOrganization, "org", "", "Default Azure DevOps organization")
	settingsSetCmd.Flags().StringVar(&setClientSecret, "client-secret", "", "OAuth client secret for the workbook backend")

	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsClearCmd)
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.settings.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := 0
	if flags.Changed("pat") {
		st.PAT = setPAT
		changed++
	}
	if flags.Changed("expiry") {
		st.PATExpiry = setPATExpiry
		changed++
	}
	if flags.Changed("org") {
		st.Organization = setOrganization
		changed++
	}
	if flags.Changed("client-secret") {
		st.ClientSecret = setClientSecret
		changed++
	}
	if changed == 0 {
		return fmt.Errorf("nothing to set: pass --pat, --expiry, --org or --client-secret")
	}

	if err := a.settings.Save(st); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.settings.Load()
	if err != nil {
		return err
	}

	patState := "ok"
	if _, err := st.RequirePAT(a.now()); err != nil {
		patState = err.Error()
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("PAT", maskSecret(st.PAT))
	tbl.AddRow("PAT expiry", orDash(st.PATExpiry))
	tbl.AddRow("PAT status", patState)
	tbl.AddRow("Organization", orDash(st.Organization))
	tbl.AddRow("Client secret", maskSecret(st.ClientSecret))
	tbl.AddRow("Backend", a.cfg.Backend)
	tbl.AddRow("Data dir", a.cfg.DataDir)
	if p, err := a.settings.Profile(); err == nil && p != nil {
		tbl.AddRow("Profile", fmt.Sprintf("%s (cached %s)", p.DisplayName, ledger.Today(p.FetchedAt)))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
	return nil
}

func runSettingsClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.settings.Clear(a.tokens); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings cleared.")
	return nil
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "-"
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
