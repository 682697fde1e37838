package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-relay/internal/config"
	"github.com/Veraticus/spice-relay/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a URL to authenticate with Google
2. Receive the redirect on a local callback server
3. Save the token and print the refresh token to put in your config

Service account users do not need this command.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("token-file", "~/.config/spice-relay/sheets-token.json", "where to save the token")
	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "local address for the OAuth redirect")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsCfg := config.LoadSheetsConfig(viper.GetViper())
	clientID := sheetsCfg.ClientID
	clientSecret := sheetsCfg.ClientSecret

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("google OAuth2 credentials missing: set sheets.client_id and sheets.client_secret, GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET, or pass --client-id and --client-secret")
	}

	tokenFile, _ := cmd.Flags().GetString("token-file")
	callback, _ := cmd.Flags().GetString("callback")

	token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    config.ExpandPath(tokenFile),
		CallbackAddr: callback,
	})
	if err != nil {
		return fmt.Errorf("google sheets authentication failed: %w", err)
	}

	if token.RefreshToken == "" {
		slog.Warn("Google did not return a refresh token; revoke the app's access and try again")
		return nil
	}

	slog.Info("Authentication successful. Add this to your config as sheets.refresh_token or GOOGLE_SHEETS_REFRESH_TOKEN")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token.RefreshToken)
	return err
}
