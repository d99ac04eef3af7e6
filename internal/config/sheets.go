package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/abuse-forge/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from v and the environment.
// Precedence:
// 1. Viper configuration (config file or FORGE_SHEETS_* env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	fromViper := []struct {
		dst *string
		key string
		env string
	}{
		{&config.ServiceAccountPath, "sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"},
		{&config.ClientID, "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID"},
		{&config.ClientSecret, "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"},
		{&config.RefreshToken, "sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN"},
		{&config.TokenFile, "sheets.token_file", "GOOGLE_SHEETS_TOKEN_FILE"},
		{&config.SpreadsheetID, "sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID"},
		{&config.SpreadsheetName, "sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"},
	}
	for _, f := range fromViper {
		if val := v.GetString(f.key); val != "" {
			*f.dst = val
		} else if val := os.Getenv(f.env); val != "" {
			*f.dst = val
		}
	}

	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)
	config.TokenFile = ExpandPath(config.TokenFile)

	if n := v.GetInt("sheets.batch_size"); n != 0 {
		config.BatchSize = n
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
