// @title CivicSight API
// @version 1.0
// @description Citizen civic-issue reporting: AI-assisted triage, upvotes, comments and a community feed.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/civicsight/internal/config"
	"github.com/civicsight/internal/services"
)

var version = "dev"

var (
	verbose    bool
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "civicsight",
	Short:   "Civic issue reporting API",
	Long:    "civicsight accepts citizen reports of civic issues, classifies them with an AI service and exposes upvotes, comments and a community feed.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// init、version 和 hash-password 不需要配置
		switch cmd.Name() {
		case "init", "version", "hash-password":
			return nil
		}
		if err := config.LoadConfig(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (embedded defaults when empty)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("civicsight", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to config.yaml (or --config)",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := configPath
		if target == "" {
			target = "config.yaml"
		}
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
		}
		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the database, the AI classifier URL and the JWT secret.")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables (SQLite) or indexes (MongoDB) and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd.Context(), config.AppConfig.Database)
		if err != nil {
			return err
		}
		defer st.close()
		fmt.Printf("Database schema is up to date (%s)\n", config.AppConfig.Database.Driver)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for seeding user accounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashed, err := services.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		fmt.Println(hashed)
		return nil
	},
}
